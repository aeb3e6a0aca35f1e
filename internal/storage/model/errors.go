package model

import "errors"

// Sentinelas compartilhadas pelos drivers de storage. Vivem aqui (pacote
// folha) para que postgres/sqlite e os consumidores comparem o mesmo valor
// sem ciclo de import.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate record")
)
