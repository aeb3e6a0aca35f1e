package queue

import (
	"context"
	"encoding/json"
	"time"
)

// Event é um trabalho serializado aguardando despacho (hoje, jobs de
// auto-resposta; o payload é opaco para a fila).
type Event struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

type Queue interface {
	Enqueue(ctx context.Context, event Event) error
	Dequeue(ctx context.Context, timeout time.Duration) (*Event, error)
	Size(ctx context.Context) (int64, error)
	Close() error
}
