package ingest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureVerifier valida o header x-hub-signature-256 enviado pela Meta
// contra o HMAC-SHA256 do corpo bruto da requisição.
type SignatureVerifier struct {
	secret []byte
	// bypass só é honrado fora de produção (gate feito na construção).
	bypass bool
}

func NewSignatureVerifier(appSecret, appEnv string, skipCheck bool) *SignatureVerifier {
	return &SignatureVerifier{
		secret: []byte(appSecret),
		bypass: skipCheck && appEnv != "production",
	}
}

// Verify retorna true quando a assinatura no formato "sha256=<hex>" bate
// com o corpo, ou quando o bypass de desenvolvimento está ativo.
func (v *SignatureVerifier) Verify(body []byte, signature string) bool {
	if v.bypass {
		return true
	}
	if len(v.secret) == 0 || signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(signature), []byte(expected))
}

// Sign gera a assinatura esperada para um corpo; usado pelos testes e por
// ferramentas de replay.
func (v *SignatureVerifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}
