package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignatureVerifier_Verify(t *testing.T) {
	t.Parallel()

	v := NewSignatureVerifier("app-secret", "production", false)
	body := []byte(`{"object":"whatsapp_business_account","entry":[]}`)

	assert.True(t, v.Verify(body, v.Sign(body)))
	assert.False(t, v.Verify([]byte(`{"tampered":true}`), v.Sign(body)))
	assert.False(t, v.Verify(body, "sha256=deadbeef"))
	assert.False(t, v.Verify(body, ""))
}

func TestSignatureVerifier_BypassOnlyOutsideProduction(t *testing.T) {
	t.Parallel()

	body := []byte(`{}`)

	dev := NewSignatureVerifier("app-secret", "development", true)
	assert.True(t, dev.Verify(body, ""))

	// Em produção o bypass é ignorado mesmo quando solicitado.
	prod := NewSignatureVerifier("app-secret", "production", true)
	assert.False(t, prod.Verify(body, ""))
	assert.True(t, prod.Verify(body, prod.Sign(body)))
}

func TestSignatureVerifier_EmptySecretRejects(t *testing.T) {
	t.Parallel()

	v := NewSignatureVerifier("", "production", false)
	assert.False(t, v.Verify([]byte(`{}`), "sha256=abc"))
}
