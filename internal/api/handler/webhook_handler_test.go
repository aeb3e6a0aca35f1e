package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zapimob/zapimob/internal/ingest"
	"github.com/zapimob/zapimob/internal/storage/model"
)

type fakeProcessor struct {
	payloads []ingest.UnifiedMessagePayload
	job      *ingest.ReplyJob
	err      error
}

func (f *fakeProcessor) Process(ctx context.Context, payload ingest.UnifiedMessagePayload) (*ingest.ReplyJob, error) {
	f.payloads = append(f.payloads, payload)
	return f.job, f.err
}

type fakeEnqueuer struct {
	jobs []ingest.ReplyJob
}

func (f *fakeEnqueuer) Enqueue(ctx context.Context, id string, job ingest.ReplyJob) {
	f.jobs = append(f.jobs, job)
}

const waBody = `{
	"object": "whatsapp_business_account",
	"entry": [{
		"changes": [{
			"field": "messages",
			"value": {
				"metadata": {"phone_number_id": "10"},
				"messages": [{"id": "wamid.1", "from": "5511999998888", "timestamp": "1700000000", "type": "text", "text": {"body": "oi"}}]
			}
		}]
	}]
}`

func newWebhookRouter(processor *fakeProcessor, enqueuer *fakeEnqueuer) (*gin.Engine, *ingest.SignatureVerifier) {
	gin.SetMode(gin.TestMode)
	verifier := ingest.NewSignatureVerifier("app-secret", "production", false)
	h := NewWebhookHandler(verifier, processor, enqueuer, "verify-token", zap.NewNop())

	router := gin.New()
	h.Register(&router.RouterGroup)
	return router, verifier
}

func TestWebhookHandler_Handshake(t *testing.T) {
	t.Parallel()

	router, _ := newWebhookRouter(&fakeProcessor{}, &fakeEnqueuer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/webhooks/meta?hub.mode=subscribe&hub.verify_token=verify-token&hub.challenge=12345", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "12345", w.Body.String())
}

func TestWebhookHandler_HandshakeWrongToken(t *testing.T) {
	t.Parallel()

	router, _ := newWebhookRouter(&fakeProcessor{}, &fakeEnqueuer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/webhooks/meta?hub.mode=subscribe&hub.verify_token=errado&hub.challenge=12345", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWebhookHandler_RejectsBadSignature(t *testing.T) {
	t.Parallel()

	processor := &fakeProcessor{}
	router, _ := newWebhookRouter(processor, &fakeEnqueuer{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/meta", bytes.NewBufferString(waBody))
	req.Header.Set("x-hub-signature-256", "sha256=0000")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, processor.payloads)
}

func TestWebhookHandler_ProcessesAndEnqueues(t *testing.T) {
	t.Parallel()

	processor := &fakeProcessor{job: &ingest.ReplyJob{
		Platform:    model.PlatformWhatsApp,
		RecipientID: "5511999998888",
		Text:        "Olá!",
	}}
	enqueuer := &fakeEnqueuer{}
	router, verifier := newWebhookRouter(processor, enqueuer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/meta", bytes.NewBufferString(waBody))
	req.Header.Set("x-hub-signature-256", verifier.Sign([]byte(waBody)))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	require.Len(t, processor.payloads, 1)
	assert.Equal(t, "wamid.1", processor.payloads[0].ExternalID)
	require.Len(t, enqueuer.jobs, 1)
	assert.Equal(t, "Olá!", enqueuer.jobs[0].Text)
}

func TestWebhookHandler_ProcessorErrorStillAcks(t *testing.T) {
	t.Parallel()

	processor := &fakeProcessor{err: errors.New("banco fora do ar")}
	enqueuer := &fakeEnqueuer{}
	router, verifier := newWebhookRouter(processor, enqueuer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/meta", bytes.NewBufferString(waBody))
	req.Header.Set("x-hub-signature-256", verifier.Sign([]byte(waBody)))
	router.ServeHTTP(w, req)

	// Erro interno não pode virar retry storm do lado da Meta.
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	assert.Empty(t, enqueuer.jobs)
}

func TestWebhookHandler_UnknownPayloadAcks(t *testing.T) {
	t.Parallel()

	processor := &fakeProcessor{}
	router, verifier := newWebhookRouter(processor, &fakeEnqueuer{})

	body := "not json at all"
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/meta", bytes.NewBufferString(body))
	req.Header.Set("x-hub-signature-256", verifier.Sign([]byte(body)))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, processor.payloads)
}
