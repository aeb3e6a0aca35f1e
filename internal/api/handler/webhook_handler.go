package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zapimob/zapimob/internal/ingest"
)

// MessageProcessor ingere um payload canônico e devolve o job de resposta
// quando alguma regra casa.
type MessageProcessor interface {
	Process(ctx context.Context, payload ingest.UnifiedMessagePayload) (*ingest.ReplyJob, error)
}

// ReplyEnqueuer entrega jobs de resposta para despacho assíncrono.
type ReplyEnqueuer interface {
	Enqueue(ctx context.Context, id string, job ingest.ReplyJob)
}

// WebhookHandler recebe as entregas do webhook unificado da Meta
// (Instagram DM + WhatsApp Cloud). Política central: depois da assinatura
// validada, a resposta HTTP é sempre 200 {success:true} — erro interno
// nunca vira retry storm do lado da Meta.
type WebhookHandler struct {
	verifier    *ingest.SignatureVerifier
	processor   MessageProcessor
	enqueuer    ReplyEnqueuer
	verifyToken string
	log         *zap.Logger
}

func NewWebhookHandler(verifier *ingest.SignatureVerifier, processor MessageProcessor, enqueuer ReplyEnqueuer, verifyToken string, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifier:    verifier,
		processor:   processor,
		enqueuer:    enqueuer,
		verifyToken: verifyToken,
		log:         log,
	}
}

func (h *WebhookHandler) Register(r *gin.RouterGroup) {
	r.GET("/webhooks/meta", h.verify)
	r.POST("/webhooks/meta", h.receive)
}

// verify responde o handshake de subscrição da Meta: ecoa o challenge em
// texto puro quando mode e token conferem.
func (h *WebhookHandler) verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token == h.verifyToken {
		c.String(http.StatusOK, challenge)
		return
	}

	h.log.Warn("webhook: handshake rejeitado", zap.String("mode", mode))
	c.AbortWithStatus(http.StatusForbidden)
}

func (h *WebhookHandler) receive(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.log.Warn("webhook: erro ao ler corpo", zap.Error(err))
		h.ack(c)
		return
	}

	if !h.verifier.Verify(body, c.GetHeader("x-hub-signature-256")) {
		h.log.Warn("webhook: assinatura inválida, entrega rejeitada")
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false})
		return
	}

	payloads, err := ingest.Normalize(body)
	if err != nil {
		// Payload que nunca vamos entender: engole e confirma, senão a
		// Meta re-entrega para sempre.
		h.log.Warn("webhook: payload não reconhecido", zap.Error(err))
		h.ack(c)
		return
	}

	for _, payload := range payloads {
		job, err := h.processor.Process(c.Request.Context(), payload)
		if err != nil {
			h.log.Error("webhook: falha ao processar mensagem",
				zap.String("platform", string(payload.Platform)),
				zap.String("externalId", payload.ExternalID),
				zap.Error(err),
			)
			continue
		}
		if job != nil && h.enqueuer != nil {
			h.enqueuer.Enqueue(c.Request.Context(), uuid.New().String(), *job)
		}
	}

	h.ack(c)
}

func (h *WebhookHandler) ack(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}
