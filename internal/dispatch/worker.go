package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zapimob/zapimob/internal/ingest"
	"github.com/zapimob/zapimob/internal/storage"
	"github.com/zapimob/zapimob/internal/storage/model"
)

// InstagramSender e WhatsAppSender são os clientes de envio da Graph API
// vistos pelo worker (implementados em internal/platform/meta).
type InstagramSender interface {
	SendMessage(ctx context.Context, recipientID, text, accessToken string) (string, error)
}

type WhatsAppSender interface {
	SendText(ctx context.Context, businessPhoneID, to, text, accessToken string) (string, error)
}

// AccountSource resolve a conta comercial com o access token pronto para
// uso (já decifrado quando a cifra de tokens está habilitada).
type AccountSource interface {
	GetByPlatformExternalID(ctx context.Context, platform model.Platform, externalID string) (model.BusinessAccount, error)
}

// Worker envia uma auto-resposta e registra o resultado: mensagem canônica
// OUTBOUND, espelho legado (WhatsApp) e trilha de auditoria.
type Worker struct {
	accounts   AccountSource
	messages   storage.MessageRepository
	waMessages storage.WhatsappMessageRepository
	audit      storage.AuditLogRepository
	instagram  InstagramSender
	whatsapp   WhatsAppSender
	log        *zap.Logger
}

type WorkerOptions struct {
	Accounts   AccountSource
	Messages   storage.MessageRepository
	WaMessages storage.WhatsappMessageRepository
	Audit      storage.AuditLogRepository
	Instagram  InstagramSender
	WhatsApp   WhatsAppSender
	Logger     *zap.Logger
}

func NewWorker(opts WorkerOptions) *Worker {
	return &Worker{
		accounts:   opts.Accounts,
		messages:   opts.Messages,
		waMessages: opts.WaMessages,
		audit:      opts.Audit,
		instagram:  opts.Instagram,
		whatsapp:   opts.WhatsApp,
		log:        opts.Logger,
	}
}

func (w *Worker) Send(ctx context.Context, job ingest.ReplyJob) error {
	account, err := w.accounts.GetByPlatformExternalID(ctx, job.Platform, job.BusinessID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Sem credencial configurada não há o que enviar; não é erro
			// do pipeline.
			w.log.Warn("dispatch: conta comercial sem token, envio ignorado",
				zap.String("platform", string(job.Platform)),
				zap.String("businessId", job.BusinessID),
			)
			return nil
		}
		return fmt.Errorf("dispatch: buscar conta comercial: %w", err)
	}

	var platformMsgID string
	switch job.Platform {
	case model.PlatformInstagram:
		platformMsgID, err = w.instagram.SendMessage(ctx, job.RecipientID, job.Text, account.AccessToken)
	case model.PlatformWhatsApp:
		platformMsgID, err = w.whatsapp.SendText(ctx, job.BusinessID, job.RecipientID, job.Text, account.AccessToken)
	default:
		return fmt.Errorf("dispatch: plataforma desconhecida: %s", job.Platform)
	}
	if err != nil {
		return fmt.Errorf("dispatch: envio: %w", err)
	}

	w.recordOutbound(ctx, job, account, platformMsgID)
	return nil
}

func (w *Worker) recordOutbound(ctx context.Context, job ingest.ReplyJob, account model.BusinessAccount, platformMsgID string) {
	externalID := platformMsgID
	if externalID == "" {
		// A API de envio nem sempre devolve um id síncrono estável.
		externalID = "out_" + uuid.New().String()
	}

	if _, err := w.messages.Create(ctx, model.Message{
		ConversationID: job.ConversationID,
		ExternalID:     externalID,
		Direction:      model.DirectionOutbound,
		Source:         job.Platform,
		Text:           job.Text,
		AIGenerated:    job.AIGenerated,
	}); err != nil {
		w.log.Warn("dispatch: falha ao gravar mensagem de saída",
			zap.String("conversationId", job.ConversationID), zap.Error(err))
	}

	if job.Platform == model.PlatformWhatsApp {
		if _, err := w.waMessages.Create(ctx, model.WhatsappMessage{
			AccountID:  account.ID,
			FromNumber: job.BusinessID,
			ToNumber:   job.RecipientID,
			Text:       job.Text,
			ExternalID: externalID,
			Direction:  model.DirectionOutbound,
		}); err != nil {
			w.log.Warn("dispatch: falha ao gravar espelho legado de saída", zap.Error(err))
		}
	}

	details, _ := json.Marshal(map[string]any{
		"platform":    job.Platform,
		"recipientId": job.RecipientID,
		"ruleId":      job.RuleID,
		"aiGenerated": job.AIGenerated,
	})
	if _, err := w.audit.Create(ctx, model.AuditLog{
		Action:   "AUTO_REPLY_SENT",
		EntityID: job.ConversationID,
		Details:  string(details),
	}); err != nil {
		w.log.Warn("dispatch: falha ao gravar auditoria", zap.Error(err))
	}
}
