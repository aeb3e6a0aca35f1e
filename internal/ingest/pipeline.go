package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/zapimob/zapimob/internal/autoreply"
	"github.com/zapimob/zapimob/internal/storage"
	"github.com/zapimob/zapimob/internal/storage/model"
)

// ReplyResolver é o motor de auto-resposta visto pelo pipeline.
type ReplyResolver interface {
	Resolve(ctx context.Context, platform model.Platform, text string) (autoreply.Reply, error)
}

// Pipeline processa um UnifiedMessagePayload de ponta a ponta: identidade,
// conversa, persistência, notificação e resolução de auto-resposta. O
// despacho da resposta em si acontece fora, via fila.
type Pipeline struct {
	channels      storage.ChannelRepository
	leads         storage.LeadRepository
	conversations storage.ConversationRepository
	messages      storage.MessageRepository
	waMessages    storage.WhatsappMessageRepository
	igMessages    storage.InstagramMessageRepository
	notifications storage.NotificationRepository
	accounts      storage.BusinessAccountRepository
	resolver      ReplyResolver
	log           *zap.Logger
}

type PipelineOptions struct {
	Channels      storage.ChannelRepository
	Leads         storage.LeadRepository
	Conversations storage.ConversationRepository
	Messages      storage.MessageRepository
	WaMessages    storage.WhatsappMessageRepository
	IgMessages    storage.InstagramMessageRepository
	Notifications storage.NotificationRepository
	Accounts      storage.BusinessAccountRepository
	Resolver      ReplyResolver
	Logger        *zap.Logger
}

func NewPipeline(opts PipelineOptions) *Pipeline {
	return &Pipeline{
		channels:      opts.Channels,
		leads:         opts.Leads,
		conversations: opts.Conversations,
		messages:      opts.Messages,
		waMessages:    opts.WaMessages,
		igMessages:    opts.IgMessages,
		notifications: opts.Notifications,
		accounts:      opts.Accounts,
		resolver:      opts.Resolver,
		log:           opts.Logger,
	}
}

// Process ingere uma mensagem e retorna o job de resposta quando alguma
// regra produz texto, ou nil. Redelivery do mesmo external id não grava
// nada e não gera resposta.
func (p *Pipeline) Process(ctx context.Context, payload UnifiedMessagePayload) (*ReplyJob, error) {
	exists, err := p.messages.ExistsByExternalID(ctx, payload.Platform, payload.ExternalID)
	if err != nil {
		return nil, fmt.Errorf("ingest: verificar duplicidade: %w", err)
	}
	if exists {
		p.log.Info("pipeline: mensagem já ingerida, ignorando redelivery",
			zap.String("platform", string(payload.Platform)),
			zap.String("externalId", payload.ExternalID),
		)
		return nil, nil
	}

	channel, err := p.resolveChannel(ctx, payload)
	if err != nil {
		return nil, err
	}

	lead := p.resolveLead(ctx, payload)

	conv, err := p.trackConversation(ctx, channel, payload)
	if err != nil {
		return nil, err
	}

	if err := p.storeMessage(ctx, conv, payload); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			// Corrida entre duas entregas do mesmo webhook; a outra venceu.
			return nil, nil
		}
		return nil, err
	}

	p.storeLegacyMessage(ctx, payload)
	p.notifyOwner(ctx, lead, payload)

	return p.resolveReply(ctx, conv, payload), nil
}

func (p *Pipeline) resolveChannel(ctx context.Context, payload UnifiedMessagePayload) (model.Channel, error) {
	channel, err := p.channels.Upsert(ctx, model.Channel{
		Platform:   payload.Platform,
		ExternalID: payload.SenderID,
		Name:       fmt.Sprintf("%s %s", payload.Platform, payload.SenderID),
		Active:     true,
	})
	if err != nil {
		return model.Channel{}, fmt.Errorf("ingest: upsert de canal: %w", err)
	}
	return channel, nil
}

// resolveLead tenta ligar a mensagem a um lead existente. WhatsApp usa a
// heurística de substring de telefone; Instagram não tem resolução aqui.
// O pipeline nunca cria leads: criação é sempre do lado do CRM.
func (p *Pipeline) resolveLead(ctx context.Context, payload UnifiedMessagePayload) *model.Lead {
	if payload.Platform != model.PlatformWhatsApp {
		return nil
	}

	phone := strings.TrimPrefix(payload.SenderID, "+")
	lead, err := p.leads.FindByPhoneFragment(ctx, phone)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			p.log.Warn("pipeline: erro na busca de lead por telefone",
				zap.String("phone", phone), zap.Error(err))
		}
		return nil
	}
	return &lead
}

func (p *Pipeline) trackConversation(ctx context.Context, channel model.Channel, payload UnifiedMessagePayload) (model.Conversation, error) {
	conv, err := p.conversations.FindActiveByChannel(ctx, channel.ID)
	if err == nil {
		if err := p.conversations.TouchLastMessage(ctx, conv.ID, payload.Timestamp); err != nil {
			p.log.Warn("pipeline: erro ao atualizar last_message_at",
				zap.String("conversationId", conv.ID), zap.Error(err))
		}
		return conv, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return model.Conversation{}, fmt.Errorf("ingest: buscar conversa: %w", err)
	}

	created, err := p.conversations.Create(ctx, model.Conversation{
		ChannelID:     channel.ID,
		ContactID:     payload.SenderID,
		Status:        model.ConversationActive,
		LastMessageAt: payload.Timestamp,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			// Outra entrega criou a conversa primeiro; reusa a dela.
			return p.conversations.FindActiveByChannel(ctx, channel.ID)
		}
		return model.Conversation{}, fmt.Errorf("ingest: criar conversa: %w", err)
	}
	return created, nil
}

func (p *Pipeline) storeMessage(ctx context.Context, conv model.Conversation, payload UnifiedMessagePayload) error {
	_, err := p.messages.Create(ctx, model.Message{
		ConversationID: conv.ID,
		ExternalID:     payload.ExternalID,
		Direction:      model.DirectionInbound,
		Source:         payload.Platform,
		Text:           payload.Text,
		CreatedAt:      payload.Timestamp,
	})
	if err != nil && !errors.Is(err, storage.ErrDuplicate) {
		return fmt.Errorf("ingest: gravar mensagem: %w", err)
	}
	return err
}

// storeLegacyMessage grava o espelho denormalizado no formato da
// plataforma. Best-effort: falha aqui não interrompe a ingestão.
func (p *Pipeline) storeLegacyMessage(ctx context.Context, payload UnifiedMessagePayload) {
	accountID := ""
	if p.accounts != nil {
		acc, err := p.accounts.GetByPlatformExternalID(ctx, payload.Platform, payload.RecipientID)
		if err == nil {
			accountID = acc.ID
		} else if !errors.Is(err, storage.ErrNotFound) {
			p.log.Warn("pipeline: erro na busca da conta comercial",
				zap.String("recipientId", payload.RecipientID), zap.Error(err))
		}
	}

	var err error
	switch payload.Platform {
	case model.PlatformWhatsApp:
		_, err = p.waMessages.Create(ctx, model.WhatsappMessage{
			AccountID:  accountID,
			FromNumber: payload.SenderID,
			ToNumber:   payload.RecipientID,
			Text:       payload.Text,
			ExternalID: payload.ExternalID,
			Direction:  model.DirectionInbound,
			CreatedAt:  payload.Timestamp,
		})
	case model.PlatformInstagram:
		_, err = p.igMessages.Create(ctx, model.InstagramMessage{
			AccountID:   accountID,
			SenderID:    payload.SenderID,
			RecipientID: payload.RecipientID,
			Text:        payload.Text,
			ExternalID:  payload.ExternalID,
			Direction:   model.DirectionInbound,
			CreatedAt:   payload.Timestamp,
		})
	}
	if err != nil {
		p.log.Warn("pipeline: falha ao gravar registro legado",
			zap.String("platform", string(payload.Platform)),
			zap.String("externalId", payload.ExternalID),
			zap.Error(err),
		)
	}
}

func (p *Pipeline) notifyOwner(ctx context.Context, lead *model.Lead, payload UnifiedMessagePayload) {
	if lead == nil || lead.AssignedTo == "" {
		return
	}

	from := lead.Name
	if from == "" {
		from = payload.SenderID
	}
	body := payload.Text
	// Corte por runas: texto pt-BR acentado não pode ser partido no meio
	// de uma sequência UTF-8.
	if runes := []rune(body); len(runes) > 50 {
		body = string(runes[:50])
	}

	_, err := p.notifications.Create(ctx, model.Notification{
		UserID: lead.AssignedTo,
		Type:   model.NotificationTypeMessage,
		Title:  "New message from " + from,
		Body:   body,
		LeadID: lead.ID,
	})
	if err != nil {
		p.log.Warn("pipeline: falha ao criar notificação",
			zap.String("leadId", lead.ID), zap.Error(err))
	}
}

func (p *Pipeline) resolveReply(ctx context.Context, conv model.Conversation, payload UnifiedMessagePayload) *ReplyJob {
	if p.resolver == nil {
		return nil
	}

	reply, err := p.resolver.Resolve(ctx, payload.Platform, payload.Text)
	if err != nil {
		p.log.Warn("pipeline: motor de auto-resposta falhou",
			zap.String("platform", string(payload.Platform)), zap.Error(err))
		return nil
	}
	if reply.Text == "" {
		return nil
	}

	return &ReplyJob{
		Platform:       payload.Platform,
		RecipientID:    payload.SenderID,
		BusinessID:     payload.RecipientID,
		Text:           reply.Text,
		AIGenerated:    reply.AIGenerated,
		ConversationID: conv.ID,
		RuleID:         reply.RuleID,
	}
}
