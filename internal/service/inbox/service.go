package inbox

import (
	"context"

	"github.com/zapimob/zapimob/internal/storage"
	"github.com/zapimob/zapimob/internal/storage/model"
)

// Service reúne as leituras da caixa de entrada do painel:
// leads, conversas, mensagens e notificações.
type Service struct {
	leads         storage.LeadRepository
	conversations storage.ConversationRepository
	messages      storage.MessageRepository
	notifications storage.NotificationRepository
}

func NewService(
	leads storage.LeadRepository,
	conversations storage.ConversationRepository,
	messages storage.MessageRepository,
	notifications storage.NotificationRepository,
) *Service {
	return &Service{
		leads:         leads,
		conversations: conversations,
		messages:      messages,
		notifications: notifications,
	}
}

func (s *Service) ListLeads(ctx context.Context) ([]model.Lead, error) {
	return s.leads.List(ctx)
}

func (s *Service) GetLead(ctx context.Context, id string) (model.Lead, error) {
	return s.leads.GetByID(ctx, id)
}

func (s *Service) CreateLead(ctx context.Context, lead model.Lead) (model.Lead, error) {
	if lead.Status == "" {
		lead.Status = "NEW"
	}
	if lead.Priority == "" {
		lead.Priority = "MEDIUM"
	}
	return s.leads.Create(ctx, lead)
}

func (s *Service) ListConversations(ctx context.Context) ([]model.Conversation, error) {
	return s.conversations.List(ctx)
}

func (s *Service) GetConversation(ctx context.Context, id string) (model.Conversation, error) {
	return s.conversations.GetByID(ctx, id)
}

func (s *Service) ListMessages(ctx context.Context, conversationID string) ([]model.Message, error) {
	if _, err := s.conversations.GetByID(ctx, conversationID); err != nil {
		return nil, err
	}
	return s.messages.ListByConversation(ctx, conversationID)
}

func (s *Service) ListNotifications(ctx context.Context, userID string) ([]model.Notification, error) {
	return s.notifications.ListByUser(ctx, userID)
}
