package storage

import (
	"context"
	"time"

	"github.com/zapimob/zapimob/internal/storage/model"
)

var ErrNotFound = model.ErrNotFound

// ErrDuplicate é retornado quando uma constraint de unicidade é violada
// (redelivery de webhook ou corrida no find-or-create de conversas).
var ErrDuplicate = model.ErrDuplicate

type ChannelRepository interface {
	// Upsert cria o canal se (platform, externalId) não existir;
	// caso exista, apenas toca updated_at e retorna o registro atual.
	Upsert(ctx context.Context, ch model.Channel) (model.Channel, error)
	GetByPlatformExternalID(ctx context.Context, platform model.Platform, externalID string) (model.Channel, error)
}

type LeadRepository interface {
	Create(ctx context.Context, lead model.Lead) (model.Lead, error)
	GetByID(ctx context.Context, id string) (model.Lead, error)
	// FindByPhoneFragment retorna o primeiro lead cujo telefone contém o
	// fragmento informado, ou ErrNotFound.
	FindByPhoneFragment(ctx context.Context, fragment string) (model.Lead, error)
	List(ctx context.Context) ([]model.Lead, error)
}

type ConversationRepository interface {
	// FindActiveByChannel retorna a conversa ACTIVE mais recente do canal.
	FindActiveByChannel(ctx context.Context, channelID string) (model.Conversation, error)
	Create(ctx context.Context, conv model.Conversation) (model.Conversation, error)
	// TouchLastMessage avança last_message_at sem nunca retroceder
	// (webhooks podem chegar fora de ordem).
	TouchLastMessage(ctx context.Context, id string, ts time.Time) error
	GetByID(ctx context.Context, id string) (model.Conversation, error)
	List(ctx context.Context) ([]model.Conversation, error)
}

type MessageRepository interface {
	Create(ctx context.Context, msg model.Message) (model.Message, error)
	ExistsByExternalID(ctx context.Context, source model.Platform, externalID string) (bool, error)
	ListByConversation(ctx context.Context, conversationID string) ([]model.Message, error)
}

type WhatsappMessageRepository interface {
	Create(ctx context.Context, msg model.WhatsappMessage) (model.WhatsappMessage, error)
}

type InstagramMessageRepository interface {
	Create(ctx context.Context, msg model.InstagramMessage) (model.InstagramMessage, error)
}

type AutoReplyRuleRepository interface {
	// ListActiveByPlatform retorna regras ativas com escopo ALL ou igual à
	// plataforma, ordenadas por prioridade decrescente.
	ListActiveByPlatform(ctx context.Context, platform model.Platform) ([]model.AutoReplyRule, error)
	Create(ctx context.Context, rule model.AutoReplyRule) (model.AutoReplyRule, error)
	GetByID(ctx context.Context, id string) (model.AutoReplyRule, error)
	Update(ctx context.Context, rule model.AutoReplyRule) (model.AutoReplyRule, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]model.AutoReplyRule, error)
}

type AssistantRepository interface {
	GetByID(ctx context.Context, id string) (model.Assistant, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n model.Notification) (model.Notification, error)
	ListByUser(ctx context.Context, userID string) ([]model.Notification, error)
}

type BusinessAccountRepository interface {
	GetByPlatformExternalID(ctx context.Context, platform model.Platform, externalID string) (model.BusinessAccount, error)
	// Upsert cria ou substitui a conta de (platform, externalId).
	Upsert(ctx context.Context, acct model.BusinessAccount) (model.BusinessAccount, error)
	List(ctx context.Context) ([]model.BusinessAccount, error)
}

type AuditLogRepository interface {
	Create(ctx context.Context, entry model.AuditLog) (model.AuditLog, error)
}

type UserRepository interface {
	Create(ctx context.Context, user model.User) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
}
