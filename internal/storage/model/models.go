package model

import "time"

type Platform string

const (
	PlatformInstagram Platform = "INSTAGRAM"
	PlatformWhatsApp  Platform = "WHATSAPP"
	PlatformAll       Platform = "ALL"
)

type Direction string

const (
	DirectionInbound  Direction = "INBOUND"
	DirectionOutbound Direction = "OUTBOUND"
)

type ConversationStatus string

const (
	ConversationActive   ConversationStatus = "ACTIVE"
	ConversationArchived ConversationStatus = "ARCHIVED"
	ConversationClosed   ConversationStatus = "CLOSED"
)

// Channel identifica um contato externo único em uma plataforma.
// (platform, external_id) é único.
type Channel struct {
	ID         string    `json:"id"`
	Platform   Platform  `json:"platform"`
	ExternalID string    `json:"externalId"`
	Name       string    `json:"name"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Lead struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email,omitempty"`
	Source     string    `json:"source"`
	Status     string    `json:"status"`
	Priority   string    `json:"priority"`
	AssignedTo string    `json:"assignedTo,omitempty"`
	Budget     float64   `json:"budget"`
	Score      int       `json:"score"`
	CampaignID string    `json:"campaignId,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type Conversation struct {
	ID            string             `json:"id"`
	ChannelID     string             `json:"channelId"`
	ContactID     string             `json:"contactId"`
	Status        ConversationStatus `json:"status"`
	LastMessageAt time.Time          `json:"lastMessageAt"`
	CreatedAt     time.Time          `json:"createdAt"`
}

// Message é o registro canônico, agnóstico de plataforma.
// (source, external_id) é único para tolerar redelivery de webhooks.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	ExternalID     string    `json:"externalId"`
	Direction      Direction `json:"direction"`
	Source         Platform  `json:"source"`
	Text           string    `json:"text"`
	AIGenerated    bool      `json:"aiGenerated"`
	CreatedAt      time.Time `json:"createdAt"`
}

// WhatsappMessage é o registro legado no formato da plataforma,
// mantido para as telas antigas que leem por número de telefone.
type WhatsappMessage struct {
	ID         string    `json:"id"`
	AccountID  string    `json:"accountId,omitempty"`
	FromNumber string    `json:"fromNumber"`
	ToNumber   string    `json:"toNumber"`
	Text       string    `json:"text"`
	ExternalID string    `json:"externalId"`
	Direction  Direction `json:"direction"`
	CreatedAt  time.Time `json:"createdAt"`
}

type InstagramMessage struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"accountId,omitempty"`
	SenderID    string    `json:"senderId"`
	RecipientID string    `json:"recipientId"`
	Text        string    `json:"text"`
	ExternalID  string    `json:"externalId"`
	Direction   Direction `json:"direction"`
	CreatedAt   time.Time `json:"createdAt"`
}

// AutoReplyRule é um gatilho configurado pelo tenant. keyword "*" é coringa.
type AutoReplyRule struct {
	ID          string    `json:"id"`
	Platform    Platform  `json:"platform"`
	Keyword     string    `json:"keyword"`
	Response    string    `json:"response,omitempty"`
	UseAI       bool      `json:"useAi"`
	AssistantID string    `json:"assistantId,omitempty"`
	Active      bool      `json:"active"`
	Priority    int       `json:"priority"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Assistant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Prompt    string    `json:"prompt"`
	Model     string    `json:"model,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	LeadID    string    `json:"leadId,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

// BusinessAccount guarda as credenciais da conta comercial por plataforma,
// consultadas pelo id externo do negócio (phone_number_id ou IG user id).
type BusinessAccount struct {
	ID          string    `json:"id"`
	Platform    Platform  `json:"platform"`
	ExternalID  string    `json:"externalId"`
	Name        string    `json:"name"`
	AccessToken string    `json:"-"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type AuditLog struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	EntityID  string    `json:"entityId,omitempty"`
	Details   string    `json:"details,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

const NotificationTypeMessage = "MESSAGE"
