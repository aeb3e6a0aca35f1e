package ingest

import (
	"time"

	"github.com/zapimob/zapimob/internal/storage/model"
)

// UnifiedMessagePayload é a forma canônica de uma mensagem recebida,
// independente da plataforma de origem.
type UnifiedMessagePayload struct {
	Platform    model.Platform
	Timestamp   time.Time
	ExternalID  string
	SenderID    string
	RecipientID string
	Text        string
	Entrypoint  string
}

// ReplyJob é o trabalho enfileirado para o pool de despacho quando o motor
// de auto-resposta produz um texto.
type ReplyJob struct {
	Platform       model.Platform `json:"platform"`
	RecipientID    string         `json:"recipientId"`
	BusinessID     string         `json:"businessId"`
	Text           string         `json:"text"`
	AIGenerated    bool           `json:"aiGenerated"`
	ConversationID string         `json:"conversationId"`
	RuleID         string         `json:"ruleId"`
}
