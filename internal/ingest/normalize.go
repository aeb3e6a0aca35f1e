package ingest

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zapimob/zapimob/internal/storage/model"
)

// Formas brutas dos dois webhooks da Meta. Cada plataforma tem um parser
// puro próprio; os dois convergem para UnifiedMessagePayload antes de
// entrar no pipeline compartilhado.

type instagramWebhook struct {
	Object string `json:"object"`
	Entry  []struct {
		Messaging []struct {
			Sender    struct{ ID string } `json:"sender"`
			Recipient struct{ ID string } `json:"recipient"`
			Timestamp int64               `json:"timestamp"`
			Message   *struct {
				MID    string `json:"mid"`
				Text   string `json:"text"`
				IsEcho bool   `json:"is_echo"`
			} `json:"message"`
		} `json:"messaging"`
	} `json:"entry"`
}

type whatsappWebhook struct {
	Entry []struct {
		Changes []struct {
			Field string `json:"field"`
			Value struct {
				Metadata struct {
					PhoneNumberID string `json:"phone_number_id"`
				} `json:"metadata"`
				Messages []struct {
					ID        string `json:"id"`
					From      string `json:"from"`
					Timestamp string `json:"timestamp"`
					Type      string `json:"type"`
					Text      *struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// Normalize converte o corpo bruto de um POST da Meta em zero ou mais
// payloads canônicos. Corpo que não é JSON retorna erro; o handler engole
// e responde sucesso para não provocar redelivery infinito.
func Normalize(body []byte) ([]UnifiedMessagePayload, error) {
	var probe struct {
		Object string `json:"object"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("ingest: payload inválido: %w", err)
	}

	if probe.Object == "instagram" {
		return normalizeInstagram(body)
	}
	return normalizeWhatsApp(body)
}

func normalizeInstagram(body []byte) ([]UnifiedMessagePayload, error) {
	var wh instagramWebhook
	if err := json.Unmarshal(body, &wh); err != nil {
		return nil, fmt.Errorf("ingest: instagram: %w", err)
	}

	var out []UnifiedMessagePayload
	for _, entry := range wh.Entry {
		for _, ev := range entry.Messaging {
			// Eventos de sistema e ecos da própria conta não viram lead.
			if ev.Message == nil || ev.Message.IsEcho {
				continue
			}
			externalID := ev.Message.MID
			if externalID == "" {
				// Duas mensagens sem mid na mesma entrega não podem colidir,
				// senão a segunda cai no filtro de duplicatas.
				externalID = "ig_" + uuid.New().String()
			}
			out = append(out, UnifiedMessagePayload{
				Platform:    model.PlatformInstagram,
				Timestamp:   time.UnixMilli(ev.Timestamp),
				ExternalID:  externalID,
				SenderID:    ev.Sender.ID,
				RecipientID: ev.Recipient.ID,
				Text:        ev.Message.Text,
				Entrypoint:  "instagram_dm",
			})
		}
	}
	return out, nil
}

func normalizeWhatsApp(body []byte) ([]UnifiedMessagePayload, error) {
	var wh whatsappWebhook
	if err := json.Unmarshal(body, &wh); err != nil {
		return nil, fmt.Errorf("ingest: whatsapp: %w", err)
	}

	var out []UnifiedMessagePayload
	for _, entry := range wh.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			businessID := change.Value.Metadata.PhoneNumberID
			for _, msg := range change.Value.Messages {
				// Cloud API manda o timestamp em segundos, como string.
				secs, err := strconv.ParseInt(msg.Timestamp, 10, 64)
				if err != nil {
					secs = time.Now().Unix()
				}

				text := ""
				if msg.Type == "text" && msg.Text != nil {
					text = msg.Text.Body
				} else if msg.Type != "text" {
					// Mídia vira placeholder; o conteúdo em si não entra
					// neste pipeline.
					text = "[" + strings.ToUpper(msg.Type) + "]"
				}

				out = append(out, UnifiedMessagePayload{
					Platform:    model.PlatformWhatsApp,
					Timestamp:   time.UnixMilli(secs * 1000),
					ExternalID:  msg.ID,
					SenderID:    msg.From,
					RecipientID: businessID,
					Text:        text,
					Entrypoint:  "whatsapp_cloud",
				})
			}
		}
	}
	return out, nil
}
