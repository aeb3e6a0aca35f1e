package meta

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// InstagramClient envia mensagens diretas via Instagram Messaging API.
type InstagramClient struct {
	http *resty.Client
}

func NewInstagramClient(graphBaseURL string) *InstagramClient {
	return &InstagramClient{http: newClient(graphBaseURL)}
}

type igSendRequest struct {
	Recipient igRecipient `json:"recipient"`
	Message   igText      `json:"message"`
}

type igRecipient struct {
	ID string `json:"id"`
}

type igText struct {
	Text string `json:"text"`
}

type igSendResponse struct {
	RecipientID string `json:"recipient_id"`
	MessageID   string `json:"message_id"`
}

// SendMessage envia texto para um usuário do Instagram identificado pelo
// IGSID. Retorna o message_id reportado pela plataforma (pode ser vazio).
func (c *InstagramClient) SendMessage(ctx context.Context, recipientID, text, accessToken string) (string, error) {
	var (
		out    igSendResponse
		apiErr graphError
	)

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("access_token", accessToken).
		SetBody(igSendRequest{
			Recipient: igRecipient{ID: recipientID},
			Message:   igText{Text: text},
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/me/messages")
	if err != nil {
		return "", fmt.Errorf("meta: instagram send: %w", err)
	}

	if err := checkResponse(resp, &apiErr); err != nil {
		return "", err
	}
	return out.MessageID, nil
}
