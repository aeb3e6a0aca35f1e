package meta

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// WhatsAppClient envia mensagens via WhatsApp Cloud API.
type WhatsAppClient struct {
	http *resty.Client
}

func NewWhatsAppClient(graphBaseURL string) *WhatsAppClient {
	return &WhatsAppClient{http: newClient(graphBaseURL)}
}

type waSendRequest struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             waText `json:"text"`
}

type waText struct {
	Body string `json:"body"`
}

type waSendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// SendText envia texto a partir do número comercial (phone_number_id) para
// o destinatário. Retorna o id da mensagem reportado pela Cloud API.
func (c *WhatsAppClient) SendText(ctx context.Context, businessPhoneID, to, text, accessToken string) (string, error) {
	var (
		out    waSendResponse
		apiErr graphError
	)

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetBody(waSendRequest{
			MessagingProduct: "whatsapp",
			To:               to,
			Type:             "text",
			Text:             waText{Body: text},
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post(fmt.Sprintf("/%s/messages", businessPhoneID))
	if err != nil {
		return "", fmt.Errorf("meta: whatsapp send: %w", err)
	}

	if err := checkResponse(resp, &apiErr); err != nil {
		return "", err
	}

	if len(out.Messages) > 0 {
		return out.Messages[0].ID, nil
	}
	return "", nil
}
