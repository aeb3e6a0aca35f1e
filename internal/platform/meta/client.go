// Package meta implementa os clientes de envio da Graph API usados pelo
// despachante de auto-respostas: Instagram Messaging e WhatsApp Cloud.
// Retry interno só para 5xx transitório; 4xx sobe direto para o chamador.
package meta

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

func newClient(baseURL string) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		})
}

type graphError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func checkResponse(resp *resty.Response, apiErr *graphError) error {
	if resp.StatusCode() >= 200 && resp.StatusCode() < 300 {
		return nil
	}
	if apiErr != nil && apiErr.Error.Message != "" {
		return fmt.Errorf("meta: status %d: %s (code %d)", resp.StatusCode(), apiErr.Error.Message, apiErr.Error.Code)
	}
	return fmt.Errorf("meta: status %d", resp.StatusCode())
}
