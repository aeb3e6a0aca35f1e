package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OpenAICompatProvider fala com qualquer API compatível com o endpoint
// /chat/completions da OpenAI (OpenAI, Groq, DeepSeek, vLLM...).
type OpenAICompatProvider struct {
	name    string
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

func NewOpenAICompatProvider(name, baseURL, apiKey, model string) *OpenAICompatProvider {
	baseURL = strings.TrimRight(baseURL, "/")
	return &OpenAICompatProvider{
		name:    name,
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		// O timeout efetivo vem do contexto da cadeia; este é só um teto.
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *OpenAICompatProvider) Name() string { return p.name }

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (p *OpenAICompatProvider) Generate(ctx context.Context, messages []ChatMessage, mode string) (string, error) {
	payload, err := json.Marshal(chatCompletionRequest{
		Model:    p.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("ai: %s: marshal: %w", p.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("ai: %s: new request: %w", p.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai: %s: request: %w", p.name, err)
	}
	defer resp.Body.Close()

	var out chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ai: %s: decode: %w", p.name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := ""
		if out.Error != nil {
			msg = out.Error.Message
		}
		return "", fmt.Errorf("ai: %s: status %d: %s", p.name, resp.StatusCode, msg)
	}

	if len(out.Choices) == 0 {
		return "", fmt.Errorf("ai: %s: resposta sem choices", p.name)
	}
	return out.Choices[0].Message.Content, nil
}
