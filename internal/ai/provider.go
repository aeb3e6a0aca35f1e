package ai

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator é a abstração de geração de texto consumida pelo motor de
// auto-resposta. mode identifica o canal (ex.: "whatsapp", "instagram")
// para fins de log e roteamento futuro.
type Generator interface {
	Generate(ctx context.Context, messages []ChatMessage, mode string) (string, error)
}

// Provider é um backend individual da cadeia de fallback.
type Provider interface {
	Name() string
	Generate(ctx context.Context, messages []ChatMessage, mode string) (string, error)
}

var ErrAllProvidersFailed = errors.New("ai: todos os provedores falharam")

// Chain tenta cada provedor em ordem, com timeout próprio por tentativa,
// até o primeiro que devolver texto não vazio.
type Chain struct {
	providers []Provider
	timeout   time.Duration
	log       *zap.Logger
}

func NewChain(log *zap.Logger, timeout time.Duration, providers ...Provider) *Chain {
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Chain{providers: providers, timeout: timeout, log: log}
}

func (c *Chain) Generate(ctx context.Context, messages []ChatMessage, mode string) (string, error) {
	if len(c.providers) == 0 {
		return "", ErrAllProvidersFailed
	}

	var lastErr error = ErrAllProvidersFailed
	for _, provider := range c.providers {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		text, err := provider.Generate(attemptCtx, messages, mode)
		cancel()

		if err == nil && text != "" {
			return text, nil
		}
		if err != nil {
			lastErr = err
		}
		c.log.Warn("ai: provedor falhou, tentando próximo",
			zap.String("provider", provider.Name()),
			zap.String("mode", mode),
			zap.Error(err),
		)

		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", lastErr
}
