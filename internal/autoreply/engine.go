package autoreply

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/zapimob/zapimob/internal/ai"
	"github.com/zapimob/zapimob/internal/storage"
	"github.com/zapimob/zapimob/internal/storage/model"
)

// Wildcard casa com qualquer mensagem e serve de catch-all de baixa
// prioridade.
const Wildcard = "*"

// Reply é o resultado do motor: texto vazio significa "sem resposta".
type Reply struct {
	Text        string
	AIGenerated bool
	RuleID      string
}

// Engine avalia as regras de auto-resposta da plataforma em ordem de
// prioridade decrescente; a primeira regra que produz texto não vazio
// vence.
type Engine struct {
	rules      storage.AutoReplyRuleRepository
	assistants storage.AssistantRepository
	generator  ai.Generator
	log        *zap.Logger
}

func NewEngine(rules storage.AutoReplyRuleRepository, assistants storage.AssistantRepository, generator ai.Generator, log *zap.Logger) *Engine {
	return &Engine{
		rules:      rules,
		assistants: assistants,
		generator:  generator,
		log:        log,
	}
}

func (e *Engine) Resolve(ctx context.Context, platform model.Platform, text string) (Reply, error) {
	rules, err := e.rules.ListActiveByPlatform(ctx, platform)
	if err != nil {
		return Reply{}, fmt.Errorf("autoreply: carregar regras: %w", err)
	}

	for _, rule := range rules {
		if !Matches(rule.Keyword, text) {
			continue
		}

		reply := e.resolveRule(ctx, rule, platform, text)
		if reply.Text == "" {
			// Regra casou mas não produziu texto (IA fora do ar, template
			// vazio): degrada para "sem resposta" em vez de cair na próxima
			// regra errada.
			return Reply{}, nil
		}
		return reply, nil
	}

	return Reply{}, nil
}

// Matches aplica a semântica de keyword das regras: coringa, ou contains
// case-insensitive.
func Matches(keyword, text string) bool {
	if keyword == Wildcard {
		return true
	}
	if keyword == "" {
		return false
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(keyword))
}

func (e *Engine) resolveRule(ctx context.Context, rule model.AutoReplyRule, platform model.Platform, text string) Reply {
	if rule.UseAI && rule.AssistantID != "" {
		if generated := e.generate(ctx, rule, platform, text); generated != "" {
			return Reply{Text: generated, AIGenerated: true, RuleID: rule.ID}
		}
		return Reply{}
	}

	if rule.Response != "" {
		return Reply{Text: rule.Response, RuleID: rule.ID}
	}
	return Reply{}
}

func (e *Engine) generate(ctx context.Context, rule model.AutoReplyRule, platform model.Platform, text string) string {
	if e.generator == nil {
		return ""
	}

	assistant, err := e.assistants.GetByID(ctx, rule.AssistantID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			e.log.Warn("autoreply: erro ao carregar assistente",
				zap.String("assistantId", rule.AssistantID), zap.Error(err))
		}
		return ""
	}
	if !assistant.Active {
		return ""
	}

	messages := []ai.ChatMessage{
		{Role: ai.RoleSystem, Content: assistant.Prompt},
		{Role: ai.RoleUser, Content: text},
	}

	reply, err := e.generator.Generate(ctx, messages, strings.ToLower(string(platform)))
	if err != nil {
		e.log.Warn("autoreply: geração de resposta por IA falhou",
			zap.String("ruleId", rule.ID),
			zap.String("assistantId", rule.AssistantID),
			zap.Error(err),
		)
		return ""
	}
	return strings.TrimSpace(reply)
}
