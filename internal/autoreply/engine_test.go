package autoreply

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zapimob/zapimob/internal/ai"
	"github.com/zapimob/zapimob/internal/storage/model"
)

type fakeRules struct {
	rules []model.AutoReplyRule
	err   error
}

func (f fakeRules) ListActiveByPlatform(ctx context.Context, platform model.Platform) ([]model.AutoReplyRule, error) {
	if f.err != nil {
		return nil, f.err
	}
	// O repositório real devolve só regras ativas da plataforma (ou ALL),
	// já ordenadas por prioridade; o fake assume a lista pronta.
	return f.rules, nil
}

func (f fakeRules) Create(ctx context.Context, rule model.AutoReplyRule) (model.AutoReplyRule, error) {
	return rule, nil
}

func (f fakeRules) GetByID(ctx context.Context, id string) (model.AutoReplyRule, error) {
	return model.AutoReplyRule{}, model.ErrNotFound
}

func (f fakeRules) Update(ctx context.Context, rule model.AutoReplyRule) (model.AutoReplyRule, error) {
	return rule, nil
}

func (f fakeRules) Delete(ctx context.Context, id string) error { return nil }

func (f fakeRules) List(ctx context.Context) ([]model.AutoReplyRule, error) { return f.rules, nil }

type fakeAssistants struct {
	assistants map[string]model.Assistant
}

func (f fakeAssistants) GetByID(ctx context.Context, id string) (model.Assistant, error) {
	if a, ok := f.assistants[id]; ok {
		return a, nil
	}
	return model.Assistant{}, model.ErrNotFound
}

type fakeGenerator struct {
	text  string
	err   error
	calls int
}

func (f *fakeGenerator) Generate(ctx context.Context, messages []ai.ChatMessage, mode string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func TestEngine_FirstMatchingRuleWins(t *testing.T) {
	t.Parallel()

	rules := fakeRules{rules: []model.AutoReplyRule{
		{ID: "r1", Keyword: "visita", Response: "Vamos agendar!", Priority: 100},
		{ID: "r2", Keyword: Wildcard, Response: "Olá!", Priority: 0},
	}}
	e := NewEngine(rules, fakeAssistants{}, nil, zap.NewNop())

	reply, err := e.Resolve(context.Background(), model.PlatformWhatsApp, "Quero marcar uma VISITA amanhã")
	require.NoError(t, err)
	assert.Equal(t, "r1", reply.RuleID)
	assert.Equal(t, "Vamos agendar!", reply.Text)
	assert.False(t, reply.AIGenerated)
}

func TestEngine_WildcardCatchesAll(t *testing.T) {
	t.Parallel()

	rules := fakeRules{rules: []model.AutoReplyRule{
		{ID: "r1", Keyword: "visita", Response: "Vamos agendar!", Priority: 100},
		{ID: "r2", Keyword: Wildcard, Response: "Olá! Como posso ajudar?", Priority: 0},
	}}
	e := NewEngine(rules, fakeAssistants{}, nil, zap.NewNop())

	reply, err := e.Resolve(context.Background(), model.PlatformWhatsApp, "bom dia")
	require.NoError(t, err)
	assert.Equal(t, "r2", reply.RuleID)
}

func TestEngine_NoMatchReturnsEmpty(t *testing.T) {
	t.Parallel()

	rules := fakeRules{rules: []model.AutoReplyRule{
		{ID: "r1", Keyword: "visita", Response: "Vamos agendar!"},
	}}
	e := NewEngine(rules, fakeAssistants{}, nil, zap.NewNop())

	reply, err := e.Resolve(context.Background(), model.PlatformInstagram, "oi")
	require.NoError(t, err)
	assert.Empty(t, reply.Text)
}

func TestEngine_AIRuleGenerates(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{text: "Claro! Qual imóvel te interessou?"}
	rules := fakeRules{rules: []model.AutoReplyRule{
		{ID: "r-ai", Keyword: Wildcard, UseAI: true, AssistantID: "a1"},
	}}
	assistants := fakeAssistants{assistants: map[string]model.Assistant{
		"a1": {ID: "a1", Prompt: "Você é um corretor virtual.", Active: true},
	}}
	e := NewEngine(rules, assistants, gen, zap.NewNop())

	reply, err := e.Resolve(context.Background(), model.PlatformInstagram, "tem apartamento de 2 quartos?")
	require.NoError(t, err)
	assert.Equal(t, "Claro! Qual imóvel te interessou?", reply.Text)
	assert.True(t, reply.AIGenerated)
	assert.Equal(t, "r-ai", reply.RuleID)
	assert.Equal(t, 1, gen.calls)
}

func TestEngine_AIFailureDegradesWithoutFallthrough(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{err: errors.New("todos os provedores fora do ar")}
	rules := fakeRules{rules: []model.AutoReplyRule{
		{ID: "r-ai", Keyword: "apartamento", UseAI: true, AssistantID: "a1", Priority: 100},
		{ID: "r-static", Keyword: Wildcard, Response: "resposta genérica", Priority: 0},
	}}
	assistants := fakeAssistants{assistants: map[string]model.Assistant{
		"a1": {ID: "a1", Prompt: "prompt", Active: true},
	}}
	e := NewEngine(rules, assistants, gen, zap.NewNop())

	// A regra de maior prioridade casou; a falha da IA não pode cair na
	// regra coringa de baixo.
	reply, err := e.Resolve(context.Background(), model.PlatformWhatsApp, "tem apartamento?")
	require.NoError(t, err)
	assert.Empty(t, reply.Text)
}

func TestEngine_InactiveAssistantProducesNothing(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{text: "não deveria ser chamado"}
	rules := fakeRules{rules: []model.AutoReplyRule{
		{ID: "r-ai", Keyword: Wildcard, UseAI: true, AssistantID: "a1"},
	}}
	assistants := fakeAssistants{assistants: map[string]model.Assistant{
		"a1": {ID: "a1", Prompt: "prompt", Active: false},
	}}
	e := NewEngine(rules, assistants, gen, zap.NewNop())

	reply, err := e.Resolve(context.Background(), model.PlatformWhatsApp, "oi")
	require.NoError(t, err)
	assert.Empty(t, reply.Text)
	assert.Zero(t, gen.calls)
}

func TestMatches(t *testing.T) {
	t.Parallel()

	assert.True(t, Matches(Wildcard, "qualquer coisa"))
	assert.True(t, Matches("Visita", "quero uma VISITA"))
	assert.True(t, Matches("horário", "qual o horário de atendimento?"))
	assert.False(t, Matches("visita", "bom dia"))
	assert.False(t, Matches("", "bom dia"))
}
