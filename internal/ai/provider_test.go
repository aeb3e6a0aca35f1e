package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubProvider struct {
	name  string
	text  string
	err   error
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Generate(ctx context.Context, messages []ChatMessage, mode string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func TestChain_FirstProviderWins(t *testing.T) {
	t.Parallel()

	first := &stubProvider{name: "primary", text: "resposta"}
	second := &stubProvider{name: "secondary", text: "não usada"}
	chain := NewChain(zap.NewNop(), time.Second, first, second)

	text, err := chain.Generate(context.Background(), []ChatMessage{{Role: RoleUser, Content: "oi"}}, "whatsapp")
	require.NoError(t, err)
	assert.Equal(t, "resposta", text)
	assert.Equal(t, 1, first.calls)
	assert.Zero(t, second.calls)
}

func TestChain_FallsBackOnErrorAndEmptyText(t *testing.T) {
	t.Parallel()

	first := &stubProvider{name: "primary", err: errors.New("rate limit")}
	second := &stubProvider{name: "secondary", text: ""}
	third := &stubProvider{name: "tertiary", text: "salvou"}
	chain := NewChain(zap.NewNop(), time.Second, first, second, third)

	text, err := chain.Generate(context.Background(), nil, "instagram")
	require.NoError(t, err)
	assert.Equal(t, "salvou", text)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
	assert.Equal(t, 1, third.calls)
}

func TestChain_AllFail(t *testing.T) {
	t.Parallel()

	first := &stubProvider{name: "primary", err: errors.New("fora do ar")}
	second := &stubProvider{name: "secondary", err: errors.New("também fora")}
	chain := NewChain(zap.NewNop(), time.Second, first, second)

	_, err := chain.Generate(context.Background(), nil, "whatsapp")
	assert.EqualError(t, err, "também fora")
}

func TestChain_NoProviders(t *testing.T) {
	t.Parallel()

	chain := NewChain(zap.NewNop(), time.Second)
	_, err := chain.Generate(context.Background(), nil, "whatsapp")
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
}

func TestChain_ParentContextCancelStops(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	first := &stubProvider{name: "primary", err: errors.New("falhou")}
	second := &stubProvider{name: "secondary", text: "nunca chega aqui"}
	chain := NewChain(zap.NewNop(), time.Second, first, second)

	cancel()
	_, err := chain.Generate(ctx, nil, "whatsapp")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, second.calls)
}

func TestOpenAICompatProvider_Generate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, RoleSystem, req.Messages[0].Role)

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "Olá! Posso ajudar?"}},
			},
		})
	}))
	defer srv.Close()

	p := NewOpenAICompatProvider("primary", srv.URL, "test-key", "test-model")
	text, err := p.Generate(context.Background(), []ChatMessage{
		{Role: RoleSystem, Content: "prompt"},
		{Role: RoleUser, Content: "oi"},
	}, "whatsapp")
	require.NoError(t, err)
	assert.Equal(t, "Olá! Posso ajudar?", text)
}

func TestOpenAICompatProvider_ErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "rate limit exceeded"},
		})
	}))
	defer srv.Close()

	p := NewOpenAICompatProvider("primary", srv.URL, "k", "m")
	_, err := p.Generate(context.Background(), nil, "whatsapp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limit exceeded")
}

func TestOpenAICompatProvider_EmptyChoices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	p := NewOpenAICompatProvider("primary", srv.URL, "k", "m")
	_, err := p.Generate(context.Background(), nil, "whatsapp")
	assert.Error(t, err)
}
