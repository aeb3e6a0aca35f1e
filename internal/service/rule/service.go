package rule

import (
	"context"
	"errors"
	"strings"

	"github.com/zapimob/zapimob/internal/storage"
	"github.com/zapimob/zapimob/internal/storage/model"
)

var (
	ErrEmptyKeyword     = errors.New("keyword não pode ser vazia")
	ErrInvalidPlatform  = errors.New("platform deve ser INSTAGRAM, WHATSAPP ou ALL")
	ErrMissingResponse  = errors.New("regra sem IA exige response")
	ErrMissingAssistant = errors.New("regra com IA exige assistant_id")
)

type Service struct {
	rules      storage.AutoReplyRuleRepository
	assistants storage.AssistantRepository
}

func NewService(rules storage.AutoReplyRuleRepository, assistants storage.AssistantRepository) *Service {
	return &Service{rules: rules, assistants: assistants}
}

type Input struct {
	Platform    string `json:"platform"`
	Keyword     string `json:"keyword"`
	Response    string `json:"response"`
	UseAI       bool   `json:"useAi"`
	AssistantID string `json:"assistantId"`
	Active      bool   `json:"active"`
	Priority    int    `json:"priority"`
}

func (s *Service) Create(ctx context.Context, in Input) (model.AutoReplyRule, error) {
	rule, err := s.validate(ctx, in)
	if err != nil {
		return model.AutoReplyRule{}, err
	}
	return s.rules.Create(ctx, rule)
}

func (s *Service) Update(ctx context.Context, id string, in Input) (model.AutoReplyRule, error) {
	if _, err := s.rules.GetByID(ctx, id); err != nil {
		return model.AutoReplyRule{}, err
	}
	rule, err := s.validate(ctx, in)
	if err != nil {
		return model.AutoReplyRule{}, err
	}
	rule.ID = id
	return s.rules.Update(ctx, rule)
}

func (s *Service) Get(ctx context.Context, id string) (model.AutoReplyRule, error) {
	return s.rules.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.rules.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]model.AutoReplyRule, error) {
	return s.rules.List(ctx)
}

func (s *Service) validate(ctx context.Context, in Input) (model.AutoReplyRule, error) {
	platform := model.Platform(strings.ToUpper(strings.TrimSpace(in.Platform)))
	switch platform {
	case model.PlatformInstagram, model.PlatformWhatsApp, model.PlatformAll:
	default:
		return model.AutoReplyRule{}, ErrInvalidPlatform
	}

	keyword := strings.TrimSpace(in.Keyword)
	if keyword == "" {
		return model.AutoReplyRule{}, ErrEmptyKeyword
	}

	if in.UseAI {
		if in.AssistantID == "" {
			return model.AutoReplyRule{}, ErrMissingAssistant
		}
		if _, err := s.assistants.GetByID(ctx, in.AssistantID); err != nil {
			return model.AutoReplyRule{}, err
		}
	} else if strings.TrimSpace(in.Response) == "" {
		return model.AutoReplyRule{}, ErrMissingResponse
	}

	return model.AutoReplyRule{
		Platform:    platform,
		Keyword:     keyword,
		Response:    in.Response,
		UseAI:       in.UseAI,
		AssistantID: in.AssistantID,
		Active:      in.Active,
		Priority:    in.Priority,
	}, nil
}
