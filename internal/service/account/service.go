package account

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/zapimob/zapimob/internal/pkg/crypto"
	"github.com/zapimob/zapimob/internal/storage"
	"github.com/zapimob/zapimob/internal/storage/model"
)

var ErrInvalidPlatform = errors.New("platform deve ser INSTAGRAM ou WHATSAPP")

// prefixo que marca tokens cifrados no banco; sem ele o valor é tratado
// como texto puro (seeds e instalações sem chave configurada).
const encPrefix = "enc:"

// Service gerencia as contas comerciais da Meta. Quando uma chave é
// configurada, o access token é cifrado com AES-GCM antes de persistir.
type Service struct {
	repo storage.BusinessAccountRepository
	key  string
}

func NewService(repo storage.BusinessAccountRepository, encKey string) *Service {
	return &Service{repo: repo, key: encKey}
}

type Input struct {
	Platform    string `json:"platform"`
	ExternalID  string `json:"externalId"`
	Name        string `json:"name"`
	AccessToken string `json:"accessToken"`
	Active      bool   `json:"active"`
}

func (s *Service) Upsert(ctx context.Context, in Input) (model.BusinessAccount, error) {
	platform := model.Platform(strings.ToUpper(strings.TrimSpace(in.Platform)))
	if platform != model.PlatformInstagram && platform != model.PlatformWhatsApp {
		return model.BusinessAccount{}, ErrInvalidPlatform
	}

	token, err := s.seal(in.AccessToken)
	if err != nil {
		return model.BusinessAccount{}, err
	}

	acct, err := s.repo.Upsert(ctx, model.BusinessAccount{
		Platform:    platform,
		ExternalID:  strings.TrimSpace(in.ExternalID),
		Name:        in.Name,
		AccessToken: token,
		Active:      in.Active,
	})
	if err != nil {
		return model.BusinessAccount{}, err
	}
	acct.AccessToken = ""
	return acct, nil
}

func (s *Service) List(ctx context.Context) ([]model.BusinessAccount, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i].AccessToken = ""
	}
	return list, nil
}

// GetByPlatformExternalID devolve a conta com o token já decifrado,
// pronta para o worker de envio.
func (s *Service) GetByPlatformExternalID(ctx context.Context, platform model.Platform, externalID string) (model.BusinessAccount, error) {
	acct, err := s.repo.GetByPlatformExternalID(ctx, platform, externalID)
	if err != nil {
		return model.BusinessAccount{}, err
	}
	acct.AccessToken, err = s.open(acct.AccessToken)
	if err != nil {
		return model.BusinessAccount{}, err
	}
	return acct, nil
}

func (s *Service) seal(token string) (string, error) {
	if s.key == "" || token == "" {
		return token, nil
	}
	out, err := crypto.Encrypt([]byte(token), s.key)
	if err != nil {
		return "", err
	}
	return encPrefix + base64.StdEncoding.EncodeToString(out), nil
}

func (s *Service) open(stored string) (string, error) {
	if !strings.HasPrefix(stored, encPrefix) {
		return stored, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(stored, encPrefix))
	if err != nil {
		return "", err
	}
	plain, err := crypto.Decrypt(raw, s.key)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
