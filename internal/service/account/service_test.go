package account

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapimob/zapimob/internal/storage"
	"github.com/zapimob/zapimob/internal/storage/model"
)

type fakeAccountRepo struct {
	byKey map[string]model.BusinessAccount
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{byKey: map[string]model.BusinessAccount{}}
}

func key(platform model.Platform, externalID string) string {
	return string(platform) + "|" + externalID
}

func (f *fakeAccountRepo) Upsert(ctx context.Context, acct model.BusinessAccount) (model.BusinessAccount, error) {
	k := key(acct.Platform, acct.ExternalID)
	if existing, ok := f.byKey[k]; ok {
		acct.ID = existing.ID
	} else {
		acct.ID = "acct-" + acct.ExternalID
	}
	f.byKey[k] = acct
	return acct, nil
}

func (f *fakeAccountRepo) GetByPlatformExternalID(ctx context.Context, platform model.Platform, externalID string) (model.BusinessAccount, error) {
	acct, ok := f.byKey[key(platform, externalID)]
	if !ok {
		return model.BusinessAccount{}, storage.ErrNotFound
	}
	return acct, nil
}

func (f *fakeAccountRepo) List(ctx context.Context) ([]model.BusinessAccount, error) {
	out := make([]model.BusinessAccount, 0, len(f.byKey))
	for _, acct := range f.byKey {
		out = append(out, acct)
	}
	return out, nil
}

const testEncKey = "chave-de-32-bytes-para-aes-256!!"

func TestService_UpsertEncryptsTokenAtRest(t *testing.T) {
	t.Parallel()

	repo := newFakeAccountRepo()
	svc := NewService(repo, testEncKey)

	acct, err := svc.Upsert(context.Background(), Input{
		Platform:    "whatsapp",
		ExternalID:  "1098765432109876",
		Name:        "Imobiliária Central",
		AccessToken: "EAAB-token-secreto",
		Active:      true,
	})
	require.NoError(t, err)
	assert.Empty(t, acct.AccessToken)
	assert.Equal(t, model.PlatformWhatsApp, acct.Platform)

	stored := repo.byKey["WHATSAPP|1098765432109876"]
	assert.True(t, strings.HasPrefix(stored.AccessToken, "enc:"))
	assert.NotContains(t, stored.AccessToken, "EAAB-token-secreto")

	got, err := svc.GetByPlatformExternalID(context.Background(), model.PlatformWhatsApp, "1098765432109876")
	require.NoError(t, err)
	assert.Equal(t, "EAAB-token-secreto", got.AccessToken)
}

func TestService_WithoutKeyStoresPlaintext(t *testing.T) {
	t.Parallel()

	repo := newFakeAccountRepo()
	svc := NewService(repo, "")

	_, err := svc.Upsert(context.Background(), Input{
		Platform:    "INSTAGRAM",
		ExternalID:  "17890000000000000",
		AccessToken: "token-plano",
		Active:      true,
	})
	require.NoError(t, err)

	stored := repo.byKey["INSTAGRAM|17890000000000000"]
	assert.Equal(t, "token-plano", stored.AccessToken)

	got, err := svc.GetByPlatformExternalID(context.Background(), model.PlatformInstagram, "17890000000000000")
	require.NoError(t, err)
	assert.Equal(t, "token-plano", got.AccessToken)
}

func TestService_OpenPassesLegacyPlaintextThrough(t *testing.T) {
	t.Parallel()

	// Conta gravada antes da cifra ser habilitada continua legível.
	repo := newFakeAccountRepo()
	repo.byKey["WHATSAPP|10"] = model.BusinessAccount{
		ID:          "acct-10",
		Platform:    model.PlatformWhatsApp,
		ExternalID:  "10",
		AccessToken: "token-antigo",
	}
	svc := NewService(repo, testEncKey)

	got, err := svc.GetByPlatformExternalID(context.Background(), model.PlatformWhatsApp, "10")
	require.NoError(t, err)
	assert.Equal(t, "token-antigo", got.AccessToken)
}

func TestService_UpsertRejectsInvalidPlatform(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeAccountRepo(), "")

	_, err := svc.Upsert(context.Background(), Input{Platform: "ALL", ExternalID: "x"})
	assert.ErrorIs(t, err, ErrInvalidPlatform)

	_, err = svc.Upsert(context.Background(), Input{Platform: "", ExternalID: "x"})
	assert.ErrorIs(t, err, ErrInvalidPlatform)
}

func TestService_ListMasksTokens(t *testing.T) {
	t.Parallel()

	repo := newFakeAccountRepo()
	repo.byKey["WHATSAPP|10"] = model.BusinessAccount{ID: "a", AccessToken: "segredo"}
	svc := NewService(repo, "")

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].AccessToken)
}
