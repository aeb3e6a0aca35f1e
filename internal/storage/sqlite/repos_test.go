package sqlite

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zapimob/zapimob/internal/storage/model"
)

// newTestDB abre um banco descartável e aplica o schema real, para que
// repositórios e migrations sejam exercitados juntos.
func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile("../../../db/migrations/sqlite/0001_init.up.sql")
	require.NoError(t, err)

	for _, stmt := range strings.Split(string(schema), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		_, err := db.Conn.ExecContext(context.Background(), stmt)
		require.NoError(t, err, "statement: %s", stmt)
	}
	return db
}

func upsertTestChannel(t *testing.T, db *DB) model.Channel {
	t.Helper()

	ch, err := NewChannelRepository(db).Upsert(context.Background(), model.Channel{
		Platform:   model.PlatformWhatsApp,
		ExternalID: "1098765432109876",
		Name:       "WhatsApp principal",
		Active:     true,
	})
	require.NoError(t, err)
	return ch
}

func TestChannelRepo_UpsertKeepsOriginalID(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewChannelRepository(db)

	first, err := repo.Upsert(context.Background(), model.Channel{
		Platform:   model.PlatformWhatsApp,
		ExternalID: "1098765432109876",
		Active:     true,
	})
	require.NoError(t, err)

	second, err := repo.Upsert(context.Background(), model.Channel{
		Platform:   model.PlatformWhatsApp,
		ExternalID: "1098765432109876",
		Active:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestConversationRepo_CreateWithPlainSenderContact(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ch := upsertTestChannel(t, db)
	repo := NewConversationRepository(db)

	// contact_id guarda o id externo do remetente (telefone ou IGSID),
	// que em geral não corresponde a nenhum lead cadastrado.
	created, err := repo.Create(context.Background(), model.Conversation{
		ChannelID:     ch.ID,
		ContactID:     "971501234567",
		Status:        model.ConversationActive,
		LastMessageAt: time.Now(),
	})
	require.NoError(t, err)

	found, err := repo.FindActiveByChannel(context.Background(), ch.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, "971501234567", found.ContactID)
}

func TestConversationRepo_SingleActivePerChannel(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ch := upsertTestChannel(t, db)
	repo := NewConversationRepository(db)

	_, err := repo.Create(context.Background(), model.Conversation{
		ChannelID: ch.ID,
		ContactID: "5511999998888",
	})
	require.NoError(t, err)

	_, err = repo.Create(context.Background(), model.Conversation{
		ChannelID: ch.ID,
		ContactID: "5511999998888",
	})
	assert.ErrorIs(t, err, model.ErrDuplicate)
}

func TestConversationRepo_TouchNeverRewinds(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ch := upsertTestChannel(t, db)
	repo := NewConversationRepository(db)

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	conv, err := repo.Create(context.Background(), model.Conversation{
		ChannelID:     ch.ID,
		ContactID:     "5511999998888",
		LastMessageAt: base,
	})
	require.NoError(t, err)

	// Redelivery atrasada não retrocede o campo.
	require.NoError(t, repo.TouchLastMessage(context.Background(), conv.ID, base.Add(-time.Hour)))
	got, err := repo.GetByID(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.Equal(t, base, got.LastMessageAt.UTC())

	require.NoError(t, repo.TouchLastMessage(context.Background(), conv.ID, base.Add(time.Hour)))
	got, err = repo.GetByID(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.Equal(t, base.Add(time.Hour), got.LastMessageAt.UTC())

	assert.ErrorIs(t, repo.TouchLastMessage(context.Background(), "inexistente", base), model.ErrNotFound)
}

func TestMessageRepo_DuplicateExternalID(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ch := upsertTestChannel(t, db)
	conv, err := NewConversationRepository(db).Create(context.Background(), model.Conversation{
		ChannelID: ch.ID,
		ContactID: "5511999998888",
	})
	require.NoError(t, err)

	repo := NewMessageRepository(db)
	_, err = repo.Create(context.Background(), model.Message{
		ConversationID: conv.ID,
		ExternalID:     "wamid.REPETIDA",
		Direction:      model.DirectionInbound,
		Source:         model.PlatformWhatsApp,
		Text:           "oi",
	})
	require.NoError(t, err)

	exists, err := repo.ExistsByExternalID(context.Background(), model.PlatformWhatsApp, "wamid.REPETIDA")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.Create(context.Background(), model.Message{
		ConversationID: conv.ID,
		ExternalID:     "wamid.REPETIDA",
		Direction:      model.DirectionInbound,
		Source:         model.PlatformWhatsApp,
		Text:           "oi de novo",
	})
	assert.ErrorIs(t, err, model.ErrDuplicate)

	msgs, err := repo.ListByConversation(context.Background(), conv.ID)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}
