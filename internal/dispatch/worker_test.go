package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zapimob/zapimob/internal/ingest"
	"github.com/zapimob/zapimob/internal/storage"
	"github.com/zapimob/zapimob/internal/storage/model"
)

type fakeAccounts struct {
	accounts map[string]model.BusinessAccount
}

func (f *fakeAccounts) GetByPlatformExternalID(ctx context.Context, platform model.Platform, externalID string) (model.BusinessAccount, error) {
	acct, ok := f.accounts[string(platform)+"|"+externalID]
	if !ok {
		return model.BusinessAccount{}, storage.ErrNotFound
	}
	return acct, nil
}

type fakeOutMessages struct {
	created []model.Message
}

func (f *fakeOutMessages) Create(ctx context.Context, msg model.Message) (model.Message, error) {
	f.created = append(f.created, msg)
	return msg, nil
}

func (f *fakeOutMessages) ExistsByExternalID(ctx context.Context, source model.Platform, externalID string) (bool, error) {
	return false, nil
}

func (f *fakeOutMessages) ListByConversation(ctx context.Context, conversationID string) ([]model.Message, error) {
	return nil, nil
}

type fakeOutWaMessages struct {
	created []model.WhatsappMessage
}

func (f *fakeOutWaMessages) Create(ctx context.Context, msg model.WhatsappMessage) (model.WhatsappMessage, error) {
	f.created = append(f.created, msg)
	return msg, nil
}

type fakeAudit struct {
	entries []model.AuditLog
}

func (f *fakeAudit) Create(ctx context.Context, entry model.AuditLog) (model.AuditLog, error) {
	f.entries = append(f.entries, entry)
	return entry, nil
}

type fakeInstagramSender struct {
	msgID string
	err   error
	calls int
	text  string
}

func (f *fakeInstagramSender) SendMessage(ctx context.Context, recipientID, text, accessToken string) (string, error) {
	f.calls++
	f.text = text
	return f.msgID, f.err
}

type fakeWhatsAppSender struct {
	msgID string
	err   error
	calls int
	token string
}

func (f *fakeWhatsAppSender) SendText(ctx context.Context, businessPhoneID, to, text, accessToken string) (string, error) {
	f.calls++
	f.token = accessToken
	return f.msgID, f.err
}

type workerFixture struct {
	worker    *Worker
	accounts  *fakeAccounts
	messages  *fakeOutMessages
	wa        *fakeOutWaMessages
	audit     *fakeAudit
	instagram *fakeInstagramSender
	whatsapp  *fakeWhatsAppSender
}

func newWorkerFixture() *workerFixture {
	f := &workerFixture{
		accounts:  &fakeAccounts{accounts: map[string]model.BusinessAccount{}},
		messages:  &fakeOutMessages{},
		wa:        &fakeOutWaMessages{},
		audit:     &fakeAudit{},
		instagram: &fakeInstagramSender{msgID: "ig-msg-1"},
		whatsapp:  &fakeWhatsAppSender{msgID: "wamid.out.1"},
	}
	f.worker = NewWorker(WorkerOptions{
		Accounts:   f.accounts,
		Messages:   f.messages,
		WaMessages: f.wa,
		Audit:      f.audit,
		Instagram:  f.instagram,
		WhatsApp:   f.whatsapp,
		Logger:     zap.NewNop(),
	})
	return f
}

func waJob() ingest.ReplyJob {
	return ingest.ReplyJob{
		Platform:       model.PlatformWhatsApp,
		RecipientID:    "5511999998888",
		BusinessID:     "1098765432109876",
		Text:           "Olá! Como posso ajudar?",
		ConversationID: "conv-1",
		RuleID:         "rule-1",
	}
}

func TestWorker_SendWhatsAppRecordsEverything(t *testing.T) {
	t.Parallel()

	f := newWorkerFixture()
	f.accounts.accounts["WHATSAPP|1098765432109876"] = model.BusinessAccount{
		ID:          "acct-1",
		AccessToken: "token-decifrado",
	}

	err := f.worker.Send(context.Background(), waJob())
	require.NoError(t, err)

	assert.Equal(t, 1, f.whatsapp.calls)
	assert.Equal(t, "token-decifrado", f.whatsapp.token)
	assert.Equal(t, 0, f.instagram.calls)

	require.Len(t, f.messages.created, 1)
	out := f.messages.created[0]
	assert.Equal(t, "conv-1", out.ConversationID)
	assert.Equal(t, model.DirectionOutbound, out.Direction)
	assert.Equal(t, "wamid.out.1", out.ExternalID)
	assert.Equal(t, model.PlatformWhatsApp, out.Source)

	require.Len(t, f.wa.created, 1)
	mirror := f.wa.created[0]
	assert.Equal(t, "acct-1", mirror.AccountID)
	assert.Equal(t, "1098765432109876", mirror.FromNumber)
	assert.Equal(t, "5511999998888", mirror.ToNumber)
	assert.Equal(t, "wamid.out.1", mirror.ExternalID)

	require.Len(t, f.audit.entries, 1)
	assert.Equal(t, "AUTO_REPLY_SENT", f.audit.entries[0].Action)
	assert.Equal(t, "conv-1", f.audit.entries[0].EntityID)
	assert.Contains(t, f.audit.entries[0].Details, "rule-1")
}

func TestWorker_SendInstagramSkipsLegacyMirror(t *testing.T) {
	t.Parallel()

	f := newWorkerFixture()
	f.accounts.accounts["INSTAGRAM|17890000000000000"] = model.BusinessAccount{
		ID:          "acct-ig",
		AccessToken: "token-ig",
	}

	job := ingest.ReplyJob{
		Platform:       model.PlatformInstagram,
		RecipientID:    "ig-user-9",
		BusinessID:     "17890000000000000",
		Text:           "Oi!",
		ConversationID: "conv-2",
		AIGenerated:    true,
	}
	require.NoError(t, f.worker.Send(context.Background(), job))

	assert.Equal(t, 1, f.instagram.calls)
	assert.Equal(t, "Oi!", f.instagram.text)
	assert.Equal(t, 0, f.whatsapp.calls)

	require.Len(t, f.messages.created, 1)
	assert.True(t, f.messages.created[0].AIGenerated)
	assert.Empty(t, f.wa.created)
	assert.Len(t, f.audit.entries, 1)
}

func TestWorker_SendWithoutAccountIsNoop(t *testing.T) {
	t.Parallel()

	f := newWorkerFixture()

	err := f.worker.Send(context.Background(), waJob())
	require.NoError(t, err)

	assert.Equal(t, 0, f.whatsapp.calls)
	assert.Empty(t, f.messages.created)
	assert.Empty(t, f.audit.entries)
}

func TestWorker_SendErrorPropagates(t *testing.T) {
	t.Parallel()

	f := newWorkerFixture()
	f.accounts.accounts["WHATSAPP|1098765432109876"] = model.BusinessAccount{ID: "acct-1"}
	f.whatsapp.err = errors.New("graph api 500")

	err := f.worker.Send(context.Background(), waJob())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "graph api 500")
	assert.Empty(t, f.messages.created)
	assert.Empty(t, f.audit.entries)
}

func TestWorker_SendUnknownPlatform(t *testing.T) {
	t.Parallel()

	f := newWorkerFixture()
	f.accounts.accounts["TELEGRAM|x"] = model.BusinessAccount{ID: "acct-x"}

	err := f.worker.Send(context.Background(), ingest.ReplyJob{
		Platform:   model.Platform("TELEGRAM"),
		BusinessID: "x",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plataforma desconhecida")
}

func TestWorker_SendWithoutPlatformMsgIDGetsFallbackID(t *testing.T) {
	t.Parallel()

	f := newWorkerFixture()
	f.accounts.accounts["WHATSAPP|1098765432109876"] = model.BusinessAccount{ID: "acct-1"}
	f.whatsapp.msgID = ""

	require.NoError(t, f.worker.Send(context.Background(), waJob()))

	require.Len(t, f.messages.created, 1)
	assert.True(t, len(f.messages.created[0].ExternalID) > len("out_"))
	assert.Equal(t, "out_", f.messages.created[0].ExternalID[:4])
}
