package ingest

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zapimob/zapimob/internal/storage/model"
)

const instagramBody = `{
	"object": "instagram",
	"entry": [{
		"id": "17890000000000000",
		"time": 1700000000,
		"messaging": [{
			"sender": {"id": "987654321"},
			"recipient": {"id": "17890000000000000"},
			"timestamp": 1700000000000,
			"message": {"mid": "mid.abc123", "text": "Olá, vi o apartamento no anúncio"}
		}]
	}]
}`

const whatsappBody = `{
	"object": "whatsapp_business_account",
	"entry": [{
		"changes": [{
			"field": "messages",
			"value": {
				"metadata": {"phone_number_id": "1098765432109876"},
				"messages": [{
					"id": "wamid.XYZ",
					"from": "5511999998888",
					"timestamp": "1700000000",
					"type": "text",
					"text": {"body": "Quero agendar uma visita"}
				}]
			}
		}]
	}]
}`

func TestNormalize_Instagram(t *testing.T) {
	t.Parallel()

	payloads, err := Normalize([]byte(instagramBody))
	require.NoError(t, err)
	require.Len(t, payloads, 1)

	p := payloads[0]
	assert.Equal(t, model.PlatformInstagram, p.Platform)
	assert.Equal(t, "mid.abc123", p.ExternalID)
	assert.Equal(t, "987654321", p.SenderID)
	assert.Equal(t, "17890000000000000", p.RecipientID)
	assert.Equal(t, "Olá, vi o apartamento no anúncio", p.Text)
	assert.Equal(t, "instagram_dm", p.Entrypoint)
	assert.Equal(t, time.UnixMilli(1700000000000), p.Timestamp)
}

func TestNormalize_InstagramMissingMIDsStayDistinct(t *testing.T) {
	t.Parallel()

	// Duas mensagens sem mid na mesma entrega: ids sintéticos não podem
	// colidir, senão a segunda cai no filtro de duplicatas do pipeline.
	body := `{
		"object": "instagram",
		"entry": [{
			"id": "17890000000000000",
			"messaging": [
				{
					"sender": {"id": "987654321"},
					"recipient": {"id": "17890000000000000"},
					"timestamp": 1700000000000,
					"message": {"text": "primeira"}
				},
				{
					"sender": {"id": "987654321"},
					"recipient": {"id": "17890000000000000"},
					"timestamp": 1700000000000,
					"message": {"text": "segunda"}
				}
			]
		}]
	}`

	payloads, err := Normalize([]byte(body))
	require.NoError(t, err)
	require.Len(t, payloads, 2)

	assert.True(t, strings.HasPrefix(payloads[0].ExternalID, "ig_"))
	assert.True(t, strings.HasPrefix(payloads[1].ExternalID, "ig_"))
	assert.NotEqual(t, payloads[0].ExternalID, payloads[1].ExternalID)
}

func TestNormalize_InstagramSkipsEchoAndSystemEvents(t *testing.T) {
	t.Parallel()

	body := `{
		"object": "instagram",
		"entry": [{
			"messaging": [
				{"sender": {"id": "1"}, "recipient": {"id": "2"}, "timestamp": 1, "message": {"mid": "m1", "text": "eco", "is_echo": true}},
				{"sender": {"id": "1"}, "recipient": {"id": "2"}, "timestamp": 1},
				{"sender": {"id": "3"}, "recipient": {"id": "2"}, "timestamp": 2, "message": {"mid": "m2", "text": "real"}}
			]
		}]
	}`

	payloads, err := Normalize([]byte(body))
	require.NoError(t, err)
	require.Len(t, payloads, 1)
	assert.Equal(t, "m2", payloads[0].ExternalID)
}

func TestNormalize_WhatsApp(t *testing.T) {
	t.Parallel()

	payloads, err := Normalize([]byte(whatsappBody))
	require.NoError(t, err)
	require.Len(t, payloads, 1)

	p := payloads[0]
	assert.Equal(t, model.PlatformWhatsApp, p.Platform)
	assert.Equal(t, "wamid.XYZ", p.ExternalID)
	assert.Equal(t, "5511999998888", p.SenderID)
	assert.Equal(t, "1098765432109876", p.RecipientID)
	assert.Equal(t, "Quero agendar uma visita", p.Text)
	assert.Equal(t, "whatsapp_cloud", p.Entrypoint)
	assert.Equal(t, time.UnixMilli(1700000000*1000), p.Timestamp)
}

func TestNormalize_WhatsAppMediaPlaceholder(t *testing.T) {
	t.Parallel()

	body := `{
		"object": "whatsapp_business_account",
		"entry": [{
			"changes": [{
				"field": "messages",
				"value": {
					"metadata": {"phone_number_id": "10"},
					"messages": [{"id": "wamid.IMG", "from": "551188887777", "timestamp": "1700000100", "type": "image"}]
				}
			}]
		}]
	}`

	payloads, err := Normalize([]byte(body))
	require.NoError(t, err)
	require.Len(t, payloads, 1)
	assert.Equal(t, "[IMAGE]", payloads[0].Text)
}

func TestNormalize_WhatsAppIgnoresStatusChanges(t *testing.T) {
	t.Parallel()

	body := `{
		"object": "whatsapp_business_account",
		"entry": [{
			"changes": [{"field": "statuses", "value": {"metadata": {"phone_number_id": "10"}}}]
		}]
	}`

	payloads, err := Normalize([]byte(body))
	require.NoError(t, err)
	assert.Empty(t, payloads)
}

func TestNormalize_InvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := Normalize([]byte("not json"))
	assert.Error(t, err)
}
