package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
)

const seedYAML = `
businesses:
  - business_id: 6f1c2d3e-4b5a-4c7d-8e9f-0a1b2c3d4e5f
    settings:
      business_name: Acme
      welcome_message: Hi, welcome to Acme!
      fallback_message: Someone will get back to you.
    auto_replies:
      - keywords: [hours, open]
        response: We are open 9 to 5
      - keywords: ["^refund"]
        matching_type: regex_match
        response: Refunds take 3 days
    advanced_replies:
      - keywords: [catalog]
        response_type: url
        response: https://acme.example.com/catalog
        button_text: See catalog
`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadSeed(t *testing.T) {
	ctx := context.Background()
	business := uuid.MustParse("6f1c2d3e-4b5a-4c7d-8e9f-0a1b2c3d4e5f")
	m := NewMemory()

	n, err := m.LoadSeed(writeSeed(t, seedYAML))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	settings, err := m.LatestSettings(ctx, business)
	require.NoError(t, err)
	assert.Equal(t, "Acme", settings.BusinessName)
	assert.Equal(t, "Someone will get back to you.", settings.FallbackMessage)

	auto, err := m.ListAutoReplies(ctx, business)
	require.NoError(t, err)
	require.Len(t, auto, 2)
	assert.Equal(t, models.MatchWord, auto[0].MatchingType)
	assert.Equal(t, "We are open 9 to 5", auto[0].Response)
	assert.Equal(t, models.MatchRegex, auto[1].MatchingType)

	advanced, err := m.ListAdvancedReplies(ctx, business)
	require.NoError(t, err)
	require.Len(t, advanced, 1)
	assert.Equal(t, models.ResponseURL, advanced[0].ResponseType)
	require.NotNil(t, advanced[0].ButtonText)
	assert.Equal(t, "See catalog", *advanced[0].ButtonText)
}

func TestLoadSeedRejectsInvalidFileWithoutWriting(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.LoadSeed(writeSeed(t, `
businesses:
  - business_id: 6f1c2d3e-4b5a-4c7d-8e9f-0a1b2c3d4e5f
    settings: {business_name: Acme}
  - business_id: 7a1c2d3e-4b5a-4c7d-8e9f-0a1b2c3d4e5f
    auto_replies:
      - keywords: [hi]
        matching_type: sounds_like
        response: hello
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "businesses[1].auto_replies[0]")

	_, err = m.LatestSettings(ctx, uuid.MustParse("6f1c2d3e-4b5a-4c7d-8e9f-0a1b2c3d4e5f"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.LoadSeed(writeSeed(t, "businesses:\n  - business_id: not-a-uuid\n"))
	assert.Error(t, err)

	_, err = m.LoadSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
