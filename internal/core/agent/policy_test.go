package agent

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
)

func logWithAgentAt(at time.Time) []models.Message {
	sid := uuid.New()
	user := models.NewMessage(sid, models.SenderUser, "hi", false)
	agent := models.NewMessage(sid, models.SenderAgent, "hello, I'm Sam", false)
	agent.CreatedAt = at
	return []models.Message{user, agent}
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyAlways, p)

	p, err = ParsePolicy(" Suppress_After_Agent ")
	require.NoError(t, err)
	assert.Equal(t, PolicySuppressAfterAgent, p)

	_, err = ParsePolicy("never")
	assert.Error(t, err)
}

func TestAlwaysPolicyIgnoresAgent(t *testing.T) {
	g := NewGate(PolicyAlways, 0)

	assert.True(t, g.AllowAutoReply(logWithAgentAt(time.Now())))
	assert.False(t, g.NeedsFreshLog())
}

func TestSuppressAfterAgent(t *testing.T) {
	g := NewGate(PolicySuppressAfterAgent, 0)

	assert.True(t, g.AllowAutoReply(nil))
	assert.False(t, g.AllowAutoReply(logWithAgentAt(time.Now().Add(-24*time.Hour))))
	assert.True(t, g.NeedsFreshLog())
}

func TestSuppressWhileAgentActive(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	g := NewGate(PolicySuppressWhileAgentActive, 5*time.Minute)
	g.now = func() time.Time { return now }

	assert.False(t, g.AllowAutoReply(logWithAgentAt(now.Add(-time.Minute))))
	assert.True(t, g.AllowAutoReply(logWithAgentAt(now.Add(-10*time.Minute))))
}
