package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
)

// ErrEmptyMessage is returned for blank agent messages
var ErrEmptyMessage = errors.New("agent: message is empty")

// MessageAppender writes to the message log
type MessageAppender interface {
	AppendMessage(ctx context.Context, message *models.Message) error
}

// Channel lets a human operator write into a session. It never goes through
// reply resolution.
type Channel struct {
	appender MessageAppender
	onLocal  func(models.Message)
}

// NewChannel creates an agent channel. onLocal, when set, receives each
// message before the store write is attempted.
func NewChannel(appender MessageAppender, onLocal func(models.Message)) *Channel {
	return &Channel{appender: appender, onLocal: onLocal}
}

// SendAsAgent appends an agent-tagged message. The local copy is kept even
// when the write fails; the error is returned to the caller.
func (c *Channel) SendAsAgent(ctx context.Context, sessionID uuid.UUID, text string) (models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return models.Message{}, ErrEmptyMessage
	}

	msg := models.NewMessage(sessionID, models.SenderAgent, text, false)
	if c.onLocal != nil {
		c.onLocal(msg)
	}

	if err := c.appender.AppendMessage(ctx, &msg); err != nil {
		log.Error().Err(err).Str("session_id", sessionID.String()).Msg("❌ failed to store agent message")
		return msg, fmt.Errorf("failed to send agent message: %w", err)
	}

	log.Info().Str("session_id", sessionID.String()).Msg("🧑‍💼 agent message sent")
	return msg, nil
}
