package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
)

var (
	ErrNotFound        = errors.New("store: not found")
	ErrVersionConflict = errors.New("store: version conflict")
	ErrSessionClosed   = errors.New("store: session is closed")
)

// SettingsStore reads and writes widget settings. Reads always return the most
// recently created row of a business.
type SettingsStore interface {
	LatestSettings(ctx context.Context, businessID uuid.UUID) (*models.WidgetSettings, error)
	// SaveSettings replaces the latest row, or inserts one when the business has none
	SaveSettings(ctx context.Context, settings *models.WidgetSettings) error
}

// RuleStore manages both rule tables. Lists are ordered position asc, created_at asc.
type RuleStore interface {
	ListAutoReplies(ctx context.Context, businessID uuid.UUID) ([]models.AutoReplyRule, error)
	CreateAutoReply(ctx context.Context, rule *models.AutoReplyRule) error
	UpdateAutoReply(ctx context.Context, rule *models.AutoReplyRule) error
	DeleteAutoReply(ctx context.Context, id uuid.UUID) error
	ImportAutoReplies(ctx context.Context, businessID uuid.UUID, rules []models.AutoReplyRule) ([]models.AutoReplyRule, error)

	ListAdvancedReplies(ctx context.Context, businessID uuid.UUID) ([]models.AdvancedReplyRule, error)
	CreateAdvancedReply(ctx context.Context, rule *models.AdvancedReplyRule) error
	UpdateAdvancedReply(ctx context.Context, rule *models.AdvancedReplyRule) error
	DeleteAdvancedReply(ctx context.Context, id uuid.UUID) error
	ImportAdvancedReplies(ctx context.Context, businessID uuid.UUID, rules []models.AdvancedReplyRule) ([]models.AdvancedReplyRule, error)
}

// SessionStore manages chat sessions
type SessionStore interface {
	// ListSessions returns sessions of a business, most recently updated first.
	// An empty status lists every session.
	ListSessions(ctx context.Context, businessID uuid.UUID, status models.SessionStatus) ([]models.Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	CreateSession(ctx context.Context, session *models.Session) error
	// PatchSession applies patch when ifVersion is 0 or equals the stored version
	PatchSession(ctx context.Context, id uuid.UUID, patch models.SessionPatch, ifVersion int) (*models.Session, error)
}

// MessageStore is the append-only message log
type MessageStore interface {
	// ListMessages returns a session's messages ordered created_at asc, seq asc
	ListMessages(ctx context.Context, sessionID uuid.UUID) ([]models.Message, error)
	// AppendMessage is idempotent on the message id
	AppendMessage(ctx context.Context, message *models.Message) error
}

// Store is the full remote store surface consumed by the chat runtime
type Store interface {
	SettingsStore
	RuleStore
	SessionStore
	MessageStore
}
