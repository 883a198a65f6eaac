package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/store"
)

// ChatStore is the Postgres-backed store behind store-api
type ChatStore struct {
	SettingsRepo
	RuleRepo
	SessionRepo
	MessageRepo

	history *audit.Service
}

func NewChatStore(db *gorm.DB) *ChatStore {
	history := audit.NewService(db)
	return &ChatStore{
		SettingsRepo: NewSettingsRepo(db),
		RuleRepo:     NewRuleRepo(db),
		SessionRepo:  NewSessionRepo(db, history),
		MessageRepo:  NewMessageRepo(db),
		history:      history,
	}
}

// SessionHistory lists the recorded changes of a session, newest first
func (s *ChatStore) SessionHistory(ctx context.Context, sessionID uuid.UUID, limit int) ([]audit.Entry, error) {
	return s.history.SessionHistory(ctx, sessionID, limit)
}

// PruneHistory drops history older than retention
func (s *ChatStore) PruneHistory(ctx context.Context, retention time.Duration) (int64, error) {
	return s.history.DeleteOlderThan(ctx, retention)
}

var _ store.Store = (*ChatStore)(nil)
