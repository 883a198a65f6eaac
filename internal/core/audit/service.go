package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
)

// Service keeps the change history of chat sessions
type Service struct {
	db *gorm.DB
}

// NewService creates a new history service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// NewEntry describes the change from before to after
func NewEntry(before, after models.Session) (*Entry, error) {
	oldJSON, err := toJSON(snapshot{Status: string(before.Status), Metadata: before.Metadata})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize old value: %w", err)
	}
	newJSON, err := toJSON(snapshot{Status: string(after.Status), Metadata: after.Metadata})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize new value: %w", err)
	}

	return &Entry{
		BusinessID: after.BusinessID,
		SessionID:  after.ID,
		Action:     Describe(before, after),
		Version:    after.Version,
		OldValue:   oldJSON,
		NewValue:   newJSON,
		CreatedAt:  after.UpdatedAt,
	}, nil
}

// Describe names what a patch did. A close wins over a metadata edit.
func Describe(before, after models.Session) string {
	switch {
	case before.Status != after.Status && after.Status == models.SessionStatusClosed:
		return ActionClose
	case !reflect.DeepEqual(map[string]interface{}(before.Metadata), map[string]interface{}(after.Metadata)):
		return ActionUpdateMetadata
	default:
		return ActionTouch
	}
}

// Record writes the change inside tx, the transaction that applied it
func (s *Service) Record(tx *gorm.DB, before, after models.Session) error {
	entry, err := NewEntry(before, after)
	if err != nil {
		return err
	}
	if tx == nil {
		tx = s.db
	}
	if err := tx.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to record session history: %w", err)
	}
	return nil
}

// SessionHistory lists the changes of one session, newest first
func (s *Service) SessionHistory(ctx context.Context, sessionID uuid.UUID, limit int) ([]Entry, error) {
	if limit < 1 {
		limit = 100
	}

	entries := make([]Entry, 0)
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get session history: %w", err)
	}
	return entries, nil
}

// DeleteOlderThan drops history entries older than the retention window
func (s *Service) DeleteOlderThan(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, fmt.Errorf("retention must be positive")
	}

	cutoff := time.Now().Add(-retention)
	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&Entry{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete old history: %w", result.Error)
	}

	log.Info().Int64("deleted", result.RowsAffected).Dur("retention", retention).Msg("🧹 session history pruned")
	return result.RowsAffected, nil
}

func toJSON(value interface{}) (datatypes.JSON, error) {
	if value == nil {
		return nil, nil
	}

	bytes, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	return datatypes.JSON(bytes), nil
}
