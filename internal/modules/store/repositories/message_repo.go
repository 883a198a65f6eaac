package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
)

type MessageRepo interface {
	ListMessages(ctx context.Context, sessionID uuid.UUID) ([]models.Message, error)
	AppendMessage(ctx context.Context, message *models.Message) error
}

type messageRepo struct {
	db *gorm.DB
}

func NewMessageRepo(db *gorm.DB) MessageRepo {
	return &messageRepo{db: db}
}

func (r *messageRepo) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]models.Message, error) {
	messages := make([]models.Message, 0)
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC, seq ASC").
		Find(&messages).Error
	return messages, err
}

// AppendMessage inserts once per id; a retried write of the same message is
// silently ignored
func (r *messageRepo) AppendMessage(ctx context.Context, message *models.Message) error {
	db := r.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.Session{}).Where("id = ?", message.SessionID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return translate(gorm.ErrRecordNotFound)
	}

	return db.Omit(clause.Associations).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(message).Error
}
