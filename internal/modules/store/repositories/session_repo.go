package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/store"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
)

type SessionRepo interface {
	ListSessions(ctx context.Context, businessID uuid.UUID, status models.SessionStatus) ([]models.Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	CreateSession(ctx context.Context, session *models.Session) error
	PatchSession(ctx context.Context, id uuid.UUID, patch models.SessionPatch, ifVersion int) (*models.Session, error)
}

type sessionRepo struct {
	db      *gorm.DB
	history *audit.Service
}

// NewSessionRepo creates the session repository. history may be nil, in
// which case patches are not recorded.
func NewSessionRepo(db *gorm.DB, history *audit.Service) SessionRepo {
	return &sessionRepo{db: db, history: history}
}

func (r *sessionRepo) ListSessions(ctx context.Context, businessID uuid.UUID, status models.SessionStatus) ([]models.Session, error) {
	query := r.db.WithContext(ctx).Where("business_id = ?", businessID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	sessions := make([]models.Session, 0)
	err := query.Order("updated_at DESC").Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepo) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	var session models.Session
	if err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &session, nil
}

func (r *sessionRepo) CreateSession(ctx context.Context, session *models.Session) error {
	session.Version = 1
	if session.Status == "" {
		session.Status = models.SessionStatusActive
	}
	return r.db.WithContext(ctx).Create(session).Error
}

// PatchSession locks the row, applies the patch and writes it back when
// anything changed. The change is recorded in the same transaction.
func (r *sessionRepo) PatchSession(ctx context.Context, id uuid.UUID, patch models.SessionPatch, ifVersion int) (*models.Session, error) {
	var session models.Session
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&session, "id = ?", id).Error
		if err != nil {
			return translate(err)
		}

		before := session
		before.Metadata = session.Metadata.Clone()

		changed, err := store.ApplyPatch(&session, patch, ifVersion, time.Now())
		if err != nil || !changed {
			return err
		}

		err = tx.Model(&models.Session{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":     session.Status,
				"metadata":   session.Metadata,
				"version":    session.Version,
				"updated_at": session.UpdatedAt,
			}).Error
		if err != nil || r.history == nil {
			return err
		}
		return r.history.Record(tx, before, session)
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}
