package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
)

type SettingsRepo interface {
	LatestSettings(ctx context.Context, businessID uuid.UUID) (*models.WidgetSettings, error)
	SaveSettings(ctx context.Context, settings *models.WidgetSettings) error
}

type settingsRepo struct {
	db *gorm.DB
}

func NewSettingsRepo(db *gorm.DB) SettingsRepo {
	return &settingsRepo{db: db}
}

// LatestSettings picks the newest row; older duplicates are ignored
func (r *settingsRepo) LatestSettings(ctx context.Context, businessID uuid.UUID) (*models.WidgetSettings, error) {
	var settings models.WidgetSettings
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("created_at DESC").
		First(&settings).Error
	if err != nil {
		return nil, translate(err)
	}
	return &settings, nil
}

func (r *settingsRepo) SaveSettings(ctx context.Context, settings *models.WidgetSettings) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var latest models.WidgetSettings
		err := tx.Where("business_id = ?", settings.BusinessID).
			Order("created_at DESC").
			First(&latest).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			settings.ID = uuid.Nil
			return tx.Create(settings).Error
		}
		if err != nil {
			return fmt.Errorf("failed to read settings: %w", err)
		}

		settings.ID = latest.ID
		settings.CreatedAt = latest.CreatedAt
		return tx.Save(settings).Error
	})
}
