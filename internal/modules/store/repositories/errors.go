package repositories

import (
	"errors"

	"gorm.io/gorm"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/store"
)

// translate maps GORM's not-found to the store sentinel
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}

func affected(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
