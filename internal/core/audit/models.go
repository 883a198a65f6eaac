package audit

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Actions recorded for a session
const (
	ActionClose          = "close"
	ActionUpdateMetadata = "update_metadata"
	ActionTouch          = "touch"
)

// Entry is one recorded change of a chat session
type Entry struct {
	ID uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`

	BusinessID uuid.UUID `json:"business_id" gorm:"type:uuid;not null;index"`
	SessionID  uuid.UUID `json:"session_id" gorm:"type:uuid;not null;index:idx_history_session_created,priority:1"`

	Action  string `json:"action" gorm:"type:varchar(20);not null"`
	Version int    `json:"version" gorm:"not null"` // version after the change

	// Change tracking
	OldValue datatypes.JSON `json:"old_value,omitempty" gorm:"type:jsonb"`
	NewValue datatypes.JSON `json:"new_value,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"index:idx_history_session_created,priority:2"`
}

// TableName specifies the table name
func (Entry) TableName() string {
	return "chat_session_history"
}

// BeforeCreate sets UUID before creating
func (e *Entry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// snapshot is the part of a session the history keeps
type snapshot struct {
	Status   string                 `json:"status"`
	Metadata map[string]interface{} `json:"metadata"`
}
