package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SessionStatus is the lifecycle state of a chat session
type SessionStatus string

const (
	SessionStatusActive SessionStatus = "active"
	SessionStatusClosed SessionStatus = "closed"
)

// Session represents one visitor's conversation thread with a business
type Session struct {
	ID         uuid.UUID     `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BusinessID uuid.UUID     `json:"business_id" gorm:"type:uuid;not null;index:idx_sessions_business_status"`
	VisitorID  string        `json:"visitor_id" gorm:"type:text;not null" validate:"required"`
	Status     SessionStatus `json:"status" gorm:"type:varchar(20);not null;default:'active';index:idx_sessions_business_status"`
	Metadata   Metadata      `json:"metadata" gorm:"type:jsonb;not null;default:'{}'"`
	Version    int           `json:"version" gorm:"not null;default:1"`
	CreatedAt  time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// TableName specifies the table name
func (Session) TableName() string {
	return "chat_sessions"
}

// BeforeCreate sets defaults before creating
func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = SessionStatusActive
	}
	if s.Metadata == nil {
		s.Metadata = Metadata{}
	}
	if s.Version == 0 {
		s.Version = 1
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now()
	}
	return nil
}

// IsActive reports whether the session still accepts messages and metadata edits
func (s *Session) IsActive() bool {
	return s.Status == SessionStatusActive
}

// Clone returns a copy whose metadata map is not shared with s
func (s Session) Clone() Session {
	s.Metadata = s.Metadata.Clone()
	return s
}

// SessionPatch is a partial update of a session. Nil fields are left untouched.
type SessionPatch struct {
	Status    *SessionStatus `json:"status,omitempty" validate:"omitempty,oneof=active closed"`
	Metadata  Metadata       `json:"metadata,omitempty"`
	UpdatedAt *time.Time     `json:"updated_at,omitempty"`
}
