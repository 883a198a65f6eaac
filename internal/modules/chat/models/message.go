package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SenderType identifies who authored a message
type SenderType string

const (
	SenderUser  SenderType = "user"
	SenderBot   SenderType = "bot"
	SenderAgent SenderType = "agent"
)

// Message is one append-only entry of a session's log
type Message struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	SessionID  uuid.UUID  `json:"session_id" gorm:"type:uuid;not null;index:idx_messages_session_created,priority:1"`
	SenderType SenderType `json:"sender_type" gorm:"type:varchar(10);not null;check:sender_type IN ('user','bot','agent')" validate:"required,oneof=user bot agent"`
	Body       string     `json:"body" gorm:"type:text;not null" validate:"required"`
	IsHTML     bool       `json:"is_html" gorm:"not null;default:false"`
	CreatedAt  time.Time  `json:"created_at" gorm:"index:idx_messages_session_created,priority:2"`
	Seq        int64      `json:"seq,omitempty" gorm:"->;type:bigserial"` // assigned by the store

	// Relationship
	Session Session `gorm:"foreignKey:SessionID;references:ID;constraint:OnDelete:CASCADE" json:"-" validate:"-"`
}

// TableName specifies the table name
func (Message) TableName() string {
	return "chat_messages"
}

// BeforeCreate sets UUID before creating
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	return nil
}

// NewMessage builds a message with a client-assigned id so the optimistic
// local copy and the stored row share an identity.
func NewMessage(sessionID uuid.UUID, sender SenderType, body string, isHTML bool) Message {
	return Message{
		ID:         uuid.New(),
		SessionID:  sessionID,
		SenderType: sender,
		Body:       body,
		IsHTML:     isHTML,
		CreatedAt:  time.Now(),
	}
}
