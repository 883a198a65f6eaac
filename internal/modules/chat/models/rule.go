package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// MatchingType selects the strategy used to compare keywords with an utterance
type MatchingType string

const (
	MatchWord    MatchingType = "word_match"
	MatchRegex   MatchingType = "regex_match"
	MatchFuzzy   MatchingType = "fuzzy_match"
	MatchSynonym MatchingType = "synonym_match"
)

// Valid reports whether t is one of the declared strategies
func (t MatchingType) Valid() bool {
	switch t {
	case MatchWord, MatchRegex, MatchFuzzy, MatchSynonym:
		return true
	}
	return false
}

// ResponseType selects how an advanced reply is rendered
type ResponseType string

const (
	ResponseText ResponseType = "text"
	ResponseURL  ResponseType = "url"
)

// Valid reports whether t is one of the declared response types
func (t ResponseType) Valid() bool {
	return t == ResponseText || t == ResponseURL
}

// AutoReplyRule is a keyword-triggered canned text response, highest priority
type AutoReplyRule struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BusinessID   uuid.UUID      `json:"business_id" gorm:"type:uuid;not null;index"`
	Keywords     pq.StringArray `json:"keywords" gorm:"type:text[];not null" validate:"required,min=1"`
	MatchingType MatchingType   `json:"matching_type" gorm:"type:varchar(20);not null;default:'word_match'" validate:"required,oneof=word_match regex_match fuzzy_match synonym_match"`
	Response     string         `json:"response" gorm:"type:text;not null" validate:"required"`
	Position     int            `json:"position" gorm:"not null;default:0"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name
func (AutoReplyRule) TableName() string {
	return "auto_replies"
}

// BeforeCreate sets UUID before creating
func (r *AutoReplyRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// AdvancedReplyRule is a keyword-triggered reply that may render as a link
type AdvancedReplyRule struct {
	ID           uuid.UUID      `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BusinessID   uuid.UUID      `json:"business_id" gorm:"type:uuid;not null;index"`
	Keywords     pq.StringArray `json:"keywords" gorm:"type:text[];not null" validate:"required,min=1"`
	MatchingType MatchingType   `json:"matching_type" gorm:"type:varchar(20);not null;default:'word_match'" validate:"required,oneof=word_match regex_match fuzzy_match synonym_match"`
	ResponseType ResponseType   `json:"response_type" gorm:"type:varchar(10);not null;default:'text'" validate:"required,oneof=text url"`
	Response     string         `json:"response" gorm:"type:text;not null" validate:"required"`
	ButtonText   *string        `json:"button_text,omitempty" gorm:"type:text"`
	Position     int            `json:"position" gorm:"not null;default:0"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name
func (AdvancedReplyRule) TableName() string {
	return "advanced_replies"
}

// BeforeCreate sets UUID before creating
func (r *AdvancedReplyRule) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
