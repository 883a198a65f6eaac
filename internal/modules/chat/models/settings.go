package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WidgetSettings is the per-business widget configuration. Duplicate rows are
// tolerated; readers always take the most recently created one.
type WidgetSettings struct {
	ID                      uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BusinessID              uuid.UUID `json:"business_id" gorm:"type:uuid;not null;index:idx_settings_business_created,priority:1"`
	PrimaryColor            string    `json:"primary_color" gorm:"type:varchar(20);default:'#4F46E5'"`
	BusinessName            string    `json:"business_name" gorm:"type:text"`
	SalesRepresentativeName string    `json:"sales_representative_name" gorm:"type:text"`
	WelcomeMessage          string    `json:"welcome_message" gorm:"type:text"`
	FallbackMessage         string    `json:"fallback_message" gorm:"type:text"`
	AIModeEnabled           bool      `json:"ai_mode_enabled" gorm:"not null;default:false"`
	AIAPIKey                *string   `json:"ai_api_key,omitempty" gorm:"type:text"`
	AIModel                 *string   `json:"ai_model,omitempty" gorm:"type:text"`
	AIContext               *string   `json:"ai_context,omitempty" gorm:"type:text"`
	CreatedAt               time.Time `json:"created_at" gorm:"autoCreateTime;index:idx_settings_business_created,priority:2,sort:desc"`
	UpdatedAt               time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name
func (WidgetSettings) TableName() string {
	return "widget_settings"
}

// BeforeCreate sets UUID before creating
func (s *WidgetSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// AIConfigured reports whether the simulated AI fallback may run: the mode is
// on and both an API key and a context are present.
func (s *WidgetSettings) AIConfigured() bool {
	if s == nil || !s.AIModeEnabled {
		return false
	}
	return deref(s.AIAPIKey) != "" && deref(s.AIContext) != ""
}

// Context returns the AI context text or "".
func (s *WidgetSettings) Context() string {
	if s == nil {
		return ""
	}
	return deref(s.AIContext)
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
