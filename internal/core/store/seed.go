package store

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gopkg.in/yaml.v3"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
)

// SeedFile is the YAML layout accepted by LoadSeed
type SeedFile struct {
	Businesses []SeedBusiness `yaml:"businesses"`
}

type SeedBusiness struct {
	BusinessID      string              `yaml:"business_id"`
	Settings        SeedSettings        `yaml:"settings"`
	AutoReplies     []SeedAutoReply     `yaml:"auto_replies"`
	AdvancedReplies []SeedAdvancedReply `yaml:"advanced_replies"`
}

type SeedSettings struct {
	BusinessName            string  `yaml:"business_name"`
	PrimaryColor            string  `yaml:"primary_color"`
	SalesRepresentativeName string  `yaml:"sales_representative_name"`
	WelcomeMessage          string  `yaml:"welcome_message"`
	FallbackMessage         string  `yaml:"fallback_message"`
	AIModeEnabled           bool    `yaml:"ai_mode_enabled"`
	AIAPIKey                *string `yaml:"ai_api_key"`
	AIContext               *string `yaml:"ai_context"`
}

type SeedAutoReply struct {
	Keywords     []string `yaml:"keywords"`
	MatchingType string   `yaml:"matching_type"`
	Response     string   `yaml:"response"`
}

type SeedAdvancedReply struct {
	Keywords     []string `yaml:"keywords"`
	MatchingType string   `yaml:"matching_type"`
	ResponseType string   `yaml:"response_type"`
	Response     string   `yaml:"response"`
	ButtonText   *string  `yaml:"button_text"`
}

// LoadSeed fills the store with the settings and rules of a YAML seed file.
// Rules keep their file order. Nothing is written when the file is invalid.
func (m *Memory) LoadSeed(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read seed file: %w", err)
	}

	var file SeedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return 0, fmt.Errorf("failed to parse seed file: %w", err)
	}

	type seeded struct {
		settings models.WidgetSettings
		auto     []models.AutoReplyRule
		advanced []models.AdvancedReplyRule
	}
	var all []seeded
	for i, b := range file.Businesses {
		id, err := uuid.Parse(b.BusinessID)
		if err != nil {
			return 0, fmt.Errorf("businesses[%d]: invalid business_id %q", i, b.BusinessID)
		}
		s := seeded{settings: models.WidgetSettings{
			BusinessID:              id,
			BusinessName:            b.Settings.BusinessName,
			PrimaryColor:            b.Settings.PrimaryColor,
			SalesRepresentativeName: b.Settings.SalesRepresentativeName,
			WelcomeMessage:          b.Settings.WelcomeMessage,
			FallbackMessage:         b.Settings.FallbackMessage,
			AIModeEnabled:           b.Settings.AIModeEnabled,
			AIAPIKey:                b.Settings.AIAPIKey,
			AIContext:               b.Settings.AIContext,
		}}
		for j, r := range b.AutoReplies {
			mt, err := seedMatchingType(r.MatchingType)
			if err != nil || len(r.Keywords) == 0 || r.Response == "" {
				return 0, fmt.Errorf("businesses[%d].auto_replies[%d]: keywords, response and a valid matching_type are required", i, j)
			}
			s.auto = append(s.auto, models.AutoReplyRule{
				BusinessID: id, Keywords: pq.StringArray(r.Keywords), MatchingType: mt, Response: r.Response,
			})
		}
		for j, r := range b.AdvancedReplies {
			mt, err := seedMatchingType(r.MatchingType)
			rt := models.ResponseType(r.ResponseType)
			if rt == "" {
				rt = models.ResponseText
			}
			if err != nil || !rt.Valid() || len(r.Keywords) == 0 || r.Response == "" {
				return 0, fmt.Errorf("businesses[%d].advanced_replies[%d]: keywords, response, a valid matching_type and response_type are required", i, j)
			}
			s.advanced = append(s.advanced, models.AdvancedReplyRule{
				BusinessID: id, Keywords: pq.StringArray(r.Keywords), MatchingType: mt,
				ResponseType: rt, Response: r.Response, ButtonText: r.ButtonText,
			})
		}
		all = append(all, s)
	}

	ctx := context.Background()
	for _, s := range all {
		m.AddSettingsRow(s.settings)
		if _, err := m.ImportAutoReplies(ctx, s.settings.BusinessID, s.auto); err != nil {
			return 0, err
		}
		if _, err := m.ImportAdvancedReplies(ctx, s.settings.BusinessID, s.advanced); err != nil {
			return 0, err
		}
	}
	return len(all), nil
}

func seedMatchingType(raw string) (models.MatchingType, error) {
	if raw == "" {
		return models.MatchWord, nil
	}
	mt := models.MatchingType(raw)
	if !mt.Valid() {
		return "", fmt.Errorf("unknown matching_type %q", raw)
	}
	return mt, nil
}
