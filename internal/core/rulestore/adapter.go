package rulestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/resolver"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/store"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
)

// Source is the subset of the store the adapter reads from
type Source interface {
	store.SettingsStore
	ListAutoReplies(ctx context.Context, businessID uuid.UUID) ([]models.AutoReplyRule, error)
	ListAdvancedReplies(ctx context.Context, businessID uuid.UUID) ([]models.AdvancedReplyRule, error)
}

// Snapshot is the settings and ordered rules of one business at load time
type Snapshot struct {
	BusinessID      uuid.UUID
	Settings        *models.WidgetSettings
	AutoReplies     []models.AutoReplyRule
	AdvancedReplies []models.AdvancedReplyRule
}

// Enabled is false when the business has no settings row yet
func (s *Snapshot) Enabled() bool {
	return s != nil && s.Settings != nil
}

// Rules returns the snapshot's rules in resolver form
func (s *Snapshot) Rules() resolver.RuleSet {
	if s == nil {
		return resolver.RuleSet{}
	}
	return resolver.RuleSet{
		AutoReplies:     s.AutoReplies,
		AdvancedReplies: s.AdvancedReplies,
	}
}

// Adapter loads snapshots from the store
type Adapter struct {
	source Source
}

// NewAdapter creates a rule store adapter
func NewAdapter(source Source) *Adapter {
	return &Adapter{source: source}
}

// Load reads settings and both rule tables. Missing settings are not an error;
// the snapshot is simply disabled.
func (a *Adapter) Load(ctx context.Context, businessID uuid.UUID) (*Snapshot, error) {
	snap := &Snapshot{BusinessID: businessID}

	settings, err := a.source.LatestSettings(ctx, businessID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		log.Info().Str("business_id", businessID.String()).Msg("no widget settings yet, widget disabled")
	case err != nil:
		return nil, fmt.Errorf("failed to load settings: %w", err)
	default:
		snap.Settings = settings
	}

	snap.AutoReplies, err = a.source.ListAutoReplies(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to load auto replies: %w", err)
	}

	snap.AdvancedReplies, err = a.source.ListAdvancedReplies(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("failed to load advanced replies: %w", err)
	}

	return snap, nil
}

// Reload loads a fresh snapshot, keeping prev when the fetch fails
func (a *Adapter) Reload(ctx context.Context, prev *Snapshot, businessID uuid.UUID) (*Snapshot, error) {
	snap, err := a.Load(ctx, businessID)
	if err != nil {
		log.Warn().Err(err).Str("business_id", businessID.String()).Msg("rule reload failed, keeping previous snapshot")
		return prev, err
	}
	return snap, nil
}
