package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/store"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
)

// Store is what the manager needs from the remote store
type Store interface {
	store.SessionStore
	AppendMessage(ctx context.Context, message *models.Message) error
}

// Manager drives the session lifecycle: NonExistent -> Active -> Closed.
// Closed is terminal.
type Manager struct {
	store Store
}

// NewManager creates a session manager
func NewManager(s Store) *Manager {
	return &Manager{store: s}
}

// Create opens an Active session for a visitor. When the business has a
// welcome message it is appended as the first bot message and returned.
func (m *Manager) Create(ctx context.Context, businessID uuid.UUID, visitorID string, settings *models.WidgetSettings) (*models.Session, *models.Message, error) {
	s := &models.Session{
		BusinessID: businessID,
		VisitorID:  visitorID,
		Status:     models.SessionStatusActive,
		Metadata:   models.Metadata{},
	}
	if err := m.store.CreateSession(ctx, s); err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %w", err)
	}
	log.Info().Str("session_id", s.ID.String()).Str("visitor_id", visitorID).Msg("💬 session created")

	if settings == nil || settings.WelcomeMessage == "" {
		return s, nil, nil
	}

	welcome := models.NewMessage(s.ID, models.SenderBot, settings.WelcomeMessage, false)
	if err := m.store.AppendMessage(ctx, &welcome); err != nil {
		// The session exists; a lost welcome is not worth failing the visitor's message
		log.Warn().Err(err).Str("session_id", s.ID.String()).Msg("failed to store welcome message")
	}
	return s, &welcome, nil
}

// UpdateMetadata shallow-merges patch into the session's metadata. The write
// is conditional on the version read; on a conflict the session is re-read
// and the patch re-applied once before ErrVersionConflict is returned.
func (m *Manager) UpdateMetadata(ctx context.Context, id uuid.UUID, patch models.Metadata) (*models.Session, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		current, err := m.store.GetSession(ctx, id)
		if err != nil {
			return nil, err
		}
		if !current.IsActive() {
			return nil, store.ErrSessionClosed
		}

		updated, err := m.store.PatchSession(ctx, id, models.SessionPatch{
			Metadata: current.Metadata.Merge(patch),
		}, current.Version)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, store.ErrVersionConflict) {
			return nil, err
		}
		lastErr = err
		log.Debug().Str("session_id", id.String()).Int("version", current.Version).Msg("metadata version conflict, re-reading")
	}
	return nil, lastErr
}

// Pin sets or clears the pinned flag
func (m *Manager) Pin(ctx context.Context, id uuid.UUID, pinned bool) (*models.Session, error) {
	return m.UpdateMetadata(ctx, id, models.Metadata{models.MetaPinned: pinned})
}

// Label attaches a colored label
func (m *Manager) Label(ctx context.Context, id uuid.UUID, label models.Label) (*models.Session, error) {
	return m.UpdateMetadata(ctx, id, models.Metadata{
		models.MetaLabel: map[string]interface{}{"text": label.Text, "color": label.Color},
	})
}

// Note replaces the operator note
func (m *Manager) Note(ctx context.Context, id uuid.UUID, note string) (*models.Session, error) {
	return m.UpdateMetadata(ctx, id, models.Metadata{models.MetaNote: note})
}

// RenameVisitor sets the visitor's display name
func (m *Manager) RenameVisitor(ctx context.Context, id uuid.UUID, name string) (*models.Session, error) {
	return m.UpdateMetadata(ctx, id, models.Metadata{models.MetaVisitorName: name})
}

// Close moves a session to Closed. Closing a closed session is a no-op.
func (m *Manager) Close(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	closed := models.SessionStatusClosed
	s, err := m.store.PatchSession(ctx, id, models.SessionPatch{Status: &closed}, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to close session %s: %w", id, err)
	}
	log.Info().Str("session_id", id.String()).Msg("🔒 session closed")
	return s, nil
}

// CloseMany closes every session in ids, continuing past failures. It returns
// the ids that were closed and the joined errors of the rest.
func (m *Manager) CloseMany(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	closed := make([]uuid.UUID, 0, len(ids))
	var errs []error
	for _, id := range ids {
		if _, err := m.Close(ctx, id); err != nil {
			errs = append(errs, err)
			continue
		}
		closed = append(closed, id)
	}
	return closed, errors.Join(errs...)
}
