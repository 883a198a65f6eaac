package chatsync

import (
	"sync"

	"github.com/google/uuid"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
)

// SessionList is an observer's working set of active sessions plus the
// currently selected one.
type SessionList struct {
	mu       sync.RWMutex
	sessions []models.Session
	selected *models.Session
}

// NewSessionList creates an empty list
func NewSessionList() *SessionList {
	return &SessionList{}
}

// Apply replaces the list wholesale. If the selected session is gone the
// selection is cleared and true is returned; otherwise the selection is
// refreshed from the fetched copy.
func (l *SessionList) Apply(fetched []models.Session) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sessions = fetched
	if l.selected == nil {
		return false
	}
	for _, s := range fetched {
		if s.ID == l.selected.ID {
			fresh := s.Clone()
			l.selected = &fresh
			return false
		}
	}
	l.selected = nil
	return true
}

// Select makes id the current session. It reports false when id is not in
// the list.
func (l *SessionList) Select(id uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, s := range l.sessions {
		if s.ID == id {
			sel := s.Clone()
			l.selected = &sel
			return true
		}
	}
	return false
}

// Deselect clears the current session
func (l *SessionList) Deselect() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.selected = nil
}

// Remove drops id from the working set, clearing the selection if it was
// selected. It reports whether the selection was cleared.
func (l *SessionList) Remove(id uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	kept := make([]models.Session, 0, len(l.sessions))
	for _, s := range l.sessions {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	l.sessions = kept

	if l.selected != nil && l.selected.ID == id {
		l.selected = nil
		return true
	}
	return false
}

// Contains reports whether id is in the working set
func (l *SessionList) Contains(id uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, s := range l.sessions {
		if s.ID == id {
			return true
		}
	}
	return false
}

// Update replaces one session in place (after a local metadata edit)
func (l *SessionList) Update(s models.Session) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.sessions {
		if l.sessions[i].ID == s.ID {
			l.sessions[i] = s.Clone()
		}
	}
	if l.selected != nil && l.selected.ID == s.ID {
		sel := s.Clone()
		l.selected = &sel
	}
}

// Sessions returns a copy of the list
func (l *SessionList) Sessions() []models.Session {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]models.Session, len(l.sessions))
	for i, s := range l.sessions {
		out[i] = s.Clone()
	}
	return out
}

// Selected returns a copy of the current session
func (l *SessionList) Selected() (models.Session, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.selected == nil {
		return models.Session{}, false
	}
	return l.selected.Clone(), true
}
