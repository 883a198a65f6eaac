package store

import (
	"time"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
)

// ApplyPatch mutates session according to patch. It reports whether anything
// changed; an unchanged session keeps its version.
//
// Closed sessions are terminal: reopening or editing metadata fails with
// ErrSessionClosed, closing again is a no-op. Metadata in a patch replaces the
// stored document as a whole.
func ApplyPatch(session *models.Session, patch models.SessionPatch, ifVersion int, now time.Time) (bool, error) {
	if ifVersion > 0 && session.Version != ifVersion {
		return false, ErrVersionConflict
	}

	if !session.IsActive() {
		if patch.Status != nil && *patch.Status != models.SessionStatusClosed {
			return false, ErrSessionClosed
		}
		if patch.Metadata != nil {
			return false, ErrSessionClosed
		}
		return false, nil
	}

	if patch.Status != nil {
		session.Status = *patch.Status
	}
	if patch.Metadata != nil {
		session.Metadata = patch.Metadata.Clone()
	}
	if patch.UpdatedAt != nil {
		session.UpdatedAt = *patch.UpdatedAt
	} else {
		session.UpdatedAt = now
	}
	session.Version++
	return true, nil
}

// NextPosition is the position a newly appended rule takes
func NextPosition(existing []int) int {
	highest := 0
	for _, p := range existing {
		if p > highest {
			highest = p
		}
	}
	return highest + 1
}
