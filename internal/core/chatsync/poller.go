package chatsync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/scheduler"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
)

const (
	DefaultMessageInterval = 3 * time.Second
	DefaultSessionInterval = 10 * time.Second

	pollTimeout = 5 * time.Second
)

// MessageFetcher reads a session's log
type MessageFetcher interface {
	ListMessages(ctx context.Context, sessionID uuid.UUID) ([]models.Message, error)
}

// SessionLister reads a business's sessions
type SessionLister interface {
	ListSessions(ctx context.Context, businessID uuid.UUID, status models.SessionStatus) ([]models.Session, error)
}

// MessagePoller keeps a MessageCache in step with one session's remote log
type MessagePoller struct {
	fetcher   MessageFetcher
	sessionID uuid.UUID
	cache     *MessageCache
	onNew     func(added []models.Message)

	sched  *scheduler.Scheduler
	taskID string
}

// NewMessagePoller creates a poller. onNew, when set, receives the messages a
// poll discovered.
func NewMessagePoller(fetcher MessageFetcher, sessionID uuid.UUID, cache *MessageCache, onNew func([]models.Message)) *MessagePoller {
	return &MessagePoller{
		fetcher:   fetcher,
		sessionID: sessionID,
		cache:     cache,
		onNew:     onNew,
	}
}

// SessionID is the session this poller follows
func (p *MessagePoller) SessionID() uuid.UUID {
	return p.sessionID
}

// Poll fetches once. A failed fetch leaves the cache as it was.
func (p *MessagePoller) Poll(ctx context.Context) error {
	fetched, err := p.fetcher.ListMessages(ctx, p.sessionID)
	if err != nil {
		log.Warn().Err(err).Str("session_id", p.sessionID.String()).Msg("message poll failed, keeping cache")
		return fmt.Errorf("failed to fetch messages: %w", err)
	}

	changed, added := p.cache.Apply(fetched)
	if changed && len(added) > 0 && p.onNew != nil {
		p.onNew(added)
	}
	return nil
}

// Start schedules the poll every interval under taskID
func (p *MessagePoller) Start(sched *scheduler.Scheduler, taskID string, interval time.Duration) {
	p.sched, p.taskID = sched, taskID
	sched.AddTask(taskID, interval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
		defer cancel()
		_ = p.Poll(ctx)
	})
}

// Stop removes the scheduled poll
func (p *MessagePoller) Stop() {
	if p.sched != nil {
		p.sched.RemoveTask(p.taskID)
		p.sched = nil
	}
}

// SessionListPoller keeps a SessionList in step with the active sessions of
// one business.
type SessionListPoller struct {
	lister     SessionLister
	businessID uuid.UUID
	list       *SessionList
	onCleared  func()

	sched  *scheduler.Scheduler
	taskID string
}

// NewSessionListPoller creates a poller. onCleared is called when a poll
// removes the selected session.
func NewSessionListPoller(lister SessionLister, businessID uuid.UUID, list *SessionList, onCleared func()) *SessionListPoller {
	return &SessionListPoller{
		lister:     lister,
		businessID: businessID,
		list:       list,
		onCleared:  onCleared,
	}
}

// Poll fetches the active sessions once
func (p *SessionListPoller) Poll(ctx context.Context) error {
	fetched, err := p.lister.ListSessions(ctx, p.businessID, models.SessionStatusActive)
	if err != nil {
		log.Warn().Err(err).Str("business_id", p.businessID.String()).Msg("session poll failed, keeping list")
		return fmt.Errorf("failed to fetch sessions: %w", err)
	}

	if p.list.Apply(fetched) && p.onCleared != nil {
		p.onCleared()
	}
	return nil
}

// Start schedules the poll every interval under taskID
func (p *SessionListPoller) Start(sched *scheduler.Scheduler, taskID string, interval time.Duration) {
	p.sched, p.taskID = sched, taskID
	sched.AddTask(taskID, interval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
		defer cancel()
		_ = p.Poll(ctx)
	})
}

// Stop removes the scheduled poll
func (p *SessionListPoller) Stop() {
	if p.sched != nil {
		p.sched.RemoveTask(p.taskID)
		p.sched = nil
	}
}
