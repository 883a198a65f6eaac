package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/agent"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/chatsync"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/scheduler"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/session"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/store"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
)

var (
	ErrAgentModeDisabled = errors.New("dashboard: agent mode is off")
	ErrNoSelection       = errors.New("dashboard: no session selected")
	ErrUnknownSession    = errors.New("dashboard: session is not in the active list")
	ErrTornDown          = errors.New("dashboard: instance was torn down")
)

// Store is what the dashboard reads and writes
type Store interface {
	store.SettingsStore
	session.Store
	ListMessages(ctx context.Context, sessionID uuid.UUID) ([]models.Message, error)
}

// Deps are the dashboard's collaborators
type Deps struct {
	Store           Store
	Scheduler       *scheduler.Scheduler
	Notifier        Notifier
	SessionInterval time.Duration
	MessageInterval time.Duration
}

// Dashboard is the operator-side state container of one business: the
// active session list, the selected session's log and the agent-mode toggle.
// It never runs reply resolution.
type Dashboard struct {
	deps       Deps
	businessID uuid.UUID

	sessions *session.Manager
	list     *chatsync.SessionList
	channel  *agent.Channel

	mu         sync.Mutex
	settings   *models.WidgetSettings
	cache      *chatsync.MessageCache // replaced on every selection change
	listPoller *chatsync.SessionListPoller
	msgPoller  *chatsync.MessagePoller
	agentMode  bool
	tornDown   bool
}

// New creates an uninitialized dashboard
func New(deps Deps, businessID uuid.UUID) *Dashboard {
	if deps.Notifier == nil {
		deps.Notifier = LogNotifier{}
	}
	if deps.SessionInterval <= 0 {
		deps.SessionInterval = chatsync.DefaultSessionInterval
	}
	if deps.MessageInterval <= 0 {
		deps.MessageInterval = chatsync.DefaultMessageInterval
	}

	d := &Dashboard{
		deps:       deps,
		businessID: businessID,
		sessions:   session.NewManager(deps.Store),
		list:       chatsync.NewSessionList(),
		cache:      chatsync.NewMessageCache(),
	}
	d.channel = agent.NewChannel(deps.Store, d.appendLocal)
	d.listPoller = chatsync.NewSessionListPoller(deps.Store, businessID, d.list, d.onSelectionCleared)
	return d
}

// Init loads settings, fetches the session list once and starts the
// periodic session poll. Missing settings are not an error.
func (d *Dashboard) Init(ctx context.Context) error {
	settings, err := d.deps.Store.LatestSettings(ctx, d.businessID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		log.Warn().Str("business_id", d.businessID.String()).Msg("⚠️ no widget settings for business")
	case err != nil:
		return fmt.Errorf("failed to load settings: %w", err)
	}

	d.mu.Lock()
	d.settings = settings
	d.mu.Unlock()

	if err := d.RefreshSessions(ctx); err != nil {
		log.Warn().Err(err).Str("business_id", d.businessID.String()).Msg("initial session refresh failed")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.deps.Scheduler != nil && !d.tornDown {
		d.listPoller.Start(d.deps.Scheduler, d.taskID("sessions"), d.deps.SessionInterval)
	}
	return nil
}

func (d *Dashboard) taskID(kind string) string {
	return "dashboard:" + d.businessID.String() + ":" + kind
}

// Settings returns the settings loaded by Init, nil when the business has none
func (d *Dashboard) Settings() *models.WidgetSettings {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.settings
}

// RefreshSessions re-reads the active sessions. If the selected session
// disappeared the selection is cleared.
func (d *Dashboard) RefreshSessions(ctx context.Context) error {
	return d.listPoller.Poll(ctx)
}

func (d *Dashboard) onSelectionCleared() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopMessagePollLocked()
	d.cache = chatsync.NewMessageCache()
}

// Sessions returns the active session list
func (d *Dashboard) Sessions() []models.Session {
	return d.list.Sessions()
}

// Selected returns the selected session
func (d *Dashboard) Selected() (models.Session, bool) {
	return d.list.Selected()
}

// Select makes id the selected session, loads its log and starts polling it
func (d *Dashboard) Select(ctx context.Context, id uuid.UUID) error {
	d.mu.Lock()
	if d.tornDown {
		d.mu.Unlock()
		return ErrTornDown
	}
	if !d.list.Select(id) {
		d.mu.Unlock()
		return ErrUnknownSession
	}
	// A poll of the previous selection may still be in flight. It keeps
	// writing into the cache it was created with, never this one.
	d.stopMessagePollLocked()
	d.cache = chatsync.NewMessageCache()
	d.msgPoller = chatsync.NewMessagePoller(d.deps.Store, id, d.cache, nil)
	poller := d.msgPoller
	d.mu.Unlock()

	if err := poller.Poll(ctx); err != nil {
		d.deps.Notifier.Notify("load messages", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.msgPoller == poller && d.deps.Scheduler != nil {
		poller.Start(d.deps.Scheduler, d.taskID("messages"), d.deps.MessageInterval)
	}
	return nil
}

// Deselect clears the selection and stops its message poll
func (d *Dashboard) Deselect() {
	d.list.Deselect()
	d.onSelectionCleared()
}

func (d *Dashboard) stopMessagePollLocked() {
	if d.msgPoller != nil {
		d.msgPoller.Stop()
		d.msgPoller = nil
	}
}

// RefreshMessages polls the selected session's log once
func (d *Dashboard) RefreshMessages(ctx context.Context) error {
	d.mu.Lock()
	poller := d.msgPoller
	d.mu.Unlock()
	if poller == nil {
		return ErrNoSelection
	}
	return poller.Poll(ctx)
}

// Messages returns the selected session's log
func (d *Dashboard) Messages() []models.Message {
	d.mu.Lock()
	cache := d.cache
	d.mu.Unlock()
	return cache.Snapshot()
}

// appendLocal shows an agent message in the log of the session it was sent
// to, if that session is still selected.
func (d *Dashboard) appendLocal(msg models.Message) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.msgPoller != nil && d.msgPoller.SessionID() == msg.SessionID {
		d.cache.Append(msg)
	}
}

// owned checks that id is a session of this business. Sessions in the
// active list are known; anything else is looked up.
func (d *Dashboard) owned(ctx context.Context, id uuid.UUID) error {
	if d.list.Contains(id) {
		return nil
	}
	s, err := d.deps.Store.GetSession(ctx, id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrUnknownSession
	case err != nil:
		return fmt.Errorf("failed to load session %s: %w", id, err)
	case s.BusinessID != d.businessID:
		log.Warn().
			Str("business_id", d.businessID.String()).
			Str("session_id", id.String()).
			Msg("⚠️ rejected action on another business's session")
		return ErrUnknownSession
	}
	return nil
}

// Close closes one session and removes it from the working set
func (d *Dashboard) Close(ctx context.Context, id uuid.UUID) error {
	if err := d.owned(ctx, id); err != nil {
		d.deps.Notifier.Notify("close session", err)
		return err
	}
	if _, err := d.sessions.Close(ctx, id); err != nil {
		d.deps.Notifier.Notify("close session", err)
		return err
	}
	d.forget(id)
	return nil
}

// CloseMany closes a batch. Sessions that closed are removed locally even
// when others fail. Ids of other businesses are skipped and reported.
func (d *Dashboard) CloseMany(ctx context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	mine := make([]uuid.UUID, 0, len(ids))
	var errs []error
	for _, id := range ids {
		if err := d.owned(ctx, id); err != nil {
			errs = append(errs, fmt.Errorf("session %s: %w", id, err))
			continue
		}
		mine = append(mine, id)
	}

	closed, err := d.sessions.CloseMany(ctx, mine)
	for _, id := range closed {
		d.forget(id)
	}
	err = errors.Join(append(errs, err)...)
	if err != nil {
		d.deps.Notifier.Notify("close sessions", err)
	}
	return closed, err
}

func (d *Dashboard) forget(id uuid.UUID) {
	if d.list.Remove(id) {
		d.onSelectionCleared()
	}
}

// UpdateMetadata merges patch into a session's metadata
func (d *Dashboard) UpdateMetadata(ctx context.Context, id uuid.UUID, patch models.Metadata) (*models.Session, error) {
	if err := d.owned(ctx, id); err != nil {
		return d.applied("update metadata", nil, err)
	}
	s, err := d.sessions.UpdateMetadata(ctx, id, patch)
	return d.applied("update metadata", s, err)
}

func (d *Dashboard) Pin(ctx context.Context, id uuid.UUID, pinned bool) (*models.Session, error) {
	if err := d.owned(ctx, id); err != nil {
		return d.applied("pin session", nil, err)
	}
	s, err := d.sessions.Pin(ctx, id, pinned)
	return d.applied("pin session", s, err)
}

func (d *Dashboard) Label(ctx context.Context, id uuid.UUID, label models.Label) (*models.Session, error) {
	if err := d.owned(ctx, id); err != nil {
		return d.applied("label session", nil, err)
	}
	s, err := d.sessions.Label(ctx, id, label)
	return d.applied("label session", s, err)
}

func (d *Dashboard) Note(ctx context.Context, id uuid.UUID, note string) (*models.Session, error) {
	if err := d.owned(ctx, id); err != nil {
		return d.applied("save note", nil, err)
	}
	s, err := d.sessions.Note(ctx, id, note)
	return d.applied("save note", s, err)
}

func (d *Dashboard) RenameVisitor(ctx context.Context, id uuid.UUID, name string) (*models.Session, error) {
	if err := d.owned(ctx, id); err != nil {
		return d.applied("rename visitor", nil, err)
	}
	s, err := d.sessions.RenameVisitor(ctx, id, name)
	return d.applied("rename visitor", s, err)
}

func (d *Dashboard) applied(op string, s *models.Session, err error) (*models.Session, error) {
	if err != nil {
		d.deps.Notifier.Notify(op, err)
		return nil, err
	}
	d.list.Update(*s)
	return s, nil
}

// SetAgentMode toggles whether the operator may write into sessions
func (d *Dashboard) SetAgentMode(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.agentMode = enabled
}

// AgentMode reports the toggle
func (d *Dashboard) AgentMode() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.agentMode
}

// SendAgentMessage writes an agent message into the selected session. The
// message shows up locally even if the store write fails.
func (d *Dashboard) SendAgentMessage(ctx context.Context, text string) (models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return models.Message{}, agent.ErrEmptyMessage
	}
	if !d.AgentMode() {
		return models.Message{}, ErrAgentModeDisabled
	}
	sel, ok := d.list.Selected()
	if !ok {
		return models.Message{}, ErrNoSelection
	}

	msg, err := d.channel.SendAsAgent(ctx, sel.ID, text)
	if err != nil {
		d.deps.Notifier.Notify("send message", err)
	}
	return msg, err
}

// Teardown stops both polls. It is idempotent.
func (d *Dashboard) Teardown() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.tornDown {
		return
	}
	d.tornDown = true
	d.listPoller.Stop()
	d.stopMessagePollLocked()
	log.Debug().Str("business_id", d.businessID.String()).Msg("dashboard torn down")
}
