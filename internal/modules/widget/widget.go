package widget

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
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/persist"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/resolver"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/rulestore"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/scheduler"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/session"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/store"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/typing"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
)

var (
	ErrWidgetDisabled = errors.New("widget: business has no settings")
	ErrEmptyMessage   = errors.New("widget: message is empty")
	ErrTornDown       = errors.New("widget: instance was torn down")
	ErrNotInitialized = errors.New("widget: not initialized")
)

// Store is what a widget reads and writes
type Store interface {
	rulestore.Source
	session.Store
	ListMessages(ctx context.Context, sessionID uuid.UUID) ([]models.Message, error)
}

// Deps are the collaborators shared by widget instances
type Deps struct {
	Store        Store
	Resolver     *resolver.Engine
	Scheduler    *scheduler.Scheduler
	Gate         *agent.Gate
	Writes       persist.Config
	OnWriteFail  persist.FailureHook
	PollInterval time.Duration
	TypingDelay  func() time.Duration
}

// SendResult describes what one visitor message produced
type SendResult struct {
	Visitor    models.Message
	Outcome    resolver.Kind
	Reply      *models.Message // set for an immediate reply
	Suppressed bool            // auto reply skipped by the agent policy
}

// State is the visitor-facing view of a widget
type State struct {
	BusinessID   uuid.UUID        `json:"business_id"`
	VisitorID    string           `json:"visitor_id"`
	Enabled      bool             `json:"enabled"`
	SessionID    *uuid.UUID       `json:"session_id,omitempty"`
	Messages     []models.Message `json:"messages"`
	Typing       bool             `json:"typing"`
	Open         bool             `json:"open"`
	BusinessName string           `json:"business_name,omitempty"`
	PrimaryColor string           `json:"primary_color,omitempty"`
	AgentName    string           `json:"sales_representative_name,omitempty"`
}

// Widget is the state container of one embedded widget: one visitor of one
// business. It owns its poll task, typing indicator, pending deferred
// replies and background writes, all released by Teardown.
type Widget struct {
	deps       Deps
	businessID uuid.UUID
	visitorID  string

	rules    *rulestore.Adapter
	sessions *session.Manager
	writer   *persist.Writer
	typing   *typing.Indicator

	sendMu sync.Mutex // one visitor message resolves at a time

	mu         sync.Mutex
	snapshot   *rulestore.Snapshot
	session    *models.Session
	cache      *chatsync.MessageCache // log of session, replaced with it
	poller     *chatsync.MessagePoller
	open       bool
	tornDown   bool
	pending    map[uint64]*time.Timer
	pendingSeq uint64
	lastActive time.Time
}

// New creates an uninitialized widget
func New(deps Deps, businessID uuid.UUID, visitorID string) *Widget {
	if deps.Resolver == nil {
		deps.Resolver = resolver.NewEngine(nil)
	}
	if deps.Gate == nil {
		deps.Gate = agent.NewGate(agent.PolicyAlways, 0)
	}
	if deps.PollInterval <= 0 {
		deps.PollInterval = chatsync.DefaultMessageInterval
	}
	if deps.TypingDelay == nil {
		deps.TypingDelay = typing.RandomTypingDelay
	}

	return &Widget{
		deps:       deps,
		businessID: businessID,
		visitorID:  visitorID,
		rules:      rulestore.NewAdapter(deps.Store),
		sessions:   session.NewManager(deps.Store),
		writer:     persist.NewWriter(deps.Writes, persist.WithFailureHook(deps.OnWriteFail)),
		cache:      chatsync.NewMessageCache(),
		typing:     typing.NewIndicator(nil),
		pending:    make(map[uint64]*time.Timer),
		lastActive: time.Now(),
	}
}

// Init loads settings and rules once and resumes the visitor's active
// session if the store already has one.
func (w *Widget) Init(ctx context.Context) error {
	snap, err := w.rules.Load(ctx, w.businessID)
	if err != nil {
		return fmt.Errorf("failed to initialize widget: %w", err)
	}

	w.mu.Lock()
	w.snapshot = snap
	w.mu.Unlock()

	if !snap.Enabled() {
		return nil
	}

	sessions, err := w.deps.Store.ListSessions(ctx, w.businessID, models.SessionStatusActive)
	if err != nil {
		log.Warn().Err(err).Str("visitor_id", w.visitorID).Msg("could not look up existing session, will create lazily")
		return nil
	}
	for _, s := range sessions {
		if s.VisitorID != w.visitorID {
			continue
		}
		resumed := s.Clone()
		w.mu.Lock()
		w.session = &resumed
		w.mu.Unlock()
		_ = w.Refresh(ctx)
		log.Info().Str("session_id", s.ID.String()).Str("visitor_id", w.visitorID).Msg("resumed session")
		break
	}
	return nil
}

// Enabled reports whether the business has settings
func (w *Widget) Enabled() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot.Enabled()
}

// SendMessage handles one visitor message: local append, background
// persist, policy check, then reply resolution.
func (w *Widget) SendMessage(ctx context.Context, text string) (*SendResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	w.sendMu.Lock()
	defer w.sendMu.Unlock()

	w.mu.Lock()
	if w.tornDown {
		w.mu.Unlock()
		return nil, ErrTornDown
	}
	if w.snapshot == nil {
		w.mu.Unlock()
		return nil, ErrNotInitialized
	}
	snap := w.snapshot
	w.lastActive = time.Now()
	w.mu.Unlock()

	if !snap.Enabled() {
		return nil, ErrWidgetDisabled
	}

	sess, err := w.ensureSession(ctx, snap.Settings)
	if err != nil {
		return nil, err
	}

	visitorMsg := models.NewMessage(sess.ID, models.SenderUser, text, false)
	w.appendTo(sess.ID, visitorMsg)
	w.persist("append visitor message", visitorMsg)

	result := &SendResult{Visitor: visitorMsg, Outcome: resolver.NoReply}

	if !w.autoReplyAllowed(ctx) {
		result.Suppressed = true
		log.Info().Str("session_id", sess.ID.String()).Str("policy", string(w.deps.Gate.Policy())).Msg("auto reply suppressed, agent has joined")
		return result, nil
	}

	w.typing.Show(w.deps.TypingDelay())
	outcome := w.deps.Resolver.Resolve(text, snap.Rules(), snap.Settings)
	result.Outcome = outcome.Kind

	switch outcome.Kind {
	case resolver.Reply:
		reply := w.deliver(sess.ID, outcome)
		result.Reply = &reply
	case resolver.DeferredReply:
		w.typing.Show(outcome.Delay)
		w.schedule(sess.ID, outcome)
	case resolver.NoReply:
		// typing clears on its own timeout
	}

	log.Debug().
		Str("session_id", sess.ID.String()).
		Str("outcome", outcome.Kind.String()).
		Str("source", string(outcome.Source)).
		Msg("visitor message resolved")
	return result, nil
}

// ensureSession creates the session on the first visitor message. The welcome
// message lands in the cache before the visitor's own message. A session an
// agent closed is left behind and the next message starts a new one.
func (w *Widget) ensureSession(ctx context.Context, settings *models.WidgetSettings) (*models.Session, error) {
	w.mu.Lock()
	existing := w.session
	w.mu.Unlock()
	if existing != nil {
		current, err := w.deps.Store.GetSession(ctx, existing.ID)
		switch {
		case err == nil && current.IsActive():
			return existing, nil
		case err == nil, errors.Is(err, store.ErrNotFound):
			log.Info().Str("session_id", existing.ID.String()).Str("visitor_id", w.visitorID).Msg("session was closed, starting a new one")
			w.dropSession(existing.ID)
		default:
			log.Warn().Err(err).Str("session_id", existing.ID.String()).Msg("could not check session status, keeping it")
			return existing, nil
		}
	}

	sess, welcome, err := w.sessions.Create(ctx, w.businessID, w.visitorID, settings)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.session = sess
	w.cache = chatsync.NewMessageCache()
	if welcome != nil {
		w.cache.Append(*welcome)
	}
	if w.open {
		w.startPollLocked()
	}
	return sess, nil
}

// dropSession forgets a closed session together with its poll and the
// deferred replies still owed to it.
func (w *Widget) dropSession(id uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.session == nil || w.session.ID != id {
		return
	}
	w.stopPollLocked()
	for pid, t := range w.pending {
		t.Stop()
		delete(w.pending, pid)
	}
	w.session = nil
}

// appendTo adds msg to the local log if sessionID is still the widget's session
func (w *Widget) appendTo(sessionID uuid.UUID, msg models.Message) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.session == nil || w.session.ID != sessionID {
		return false
	}
	w.cache.Append(msg)
	return true
}

func (w *Widget) currentLog() *chatsync.MessageCache {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cache
}

func (w *Widget) persist(desc string, msg models.Message) {
	w.writer.Submit(desc, func(ctx context.Context) error {
		m := msg
		return w.deps.Store.AppendMessage(ctx, &m)
	})
}

// autoReplyAllowed reads the remote log when the policy depends on it, so
// an agent message sent from the dashboard is seen even between polls. A
// failed read falls back to the cached log.
func (w *Widget) autoReplyAllowed(ctx context.Context) bool {
	if !w.deps.Gate.NeedsFreshLog() {
		return true
	}

	w.mu.Lock()
	sess := w.session
	w.mu.Unlock()

	messages := w.currentLog().Messages()
	if sess != nil {
		fetched, err := w.deps.Store.ListMessages(ctx, sess.ID)
		if err != nil {
			log.Warn().Err(err).Str("session_id", sess.ID.String()).Msg("policy check using cached log")
		} else {
			messages = fetched
		}
	}
	return w.deps.Gate.AllowAutoReply(messages)
}

func (w *Widget) deliver(sessionID uuid.UUID, outcome resolver.Outcome) models.Message {
	reply := models.NewMessage(sessionID, models.SenderBot, outcome.Text, outcome.IsHTML)
	w.typing.Clear()
	if !w.appendTo(sessionID, reply) {
		return reply
	}
	w.persist("append bot reply", reply)
	return reply
}

// schedule arms the timer of a deferred reply. The reply is dropped if the
// widget is torn down first or the agent policy no longer allows it.
func (w *Widget) schedule(sessionID uuid.UUID, outcome resolver.Outcome) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pendingSeq++
	id := w.pendingSeq
	w.pending[id] = time.AfterFunc(outcome.Delay, func() {
		w.mu.Lock()
		_, live := w.pending[id]
		delete(w.pending, id)
		tornDown := w.tornDown
		w.mu.Unlock()
		if !live || tornDown {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if !w.autoReplyAllowed(ctx) {
			w.typing.Clear()
			log.Info().Str("session_id", sessionID.String()).Msg("deferred reply dropped, agent has joined")
			return
		}
		w.deliver(sessionID, outcome)
	})
}

// PendingReplies is the number of deferred replies not yet delivered
func (w *Widget) PendingReplies() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Open shows the widget and starts polling the session's log
func (w *Widget) Open() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.tornDown || w.open {
		return
	}
	w.open = true
	w.lastActive = time.Now()
	if w.session != nil {
		w.startPollLocked()
	}
}

// Close hides the widget and stops polling
func (w *Widget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.open = false
	w.stopPollLocked()
}

func (w *Widget) startPollLocked() {
	if w.poller != nil || w.deps.Scheduler == nil {
		return
	}
	w.poller = chatsync.NewMessagePoller(w.deps.Store, w.session.ID, w.cache, w.onNewMessages)
	w.poller.Start(w.deps.Scheduler, w.taskID(), w.deps.PollInterval)
}

func (w *Widget) stopPollLocked() {
	if w.poller != nil {
		w.poller.Stop()
		w.poller = nil
	}
}

// onNewMessages clears the typing indicator once a bot or agent reply shows up
func (w *Widget) onNewMessages(added []models.Message) {
	for _, m := range added {
		if m.SenderType != models.SenderUser {
			w.typing.Clear()
			return
		}
	}
}

func (w *Widget) taskID() string {
	return "widget:" + w.businessID.String() + ":" + w.visitorID
}

// Refresh polls the session's log once
func (w *Widget) Refresh(ctx context.Context) error {
	w.mu.Lock()
	sess, cache := w.session, w.cache
	w.mu.Unlock()
	if sess == nil {
		return nil
	}
	return chatsync.NewMessagePoller(w.deps.Store, sess.ID, cache, w.onNewMessages).Poll(ctx)
}

// Messages returns a copy of the local log
func (w *Widget) Messages() []models.Message {
	return w.currentLog().Snapshot()
}

// Typing reports whether the typing indicator is on
func (w *Widget) Typing() bool {
	return w.typing.Active()
}

// SessionID returns the session id once one exists
func (w *Widget) SessionID() (uuid.UUID, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.session == nil {
		return uuid.Nil, false
	}
	return w.session.ID, true
}

// State returns the visitor-facing view
func (w *Widget) State() State {
	w.mu.Lock()
	st := State{
		BusinessID: w.businessID,
		VisitorID:  w.visitorID,
		Enabled:    w.snapshot.Enabled(),
		Open:       w.open,
	}
	if w.session != nil {
		id := w.session.ID
		st.SessionID = &id
	}
	if w.snapshot.Enabled() {
		st.BusinessName = w.snapshot.Settings.BusinessName
		st.PrimaryColor = w.snapshot.Settings.PrimaryColor
		st.AgentName = w.snapshot.Settings.SalesRepresentativeName
	}
	w.lastActive = time.Now()
	cache := w.cache
	w.mu.Unlock()

	st.Messages = cache.Snapshot()
	st.Typing = w.typing.Active()
	return st
}

// IdleSince is the last time a visitor touched the widget
func (w *Widget) IdleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastActive
}

// Teardown cancels the poll task and pending deferred replies, clears the
// typing indicator and drains background writes. It is idempotent.
func (w *Widget) Teardown() {
	w.mu.Lock()
	if w.tornDown {
		w.mu.Unlock()
		return
	}
	w.tornDown = true
	w.open = false
	w.stopPollLocked()
	for id, t := range w.pending {
		t.Stop()
		delete(w.pending, id)
	}
	w.mu.Unlock()

	w.typing.Clear()
	w.writer.Stop()
	log.Debug().Str("business_id", w.businessID.String()).Str("visitor_id", w.visitorID).Msg("widget torn down")
}
