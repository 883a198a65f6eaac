package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/scheduler"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/store"
	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/modules/chat/models"
)

type recorder struct {
	mu  sync.Mutex
	ops []string
}

func (r *recorder) Notify(op string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
}

func (r *recorder) Ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ops...)
}

type fixture struct {
	mem      *store.Memory
	business uuid.UUID
	notes    *recorder
}

func newFixture() *fixture {
	f := &fixture{mem: store.NewMemory(), business: uuid.New(), notes: &recorder{}}
	f.mem.AddSettingsRow(models.WidgetSettings{BusinessID: f.business, BusinessName: "Acme"})
	return f
}

func (f *fixture) session(t *testing.T, visitor string) models.Session {
	t.Helper()
	s := &models.Session{BusinessID: f.business, VisitorID: visitor}
	require.NoError(t, f.mem.CreateSession(context.Background(), s))
	return *s
}

func (f *fixture) dashboard(t *testing.T, s Store, sched *scheduler.Scheduler) *Dashboard {
	t.Helper()
	if s == nil {
		s = f.mem
	}
	d := New(Deps{Store: s, Scheduler: sched, Notifier: f.notes}, f.business)
	require.NoError(t, d.Init(context.Background()))
	t.Cleanup(d.Teardown)
	return d
}

func TestInitLoadsSettingsAndSessions(t *testing.T) {
	f := newFixture()
	f.session(t, "v1")
	f.session(t, "v2")

	d := f.dashboard(t, nil, nil)

	require.NotNil(t, d.Settings())
	assert.Equal(t, "Acme", d.Settings().BusinessName)
	assert.Len(t, d.Sessions(), 2)
	_, selected := d.Selected()
	assert.False(t, selected)
}

func TestInitWithoutSettings(t *testing.T) {
	mem := store.NewMemory()
	d := New(Deps{Store: mem}, uuid.New())
	require.NoError(t, d.Init(context.Background()))
	assert.Nil(t, d.Settings())
	assert.Empty(t, d.Sessions())
}

func TestSelectLoadsLog(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	s := f.session(t, "v1")
	m := models.NewMessage(s.ID, models.SenderUser, "hi there", false)
	require.NoError(t, f.mem.AppendMessage(ctx, &m))

	d := f.dashboard(t, nil, nil)

	assert.ErrorIs(t, d.Select(ctx, uuid.New()), ErrUnknownSession)
	assert.ErrorIs(t, d.RefreshMessages(ctx), ErrNoSelection)

	require.NoError(t, d.Select(ctx, s.ID))
	require.Len(t, d.Messages(), 1)
	assert.Equal(t, "hi there", d.Messages()[0].Body)

	d.Deselect()
	assert.Empty(t, d.Messages())
}

func TestSelectionClearedWhenSessionLeavesActiveList(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	s := f.session(t, "v1")
	d := f.dashboard(t, nil, nil)
	require.NoError(t, d.Select(ctx, s.ID))

	closed := models.SessionStatusClosed
	_, err := f.mem.PatchSession(ctx, s.ID, models.SessionPatch{Status: &closed}, 0)
	require.NoError(t, err)

	require.NoError(t, d.RefreshSessions(ctx))
	_, selected := d.Selected()
	assert.False(t, selected)
	assert.Empty(t, d.Sessions())
}

func TestCloseRemovesSessionLocally(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.session(t, "v1")
	b := f.session(t, "v2")
	d := f.dashboard(t, nil, nil)
	require.NoError(t, d.Select(ctx, a.ID))

	require.NoError(t, d.Close(ctx, a.ID))

	_, selected := d.Selected()
	assert.False(t, selected)
	require.Len(t, d.Sessions(), 1)
	assert.Equal(t, b.ID, d.Sessions()[0].ID)

	stored, err := f.mem.GetSession(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusClosed, stored.Status)
}

func TestCloseManyKeepsGoingPastFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.session(t, "v1")
	b := f.session(t, "v2")
	d := f.dashboard(t, nil, nil)

	closed, err := d.CloseMany(ctx, []uuid.UUID{a.ID, uuid.New(), b.ID})

	assert.ErrorIs(t, err, ErrUnknownSession)
	assert.Equal(t, []uuid.UUID{a.ID, b.ID}, closed)
	assert.Empty(t, d.Sessions())
	assert.Equal(t, []string{"close sessions"}, f.notes.Ops())
}

func TestSessionsOfOtherBusinessesAreRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	own := f.session(t, "v1")
	foreign := &models.Session{BusinessID: uuid.New(), VisitorID: "v9"}
	require.NoError(t, f.mem.CreateSession(ctx, foreign))
	d := f.dashboard(t, nil, nil)

	assert.ErrorIs(t, d.Close(ctx, foreign.ID), ErrUnknownSession)
	_, err := d.UpdateMetadata(ctx, foreign.ID, models.Metadata{"note": "x"})
	assert.ErrorIs(t, err, ErrUnknownSession)
	_, err = d.Pin(ctx, foreign.ID, true)
	assert.ErrorIs(t, err, ErrUnknownSession)
	_, err = d.Label(ctx, foreign.ID, models.Label{Text: "VIP"})
	assert.ErrorIs(t, err, ErrUnknownSession)
	_, err = d.Note(ctx, foreign.ID, "x")
	assert.ErrorIs(t, err, ErrUnknownSession)
	_, err = d.RenameVisitor(ctx, foreign.ID, "Eve")
	assert.ErrorIs(t, err, ErrUnknownSession)

	closed, err := d.CloseMany(ctx, []uuid.UUID{foreign.ID, own.ID})
	assert.ErrorIs(t, err, ErrUnknownSession)
	assert.Equal(t, []uuid.UUID{own.ID}, closed)

	stored, err := f.mem.GetSession(ctx, foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusActive, stored.Status)
	assert.Equal(t, 1, stored.Version)
	assert.Empty(t, stored.Metadata)
}

func TestOwnSessionOutsideActiveListIsAccepted(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	d := f.dashboard(t, nil, nil)
	// created after the last list refresh
	late := f.session(t, "v2")

	_, err := d.Note(ctx, late.ID, "came in late")
	require.NoError(t, err)
	require.NoError(t, d.Close(ctx, late.ID))
}

func TestMetadataHelpersUpdateList(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	s := f.session(t, "v1")
	d := f.dashboard(t, nil, nil)

	_, err := d.Pin(ctx, s.ID, true)
	require.NoError(t, err)
	_, err = d.Label(ctx, s.ID, models.Label{Text: "VIP", Color: "#ff0000"})
	require.NoError(t, err)
	_, err = d.Note(ctx, s.ID, "wants a callback")
	require.NoError(t, err)
	updated, err := d.RenameVisitor(ctx, s.ID, "Dana")
	require.NoError(t, err)

	listed := d.Sessions()[0]
	assert.True(t, listed.Metadata.Pinned())
	assert.Equal(t, "wants a callback", listed.Metadata.Note())
	assert.Equal(t, "Dana", listed.Metadata.VisitorName())
	label, ok := listed.Metadata.Label()
	require.True(t, ok)
	assert.Equal(t, "VIP", label.Text)
	assert.Equal(t, 5, updated.Version)
}

func TestMetadataFailureIsNotified(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	d := f.dashboard(t, nil, nil)

	_, err := d.Note(ctx, uuid.New(), "x")
	assert.ErrorIs(t, err, ErrUnknownSession)
	assert.Equal(t, []string{"save note"}, f.notes.Ops())
}

func TestSendAgentMessage(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	s := f.session(t, "v1")
	d := f.dashboard(t, nil, nil)

	_, err := d.SendAgentMessage(ctx, "hello")
	assert.ErrorIs(t, err, ErrAgentModeDisabled)

	d.SetAgentMode(true)
	_, err = d.SendAgentMessage(ctx, "hello")
	assert.ErrorIs(t, err, ErrNoSelection)

	require.NoError(t, d.Select(ctx, s.ID))
	msg, err := d.SendAgentMessage(ctx, "Hi, I'm Sam")
	require.NoError(t, err)
	assert.Equal(t, models.SenderAgent, msg.SenderType)

	require.Len(t, d.Messages(), 1)
	stored, err := f.mem.ListMessages(ctx, s.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, models.SenderAgent, stored[0].SenderType)

	// the poll sees the stored copy and does not duplicate it
	require.NoError(t, d.RefreshMessages(ctx))
	assert.Len(t, d.Messages(), 1)
}

// gatedLog blocks ListMessages of one session until released
type gatedLog struct {
	*store.Memory
	session uuid.UUID
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (g *gatedLog) ListMessages(ctx context.Context, sessionID uuid.UUID) ([]models.Message, error) {
	if sessionID == g.session && g.armed.CompareAndSwap(true, false) {
		g.entered <- struct{}{}
		<-g.release
	}
	return g.Memory.ListMessages(ctx, sessionID)
}

func TestStalePollDoesNotLeakIntoNewSelection(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.session(t, "v1")
	b := f.session(t, "v2")
	for _, body := range []string{"first from a", "second from a"} {
		m := models.NewMessage(a.ID, models.SenderUser, body, false)
		require.NoError(t, f.mem.AppendMessage(ctx, &m))
	}
	mb := models.NewMessage(b.ID, models.SenderUser, "only from b", false)
	require.NoError(t, f.mem.AppendMessage(ctx, &mb))

	gate := &gatedLog{Memory: f.mem, session: a.ID, entered: make(chan struct{}), release: make(chan struct{})}
	d := f.dashboard(t, gate, nil)
	require.NoError(t, d.Select(ctx, a.ID))

	// a poll of a starts and hangs in the store
	gate.armed.Store(true)
	done := make(chan error, 1)
	go func() { done <- d.RefreshMessages(ctx) }()
	<-gate.entered

	require.NoError(t, d.Select(ctx, b.ID))
	close(gate.release)
	require.NoError(t, <-done)

	got := d.Messages()
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].SessionID)
	assert.Equal(t, "only from b", got[0].Body)

	// an agent message lands in b only
	d.SetAgentMode(true)
	_, err := d.SendAgentMessage(ctx, "hello b")
	require.NoError(t, err)
	got = d.Messages()
	require.Len(t, got, 2)
	for _, m := range got {
		assert.Equal(t, b.ID, m.SessionID)
	}
}

func TestStalePollDoesNotRefillAfterDeselect(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.session(t, "v1")
	m := models.NewMessage(a.ID, models.SenderUser, "hi", false)
	require.NoError(t, f.mem.AppendMessage(ctx, &m))

	gate := &gatedLog{Memory: f.mem, session: a.ID, entered: make(chan struct{}), release: make(chan struct{})}
	d := f.dashboard(t, gate, nil)
	require.NoError(t, d.Select(ctx, a.ID))

	gate.armed.Store(true)
	done := make(chan error, 1)
	go func() { done <- d.RefreshMessages(ctx) }()
	<-gate.entered

	d.Deselect()
	close(gate.release)
	require.NoError(t, <-done)

	assert.Empty(t, d.Messages())
}

type brokenAppends struct {
	*store.Memory
}

func (brokenAppends) AppendMessage(context.Context, *models.Message) error {
	return errors.New("store unavailable")
}

func TestAgentMessageKeptLocallyWhenWriteFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	s := f.session(t, "v1")
	d := f.dashboard(t, brokenAppends{f.mem}, nil)
	d.SetAgentMode(true)
	require.NoError(t, d.Select(ctx, s.ID))

	_, err := d.SendAgentMessage(ctx, "are you there?")

	assert.Error(t, err)
	assert.Len(t, d.Messages(), 1)
	assert.Equal(t, []string{"send message"}, f.notes.Ops())
}

func TestPollsScheduledAndStoppedOnTeardown(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	s := f.session(t, "v1")
	sched := scheduler.NewScheduler()
	sched.Start()
	defer sched.Stop()

	d := f.dashboard(t, nil, sched)
	assert.Len(t, sched.Tasks(), 1)

	require.NoError(t, d.Select(ctx, s.ID))
	assert.Len(t, sched.Tasks(), 2)

	d.Deselect()
	assert.Len(t, sched.Tasks(), 1)

	d.Teardown()
	d.Teardown()
	assert.Empty(t, sched.Tasks())
	assert.ErrorIs(t, d.Select(ctx, s.ID), ErrTornDown)
}

func TestToastsDropOldest(t *testing.T) {
	toasts := NewToasts(2)
	toasts.Notify("a", errors.New("1"))
	toasts.Notify("b", errors.New("2"))
	toasts.Notify("c", errors.New("3"))

	got := toasts.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Op)
	assert.Equal(t, "c", got[1].Op)
	assert.WithinDuration(t, time.Now(), got[1].At, time.Second)
	assert.Empty(t, toasts.Drain())
}

func TestRegistryOnePerBusiness(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	r := NewRegistry(Deps{}, func(uuid.UUID) Store { return f.mem })
	defer r.Close()

	a, err := r.Get(ctx, f.business)
	require.NoError(t, err)
	b, err := r.Get(ctx, f.business)
	require.NoError(t, err)
	assert.Same(t, a, b)

	_, err = a.Note(ctx, uuid.New(), "x")
	require.Error(t, err)
	notices := r.Notices(f.business)
	require.Len(t, notices, 1)
	assert.Equal(t, "save note", notices[0].Op)
	assert.Empty(t, r.Notices(uuid.New()))
}
