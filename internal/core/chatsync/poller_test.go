package chatsync

import (
	"context"
	"errors"
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

type brokenStore struct{}

func (brokenStore) ListMessages(context.Context, uuid.UUID) ([]models.Message, error) {
	return nil, errors.New("timeout")
}

func (brokenStore) ListSessions(context.Context, uuid.UUID, models.SessionStatus) ([]models.Session, error) {
	return nil, errors.New("timeout")
}

func TestMessagePollerDetectsRemoteAppend(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	s := &models.Session{BusinessID: uuid.New(), VisitorID: "v"}
	require.NoError(t, mem.CreateSession(ctx, s))

	var seen []models.Message
	cache := NewMessageCache()
	p := NewMessagePoller(mem, s.ID, cache, func(added []models.Message) { seen = append(seen, added...) })

	require.NoError(t, p.Poll(ctx))
	assert.Equal(t, 0, cache.Len())

	agent := models.NewMessage(s.ID, models.SenderAgent, "hello from agent", false)
	require.NoError(t, mem.AppendMessage(ctx, &agent))
	require.NoError(t, p.Poll(ctx))

	assert.Equal(t, 1, cache.Len())
	require.Len(t, seen, 1)
	assert.Equal(t, agent.ID, seen[0].ID)
}

func TestMessagePollerKeepsCacheOnFailure(t *testing.T) {
	cache := NewMessageCache()
	cache.Append(models.NewMessage(uuid.New(), models.SenderUser, "mine", false))
	p := NewMessagePoller(brokenStore{}, uuid.New(), cache, nil)

	assert.Error(t, p.Poll(context.Background()))
	assert.Equal(t, 1, cache.Len())
}

func TestSessionListPollerClearsSelectionOfClosedSession(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	business := uuid.New()
	s := &models.Session{BusinessID: business, VisitorID: "v"}
	require.NoError(t, mem.CreateSession(ctx, s))

	var cleared int32
	list := NewSessionList()
	p := NewSessionListPoller(mem, business, list, func() { atomic.AddInt32(&cleared, 1) })
	require.NoError(t, p.Poll(ctx))
	require.True(t, list.Select(s.ID))

	closed := models.SessionStatusClosed
	_, err := mem.PatchSession(ctx, s.ID, models.SessionPatch{Status: &closed}, 0)
	require.NoError(t, err)
	require.NoError(t, p.Poll(ctx))

	assert.Equal(t, int32(1), atomic.LoadInt32(&cleared))
	assert.Empty(t, list.Sessions())
}

func TestSessionListPollerKeepsListOnFailure(t *testing.T) {
	list := NewSessionList()
	list.Apply([]models.Session{session("a")})
	p := NewSessionListPoller(brokenStore{}, uuid.New(), list, nil)

	assert.Error(t, p.Poll(context.Background()))
	assert.Len(t, list.Sessions(), 1)
}

func TestScheduledPollerStopsOnTeardown(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	s := &models.Session{BusinessID: uuid.New(), VisitorID: "v"}
	require.NoError(t, mem.CreateSession(ctx, s))

	sched := scheduler.NewScheduler()
	sched.Start()
	defer sched.Stop()

	cache := NewMessageCache()
	p := NewMessagePoller(mem, s.ID, cache, nil)
	p.Start(sched, "messages:"+s.ID.String(), time.Second)
	assert.True(t, sched.HasTask("messages:"+s.ID.String()))

	msg := models.NewMessage(s.ID, models.SenderBot, "hi", false)
	require.NoError(t, mem.AppendMessage(ctx, &msg))
	assert.Eventually(t, func() bool { return cache.Len() == 1 }, 3*time.Second, 50*time.Millisecond)

	p.Stop()
	assert.False(t, sched.HasTask("messages:"+s.ID.String()))
}
