package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddTaskRunsPeriodically(t *testing.T) {
	s := NewScheduler()
	s.Start()
	defer s.Stop()

	var runs int32
	s.AddTask("poll", time.Second, func() { atomic.AddInt32(&runs, 1) })

	assert.True(t, s.HasTask("poll"))
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&runs) >= 2 }, 4*time.Second, 50*time.Millisecond)
}

func TestRemoveTaskStopsIt(t *testing.T) {
	s := NewScheduler()
	s.Start()
	defer s.Stop()

	var runs int32
	s.AddTask("poll", time.Second, func() { atomic.AddInt32(&runs, 1) })
	s.RemoveTask("poll")
	s.RemoveTask("unknown")

	time.Sleep(1500 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&runs))
	assert.False(t, s.HasTask("poll"))
	assert.Empty(t, s.Tasks())
}

func TestAddTaskReplacesSameID(t *testing.T) {
	s := NewScheduler()

	s.AddTask("a", time.Minute, func() {})
	s.AddTask("a", time.Minute, func() {})
	s.AddTask("b", time.Minute, func() {})

	assert.ElementsMatch(t, []string{"a", "b"}, s.Tasks())
	assert.Len(t, s.cron.Entries(), 2)
}

func TestAddSpecRejectsBadExpression(t *testing.T) {
	s := NewScheduler()

	require.NoError(t, s.AddSpec("sweep", "@every 1m", func() {}))
	assert.Error(t, s.AddSpec("bad", "not a cron", func() {}))
	assert.False(t, s.HasTask("bad"))
}

func TestSlowTaskIsNotOverlapped(t *testing.T) {
	s := NewScheduler()
	s.Start()
	defer s.Stop()

	var running, overlapped int32
	s.AddTask("slow", time.Second, func() {
		if atomic.AddInt32(&running, 1) > 1 {
			atomic.StoreInt32(&overlapped, 1)
		}
		time.Sleep(1500 * time.Millisecond)
		atomic.AddInt32(&running, -1)
	})

	time.Sleep(3500 * time.Millisecond)
	s.RemoveTask("slow")
	assert.Equal(t, int32(0), atomic.LoadInt32(&overlapped))
}
