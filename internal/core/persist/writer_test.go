package persist

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fastConfig(retries int) Config {
	return Config{MaxRetries: retries, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Timeout: time.Second}
}

func TestWriterRetriesTransientFailures(t *testing.T) {
	var calls int32
	var failed bool
	w := NewWriter(fastConfig(3), WithFailureHook(func(string, error) { failed = true }))

	ok := w.Submit("append message", func(ctx context.Context) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("503")
		}
		return nil
	})
	w.Wait()

	assert.True(t, ok)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.False(t, failed)
}

func TestWriterReportsExhaustedWrites(t *testing.T) {
	var calls int32
	var mu sync.Mutex
	var gotDesc string
	var gotErr error
	boom := errors.New("store down")

	w := NewWriter(fastConfig(2), WithFailureHook(func(desc string, err error) {
		mu.Lock()
		defer mu.Unlock()
		gotDesc, gotErr = desc, err
	}))

	w.Submit("patch session", func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return boom
	})
	w.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, "patch session", gotDesc)
	assert.ErrorIs(t, gotErr, boom)
}

func TestWriterPassesDeadline(t *testing.T) {
	w := NewWriter(fastConfig(0))
	var hasDeadline bool

	w.Submit("x", func(ctx context.Context) error {
		_, hasDeadline = ctx.Deadline()
		return nil
	})
	w.Wait()

	assert.True(t, hasDeadline)
}

func TestWriterStopRejectsNewWrites(t *testing.T) {
	w := NewWriter(fastConfig(0))
	var calls int32

	w.Submit("before", func(ctx context.Context) error {
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&calls, 1)
		return nil
	})
	w.Stop()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.False(t, w.Submit("after", func(ctx context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCalculateBackoff(t *testing.T) {
	base := 100 * time.Millisecond
	max := time.Second

	assert.Equal(t, 100*time.Millisecond, calculateBackoff(0, base, max))
	assert.Equal(t, 200*time.Millisecond, calculateBackoff(1, base, max))
	assert.Equal(t, 800*time.Millisecond, calculateBackoff(3, base, max))
	assert.Equal(t, time.Second, calculateBackoff(4, base, max))
	assert.Equal(t, time.Second, calculateBackoff(62, base, max))
}
