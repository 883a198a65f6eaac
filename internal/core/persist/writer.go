package persist

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// WriteFunc performs one store write
type WriteFunc func(ctx context.Context) error

// FailureHook is told about writes that exhausted their retries
type FailureHook func(desc string, err error)

// Config controls retries of a Writer
type Config struct {
	MaxRetries int           // retries after the first attempt
	BaseDelay  time.Duration // backoff before retry n is BaseDelay * 2^n
	MaxDelay   time.Duration
	Timeout    time.Duration // per attempt
}

// DefaultConfig is used for zero-valued fields
var DefaultConfig = Config{
	MaxRetries: 3,
	BaseDelay:  250 * time.Millisecond,
	MaxDelay:   5 * time.Second,
	Timeout:    10 * time.Second,
}

// Writer runs store writes in the background after the caller has already
// applied them locally. Failed writes are retried with exponential backoff;
// nothing is rolled back when retries run out.
type Writer struct {
	config    Config
	onFailure FailureHook

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

// Option configures a Writer
type Option func(*Writer)

// WithFailureHook registers a hook for exhausted writes
func WithFailureHook(hook FailureHook) Option {
	return func(w *Writer) {
		w.onFailure = hook
	}
}

// NewWriter creates a background writer
func NewWriter(config Config, opts ...Option) *Writer {
	if config.MaxRetries < 0 {
		config.MaxRetries = 0
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = DefaultConfig.BaseDelay
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = DefaultConfig.MaxDelay
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig.Timeout
	}

	w := &Writer{config: config}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Submit schedules fn and returns immediately. It reports false when the
// writer has been stopped.
func (w *Writer) Submit(desc string, fn WriteFunc) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		log.Warn().Str("write", desc).Msg("writer stopped, write dropped")
		return false
	}

	w.wg.Add(1)
	go w.run(desc, fn)
	return true
}

func (w *Writer) run(desc string, fn WriteFunc) {
	defer w.wg.Done()

	var err error
	for attempt := 0; attempt <= w.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := calculateBackoff(attempt-1, w.config.BaseDelay, w.config.MaxDelay)
			log.Debug().Str("write", desc).Int("attempt", attempt).Dur("backoff", delay).Msg("retrying write")
			time.Sleep(delay)
		}

		ctx, cancel := context.WithTimeout(context.Background(), w.config.Timeout)
		err = fn(ctx)
		cancel()
		if err == nil {
			return
		}
		log.Warn().Err(err).Str("write", desc).Int("attempt", attempt+1).Msg("write failed")
	}

	log.Error().Err(err).Str("write", desc).Msg("❌ write abandoned after retries, local state kept")
	if w.onFailure != nil {
		w.onFailure(desc, err)
	}
}

// Wait blocks until every submitted write finished or was abandoned
func (w *Writer) Wait() {
	w.wg.Wait()
}

// Stop refuses new writes and drains the in-flight ones
func (w *Writer) Stop() {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()

	w.wg.Wait()
}

// calculateBackoff is base * 2^attempt, capped at max
func calculateBackoff(attempt int, base, max time.Duration) time.Duration {
	if attempt > 30 {
		return max
	}
	backoff := base * time.Duration(1<<attempt)
	if backoff > max || backoff <= 0 {
		backoff = max
	}
	return backoff
}
