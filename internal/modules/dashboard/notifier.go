package dashboard

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Notice is one operator-visible failure
type Notice struct {
	Op      string    `json:"op"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier surfaces failures of operator-initiated actions
type Notifier interface {
	Notify(op string, err error)
}

// LogNotifier only logs
type LogNotifier struct{}

func (LogNotifier) Notify(op string, err error) {
	log.Error().Err(err).Str("op", op).Msg("❌ dashboard action failed")
}

// Toasts keeps the most recent notices until they are drained
type Toasts struct {
	mu      sync.Mutex
	limit   int
	notices []Notice
}

// NewToasts keeps at most limit notices, dropping the oldest
func NewToasts(limit int) *Toasts {
	if limit <= 0 {
		limit = 20
	}
	return &Toasts{limit: limit}
}

func (t *Toasts) Notify(op string, err error) {
	LogNotifier{}.Notify(op, err)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.notices = append(t.notices, Notice{Op: op, Message: err.Error(), At: time.Now()})
	if over := len(t.notices) - t.limit; over > 0 {
		t.notices = t.notices[over:]
	}
}

// Drain returns and forgets the pending notices
func (t *Toasts) Drain() []Notice {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := t.notices
	t.notices = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}
