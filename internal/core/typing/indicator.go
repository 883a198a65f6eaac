package typing

import (
	"math/rand"
	"sync"
	"time"
)

// Indicator is the simulated "bot is typing" flag of one widget. It is purely
// local state and never persisted.
type Indicator struct {
	mu         sync.Mutex
	active     bool
	generation uint64
	timer      *time.Timer
	onChange   func(active bool)
}

// NewIndicator creates an indicator. onChange, when set, is called after every
// transition with the lock released.
func NewIndicator(onChange func(active bool)) *Indicator {
	return &Indicator{onChange: onChange}
}

// Show turns the indicator on and clears it after d. A later Show or Clear
// supersedes the pending timeout.
func (i *Indicator) Show(d time.Duration) {
	i.mu.Lock()
	i.generation++
	gen := i.generation
	if i.timer != nil {
		i.timer.Stop()
	}
	changed := !i.active
	i.active = true
	i.timer = time.AfterFunc(d, func() {
		i.expire(gen)
	})
	i.mu.Unlock()

	if changed {
		i.notify(true)
	}
}

// Clear turns the indicator off immediately
func (i *Indicator) Clear() {
	i.mu.Lock()
	i.generation++
	if i.timer != nil {
		i.timer.Stop()
		i.timer = nil
	}
	changed := i.active
	i.active = false
	i.mu.Unlock()

	if changed {
		i.notify(false)
	}
}

func (i *Indicator) expire(gen uint64) {
	i.mu.Lock()
	if gen != i.generation || !i.active {
		i.mu.Unlock()
		return
	}
	i.active = false
	i.timer = nil
	i.mu.Unlock()

	i.notify(false)
}

// Active reports whether the indicator is on
func (i *Indicator) Active() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.active
}

func (i *Indicator) notify(active bool) {
	if i.onChange != nil {
		i.onChange(active)
	}
}

var (
	rndMu sync.Mutex
	rnd   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandomTypingDelay is uniform in [1s, 3s)
func RandomTypingDelay() time.Duration {
	rndMu.Lock()
	defer rndMu.Unlock()
	return time.Second + time.Duration(rnd.Int63n(int64(2*time.Second)))
}
