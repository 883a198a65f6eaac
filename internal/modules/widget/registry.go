package widget

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/micro-system-chat-widget-be/internal/core/scheduler"
)

// StoreFactory returns the store view scoped to one business
type StoreFactory func(businessID uuid.UUID) Store

type key struct {
	businessID uuid.UUID
	visitorID  string
}

// Registry holds the live widget instances of the chat API, one per
// (business, visitor). Idle instances are torn down by a periodic sweep.
type Registry struct {
	deps    Deps
	stores  StoreFactory
	idleTTL time.Duration

	mu      sync.Mutex
	widgets map[key]*Widget
}

// NewRegistry creates a registry. deps.Store is ignored; each widget gets the
// store of its business from stores.
func NewRegistry(deps Deps, stores StoreFactory, idleTTL time.Duration) *Registry {
	if idleTTL <= 0 {
		idleTTL = 30 * time.Minute
	}
	return &Registry{
		deps:    deps,
		stores:  stores,
		idleTTL: idleTTL,
		widgets: make(map[key]*Widget),
	}
}

// Get returns the visitor's widget, creating and initializing it on first use
func (r *Registry) Get(ctx context.Context, businessID uuid.UUID, visitorID string) (*Widget, error) {
	k := key{businessID, visitorID}

	r.mu.Lock()
	w, ok := r.widgets[k]
	r.mu.Unlock()
	if ok {
		return w, nil
	}

	deps := r.deps
	deps.Store = r.stores(businessID)
	fresh := New(deps, businessID, visitorID)
	if err := fresh.Init(ctx); err != nil {
		fresh.Teardown()
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.widgets[k]; ok {
		// Lost a race with a concurrent first request
		go fresh.Teardown()
		return existing, nil
	}
	r.widgets[k] = fresh
	log.Info().Str("business_id", businessID.String()).Str("visitor_id", visitorID).Msg("🧩 widget instance created")
	return fresh, nil
}

// Lookup returns an existing widget without creating one
func (r *Registry) Lookup(businessID uuid.UUID, visitorID string) (*Widget, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.widgets[key{businessID, visitorID}]
	return w, ok
}

// Remove tears one widget down. It reports whether it existed.
func (r *Registry) Remove(businessID uuid.UUID, visitorID string) bool {
	k := key{businessID, visitorID}

	r.mu.Lock()
	w, ok := r.widgets[k]
	delete(r.widgets, k)
	r.mu.Unlock()

	if ok {
		w.Teardown()
	}
	return ok
}

// Len is the number of live widgets
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.widgets)
}

// Sweep tears down widgets idle for longer than the TTL
func (r *Registry) Sweep(now time.Time) int {
	var idle []*Widget

	r.mu.Lock()
	for k, w := range r.widgets {
		if now.Sub(w.IdleSince()) > r.idleTTL {
			idle = append(idle, w)
			delete(r.widgets, k)
		}
	}
	r.mu.Unlock()

	for _, w := range idle {
		w.Teardown()
	}
	if len(idle) > 0 {
		log.Info().Int("count", len(idle)).Msg("🧹 idle widgets torn down")
	}
	return len(idle)
}

// StartSweeper runs Sweep on the given cron spec
func (r *Registry) StartSweeper(sched *scheduler.Scheduler, spec string) error {
	return sched.AddSpec("widget-idle-sweep", spec, func() {
		r.Sweep(time.Now())
	})
}

// Close tears down every widget
func (r *Registry) Close() {
	r.mu.Lock()
	all := make([]*Widget, 0, len(r.widgets))
	for k, w := range r.widgets {
		all = append(all, w)
		delete(r.widgets, k)
	}
	r.mu.Unlock()

	var wg sync.WaitGroup
	for _, w := range all {
		wg.Add(1)
		go func(w *Widget) {
			defer wg.Done()
			w.Teardown()
		}(w)
	}
	wg.Wait()
}
