package dashboard

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// StoreFactory returns the store view scoped to one business
type StoreFactory func(businessID uuid.UUID) Store

// Registry holds one dashboard per business for the chat API
type Registry struct {
	deps   Deps
	stores StoreFactory
	toasts map[uuid.UUID]*Toasts

	mu         sync.Mutex
	dashboards map[uuid.UUID]*Dashboard
}

// NewRegistry creates a registry. deps.Store and deps.Notifier are set per
// business.
func NewRegistry(deps Deps, stores StoreFactory) *Registry {
	return &Registry{
		deps:       deps,
		stores:     stores,
		toasts:     make(map[uuid.UUID]*Toasts),
		dashboards: make(map[uuid.UUID]*Dashboard),
	}
}

// Get returns the business's dashboard, creating and initializing it on first use
func (r *Registry) Get(ctx context.Context, businessID uuid.UUID) (*Dashboard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d, ok := r.dashboards[businessID]; ok {
		return d, nil
	}

	toasts := NewToasts(0)
	deps := r.deps
	deps.Store = r.stores(businessID)
	deps.Notifier = toasts

	d := New(deps, businessID)
	if err := d.Init(ctx); err != nil {
		d.Teardown()
		return nil, err
	}
	r.dashboards[businessID] = d
	r.toasts[businessID] = toasts
	log.Info().Str("business_id", businessID.String()).Msg("📋 dashboard instance created")
	return d, nil
}

// Notices drains the pending failure notices of a business
func (r *Registry) Notices(businessID uuid.UUID) []Notice {
	r.mu.Lock()
	t, ok := r.toasts[businessID]
	r.mu.Unlock()
	if !ok {
		return []Notice{}
	}
	return t.Drain()
}

// Close tears down every dashboard
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, d := range r.dashboards {
		d.Teardown()
		delete(r.dashboards, id)
		delete(r.toasts, id)
	}
}
