package feed

import (
	"sync"

	"backend-driftline/internal/blob"
)

// Registry hands out one Store per viewer so timeline state survives across
// requests. The empty viewer ID shares a single anonymous store.
type Registry struct {
	gw    Gateway
	blobs blob.Store

	mu     sync.Mutex
	stores map[string]*Store
}

func NewRegistry(gw Gateway, blobs blob.Store) *Registry {
	return &Registry{
		gw:     gw,
		blobs:  blobs,
		stores: map[string]*Store{},
	}
}

func (r *Registry) For(viewerID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	if store, ok := r.stores[viewerID]; ok {
		return store
	}
	store := NewStore(r.gw, r.blobs, viewerID)
	r.stores[viewerID] = store
	return store
}

// Drop invalidates and forgets a viewer's store; used on sign-out so a stale
// timeline cannot be served to the next session.
func (r *Registry) Drop(viewerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if store, ok := r.stores[viewerID]; ok {
		store.Invalidate()
		delete(r.stores, viewerID)
	}
}
