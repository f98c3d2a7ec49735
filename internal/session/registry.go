package session

import (
	"errors"
	"sync"

	"backend-driftline/internal/auth"
	"backend-driftline/internal/blob"
	"backend-driftline/internal/profile"

	"github.com/redis/go-redis/v9"
)

var ErrNotSignedIn = errors.New("not signed in")

// Registry hands out one session store per client/device ID.
type Registry struct {
	auth     *auth.Service
	profiles *profile.Repository
	blobs    blob.Store
	redis    *redis.Client

	// OnSignOut lets the server evict dependent per-user state (the feed
	// timeline) when a session ends.
	OnSignOut func(userID string)

	mu     sync.Mutex
	stores map[string]*Store
}

func NewRegistry(authSvc *auth.Service, profiles *profile.Repository, blobs blob.Store, redisClient *redis.Client) *Registry {
	return &Registry{
		auth:     authSvc,
		profiles: profiles,
		blobs:    blobs,
		redis:    redisClient,
		stores:   map[string]*Store{},
	}
}

func (r *Registry) For(clientID string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	if store, ok := r.stores[clientID]; ok {
		return store
	}
	store := NewStore(r.auth, r.profiles, r.blobs, r.redis, clientID)
	r.stores[clientID] = store
	return store
}
