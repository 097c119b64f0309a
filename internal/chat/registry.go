package chat

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"carsight/internal/llm"
)

// Registry keeps live sessions addressable across requests. It is a
// process-local LRU with per-entry TTL: idle or evicted sessions are closed,
// nothing survives a restart.
type Registry struct {
	cache *expirable.LRU[string, *Session]
	llm   llm.Client
	model string
}

func NewRegistry(client llm.Client, model string, maxSessions int, ttl time.Duration) *Registry {
	if maxSessions <= 0 {
		maxSessions = 128
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	onEvict := func(_ string, s *Session) {
		if s != nil {
			s.Close()
		}
	}
	return &Registry{
		cache: expirable.NewLRU[string, *Session](maxSessions, onEvict, ttl),
		llm:   client,
		model: model,
	}
}

// Create opens a new session bound to the given vehicle label and returns
// its id.
func (r *Registry) Create(vehicleLabel string) (string, *Session) {
	id := uuid.NewString()
	s := NewSession(r.llm, r.model, vehicleLabel)
	r.cache.Add(id, s)
	return id, s
}

// Get returns the live session for id, if any.
func (r *Registry) Get(id string) (*Session, bool) {
	return r.cache.Get(id)
}

// Close tears down the session for id. Returns false if it was not live.
func (r *Registry) Close(id string) bool {
	s, ok := r.cache.Get(id)
	if !ok {
		return false
	}
	s.Close()
	r.cache.Remove(id)
	return true
}

// Len reports the number of live sessions.
func (r *Registry) Len() int { return r.cache.Len() }
