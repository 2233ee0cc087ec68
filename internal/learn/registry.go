package learn

import (
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/hpungsan/armina/internal/errors"
)

// DefaultSessionTTL applies when no TTL is configured.
const DefaultSessionTTL = time.Hour

// Registry holds live sessions for the web UI and MCP server. Idle sessions
// expire after the TTL; every lookup restarts the clock.
type Registry struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewRegistry returns a registry whose sessions expire after ttl of
// inactivity. A non-positive ttl uses DefaultSessionTTL.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	cleanup := ttl / 6
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &Registry{
		cache: cache.New(ttl, cleanup),
		ttl:   ttl,
	}
}

// Add registers s under its ID.
func (r *Registry) Add(s *Session) {
	r.cache.Set(s.ID, s, cache.DefaultExpiration)
}

// Get returns the live session with id and extends its lifetime.
func (r *Registry) Get(id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if x, found := r.cache.Get(id); found {
		s := x.(*Session)
		r.cache.Set(id, s, cache.DefaultExpiration)
		return s, nil
	}
	return nil, errors.NewSessionNotFound(id)
}

// Remove drops the session with id.
func (r *Registry) Remove(id string) {
	r.cache.Delete(id)
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	return r.cache.ItemCount()
}
