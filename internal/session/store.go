// Package session keeps one interaction shell per browser session in a TTL
// cache. Idle sessions expire and their shells are closed.
package session

import (
	"time"

	"github.com/google/uuid"
	"github.com/mhpenta/imageedit/internal/shell"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
)

// Factory builds the shell for a new session.
type Factory func() *shell.Shell

// Store maps session IDs to shells. Access refreshes a session's TTL.
type Store struct {
	cache    *cache.Cache
	newShell Factory
	logger   zerolog.Logger
}

// NewStore returns a store whose sessions expire after ttl of inactivity.
func NewStore(ttl time.Duration, factory Factory, logger zerolog.Logger) *Store {
	c := cache.New(ttl, ttl)
	s := &Store{
		cache:    c,
		newShell: factory,
		logger:   logger,
	}
	c.OnEvicted(func(id string, v interface{}) {
		if sh, ok := v.(*shell.Shell); ok {
			_ = sh.Close()
		}
		s.logger.Debug().Str("session", id).Msg("session closed")
	})
	return s
}

// Create starts a new session.
func (s *Store) Create() (string, *shell.Shell) {
	id := uuid.NewString()
	sh := s.newShell()
	s.cache.SetDefault(id, sh)
	s.logger.Debug().Str("session", id).Int("sessions", s.cache.ItemCount()).Msg("session created")
	return id, sh
}

// Get returns the shell for id and extends its lifetime.
func (s *Store) Get(id string) (*shell.Shell, bool) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	sh, ok := v.(*shell.Shell)
	if !ok {
		return nil, false
	}
	s.cache.SetDefault(id, sh)
	return sh, true
}

// Delete ends a session and closes its shell.
func (s *Store) Delete(id string) bool {
	if _, ok := s.cache.Get(id); !ok {
		return false
	}
	s.cache.Delete(id)
	return true
}

// Count returns the number of sessions, including expired ones not yet swept.
func (s *Store) Count() int {
	return s.cache.ItemCount()
}

// Prune closes every expired session now instead of waiting for the janitor.
func (s *Store) Prune() {
	s.cache.DeleteExpired()
}

// Close ends all sessions.
func (s *Store) Close() {
	s.cache.DeleteExpired()
	for id := range s.cache.Items() {
		s.cache.Delete(id)
	}
}
