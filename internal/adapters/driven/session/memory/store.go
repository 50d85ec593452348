// Package memory provides an in-process driven.SessionStore with idle
// expiry.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/repoqa/internal/core/domain"
	"github.com/custodia-labs/repoqa/internal/core/ports/driven"
	"github.com/custodia-labs/repoqa/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.SessionStore = (*Store)(nil)

type entry struct {
	session  *domain.Session
	lastSeen time.Time
}

// Store keeps sessions in memory. A session untouched (no Save or Get) for
// longer than the idle TTL is treated as gone.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	now      func() time.Time

	// OnEvict is called (outside the lock) for each expired session, so
	// owners can release per-session resources such as vector collections.
	OnEvict func(id string)
}

// NewStore creates a store. ttl <= 0 disables expiry.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Save creates or replaces a session.
func (s *Store) Save(_ context.Context, session *domain.Session) error {
	if session == nil || session.ID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = &entry{session: session, lastSeen: s.now()}
	return nil
}

// Get returns a live session and refreshes its idle timer.
func (s *Store) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.Lock()
	e, ok := s.sessions[id]
	if !ok {
		s.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}
	if s.expired(e) {
		delete(s.sessions, id)
		s.mu.Unlock()
		s.evicted(id)
		return nil, domain.ErrSessionNotFound
	}
	e.lastSeen = s.now()
	s.mu.Unlock()
	return e.session, nil
}

// Delete removes a session.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// List returns live sessions ordered by creation time.
func (s *Store) List(_ context.Context) ([]*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*domain.Session, 0, len(s.sessions))
	for _, e := range s.sessions {
		if !s.expired(e) {
			result = append(result, e.session)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

// Sweep removes every expired session and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	var ids []string
	for id, e := range s.sessions {
		if s.expired(e) {
			delete(s.sessions, id)
			ids = append(ids, id)
		}
	}
	s.mu.Unlock()

	for _, id := range ids {
		s.evicted(id)
	}
	if len(ids) > 0 {
		logger.Debug("Session sweep evicted %d session(s)", len(ids))
	}
	return len(ids)
}

// Run sweeps on every tick until ctx is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *Store) expired(e *entry) bool {
	return s.ttl > 0 && s.now().Sub(e.lastSeen) > s.ttl
}

func (s *Store) evicted(id string) {
	if s.OnEvict != nil {
		s.OnEvict(id)
	}
}
