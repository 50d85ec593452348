package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/repoqa/internal/core/domain"
	"github.com/custodia-labs/repoqa/internal/core/ports/driven"
	"github.com/custodia-labs/repoqa/internal/core/ports/driving"
	"github.com/custodia-labs/repoqa/internal/logger"
)

// Ensure SessionService implements the interface.
var _ driving.SessionService = (*SessionService)(nil)

// SessionService creates and ends sessions.
type SessionService struct {
	store driven.SessionStore
	index driven.VectorIndex
	locks *SessionLocks
	newID func() string
}

// NewSessionService creates a session service. index may be nil.
func NewSessionService(store driven.SessionStore, index driven.VectorIndex) *SessionService {
	return &SessionService{
		store: store,
		index: index,
		locks: NewSessionLocks(),
		newID: uuid.NewString,
	}
}

// SetSessionLocks shares a lock table with other services.
func (s *SessionService) SetSessionLocks(l *SessionLocks) {
	if l != nil {
		s.locks = l
	}
}

// Start creates a session.
func (s *SessionService) Start(ctx context.Context, username, credential string) (*domain.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}

	now := time.Now()
	session := &domain.Session{
		ID:         s.newID(),
		Username:   username,
		Credential: strings.TrimSpace(credential),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	logger.Debug("Session %s started for %s", session.ID, username)
	return session, nil
}

// Get returns a live session.
func (s *SessionService) Get(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, domain.ErrSessionNotFound
	}
	return s.store.Get(ctx, id)
}

// Snapshot returns a copy of the session taken while holding its lock, so
// readers never see a fetch or refresh half applied.
func (s *SessionService) Snapshot(ctx context.Context, id string) (domain.Session, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	session, err := s.Get(ctx, id)
	if err != nil {
		return domain.Session{}, err
	}
	return *session, nil
}

// SetCredential replaces the session's GitHub token.
func (s *SessionService) SetCredential(ctx context.Context, id, credential string) (*domain.Session, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	session, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	session.Credential = strings.TrimSpace(credential)
	session.CredentialRequired = false
	session.UpdatedAt = time.Now()
	if err := s.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}
	return session, nil
}

// End drops the session and its index. Ending an unknown session is not an
// error.
func (s *SessionService) End(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if s.index != nil {
		if err := s.index.Drop(ctx, id); err != nil {
			return fmt.Errorf("dropping index: %w", err)
		}
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	logger.Debug("Session %s ended", id)
	return nil
}
