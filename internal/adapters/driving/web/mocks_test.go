package web

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/repoqa/internal/core/domain"
)

// mockSessionService keeps sessions in a map.
type mockSessionService struct {
	mu        sync.Mutex
	sessions  map[string]*domain.Session
	next      int
	ended     []string
	snapshots int
}

func newMockSessionService() *mockSessionService {
	return &mockSessionService{sessions: make(map[string]*domain.Session)}
}

func (m *mockSessionService) Start(_ context.Context, username, credential string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrInvalidInput)
	}
	m.next++
	s := &domain.Session{ID: fmt.Sprintf("session-%d", m.next), Username: username, Credential: credential}
	m.sessions[s.ID] = s
	return s, nil
}

func (m *mockSessionService) Get(_ context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

func (m *mockSessionService) Snapshot(ctx context.Context, id string) (domain.Session, error) {
	m.snapshots++
	s, err := m.Get(ctx, id)
	if err != nil {
		return domain.Session{}, err
	}
	return *s, nil
}

func (m *mockSessionService) SetCredential(ctx context.Context, id, credential string) (*domain.Session, error) {
	s, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Credential = credential
	return s, nil
}

func (m *mockSessionService) End(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	m.ended = append(m.ended, id)
	return nil
}

// mockIngestService loads a fixed corpus or fails with err.
type mockIngestService struct {
	err       error
	refreshed int
}

func (m *mockIngestService) Fetch(
	_ context.Context, session *domain.Session, identifier, credential string,
) (*domain.IngestReport, error) {
	if credential != "" {
		session.Credential = credential
	}
	ref, err := domain.ParseRepoRef(identifier)
	if err != nil {
		return nil, err
	}
	if m.err != nil {
		session.CredentialRequired = domain.NeedsCredential(m.err)
		return nil, m.err
	}
	session.Repository = ref
	session.Segments = []domain.Segment{{ID: "1", SourcePath: "main.go", Text: "package main"}}
	session.FileCount = 1
	session.Indexed = true
	return &domain.IngestReport{Repository: ref, FilesFetched: 1, FilesKept: 1, Segments: 1, Indexed: true}, nil
}

func (m *mockIngestService) Refresh(_ context.Context, session *domain.Session) error {
	m.refreshed++
	session.Reset()
	return nil
}

func (m *mockIngestService) ClearCache(_ context.Context) error {
	return nil
}

// mockQuestionService mirrors the question service's input checks.
type mockQuestionService struct{}

func (m *mockQuestionService) Ask(_ context.Context, session *domain.Session, question string) (*domain.Answer, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return nil, domain.ErrEmptyQuestion
	}
	if !session.HasRepository() {
		return nil, domain.ErrNoRepository
	}
	return &domain.Answer{
		Question: q,
		Text:     "answer to " + q,
		Route:    domain.RouteGeneral,
		Sources:  []string{"main.go"},
	}, nil
}
