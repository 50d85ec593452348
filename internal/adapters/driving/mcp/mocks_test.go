package mcp

import (
	"context"

	"github.com/custodia-labs/repoqa/internal/core/domain"
)

// mockSessionService is a mock implementation of driving.SessionService.
type mockSessionService struct {
	startErr error
	started  int
	ended    []string
	username string
	cred     string
}

func (m *mockSessionService) Start(_ context.Context, username, credential string) (*domain.Session, error) {
	if m.startErr != nil {
		return nil, m.startErr
	}
	m.started++
	m.username = username
	m.cred = credential
	return &domain.Session{ID: "session-1", Username: username, Credential: credential}, nil
}

func (m *mockSessionService) Get(_ context.Context, id string) (*domain.Session, error) {
	return &domain.Session{ID: id}, nil
}

func (m *mockSessionService) Snapshot(_ context.Context, id string) (domain.Session, error) {
	return domain.Session{ID: id}, nil
}

func (m *mockSessionService) SetCredential(_ context.Context, id, credential string) (*domain.Session, error) {
	return &domain.Session{ID: id, Credential: credential}, nil
}

func (m *mockSessionService) End(_ context.Context, id string) error {
	m.ended = append(m.ended, id)
	return nil
}

// mockIngestService is a mock implementation of driving.IngestService.
type mockIngestService struct {
	report     *domain.IngestReport
	err        error
	refreshErr error
	refreshed  int
	lastCred   string
}

func (m *mockIngestService) Fetch(
	_ context.Context, session *domain.Session, identifier, credential string,
) (*domain.IngestReport, error) {
	m.lastCred = credential
	if m.err != nil {
		session.CredentialRequired = domain.NeedsCredential(m.err)
		return nil, m.err
	}
	ref, err := domain.ParseRepoRef(identifier)
	if err != nil {
		return nil, err
	}
	session.Repository = ref
	session.Segments = []domain.Segment{
		{ID: "1", SourcePath: "main.go", Text: "package main"},
		{ID: "2", SourcePath: "main.go", Text: "func main() {}"},
		{ID: "3", SourcePath: "README.md", Text: "# demo"},
	}
	session.Indexed = true
	if m.report != nil {
		return m.report, nil
	}
	return &domain.IngestReport{Repository: ref, FilesFetched: 2, FilesKept: 2, Segments: 3, Indexed: true}, nil
}

func (m *mockIngestService) Refresh(_ context.Context, session *domain.Session) error {
	if m.refreshErr != nil {
		return m.refreshErr
	}
	m.refreshed++
	session.Reset()
	return nil
}

func (m *mockIngestService) ClearCache(_ context.Context) error {
	return nil
}

// mockQuestionService is a mock implementation of driving.QuestionService.
type mockQuestionService struct {
	answer *domain.Answer
	err    error
}

func (m *mockQuestionService) Ask(_ context.Context, session *domain.Session, question string) (*domain.Answer, error) {
	if m.err != nil {
		return nil, m.err
	}
	if !session.HasRepository() {
		return nil, domain.ErrNoRepository
	}
	if m.answer != nil {
		return m.answer, nil
	}
	return &domain.Answer{Question: question, Text: "answer", Route: domain.RouteGeneral}, nil
}

func newTestPorts() (*Ports, *mockSessionService, *mockIngestService, *mockQuestionService) {
	sessions := &mockSessionService{}
	ingest := &mockIngestService{}
	question := &mockQuestionService{}
	return &Ports{Sessions: sessions, Ingest: ingest, Question: question}, sessions, ingest, question
}
