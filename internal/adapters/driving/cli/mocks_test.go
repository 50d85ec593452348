package cli

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repoqa/internal/core/domain"
)

// mockSessionService implements driving.SessionService for CLI tests.
type mockSessionService struct {
	mu       sync.Mutex
	startErr error
	username string
	cred     string
	ended    []string
}

func (m *mockSessionService) Start(_ context.Context, username, credential string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.startErr != nil {
		return nil, m.startErr
	}
	m.username = username
	m.cred = credential
	return &domain.Session{ID: "cli-session", Username: username, Credential: credential}, nil
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
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ended = append(m.ended, id)
	return nil
}

// mockIngestService implements driving.IngestService for CLI tests.
type mockIngestService struct {
	report     *domain.IngestReport
	err        error
	clearErr   error
	cleared    int
	identifier string
}

func (m *mockIngestService) Fetch(
	_ context.Context, session *domain.Session, identifier, _ string,
) (*domain.IngestReport, error) {
	m.identifier = identifier
	if m.err != nil {
		return nil, m.err
	}
	ref, err := domain.ParseRepoRef(identifier)
	if err != nil {
		return nil, err
	}
	session.Repository = ref
	session.Segments = []domain.Segment{{ID: "1", SourcePath: "main.go", Text: "package main"}}
	if m.report != nil {
		return m.report, nil
	}
	return &domain.IngestReport{Repository: ref, FilesFetched: 2, FilesKept: 2, Segments: 5, Indexed: true}, nil
}

func (m *mockIngestService) Refresh(_ context.Context, session *domain.Session) error {
	session.Reset()
	return nil
}

func (m *mockIngestService) ClearCache(_ context.Context) error {
	if m.clearErr != nil {
		return m.clearErr
	}
	m.cleared++
	return nil
}

// mockQuestionService implements driving.QuestionService for CLI tests.
type mockQuestionService struct {
	answer    *domain.Answer
	err       error
	questions []string
}

func (m *mockQuestionService) Ask(_ context.Context, _ *domain.Session, question string) (*domain.Answer, error) {
	m.questions = append(m.questions, question)
	if m.err != nil {
		return nil, m.err
	}
	if m.answer != nil {
		return m.answer, nil
	}
	return &domain.Answer{
		Question: question,
		Text:     "It prints hello.",
		Route:    domain.RouteGeneral,
		Sources:  []string{"main.go"},
	}, nil
}

// mockConfigStore implements driven.ConfigStore in memory.
type mockConfigStore struct {
	values map[string]any
	setErr error
}

func newMockConfigStore() *mockConfigStore {
	return &mockConfigStore{values: make(map[string]any)}
}

func (m *mockConfigStore) Get(key string) (any, bool) {
	v, ok := m.values[key]
	return v, ok
}

func (m *mockConfigStore) GetString(key string) string {
	s, _ := m.values[key].(string)
	return s
}

func (m *mockConfigStore) GetInt(key string) int {
	switch v := m.values[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	}
	return 0
}

func (m *mockConfigStore) GetFloat(key string) float64 {
	f, _ := m.values[key].(float64)
	return f
}

func (m *mockConfigStore) GetBool(key string) bool {
	b, _ := m.values[key].(bool)
	return b
}

func (m *mockConfigStore) GetStringSlice(key string) []string {
	s, _ := m.values[key].([]string)
	return s
}

func (m *mockConfigStore) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockConfigStore) Delete(key string) error {
	delete(m.values, key)
	return nil
}

func (m *mockConfigStore) Keys() []string {
	keys := make([]string, 0, len(m.values))
	for k := range m.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *mockConfigStore) Save() error  { return nil }
func (m *mockConfigStore) Load() error  { return nil }
func (m *mockConfigStore) Path() string { return "/home/test/.repoqa/config.toml" }

type testServices struct {
	*Services
	sessions *mockSessionService
	ingest   *mockIngestService
	question *mockQuestionService
}

// useServices installs mock services for the duration of the test.
func useServices(t *testing.T) *testServices {
	t.Helper()
	ts := &testServices{
		sessions: &mockSessionService{},
		ingest:   &mockIngestService{},
		question: &mockQuestionService{},
	}
	ts.Services = &Services{Sessions: ts.sessions, Ingest: ts.ingest, Question: ts.question}

	servicesMu.Lock()
	services = ts.Services
	servicesMu.Unlock()
	t.Cleanup(func() {
		servicesMu.Lock()
		services = nil
		serviceFactory = nil
		servicesMu.Unlock()
	})
	return ts
}

// useConfigStore installs a mock config store for the duration of the test.
func useConfigStore(t *testing.T) *mockConfigStore {
	t.Helper()
	store := newMockConfigStore()
	SetConfigStore(store)
	t.Cleanup(func() { SetConfigStore(nil) })
	return store
}

// execute runs the root command and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(t)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// resetFlags clears flag values left over from earlier executions.
func resetFlags(t *testing.T) {
	t.Helper()
	fetchToken, fetchAskToken, askToken, chatToken, tuiToken = "", false, "", "", ""
	versionCheck = false
	serveListen = ""
	verbose = false
	require.NoError(t, mcpServeCmd.Flags().Set("http", ""))
}
