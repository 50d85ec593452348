package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/repoqa/internal/core/domain"
	"github.com/custodia-labs/repoqa/internal/core/ports/driven"
)

// mockContentSource implements driven.ContentSource for testing.
type mockContentSource struct {
	mu       sync.Mutex
	files    domain.FileMap
	err      error
	calls    int
	lastCred string
	lastRepo domain.RepoRef
}

func (m *mockContentSource) Fetch(_ context.Context, ref domain.RepoRef, cred string) (domain.FileMap, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastCred = cred
	m.lastRepo = ref
	if m.err != nil {
		return nil, m.err
	}
	return m.files.Clone(), nil
}

// mockChunker emits one segment per file, in path order.
type mockChunker struct {
	err error
}

func (m *mockChunker) Name() string { return "mock" }

func (m *mockChunker) Split(_ context.Context, files domain.FileMap) ([]domain.Segment, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.Segment
	for _, p := range files.Paths() {
		name, dir := domain.SegmentMetadata(p)
		out = append(out, domain.Segment{
			ID:         p + "#0",
			Text:       files[p],
			SourcePath: p,
			FileName:   name,
			Directory:  dir,
			FileType:   domain.FileTypeOf(domain.Extension(p)),
			End:        len(files[p]),
		})
	}
	return out, nil
}

// mockEmbeddingService returns a fixed vector per text.
type mockEmbeddingService struct {
	mu         sync.Mutex
	embedErr   error
	batchErr   error
	batchCalls int
	short      bool
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return []float32{float32(len(text)), 1}, nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batchCalls++
	m.mu.Unlock()
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = m.Embed(ctx, t)
	}
	if m.short && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int             { return 2 }
func (m *mockEmbeddingService) ModelName() string           { return "mock-embed" }
func (m *mockEmbeddingService) Ping(_ context.Context) error { return nil }
func (m *mockEmbeddingService) Close() error                { return nil }

// mockVectorIndex records collections and returns preset hits.
type mockVectorIndex struct {
	mu          sync.Mutex
	collections map[string][]driven.VectorEntry
	hits        []driven.VectorHit
	searchErr   error
	addErr      error
	dropped     []string
	lastOpts    driven.SearchOptions
}

func newMockVectorIndex() *mockVectorIndex {
	return &mockVectorIndex{collections: make(map[string][]driven.VectorEntry)}
}

func (m *mockVectorIndex) Add(_ context.Context, collection string, entries []driven.VectorEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.addErr != nil {
		return m.addErr
	}
	m.collections[collection] = append(m.collections[collection], entries...)
	return nil
}

func (m *mockVectorIndex) Search(_ context.Context, _ string, _ []float32, opts driven.SearchOptions) ([]driven.VectorHit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastOpts = opts
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.hits, nil
}

func (m *mockVectorIndex) Count(collection string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.collections[collection])
}

func (m *mockVectorIndex) Drop(_ context.Context, collection string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.collections, collection)
	m.dropped = append(m.dropped, collection)
	return nil
}

func (m *mockVectorIndex) Close() error { return nil }

// mockSessionStore implements driven.SessionStore for testing.
type mockSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
	saves    int
	saveErr  error
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{sessions: make(map[string]*domain.Session)}
}

func (m *mockSessionStore) Save(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.sessions[s.ID] = s
	return nil
}

func (m *mockSessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

func (m *mockSessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *mockSessionStore) List(_ context.Context) ([]*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out, nil
}

// mockFetchCache implements driven.FetchCache for testing.
type mockFetchCache struct {
	mu          sync.Mutex
	entries     map[string]domain.FileMap
	getErr      error
	invalidated []string
	cleared     bool
}

func newMockFetchCache() *mockFetchCache {
	return &mockFetchCache{entries: make(map[string]domain.FileMap)}
}

func (m *mockFetchCache) Get(_ context.Context, key string) (domain.FileMap, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	files, ok := m.entries[key]
	return files, ok, nil
}

func (m *mockFetchCache) Put(_ context.Context, key string, files domain.FileMap) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = files
	return nil
}

func (m *mockFetchCache) Invalidate(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	m.invalidated = append(m.invalidated, key)
	return nil
}

func (m *mockFetchCache) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]domain.FileMap)
	m.cleared = true
	return nil
}

func (m *mockFetchCache) Close() error { return nil }

// mockTokenProvider implements driven.TokenProvider for testing.
type mockTokenProvider struct {
	token string
}

func (m *mockTokenProvider) GetToken(_ context.Context) (string, error) { return m.token, nil }
func (m *mockTokenProvider) AuthMethod() domain.AuthMethod             { return domain.AuthMethodToken }
func (m *mockTokenProvider) IsAuthenticated() bool                     { return m.token != "" }

// mockRouter returns a fixed route and records the candidate files.
type mockRouter struct {
	route domain.Route
	files []string
}

func (m *mockRouter) Classify(_ context.Context, _ string, files []string) domain.Route {
	m.files = files
	if m.route == "" {
		return domain.RouteGeneral
	}
	return m.route
}

// mockComposer echoes the context it was given.
type mockComposer struct {
	segments []domain.Segment
	fail     bool
}

func (m *mockComposer) Compose(_ context.Context, question string, segments []domain.Segment) (string, bool) {
	m.segments = segments
	if m.fail {
		return "Failed to generate answer: boom", true
	}
	return "answer to " + question + " from " + strings.Join(domain.Sources(segments), ","), false
}

// mockMetrics records calls.
type mockMetrics struct {
	mu       sync.Mutex
	fetched  []*domain.IngestReport
	failures []string
	answered []domain.Route
}

func (m *mockMetrics) RepositoryFetched(r *domain.IngestReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetched = append(m.fetched, r)
}

func (m *mockMetrics) FetchFailed(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures = append(m.failures, kind)
}

func (m *mockMetrics) QuestionAnswered(route domain.Route, _ bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answered = append(m.answered, route)
}
