package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repoqa/internal/core/domain"
)

type fakeEntry struct {
	Type     string `json:"type"`
	Path     string `json:"path"`
	Name     string `json:"name,omitempty"`
	Encoding string `json:"encoding,omitempty"`
	Content  string `json:"content,omitempty"`
}

// fakeGitHub serves a tiny repository through the contents API.
type fakeGitHub struct {
	mu       sync.Mutex
	requests map[string]int
	auth     []string
	dirs     map[string][]fakeEntry
	files    map[string]fakeEntry
}

func newFakeGitHub() *fakeGitHub {
	encode := func(s string) string {
		enc := base64.StdEncoding.EncodeToString([]byte(s))
		// GitHub wraps base64 at 60 columns.
		if len(enc) > 8 {
			enc = enc[:8] + "\n" + enc[8:]
		}
		return enc
	}
	return &fakeGitHub{
		requests: map[string]int{},
		dirs: map[string][]fakeEntry{
			"": {
				{Type: "file", Path: "README.md"},
				{Type: "dir", Path: "src"},
				{Type: "file", Path: "logo.png"},
				{Type: "submodule", Path: "vendor/lib"},
			},
			"src": {
				{Type: "file", Path: "src/main.go"},
				{Type: "file", Path: "src/blob.txt"},
				{Type: "dir", Path: "src/empty"},
			},
			"src/empty": {},
		},
		files: map[string]fakeEntry{
			"README.md":    {Type: "file", Path: "README.md", Encoding: "base64", Content: encode("# Hello\n")},
			"src/main.go":  {Type: "file", Path: "src/main.go", Encoding: "base64", Content: encode("package main\n\nfunc main() {}\n")},
			"src/blob.txt": {Type: "file", Path: "src/blob.txt", Encoding: "base64", Content: encode("\x00\x01\x02binary")},
		},
	}
}

func (f *fakeGitHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const prefix = "/repos/octo/hello/contents/"
	f.mu.Lock()
	f.requests[r.URL.Path]++
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	f.mu.Unlock()

	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.NotFound(w, r)
		return
	}
	p := strings.TrimPrefix(r.URL.Path, prefix)
	w.Header().Set("Content-Type", "application/json")
	if entries, ok := f.dirs[p]; ok {
		_ = json.NewEncoder(w).Encode(entries)
		return
	}
	if file, ok := f.files[p]; ok {
		_ = json.NewEncoder(w).Encode(file)
		return
	}
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"message":"Not Found"}`))
}

func (f *fakeGitHub) hits(p string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests["/repos/octo/hello/contents/"+p]
}

func (f *fakeGitHub) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.requests {
		n += c
	}
	return n
}

func TestFetcher_FetchesTextFiles(t *testing.T) {
	fake := newFakeGitHub()
	server := httptest.NewServer(fake)
	defer server.Close()

	fetcher := NewFetcher(Config{BaseURL: server.URL})
	files, err := fetcher.FetchRepository(context.Background(), "https://github.com/octo/hello", "")
	require.NoError(t, err)

	assert.Equal(t, domain.FileMap{
		"README.md":   "# Hello\n",
		"src/main.go": "package main\n\nfunc main() {}\n",
	}, files)

	assert.Zero(t, fake.hits("logo.png"), "binary extensions are not downloaded")
	assert.Zero(t, fake.hits("vendor/lib"), "submodules are ignored")
	assert.Equal(t, 1, fake.hits("src/blob.txt"), "binary content is downloaded then skipped")
	assert.Equal(t, 1, fake.hits(""), "root listed once")
	for _, h := range fake.auth {
		assert.Empty(t, h)
	}
}

func TestFetcher_Concurrent(t *testing.T) {
	fake := newFakeGitHub()
	server := httptest.NewServer(fake)
	defer server.Close()

	sequential, err := NewFetcher(Config{BaseURL: server.URL}).
		Fetch(context.Background(), domain.RepoRef{Owner: "octo", Name: "hello"}, "")
	require.NoError(t, err)

	parallel, err := NewFetcher(Config{BaseURL: server.URL, Concurrency: 4}).
		Fetch(context.Background(), domain.RepoRef{Owner: "octo", Name: "hello"}, "")
	require.NoError(t, err)

	assert.Equal(t, sequential, parallel)
}

func TestFetcher_SendsCredential(t *testing.T) {
	fake := newFakeGitHub()
	server := httptest.NewServer(fake)
	defer server.Close()

	_, err := NewFetcher(Config{BaseURL: server.URL}).FetchRepository(context.Background(), "octo/hello", "s3cret")
	require.NoError(t, err)

	require.NotEmpty(t, fake.auth)
	for _, h := range fake.auth {
		assert.Equal(t, "Bearer s3cret", h)
	}
}

func TestFetcher_InvalidIdentifier(t *testing.T) {
	fake := newFakeGitHub()
	server := httptest.NewServer(fake)
	defer server.Close()

	_, err := NewFetcher(Config{BaseURL: server.URL}).FetchRepository(context.Background(), "not-a-repo", "")
	assert.ErrorIs(t, err, domain.ErrInvalidIdentifier)
	assert.Zero(t, fake.total(), "no network access for invalid identifiers")
}

func TestFetcher_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		credential string
		status     int
		headers    map[string]string
		body       string
		sentinel   error
		check      func(t *testing.T, fe *domain.FetchError)
	}{
		{
			name:     "not found without credential",
			status:   http.StatusNotFound,
			body:     `{"message":"Not Found"}`,
			sentinel: domain.ErrResourceNotFound,
			check: func(t *testing.T, fe *domain.FetchError) {
				assert.Equal(t, domain.ReasonPrivateOrMissing, fe.Reason)
				assert.True(t, fe.NeedsCredential())
			},
		},
		{
			name:       "not found with credential",
			credential: "tok",
			status:     http.StatusNotFound,
			body:       `{"message":"Not Found"}`,
			sentinel:   domain.ErrResourceNotFound,
			check: func(t *testing.T, fe *domain.FetchError) {
				assert.Equal(t, domain.ReasonEmpty, fe.Reason)
				assert.False(t, fe.NeedsCredential())
			},
		},
		{
			name:     "forbidden carries body",
			status:   http.StatusForbidden,
			body:     `{"message":"Resource not accessible by integration"}`,
			sentinel: domain.ErrAccessDenied,
			check: func(t *testing.T, fe *domain.FetchError) {
				assert.Contains(t, fe.Detail, "Resource not accessible by integration")
				assert.Equal(t, http.StatusForbidden, fe.StatusCode)
				assert.False(t, fe.RateLimited)
			},
		},
		{
			name:   "rate limited",
			status: http.StatusForbidden,
			headers: map[string]string{
				HeaderRateRemaining: "0",
				HeaderRateLimit:     "60",
				HeaderRateReset:     "4102444800",
			},
			body:     `{"message":"API rate limit exceeded"}`,
			sentinel: domain.ErrAccessDenied,
			check: func(t *testing.T, fe *domain.FetchError) {
				assert.True(t, fe.RateLimited)
				assert.True(t, fe.NeedsCredential())
			},
		},
		{
			name:     "unexpected status",
			status:   http.StatusInternalServerError,
			body:     `{"message":"boom"}`,
			sentinel: domain.ErrUnexpectedStatus,
			check: func(t *testing.T, fe *domain.FetchError) {
				assert.Equal(t, http.StatusInternalServerError, fe.StatusCode)
				assert.Contains(t, fe.URL, "/repos/octo/hello/contents/")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewFetcher(Config{BaseURL: server.URL}).FetchRepository(context.Background(), "octo/hello", tt.credential)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)

			var fe *domain.FetchError
			require.ErrorAs(t, err, &fe)
			tt.check(t, fe)
		})
	}
}

func TestFetcher_NestedFailureAborts(t *testing.T) {
	fake := newFakeGitHub()
	delete(fake.files, "src/main.go")
	server := httptest.NewServer(fake)
	defer server.Close()

	_, err := NewFetcher(Config{BaseURL: server.URL}).FetchRepository(context.Background(), "octo/hello", "")
	assert.ErrorIs(t, err, domain.ErrResourceNotFound)
}

func TestFetcher_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewFetcher(Config{BaseURL: url}).FetchRepository(context.Background(), "octo/hello", "")
	assert.ErrorIs(t, err, domain.ErrNetworkFailure)
	assert.False(t, domain.NeedsCredential(err))
}

func TestIsBinaryExtension(t *testing.T) {
	assert.True(t, isBinaryExtension("assets/logo.PNG"))
	assert.True(t, isBinaryExtension("lib.so"))
	assert.False(t, isBinaryExtension("main.go"))
	assert.False(t, isBinaryExtension("Makefile"))
}
