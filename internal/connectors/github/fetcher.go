package github

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/repoqa/internal/core/domain"
	"github.com/custodia-labs/repoqa/internal/core/ports/driven"
	"github.com/custodia-labs/repoqa/internal/logger"
)

// Content entry types returned by the contents API.
const (
	entryFile = "file"
	entryDir  = "dir"
)

// Fetcher walks a repository through the contents API and returns its
// decoded text files.
type Fetcher struct {
	cfg Config
}

// Verify interface compliance.
var _ driven.ContentSource = (*Fetcher)(nil)

// NewFetcher creates a content fetcher.
func NewFetcher(cfg Config) *Fetcher {
	return &Fetcher{cfg: cfg}
}

// FetchRepository parses identifier and fetches the repository. An
// identifier that is not owner/name fails before any network access.
func (f *Fetcher) FetchRepository(ctx context.Context, identifier, credential string) (domain.FileMap, error) {
	ref, err := domain.ParseRepoRef(identifier)
	if err != nil {
		return nil, err
	}
	return f.Fetch(ctx, ref, credential)
}

// Fetch walks the repository from its root. Directory and file request
// failures abort the walk; files that do not decode to text are skipped.
func (f *Fetcher) Fetch(ctx context.Context, ref domain.RepoRef, credential string) (domain.FileMap, error) {
	if ref.Owner == "" || ref.Name == "" {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidIdentifier, ref.String())
	}

	client, err := NewClient(ctx, credential, f.cfg)
	if err != nil {
		return nil, err
	}

	logger.Section("Fetch " + ref.String())
	start := time.Now()

	w := &walker{
		client: client,
		ref:    ref,
		files:  domain.FileMap{},
		sem:    make(chan struct{}, f.cfg.concurrency()),
	}
	if err := w.walk(ctx, ""); err != nil {
		return nil, err
	}

	logger.Info("fetched %d text files from %s in %s (skipped %d)",
		len(w.files), ref, time.Since(start).Round(time.Millisecond), w.skipped)
	return w.files, nil
}

// walker holds the state of one repository walk.
type walker struct {
	client *Client
	ref    domain.RepoRef

	// sem bounds in-flight API requests.
	sem chan struct{}

	mu      sync.Mutex
	files   domain.FileMap
	skipped int
}

func (w *walker) get(ctx context.Context, p string) (*gh.RepositoryContent, []*gh.RepositoryContent, error) {
	select {
	case w.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, nil, domain.NewNetworkError(w.client.contentsURL(w.ref.Owner, w.ref.Name, p), ctx.Err())
	}
	defer func() { <-w.sem }()
	return w.client.GetContents(ctx, w.ref.Owner, w.ref.Name, p)
}

func (w *walker) walk(ctx context.Context, dir string) error {
	_, entries, err := w.get(ctx, dir)
	if err != nil {
		return err
	}
	logger.Debug("listing %q: %d entries", dir, len(entries))

	if cap(w.sem) <= 1 {
		for _, entry := range entries {
			if err := w.visit(ctx, entry); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, entry := range entries {
		g.Go(func() error { return w.visit(gctx, entry) })
	}
	return g.Wait()
}

func (w *walker) visit(ctx context.Context, entry *gh.RepositoryContent) error {
	if strings.Contains(entry.GetPath(), "..") {
		// go-github refuses paths containing "..".
		w.skip(entry.GetPath(), "unsupported path")
		return nil
	}
	switch entry.GetType() {
	case entryDir:
		return w.walk(ctx, entry.GetPath())
	case entryFile:
		return w.fetchFile(ctx, entry.GetPath())
	default:
		logger.Debug("ignoring %s entry %s", entry.GetType(), entry.GetPath())
		return nil
	}
}

func (w *walker) fetchFile(ctx context.Context, p string) error {
	if isBinaryExtension(p) {
		w.skip(p, "binary extension")
		return nil
	}

	file, _, err := w.get(ctx, p)
	if err != nil {
		return err
	}
	if file == nil {
		w.skip(p, "not a file")
		return nil
	}

	text, reason := decodeText(file)
	if reason != "" {
		w.skip(p, reason)
		return nil
	}

	w.mu.Lock()
	w.files[p] = text
	w.mu.Unlock()
	return nil
}

func (w *walker) skip(p, reason string) {
	w.mu.Lock()
	w.skipped++
	w.mu.Unlock()
	logger.Debug("skipping %s: %s", p, reason)
}

// decodeText returns the file's text, or a non-empty reason when the
// content is not usable text.
func decodeText(file *gh.RepositoryContent) (string, string) {
	text, err := file.GetContent()
	if err != nil {
		logger.Warn("could not decode %s: %v", file.GetPath(), err)
		return "", "decode failed"
	}
	if !utf8.ValidString(text) {
		return "", "not valid UTF-8"
	}
	if strings.IndexByte(text, 0) >= 0 {
		return "", "binary content"
	}
	return text, ""
}

// isBinaryExtension checks if a file extension indicates a binary file.
func isBinaryExtension(p string) bool {
	ext := strings.ToLower(path.Ext(p))
	binaryExts := map[string]bool{
		".exe": true, ".dll": true, ".so": true, ".dylib": true,
		".zip": true, ".tar": true, ".gz": true, ".bz2": true, ".7z": true, ".jar": true,
		".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true, ".webp": true,
		".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
		".mp3": true, ".mp4": true, ".avi": true, ".mov": true,
		".woff": true, ".woff2": true, ".ttf": true, ".eot": true,
		".bin": true, ".db": true, ".sqlite": true,
		".pyc": true, ".pyo": true, ".class": true, ".o": true, ".a": true,
	}
	return binaryExts[ext]
}
