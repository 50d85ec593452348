package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/repoqa/internal/core/domain"
	"github.com/custodia-labs/repoqa/internal/core/ports/driven"
	"github.com/custodia-labs/repoqa/internal/core/ports/driving"
	"github.com/custodia-labs/repoqa/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// embedBatchSize bounds the texts handed to one EmbedBatch call.
const embedBatchSize = 512

// IngestConfig holds the ingest limits.
type IngestConfig struct {
	MaxFiles   int
	Truncation domain.TruncationPolicy
}

// IngestService fetches a repository, truncates it, segments it and
// indexes the segments for one session.
type IngestService struct {
	source   driven.ContentSource
	chunker  driven.DocumentChunker
	index    driven.VectorIndex
	sessions driven.SessionStore

	embedder driven.EmbeddingService
	cache    driven.FetchCache
	tokens   driven.TokenProvider
	metrics  driven.Metrics
	locks    *SessionLocks

	maxFiles   int
	truncation domain.TruncationPolicy
}

// NewIngestService creates an ingest service. Embedding, cache and token
// provider are optional and set afterwards.
func NewIngestService(
	source driven.ContentSource,
	chunker driven.DocumentChunker,
	index driven.VectorIndex,
	sessions driven.SessionStore,
	cfg IngestConfig,
) *IngestService {
	defaults := domain.DefaultAppSettings().Ingest
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = defaults.MaxFiles
	}
	if !cfg.Truncation.IsValid() {
		cfg.Truncation = defaults.Truncation
	}
	return &IngestService{
		source:     source,
		chunker:    chunker,
		index:      index,
		sessions:   sessions,
		metrics:    driven.NopMetrics{},
		locks:      NewSessionLocks(),
		maxFiles:   cfg.MaxFiles,
		truncation: cfg.Truncation,
	}
}

// SetEmbeddingService sets the embedder. Without one, sessions are loaded
// but not indexed.
func (s *IngestService) SetEmbeddingService(e driven.EmbeddingService) {
	s.embedder = e
}

// SetFetchCache sets the fetch cache.
func (s *IngestService) SetFetchCache(c driven.FetchCache) {
	s.cache = c
}

// SetTokenProvider sets the fallback credential source.
func (s *IngestService) SetTokenProvider(p driven.TokenProvider) {
	s.tokens = p
}

// SetMetrics sets the metrics sink.
func (s *IngestService) SetMetrics(m driven.Metrics) {
	if m != nil {
		s.metrics = m
	}
}

// SetSessionLocks shares a lock table with other services.
func (s *IngestService) SetSessionLocks(l *SessionLocks) {
	if l != nil {
		s.locks = l
	}
}

// Fetch loads a repository into the session.
func (s *IngestService) Fetch(
	ctx context.Context, session *domain.Session, identifier, credential string,
) (*domain.IngestReport, error) {
	if session == nil {
		return nil, fmt.Errorf("%w: nil session", domain.ErrInvalidInput)
	}

	ref, err := domain.ParseRepoRef(identifier)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(session.ID)
	defer unlock()

	if err := s.checkLive(ctx, session); err != nil {
		return nil, err
	}

	logger.Section("Fetch " + ref.String())
	start := time.Now()

	if credential != "" {
		session.Credential = credential
	}
	cred := s.resolveCredential(ctx, session)

	all, fromCache, err := s.load(ctx, ref, cred)
	if err != nil {
		s.fetchFailed(ctx, session, err)
		return nil, err
	}
	if len(all) == 0 {
		s.metrics.FetchFailed("NoFiles")
		return nil, fmt.Errorf("%s: %w", ref, domain.ErrNoFiles)
	}

	files, truncated := all.Truncate(s.maxFiles, s.truncation)
	if truncated {
		logger.Warn("%s has %d text files; indexing the first %d by %s order",
			ref, len(all), len(files), s.truncation)
	}

	segments, err := s.chunker.Split(ctx, files)
	if err != nil {
		return nil, fmt.Errorf("segmenting %s: %w", ref, err)
	}
	if len(segments) == 0 {
		s.metrics.FetchFailed("NoFiles")
		return nil, fmt.Errorf("%s: %w: no file could be segmented", ref, domain.ErrNoFiles)
	}
	logger.Debug("%d files -> %d segments (%s)", len(files), len(segments), s.chunker.Name())

	indexed, err := s.indexSegments(ctx, session.ID, segments)
	if err != nil {
		return nil, err
	}

	session.Repository = ref
	session.Segments = segments
	session.FileCount = len(files)
	session.Truncated = truncated
	session.Indexed = indexed
	session.CredentialRequired = false
	session.UpdatedAt = time.Now()
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	report := &domain.IngestReport{
		Repository:   ref,
		FilesFetched: len(all),
		FilesKept:    len(files),
		Truncated:    truncated,
		Segments:     len(segments),
		Indexed:      indexed,
		FromCache:    fromCache,
		Duration:     time.Since(start),
	}
	s.metrics.RepositoryFetched(report)
	logger.Info("Loaded %s: %d files, %d segments in %s", ref, report.FilesKept, report.Segments, report.Duration)
	return report, nil
}

// Refresh drops the session's cached files, index and segments.
func (s *IngestService) Refresh(ctx context.Context, session *domain.Session) error {
	if session == nil {
		return fmt.Errorf("%w: nil session", domain.ErrInvalidInput)
	}

	unlock := s.locks.Lock(session.ID)
	defer unlock()

	if err := s.checkLive(ctx, session); err != nil {
		return err
	}

	if !session.Repository.IsZero() && s.cache != nil {
		for _, key := range s.cacheKeys(ctx, session) {
			if err := s.cache.Invalidate(ctx, key); err != nil {
				logger.Warn("Invalidating cache entry %s: %v", key, err)
			}
		}
	}
	if err := s.index.Drop(ctx, session.ID); err != nil {
		return fmt.Errorf("dropping index: %w", err)
	}

	session.Reset()
	session.UpdatedAt = time.Now()
	if err := s.sessions.Save(ctx, session); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

// ClearCache empties the fetch cache.
func (s *IngestService) ClearCache(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Clear(ctx); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}
	return nil
}

// resolveCredential prefers the session token, then the default provider.
func (s *IngestService) resolveCredential(ctx context.Context, session *domain.Session) string {
	if session.Credential != "" {
		return session.Credential
	}
	if s.tokens == nil || !s.tokens.IsAuthenticated() {
		return ""
	}
	token, err := s.tokens.GetToken(ctx)
	if err != nil {
		logger.Warn("Default GitHub token unavailable: %v", err)
		return ""
	}
	return token
}

// load reads through the cache. Cache errors are logged and bypassed.
func (s *IngestService) load(ctx context.Context, ref domain.RepoRef, cred string) (domain.FileMap, bool, error) {
	key := cacheKey(ref, cred)

	if s.cache != nil {
		files, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			logger.Warn("Fetch cache read failed for %s: %v", ref, err)
		case ok:
			logger.Debug("Fetch cache hit for %s (%d files)", ref, len(files))
			return files, true, nil
		}
	}

	files, err := s.source.Fetch(ctx, ref, cred)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil && len(files) > 0 {
		if err := s.cache.Put(ctx, key, files); err != nil {
			logger.Warn("Fetch cache write failed for %s: %v", ref, err)
		}
	}
	return files, false, nil
}

// indexSegments replaces the session's collection. Embedding failures
// leave the session unindexed rather than failing the fetch.
func (s *IngestService) indexSegments(ctx context.Context, sessionID string, segments []domain.Segment) (bool, error) {
	if err := s.index.Drop(ctx, sessionID); err != nil {
		return false, fmt.Errorf("dropping previous index: %w", err)
	}
	if s.embedder == nil {
		logger.Warn("No embedding service configured; questions will use the whole repository")
		return false, nil
	}

	entries := make([]driven.VectorEntry, 0, len(segments))
	for start := 0; start < len(segments); start += embedBatchSize {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		batch := segments[start:min(start+embedBatchSize, len(segments))]
		texts := make([]string, len(batch))
		for i, seg := range batch {
			texts[i] = seg.Text
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err == nil && len(vectors) != len(batch) {
			err = fmt.Errorf("got %d embeddings for %d segments", len(vectors), len(batch))
		}
		if err != nil {
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			logger.Warn("Embedding failed, questions will use the whole repository: %v", err)
			return false, nil
		}
		for i, seg := range batch {
			entries = append(entries, driven.VectorEntry{Segment: seg, Embedding: vectors[i]})
		}
		logger.Debug("Embedded %d/%d segments", len(entries), len(segments))
	}

	if err := s.index.Add(ctx, sessionID, entries); err != nil {
		logger.Warn("Indexing failed, questions will use the whole repository: %v", err)
		_ = s.index.Drop(ctx, sessionID)
		return false, nil
	}
	return true, nil
}

// checkLive fails with ErrSessionNotFound when the session was ended or
// expired while the caller waited for its lock. Call with the lock held.
func (s *IngestService) checkLive(ctx context.Context, session *domain.Session) error {
	if s.sessions == nil {
		return nil
	}
	_, err := s.sessions.Get(ctx, session.ID)
	return err
}

func (s *IngestService) fetchFailed(ctx context.Context, session *domain.Session, err error) {
	kind := "Other"
	var fe *domain.FetchError
	if errors.As(err, &fe) {
		kind = fe.Kind.String()
	}
	s.metrics.FetchFailed(kind)

	if domain.NeedsCredential(err) {
		session.CredentialRequired = true
		session.UpdatedAt = time.Now()
		if serr := s.sessions.Save(ctx, session); serr != nil {
			logger.Warn("Saving session: %v", serr)
		}
	}
}

// cacheKeys lists every key the session's repository may be cached under.
func (s *IngestService) cacheKeys(ctx context.Context, session *domain.Session) []string {
	keys := []string{cacheKey(session.Repository, "")}
	if cred := s.resolveCredential(ctx, session); cred != "" {
		keys = append(keys, cacheKey(session.Repository, cred))
	}
	return keys
}

// cacheKey is owner/name. Authenticated fetches get a credential-derived
// suffix so private content is never served to other callers.
func cacheKey(ref domain.RepoRef, cred string) string {
	if cred == "" {
		return ref.String()
	}
	sum := sha256.Sum256([]byte(cred))
	return ref.String() + "#" + hex.EncodeToString(sum[:4])
}
