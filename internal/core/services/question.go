package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/repoqa/internal/core/domain"
	"github.com/custodia-labs/repoqa/internal/core/ports/driven"
	"github.com/custodia-labs/repoqa/internal/core/ports/driving"
	"github.com/custodia-labs/repoqa/internal/logger"
)

// Ensure QuestionService implements the interface.
var _ driving.QuestionService = (*QuestionService)(nil)

// RetrievalConfig tunes diversity-aware search.
type RetrievalConfig struct {
	K      int
	Lambda float64
}

// questionState is threaded through the pipeline nodes.
type questionState struct {
	session  *domain.Session
	question string

	retrieved []domain.Segment
	fellBack  bool
	route     domain.Route
	context   []domain.Segment

	answer   string
	degraded bool
}

// questionNode is one step of the pipeline.
type questionNode struct {
	name string
	run  func(ctx context.Context, st *questionState)
}

// QuestionService answers questions with a two-node pipeline:
// retrieve (embed, search, route, filter) then answer (compose).
type QuestionService struct {
	router   driven.QueryRouter
	composer driven.AnswerComposer
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	metrics  driven.Metrics
	sessions driven.SessionStore
	locks    *SessionLocks

	k      int
	lambda float64

	nodes []questionNode
}

// NewQuestionService creates a question service. embedder and index may be
// nil, in which case every question sees the whole corpus.
func NewQuestionService(
	router driven.QueryRouter,
	composer driven.AnswerComposer,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	cfg RetrievalConfig,
) *QuestionService {
	defaults := domain.DefaultAppSettings().Retrieval
	if cfg.K <= 0 {
		cfg.K = defaults.K
	}
	if cfg.Lambda < 0 || cfg.Lambda > 1 {
		cfg.Lambda = defaults.Lambda
	}

	s := &QuestionService{
		router:   router,
		composer: composer,
		embedder: embedder,
		index:    index,
		metrics:  driven.NopMetrics{},
		locks:    NewSessionLocks(),
		k:        cfg.K,
		lambda:   cfg.Lambda,
	}
	s.nodes = []questionNode{
		{name: "retrieve", run: s.retrieve},
		{name: "answer", run: s.answer},
	}
	return s
}

// SetMetrics sets the metrics sink.
func (s *QuestionService) SetMetrics(m driven.Metrics) {
	if m != nil {
		s.metrics = m
	}
}

// SetSessionStore makes Ask reject sessions that ended while it waited for
// the session lock.
func (s *QuestionService) SetSessionStore(store driven.SessionStore) {
	s.sessions = store
}

// SetSessionLocks shares a lock table with other services.
func (s *QuestionService) SetSessionLocks(l *SessionLocks) {
	if l != nil {
		s.locks = l
	}
}

// Ask answers a question about the session's repository.
func (s *QuestionService) Ask(ctx context.Context, session *domain.Session, question string) (*domain.Answer, error) {
	if session == nil {
		return nil, fmt.Errorf("%w: nil session", domain.ErrInvalidInput)
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.ErrEmptyQuestion
	}

	unlock := s.locks.Lock(session.ID)
	defer unlock()

	if s.sessions != nil {
		if _, err := s.sessions.Get(ctx, session.ID); err != nil {
			return nil, err
		}
	}
	if !session.HasRepository() {
		return nil, domain.ErrNoRepository
	}

	logger.Section("Question")
	logger.Debug("Q: %q (%s)", question, session.Repository)
	start := time.Now()

	st := &questionState{session: session, question: question}
	for _, node := range s.nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		node.run(ctx, st)
		logger.Debug("node %s done", node.name)
	}

	s.metrics.QuestionAnswered(st.route, st.degraded, time.Since(start))
	return &domain.Answer{
		Question: question,
		Text:     st.answer,
		Route:    st.route,
		Sources:  domain.Sources(st.context),
		Degraded: st.degraded,
	}, nil
}

// retrieve fills retrieved, route and context.
func (s *QuestionService) retrieve(ctx context.Context, st *questionState) {
	corpus := st.session.Segments

	retrieved, err := s.search(ctx, st)
	if err != nil {
		logger.Warn("Retrieval failed, using the whole repository: %v", err)
		retrieved = corpus
		st.fellBack = true
	}
	st.retrieved = retrieved

	st.route = s.router.Classify(ctx, st.question, domain.Sources(retrieved))
	logger.Debug("Route: %s", st.route)

	st.context = filterSegments(st.route, st.question, corpus, retrieved)
	logger.Debug("Context: %d segments from %d files", len(st.context), len(domain.Sources(st.context)))
}

func (s *QuestionService) search(ctx context.Context, st *questionState) ([]domain.Segment, error) {
	if s.embedder == nil || s.index == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if !st.session.Indexed {
		return nil, fmt.Errorf("session %s has no index", st.session.ID)
	}

	query, err := s.embedder.Embed(ctx, st.question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	hits, err := s.index.Search(ctx, st.session.ID, query, driven.SearchOptions{K: s.k, Lambda: s.lambda})
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}
	if len(hits) == 0 {
		return nil, fmt.Errorf("index returned no segments")
	}

	segments := make([]domain.Segment, len(hits))
	for i, h := range hits {
		segments[i] = h.Segment
	}
	return segments, nil
}

// answer fills answer and degraded.
func (s *QuestionService) answer(ctx context.Context, st *questionState) {
	st.answer, st.degraded = s.composer.Compose(ctx, st.question, st.context)
}

// filterSegments narrows the answer context by route:
//   - directory_structure: corpus segments whose directory contains a word
//     of the question, else the retrieved set
//   - general: the whole corpus
//   - a file type: retrieved segments of that type, else the retrieved set
func filterSegments(route domain.Route, question string, corpus, retrieved []domain.Segment) []domain.Segment {
	switch route {
	case domain.RouteGeneral:
		return corpus
	case domain.RouteDirectory:
		words := strings.Fields(strings.ToLower(question))
		var out []domain.Segment
		for _, seg := range corpus {
			dir := strings.ToLower(seg.Directory)
			for _, w := range words {
				if strings.Contains(dir, w) {
					out = append(out, seg)
					break
				}
			}
		}
		if len(out) == 0 {
			return retrieved
		}
		return out
	default:
		var out []domain.Segment
		for _, seg := range retrieved {
			if seg.FileType == string(route) {
				out = append(out, seg)
			}
		}
		if len(out) == 0 {
			return retrieved
		}
		return out
	}
}
