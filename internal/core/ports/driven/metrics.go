package driven

import (
	"time"

	"github.com/custodia-labs/repoqa/internal/core/domain"
)

// Metrics records service-level counters. Implementations must be safe
// for concurrent use.
type Metrics interface {
	// RepositoryFetched records a successful ingest.
	RepositoryFetched(report *domain.IngestReport)

	// FetchFailed records a failed ingest by error kind.
	FetchFailed(kind string)

	// QuestionAnswered records one answered question.
	QuestionAnswered(route domain.Route, degraded bool, elapsed time.Duration)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RepositoryFetched(*domain.IngestReport)             {}
func (NopMetrics) FetchFailed(string)                                 {}
func (NopMetrics) QuestionAnswered(domain.Route, bool, time.Duration) {}
