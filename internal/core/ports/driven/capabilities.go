package driven

import (
	"context"

	"github.com/custodia-labs/repoqa/internal/core/domain"
)

// QueryRouter labels a question so retrieval can be narrowed. It never
// fails: any failure yields domain.RouteGeneral.
type QueryRouter interface {
	Classify(ctx context.Context, question string, files []string) domain.Route
}

// AnswerComposer answers a question from segments. It never fails: on
// failure the returned text is a user-visible error message and degraded
// is true.
type AnswerComposer interface {
	Compose(ctx context.Context, question string, segments []domain.Segment) (text string, degraded bool)
}
