package driving

import (
	"context"

	"github.com/custodia-labs/repoqa/internal/core/domain"
)

// QuestionService answers questions about a session's repository.
type QuestionService interface {
	// Ask runs retrieval and answer composition. Only input errors
	// (empty question, nothing fetched) are returned; capability failures
	// degrade into the answer.
	Ask(ctx context.Context, session *domain.Session, question string) (*domain.Answer, error)
}
