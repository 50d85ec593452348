package capabilities

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/repoqa/internal/core/domain"
	"github.com/custodia-labs/repoqa/internal/core/ports/driven"
	"github.com/custodia-labs/repoqa/internal/logger"
)

// maxRouterFiles caps how many candidate paths are listed in the prompt.
const maxRouterFiles = 200

var (
	_ driven.QueryRouter      = (*Router)(nil)
	_ driven.PromptStoreAware = (*Router)(nil)
)

// Router classifies questions with a single LLM call.
type Router struct {
	llm     driven.LLMService
	prompts promptLoader
}

// NewRouter creates a router backed by llm.
func NewRouter(llm driven.LLMService) *Router {
	return &Router{llm: llm}
}

// SetPromptStore sets the store the classification template is read from.
func (r *Router) SetPromptStore(store driven.PromptStore) {
	r.prompts.store = store
}

// Classify labels question. Errors and unrecognised replies yield
// RouteGeneral.
func (r *Router) Classify(ctx context.Context, question string, files []string) domain.Route {
	route, err := r.classify(ctx, question, files)
	if err != nil {
		logger.Warn("%v; using %q", fmt.Errorf("%w: %w", domain.ErrClassificationFailure, err), domain.RouteGeneral)
		return domain.RouteGeneral
	}
	logger.Debug("router: %q -> %s", question, route)
	return route
}

func (r *Router) classify(ctx context.Context, question string, files []string) (domain.Route, error) {
	if r.llm == nil {
		return "", fmt.Errorf("no language model configured")
	}

	prompt := fmt.Sprintf(r.prompts.load(driven.PromptClassify, defaultClassifyPrompt),
		routeList(), fileList(files), question)

	reply, err := r.llm.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   16,
		Temperature: 0,
	})
	if err != nil {
		return "", err
	}

	// Models sometimes explain themselves; the label is the first word.
	label := reply
	if fields := strings.Fields(reply); len(fields) > 0 {
		label = fields[0]
	}
	route, ok := domain.ParseRoute(label)
	if !ok {
		if route, ok = domain.ParseRoute(reply); !ok {
			return "", fmt.Errorf("unrecognised label %q", strings.TrimSpace(reply))
		}
	}
	return route, nil
}

func routeList() string {
	labels := make([]string, len(domain.Routes))
	for i, r := range domain.Routes {
		labels[i] = r.String()
	}
	return strings.Join(labels, ", ")
}

func fileList(files []string) string {
	if len(files) > maxRouterFiles {
		files = files[:maxRouterFiles]
	}
	return strings.Join(files, "\n")
}
