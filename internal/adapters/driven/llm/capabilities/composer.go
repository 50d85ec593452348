package capabilities

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/repoqa/internal/core/domain"
	"github.com/custodia-labs/repoqa/internal/core/ports/driven"
	"github.com/custodia-labs/repoqa/internal/logger"
)

// DefaultMaxContextChars bounds the context block handed to the model.
const DefaultMaxContextChars = 400000

var (
	_ driven.AnswerComposer   = (*Composer)(nil)
	_ driven.PromptStoreAware = (*Composer)(nil)
)

// Composer turns retrieved segments into an answer with one LLM call.
type Composer struct {
	llm             driven.LLMService
	prompts         promptLoader
	maxContextChars int
}

// ComposerOption configures a Composer.
type ComposerOption func(*Composer)

// WithMaxContextChars caps the context size. Values <= 0 keep the default.
func WithMaxContextChars(n int) ComposerOption {
	return func(c *Composer) {
		if n > 0 {
			c.maxContextChars = n
		}
	}
}

// NewComposer creates a composer backed by llm.
func NewComposer(llm driven.LLMService, opts ...ComposerOption) *Composer {
	c := &Composer{llm: llm, maxContextChars: DefaultMaxContextChars}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetPromptStore sets the store the answer template is read from.
func (c *Composer) SetPromptStore(store driven.PromptStore) {
	c.prompts.store = store
}

// Compose answers question from segments. On failure the returned text is
// "Failed to generate answer: <cause>" and degraded is true.
func (c *Composer) Compose(ctx context.Context, question string, segments []domain.Segment) (string, bool) {
	text, err := c.compose(ctx, question, segments)
	if err != nil {
		logger.Warn("%v", fmt.Errorf("%w: %w", domain.ErrCompositionFailure, err))
		return fmt.Sprintf("Failed to generate answer: %v", err), true
	}
	return text, false
}

func (c *Composer) compose(ctx context.Context, question string, segments []domain.Segment) (string, error) {
	if c.llm == nil {
		return "", fmt.Errorf("no language model configured")
	}

	blocks, dropped := BuildContext(segments, c.maxContextChars)
	if dropped > 0 {
		logger.Info("composer: context budget reached, dropped %d segments", dropped)
	}
	prompt := fmt.Sprintf(c.prompts.load(driven.PromptAnswer, defaultAnswerPrompt), blocks, question)

	answer, err := c.llm.Generate(ctx, prompt, driven.GenerateOptions{})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

// BuildContext renders segments as context blocks separated by blank lines,
// stopping before the block that would exceed maxChars characters. Returns
// the context and how many segments were left out.
func BuildContext(segments []domain.Segment, maxChars int) (string, int) {
	var b strings.Builder
	size := 0
	for i, s := range segments {
		block := fmt.Sprintf("# From Dir: %s\n\n# File: %s\n\n%s", orUnknown(s.SourcePath), orUnknown(s.FileName), s.Text)
		n := utf8.RuneCountInString(block)
		if i > 0 {
			n += 2
		}
		if maxChars > 0 && size+n > maxChars {
			return b.String(), len(segments) - i
		}
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(block)
		size += n
	}
	return b.String(), 0
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
