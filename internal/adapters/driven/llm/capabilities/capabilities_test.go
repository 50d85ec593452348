package capabilities

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repoqa/internal/core/domain"
	"github.com/custodia-labs/repoqa/internal/core/ports/driven"
)

// MockLLM is a testify mock for driven.LLMService.
type MockLLM struct {
	mock.Mock
}

func (m *MockLLM) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	args := m.Called(ctx, prompt, opts)
	return args.String(0), args.Error(1)
}

func (m *MockLLM) ModelName() string            { return "mock" }
func (m *MockLLM) Ping(_ context.Context) error { return nil }
func (m *MockLLM) Close() error                 { return nil }

// staticPrompts is a PromptStore returning fixed templates.
type staticPrompts map[string]string

func (s staticPrompts) Load(name string) (string, error) {
	if p, ok := s[name]; ok {
		return p, nil
	}
	return "", errors.New("missing")
}
func (s staticPrompts) Reload() {}

func TestRouter_Classify(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
		want  domain.Route
	}{
		{"plain label", "py", nil, domain.RoutePython},
		{"padded and cased", "  JS.\n", nil, domain.RouteJS},
		{"alias", "folder", nil, domain.RouteDirectory},
		{"label with explanation", "directory_structure because the user asks about layout", nil, domain.RouteDirectory},
		{"backticked", "`ts`", nil, domain.RouteTS},
		{"unrecognised", "kotlin", nil, domain.RouteGeneral},
		{"empty", "", nil, domain.RouteGeneral},
		{"llm error", "", errors.New("quota exceeded"), domain.RouteGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := new(MockLLM)
			llm.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return(tt.reply, tt.err)

			got := NewRouter(llm).Classify(context.Background(), "where is auth?", []string{"a.py"})

			assert.Equal(t, tt.want, got)
			llm.AssertNumberOfCalls(t, "Generate", 1)
		})
	}
}

func TestRouter_PromptContents(t *testing.T) {
	llm := new(MockLLM)
	llm.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "src/app.py\nweb/index.html") &&
			strings.Contains(p, `"How is routing done?"`) &&
			strings.Contains(p, "py, html, css, js, ts, java, directory_structure, general, other")
	}), mock.Anything).Return("py", nil)

	got := NewRouter(llm).Classify(context.Background(), "How is routing done?", []string{"src/app.py", "web/index.html"})

	assert.Equal(t, domain.RoutePython, got)
	llm.AssertExpectations(t)
}

func TestRouter_CustomPrompt(t *testing.T) {
	llm := new(MockLLM)
	llm.On("Generate", mock.Anything, "Q=why? R=py, html, css, js, ts, java, directory_structure, general, other", mock.Anything).Return("general", nil)

	r := NewRouter(llm)
	r.SetPromptStore(staticPrompts{driven.PromptClassify: "Q=%[3]s R=%[1]s"})

	assert.Equal(t, domain.RouteGeneral, r.Classify(context.Background(), "why?", nil))
	llm.AssertExpectations(t)
}

func TestRouter_NilLLM(t *testing.T) {
	assert.Equal(t, domain.RouteGeneral, NewRouter(nil).Classify(context.Background(), "q", nil))
}

func TestRouter_FileListCapped(t *testing.T) {
	files := make([]string, maxRouterFiles+10)
	for i := range files {
		files[i] = "f.go"
	}
	assert.Equal(t, maxRouterFiles, strings.Count(fileList(files), "f.go"))
}

func segment(source, text string) domain.Segment {
	name, dir := domain.SegmentMetadata(source)
	return domain.Segment{SourcePath: source, FileName: name, Directory: dir, Text: text}
}

func TestBuildContext(t *testing.T) {
	segs := []domain.Segment{
		segment("src/a.py", "print(1)"),
		segment("b.js", "let x"),
	}

	got, dropped := BuildContext(segs, 0)

	want := "# From Dir: src/a.py\n\n# File: a.py\n\nprint(1)\n\n# From Dir: b.js\n\n# File: b.js\n\nlet x"
	assert.Equal(t, want, got)
	assert.Zero(t, dropped)
}

func TestBuildContext_Budget(t *testing.T) {
	segs := []domain.Segment{
		segment("a.txt", strings.Repeat("a", 50)),
		segment("b.txt", strings.Repeat("b", 50)),
		segment("c.txt", strings.Repeat("c", 50)),
	}
	first, _ := BuildContext(segs[:1], 0)

	got, dropped := BuildContext(segs, len([]rune(first))+10)

	assert.Equal(t, first, got)
	assert.Equal(t, 2, dropped)
}

func TestBuildContext_UnknownMetadata(t *testing.T) {
	got, _ := BuildContext([]domain.Segment{{Text: "x"}}, 0)
	assert.Equal(t, "# From Dir: unknown\n\n# File: unknown\n\nx", got)
}

func TestComposer_Compose(t *testing.T) {
	llm := new(MockLLM)
	llm.On("Generate", mock.Anything, mock.MatchedBy(func(p string) bool {
		return strings.Contains(p, "# File: main.go") && strings.Contains(p, "What does main do?")
	}), mock.Anything).Return("  It starts the server.\n", nil)

	text, degraded := NewComposer(llm).Compose(context.Background(), "What does main do?",
		[]domain.Segment{segment("cmd/main.go", "func main() {}")})

	assert.False(t, degraded)
	assert.Equal(t, "It starts the server.", text)
	llm.AssertExpectations(t)
}

func TestComposer_Failure(t *testing.T) {
	llm := new(MockLLM)
	llm.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("deadline exceeded"))

	text, degraded := NewComposer(llm).Compose(context.Background(), "q", nil)

	assert.True(t, degraded)
	assert.Equal(t, "Failed to generate answer: deadline exceeded", text)
}

func TestComposer_MaxContextOption(t *testing.T) {
	c := NewComposer(nil, WithMaxContextChars(10))
	assert.Equal(t, 10, c.maxContextChars)

	c = NewComposer(nil, WithMaxContextChars(-1))
	assert.Equal(t, DefaultMaxContextChars, c.maxContextChars)

	text, degraded := c.Compose(context.Background(), "q", nil)
	require.True(t, degraded)
	assert.True(t, strings.HasPrefix(text, "Failed to generate answer: "))
}
