package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repoqa/internal/core/ports/driven"
)

func newStore(t *testing.T, files map[string]string) (*PromptStore, string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0600))
	}
	store, err := NewPromptStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestNewPromptStore_Dir(t *testing.T) {
	t.Run("custom", func(t *testing.T) {
		store, dir := newStore(t, nil)
		assert.Equal(t, dir, store.Dir())
	})

	t.Run("default under home", func(t *testing.T) {
		home, err := os.UserHomeDir()
		if err != nil {
			t.Skip("no home directory")
		}
		store, err := NewPromptStore("")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(home, ".repoqa", "prompts"), store.Dir())
	})
}

func TestPromptStore_FirstLoadSeedsDirectory(t *testing.T) {
	store, dir := newStore(t, map[string]string{"classify.txt": "mine"})

	_, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)

	for _, f := range []string{"classify.txt", "answer.txt", "README.md"} {
		assert.FileExists(t, filepath.Join(dir, f))
	}
	data, err := os.ReadFile(filepath.Join(dir, "classify.txt"))
	require.NoError(t, err)
	assert.Equal(t, "mine", string(data), "existing prompt overwritten")
}

func TestPromptStore_DefaultsRender(t *testing.T) {
	store, _ := newStore(t, nil)

	classify, err := store.Load(driven.PromptClassify)
	require.NoError(t, err)
	out := fmt.Sprintf(classify, "python, go", "main.go\nutil.py", "where is main?")
	assert.NotContains(t, out, "%!")
	assert.Contains(t, out, "Classify the question as one of: python, go.")
	assert.Contains(t, out, `Question: "where is main?"`)

	answer, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	out = fmt.Sprintf(answer, "### main.go\nfunc main() {}", "what does main do?")
	assert.NotContains(t, out, "%!")
	assert.Contains(t, out, "func main() {}")
	assert.Contains(t, out, "what does main do?")
}

func TestPromptStore_Load(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		prompt  string
		want    string
		wantErr string
	}{
		{
			name:   "user override",
			files:  map[string]string{"classify.txt": "labels %s files %s q %s"},
			prompt: driven.PromptClassify,
			want:   "labels %s files %s q %s",
		},
		{
			name:   "surrounding whitespace trimmed",
			files:  map[string]string{"answer.txt": "\n\n  ctx %s q %s  \n"},
			prompt: driven.PromptAnswer,
			want:   "ctx %s q %s",
		},
		{
			name:   "blank override uses default",
			files:  map[string]string{"answer.txt": "   \n"},
			prompt: driven.PromptAnswer,
			want:   defaultPrompts[driven.PromptAnswer],
		},
		{
			name:    "unknown prompt",
			prompt:  "summarise",
			wantErr: "summarise",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newStore(t, tt.files)

			got, err := store.Load(tt.prompt)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPromptStore_CacheAndReload(t *testing.T) {
	store, dir := newStore(t, nil)
	path := filepath.Join(dir, "classify.txt")

	first, err := store.Load(driven.PromptClassify)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("edited"), 0600))
	cached, err := store.Load(driven.PromptClassify)
	require.NoError(t, err)
	assert.Equal(t, first, cached)

	store.Reload()
	reloaded, err := store.Load(driven.PromptClassify)
	require.NoError(t, err)
	assert.Equal(t, "edited", reloaded)

	require.NoError(t, os.Remove(path))
	store.Reload()
	fallback, err := store.Load(driven.PromptClassify)
	require.NoError(t, err)
	assert.Equal(t, defaultPrompts[driven.PromptClassify], fallback)
}

func TestPromptStore_InitFailureFallsBack(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0600))

	store, err := NewPromptStore(filepath.Join(blocker, "prompts"))
	require.NoError(t, err)

	got, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	assert.Equal(t, defaultPrompts[driven.PromptAnswer], got)

	_, err = store.Load("other")
	assert.Error(t, err)
	assert.Error(t, store.Watch(context.Background()))
}

func TestPromptStore_ConcurrentLoad(t *testing.T) {
	store, _ := newStore(t, map[string]string{"answer.txt": "shared %s %s"})

	var wg sync.WaitGroup
	results := make([]string, 50)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = store.Load(driven.PromptAnswer)
		}()
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, "shared %s %s", got)
	}
}

func TestPromptStore_HandleFsEvent(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		op          fsnotify.Op
		wantChanged bool
	}{
		{"write prompt", "classify.txt", fsnotify.Write, true},
		{"create prompt", "answer.txt", fsnotify.Create, true},
		{"remove prompt", "classify.txt", fsnotify.Remove, true},
		{"chmod ignored", "classify.txt", fsnotify.Chmod, false},
		{"readme ignored", "README.md", fsnotify.Write, false},
		{"editor swap file ignored", ".classify.txt", fsnotify.Write, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			store, err := NewPromptStore(dir)
			require.NoError(t, err)
			_, err = store.Load(driven.PromptClassify)
			require.NoError(t, err)

			name, changed := store.handleFsEvent(fsnotify.Event{Name: filepath.Join(dir, tt.file), Op: tt.op})

			assert.Equal(t, tt.wantChanged, changed)
			if tt.wantChanged {
				assert.Equal(t, strings.TrimSuffix(tt.file, ".txt"), name)
			}
		})
	}
}

func TestPromptStore_HandleFsEvent_InvalidatesCache(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	_, err = store.Load(driven.PromptAnswer)
	require.NoError(t, err)

	path := filepath.Join(dir, "answer.txt")
	require.NoError(t, os.WriteFile(path, []byte("edited %s %s"), 0600))
	store.handleFsEvent(fsnotify.Event{Name: path, Op: fsnotify.Write})

	prompt, err := store.Load(driven.PromptAnswer)
	require.NoError(t, err)
	assert.Equal(t, "edited %s %s", prompt)
}

func TestPromptStore_Watch(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, store.Watch(ctx))

	_, err = store.Load(driven.PromptClassify)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "classify.txt"), []byte("watched"), 0600))

	assert.Eventually(t, func() bool {
		prompt, err := store.Load(driven.PromptClassify)
		return err == nil && prompt == "watched"
	}, 2*time.Second, 20*time.Millisecond)
}
