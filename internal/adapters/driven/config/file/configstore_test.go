package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repoqa/internal/core/domain"
)

func newTestStore(t *testing.T) *ConfigStore {
	t.Helper()
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
	assert.Empty(t, store.Keys())
}

func TestNewConfigStore_NestedDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "deep")

	store, err := NewConfigStore(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(nested, "config.toml"), store.Path())

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_CorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not valid TOML {{{[["), 0600))

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_CommentOnlyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("# nothing yet\n"), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	_, ok := store.Get("llm.provider")
	assert.False(t, ok)
}

func TestConfigStore_ReadsNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[llm]
provider = "openai"
model = "gpt-4o-mini"

[retrieval]
k = 40
lambda = 0.7

[cache]
backend = "sqlite"
enabled = true
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "openai", store.GetString("llm.provider"))
	assert.Equal(t, "gpt-4o-mini", store.GetString("llm.model"))
	assert.Equal(t, 40, store.GetInt("retrieval.k"))
	assert.InDelta(t, 0.7, store.GetFloat("retrieval.lambda"), 1e-9)
	assert.True(t, store.GetBool("cache.enabled"))
	assert.Equal(t, []string{
		"cache.backend", "cache.enabled", "llm.model", "llm.provider", "retrieval.k", "retrieval.lambda",
	}, store.Keys())
}

func TestConfigStore_WritesNestedTables(t *testing.T) {
	store := newTestStore(t)

	require.NoError(t, store.Set("llm.provider", "anthropic"))
	require.NoError(t, store.Set("ingest.max_files", 50))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[llm]")
	assert.Contains(t, string(raw), "[ingest]")
	assert.NotContains(t, string(raw), "'llm.provider'")
}

func TestConfigStore_Persistence(t *testing.T) {
	tmpDir := t.TempDir()

	store1, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store1.Set("github.token", "ghp_x"))
	require.NoError(t, store1.Set("ingest.max_files", 42))
	require.NoError(t, store1.Set("retrieval.lambda", 0.25))
	require.NoError(t, store1.Set("cache.enabled", true))
	require.NoError(t, store1.Set("tags", []string{"a", "b"}))

	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "ghp_x", store2.GetString("github.token"))
	assert.Equal(t, 42, store2.GetInt("ingest.max_files"))
	assert.InDelta(t, 0.25, store2.GetFloat("retrieval.lambda"), 1e-9)
	assert.True(t, store2.GetBool("cache.enabled"))
	assert.Equal(t, []string{"a", "b"}, store2.GetStringSlice("tags"))
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := newTestStore(t)
	store.mu.Lock()
	store.data = map[string]any{
		"int64":     int64(9999),
		"int":       7,
		"str_int":   " 12 ",
		"str_float": "0.5",
		"str_bool":  "true",
		"float":     1.5,
		"bad":       "nope",
		"any_slice": []any{"x", 1, "y"},
	}
	store.mu.Unlock()

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"int64", store.GetInt("int64"), 9999},
		{"int", store.GetInt("int"), 7},
		{"numeric string", store.GetInt("str_int"), 12},
		{"non-numeric string", store.GetInt("bad"), 0},
		{"missing int", store.GetInt("missing"), 0},
		{"float from string", store.GetFloat("str_float"), 0.5},
		{"float from int", store.GetFloat("int"), 7.0},
		{"float", store.GetFloat("float"), 1.5},
		{"bool from string", store.GetBool("str_bool"), true},
		{"bool from garbage", store.GetBool("bad"), false},
		{"string of int", store.GetString("int"), ""},
		{"mixed slice", store.GetStringSlice("any_slice"), []string{"x", "y"}},
		{"slice of scalar", store.GetStringSlice("int"), []string(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestConfigStore_Set_RejectsBadKeys(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("llm.provider", "gemini"))

	for _, key := range []string{"", "  ", ".llm", "llm.", "llm", "llm.provider.name"} {
		t.Run(key, func(t *testing.T) {
			err := store.Set(key, "x")
			require.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	assert.Equal(t, "gemini", store.GetString("llm.provider"))
}

func TestConfigStore_Set_UnmarshallableValueRollsBack(t *testing.T) {
	store := newTestStore(t)

	err := store.Set("channel", make(chan int))
	assert.Error(t, err)

	_, ok := store.Get("channel")
	assert.False(t, ok)
}

func TestConfigStore_Delete(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("github.token", "ghp_x"))
	require.NoError(t, store.Delete("github.token"))
	require.NoError(t, store.Delete("never.set"))

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	_, ok := reloaded.Get("github.token")
	assert.False(t, ok)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("llm.model", "x"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Save_WriteFileError(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("llm.model", "x"))

	// A directory in place of the file makes the write fail.
	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Set("llm.provider", "openai"))
	assert.Error(t, store.Save())
}

func TestConfigStore_Load_InvalidTOML(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Set("llm.model", "x"))
	require.NoError(t, os.WriteFile(store.Path(), []byte("invalid toml ][}{"), 0600))

	assert.Error(t, store.Load())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store := newTestStore(t)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Set("concurrent.key", i)
		}()
		go func() {
			defer wg.Done()
			_ = store.GetInt("concurrent.key")
		}()
	}
	wg.Wait()

	_, ok := store.Get("concurrent.key")
	assert.True(t, ok)
}

func TestFlattenAndNestMap(t *testing.T) {
	nested := map[string]any{
		"llm":   map[string]any{"provider": "gemini", "opts": map[string]any{"t": 0.1}},
		"debug": true,
	}

	flat := flattenMap(nested, "")
	assert.Equal(t, map[string]any{
		"llm.provider": "gemini",
		"llm.opts.t":   0.1,
		"debug":        true,
	}, flat)

	assert.Equal(t, nested, nestMap(flat))
}
