package file

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", ".pdfchat")

	store, err := NewConfigStore(dir)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewConfigStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("PDFCHAT_HOME", home)

	store, err := NewConfigStore("")

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "config.toml"), store.Path())
}

func TestDefaultDir_UsesHome(t *testing.T) {
	t.Setenv("PDFCHAT_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	dir, err := DefaultDir()

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".pdfchat"), dir)
}

func TestConfigStore_WritesTables(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("chunking.size", 800))
	require.NoError(t, store.Set("chunking.overlap", 100))
	require.NoError(t, store.Set("llm.provider", "ollama"))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "[chunking]")
	assert.Contains(t, content, "size = 800")
	assert.Contains(t, content, "[llm]")
	assert.Contains(t, content, "provider = ")
	assert.Contains(t, content, "ollama")
	assert.NotContains(t, content, "chunking.size")
}

func TestConfigStore_ValuesSurviveReload(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("retrieval.top_k", 8))
	require.NoError(t, store.Set("llm.temperature", 0.25))
	require.NoError(t, store.Set("index.name", "manual"))

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)

	v, ok := reloaded.Get("retrieval.top_k")
	require.True(t, ok)
	assert.Equal(t, int64(8), v)
	v, _ = reloaded.Get("llm.temperature")
	assert.Equal(t, 0.25, v)
	v, _ = reloaded.Get("index.name")
	assert.Equal(t, "manual", v)
}

func TestConfigStore_HandEditedFile(t *testing.T) {
	dir := t.TempDir()
	content := strings.Join([]string{
		`"embedding.model" = "nomic-embed-text"`,
		"",
		"[retrieval]",
		"top_k = 3",
		"",
		"[google]",
		`project = "demo"`,
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	v, _ := store.Get("retrieval.top_k")
	assert.Equal(t, int64(3), v)
	v, _ = store.Get("google.project")
	assert.Equal(t, "demo", v)
	v, _ = store.Get("embedding.model")
	assert.Equal(t, "nomic-embed-text", v)
}

func TestConfigStore_Delete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("llm.model", "gpt-4o-mini"))
	require.NoError(t, store.Set("llm.provider", "openai"))

	require.NoError(t, store.Delete("llm.model"))
	require.NoError(t, store.Delete("not.there"))

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	_, ok := reloaded.Get("llm.model")
	assert.False(t, ok)
	_, ok = reloaded.Get("llm.provider")
	assert.True(t, ok)
}

func TestConfigStore_EmptyAndMissingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), nil, 0o600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	_, ok := store.Get("chunking.size")
	assert.False(t, ok)

	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, store.Load())
}

func TestConfigStore_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[chunking\nsize = "), 0o600))

	_, err := NewConfigStore(dir)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing")
}

func TestConfigStore_FilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on windows")
	}
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("llm.api_key", "sk-secret"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestNest(t *testing.T) {
	nested := nest(map[string]any{
		"chunking.size":    800,
		"chunking.overlap": 100,
		"top":              true,
	})

	assert.Equal(t, map[string]any{
		"chunking": map[string]any{"size": 800, "overlap": 100},
		"top":      true,
	}, nested)
	assert.Equal(t, map[string]any{"chunking.size": 800, "chunking.overlap": 100, "top": true}, flatten(nested, ""))
}

func TestNest_PlainValueBlocksTable(t *testing.T) {
	nested := nest(map[string]any{"a": 1, "a.b.c": 2})

	assert.Equal(t, map[string]any{"a": 1, "a.b.c": 2}, nested)
	assert.Equal(t, map[string]any{"a": 1, "a.b.c": 2}, flatten(nested, ""))
}
