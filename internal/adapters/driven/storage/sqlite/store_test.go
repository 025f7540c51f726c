package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfchat/internal/core/domain"
)

// setupTestStore creates a temporary SQLite payload store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(filepath.Join(t.TempDir(), "index", "pdf_documents.docs"))
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func testChunks() []domain.TextChunk {
	return []domain.TextChunk{
		{
			ID: "c0", Content: "First chunk.", SourceDocument: "doc.pdf", PageNumber: 1,
			ChunkIndex: 0, StartOffset: 0, EndOffset: 12,
			Metadata: map[string]string{domain.MetaSource: "doc.pdf", domain.MetaChunkIndex: "0"},
		},
		{
			ID: "c1", Content: "Second chunk.", SourceDocument: "doc.pdf", PageNumber: 2,
			ChunkIndex: 1, StartOffset: 0, EndOffset: 13,
			Metadata: map[string]string{domain.MetaSource: "doc.pdf", domain.MetaChunkIndex: "1"},
		},
	}
}

func TestNewStore_EmptyPath(t *testing.T) {
	_, err := NewStore("")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_ReplaceAllAndLoadAll(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceAll(ctx, testChunks()))

	loaded, err := store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, testChunks(), loaded)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestStore_ReplaceAllDiscardsPrevious(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceAll(ctx, testChunks()))
	replacement := testChunks()[:1]
	replacement[0].ID = "other"
	require.NoError(t, store.ReplaceAll(ctx, replacement))

	loaded, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "other", loaded[0].ID)
}

func TestStore_LoadAllEmpty(t *testing.T) {
	store := setupTestStore(t)

	loaded, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestStore_Meta(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	v, err := store.Meta(ctx, "dimension")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	require.NoError(t, store.SetMeta(ctx, "dimension", "768"))
	require.NoError(t, store.SetMeta(ctx, "dimension", "1536"))

	v, err = store.Meta(ctx, "dimension")
	require.NoError(t, err)
	assert.Equal(t, "1536", v)
}

func TestStore_ReopenRunsMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.docs")
	ctx := context.Background()

	store, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, store.ReplaceAll(ctx, testChunks()))
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	n, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
