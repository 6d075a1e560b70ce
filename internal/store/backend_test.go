package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/it-hub-api/pkg/database"
)

func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	_, err := b.Get(ctx, "it_hub_files")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, b.Set(ctx, "it_hub_files", []byte(`[]`)))
	got, err := b.Get(ctx, "it_hub_files")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[]`), got)

	require.NoError(t, b.Set(ctx, "it_hub_files", []byte(`[{"id":"1"}]`)))
	got, err = b.Get(ctx, "it_hub_files")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"id":"1"}]`), got)

	require.NoError(t, b.Delete(ctx, "it_hub_files"))
	_, err = b.Get(ctx, "it_hub_files")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, b.Delete(ctx, "it_hub_files"))
}

func TestMemoryBackend(t *testing.T) {
	b := NewMemoryBackend()
	exerciseBackend(t, b)

	value := []byte("abc")
	require.NoError(t, b.Set(context.Background(), "k", value))
	value[0] = 'x'
	got, err := b.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)
	assert.Equal(t, []string{"k"}, b.Keys())
}

func TestFileBackend(t *testing.T) {
	b, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)
	exerciseBackend(t, b)
}

func TestSQLiteBackend(t *testing.T) {
	db, err := database.NewSQLite(":memory:")
	require.NoError(t, err)
	b, err := NewSQLiteBackend(db)
	require.NoError(t, err)
	defer b.Close() //nolint:errcheck
	exerciseBackend(t, b)
}
