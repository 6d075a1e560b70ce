package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/it-hub-api/internal/models"
	"github.com/noah-isme/it-hub-api/pkg/storage"
)

func TestBlobCleanerRemovesUploadedBodies(t *testing.T) {
	dir := t.TempDir()
	blobs, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	_, err = blobs.Save("f1/notes.pdf", []byte("body"))
	require.NoError(t, err)

	metrics := NewMetricsService()
	cleaner := NewBlobCleaner(blobs, BlobCleanerConfig{Workers: 1, RetryDelay: 10 * time.Millisecond}, metrics, nil)
	cleaner.Start(context.Background())
	defer cleaner.Stop()

	cleaner.Release(
		models.StudyFile{ID: "f1", BlobPath: "f1/notes.pdf"},
		models.StudyFile{ID: "f2", URL: "https://example.com"},
	)

	assert.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(dir, "f1"))
		return os.IsNotExist(err)
	}, time.Second, 10*time.Millisecond)
}

func TestBlobCleanerReleaseBeforeStartIsLogged(t *testing.T) {
	blobs, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	cleaner := NewBlobCleaner(blobs, BlobCleanerConfig{}, nil, nil)

	assert.NotPanics(t, func() {
		cleaner.Release(models.StudyFile{ID: "f1", BlobPath: "f1/a.pdf"})
	})
}
