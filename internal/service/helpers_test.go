package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/it-hub-api/internal/models"
	"github.com/noah-isme/it-hub-api/internal/repository"
	"github.com/noah-isme/it-hub-api/internal/store"
)

type sequenceIDs struct {
	mu sync.Mutex
	n  int
}

func (s *sequenceIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

type recordingReleaser struct {
	mu       sync.Mutex
	released []models.StudyFile
}

func (r *recordingReleaser) Release(files ...models.StudyFile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released = append(r.released, files...)
}

func newSeededCatalog(t *testing.T) *repository.CatalogStore {
	t.Helper()
	catalog := repository.NewCatalogStore(store.NewMemoryBackend(), repository.DefaultKeys("it_hub_"), nil)
	require.NoError(t, catalog.EnsureInitialized(context.Background()))
	return catalog
}
