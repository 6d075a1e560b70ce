package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/noah-isme/it-hub-api/pkg/storage"
)

// FileBackend stores each key as "<key>.json" under a directory.
type FileBackend struct {
	files *storage.LocalStorage
}

// NewFileBackend roots a file backend at dir.
func NewFileBackend(dir string) (*FileBackend, error) {
	files, err := storage.NewLocalStorage(dir)
	if err != nil {
		return nil, err
	}
	return &FileBackend{files: files}, nil
}

func fileName(key string) string {
	return key + ".json"
}

// Get implements Backend.
func (b *FileBackend) Get(_ context.Context, key string) ([]byte, error) {
	data, err := b.files.Read(fileName(key))
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("file backend get %s: %w", key, err)
	}
	return data, nil
}

// Set implements Backend.
func (b *FileBackend) Set(_ context.Context, key string, value []byte) error {
	if _, err := b.files.Save(fileName(key), value); err != nil {
		return fmt.Errorf("file backend set %s: %w", key, err)
	}
	return nil
}

// Delete implements Backend.
func (b *FileBackend) Delete(_ context.Context, key string) error {
	if err := b.files.Delete(fileName(key)); err != nil {
		return fmt.Errorf("file backend delete %s: %w", key, err)
	}
	return nil
}

// Close implements Backend.
func (b *FileBackend) Close() error { return nil }
