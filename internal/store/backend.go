// Package store holds the key-value substrates the catalog collections are
// persisted to. Every driver stores opaque byte values under string keys.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Backend.Get when the key has never been written or was deleted.
var ErrNotFound = errors.New("store: key not found")

// Backend is a whole-value key-value substrate.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
