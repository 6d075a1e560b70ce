// Package idgen produces identifiers for newly created catalog records.
package idgen

import (
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	StrategyTimestamp = "timestamp"
	StrategyUUID      = "uuid"
)

// Generator returns a fresh identifier on every call.
type Generator interface {
	NewID() string
}

// TimestampGenerator issues millisecond epoch strings. Two calls inside the same
// millisecond get consecutive values so identifiers never repeat in-process.
type TimestampGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewTimestampGenerator builds a generator backed by the wall clock.
func NewTimestampGenerator() *TimestampGenerator {
	return &TimestampGenerator{now: time.Now}
}

// NewID implements Generator.
func (g *TimestampGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return strconv.FormatInt(ms, 10)
}

// UUIDGenerator issues random v4 UUIDs.
type UUIDGenerator struct{}

// NewID implements Generator.
func (UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// New returns the generator for the configured strategy, defaulting to timestamps.
func New(strategy string) Generator {
	if strategy == StrategyUUID {
		return UUIDGenerator{}
	}
	return NewTimestampGenerator()
}
