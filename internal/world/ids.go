package world

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator mints collision-resistant entity identifiers. IDs combine a
// per-process monotonic counter with a random suffix so that rapid
// concurrent creation never produces duplicates, unlike timestamp-derived
// schemes.
type IDGenerator struct {
	counter atomic.Uint64
}

// NewIDGenerator creates a fresh generator.
func NewIDGenerator() *IDGenerator {
	return &IDGenerator{}
}

// Next returns a new identifier with the given entity prefix, e.g.
// "thread-42-1b9d6bcd".
func (g *IDGenerator) Next(prefix string) string {
	seq := g.counter.Add(1)
	suffix := uuid.NewString()[:8]

	return fmt.Sprintf("%s-%d-%s", prefix, seq, suffix)
}
