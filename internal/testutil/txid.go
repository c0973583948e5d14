// Package testutil provides deterministic helpers for tests and scenario runs.
package testutil

import (
	"fmt"
	"sync"
)

// FixedTxIDGenerator generates the same transaction id every time.
//
// Thread-safety: FixedTxIDGenerator is stateless and safe for concurrent use.
type FixedTxIDGenerator struct {
	id string
}

// NewFixedTxIDGenerator creates a generator that always returns id.
// If id is empty, Generate() returns "test-tx-default".
func NewFixedTxIDGenerator(id string) *FixedTxIDGenerator {
	if id == "" {
		id = "test-tx-default"
	}
	return &FixedTxIDGenerator{id: id}
}

// Generate returns the fixed transaction id.
func (g *FixedTxIDGenerator) Generate() string {
	return g.id
}

// SequentialTxIDGenerator generates "<prefix>-1", "<prefix>-2", ...
//
// The same scenario run with a fresh generator produces byte-identical
// traces, which is what golden comparison needs.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SequentialTxIDGenerator struct {
	mu     sync.Mutex
	prefix string
	seq    int64
}

// NewSequentialTxIDGenerator creates a generator starting at 1.
// If prefix is empty, "tx" is used.
func NewSequentialTxIDGenerator(prefix string) *SequentialTxIDGenerator {
	if prefix == "" {
		prefix = "tx"
	}
	return &SequentialTxIDGenerator{prefix: prefix}
}

// Generate returns the next id.
func (g *SequentialTxIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	return fmt.Sprintf("%s-%d", g.prefix, g.seq)
}

// Reset restarts the sequence. After Reset(), Generate() returns "<prefix>-1".
func (g *SequentialTxIDGenerator) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq = 0
}
