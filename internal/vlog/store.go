package vlog

import (
	"context"
)

// DefaultLastN is the capacity of the last-N cache.
const DefaultLastN = 100

// KV is the key-value view an operation runs against. ledger.Tx satisfies
// it. A nil or empty value means the key is absent.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Store implements the verification-log operations over a KV.
// A Store is safe for concurrent use; it holds only configuration.
type Store struct {
	lastN int
}

// Option configures a Store.
type Option func(*Store)

// WithLastN sets the capacity of the last-N cache. Values below 1 are
// ignored.
func WithLastN(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.lastN = n
		}
	}
}

// New creates a Store.
func New(opts ...Option) *Store {
	s := &Store{lastN: DefaultLastN}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LastN returns the capacity of the last-N cache.
func (s *Store) LastN() int {
	return s.lastN
}
