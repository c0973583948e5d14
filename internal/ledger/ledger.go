package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrConflict is returned by View or Update when another transaction
	// committed a write to a key this transaction read. The caller may retry.
	ErrConflict = errors.New("ledger: transaction conflict")

	// ErrReadOnly is returned by Put inside a View transaction.
	ErrReadOnly = errors.New("ledger: write in read-only transaction")

	// ErrClosed is returned when the ledger has been closed.
	ErrClosed = errors.New("ledger: closed")
)

// Tx is the view of the ledger inside one transaction.
type Tx interface {
	// Get returns the value stored at key, or nil if the key is absent.
	// Writes made earlier in the same transaction are visible.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put buffers a write of value at key.
	Put(ctx context.Context, key string, value []byte) error
}

// Ledger runs functions inside transactions.
type Ledger interface {
	// View runs fn in a read-only transaction.
	View(ctx context.Context, fn func(Tx) error) error

	// Update runs fn in a read-write transaction. If fn returns an error the
	// buffered writes are discarded and the error is returned unchanged.
	Update(ctx context.Context, fn func(Tx) error) error

	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory  = "memory"
	BackendSQLite  = "sqlite"
	BackendBolt    = "bolt"
	BackendLevelDB = "leveldb"
)

// Config selects and locates a backend.
type Config struct {
	Backend string
	Path    string
}

// Open creates or opens the ledger described by cfg.
func Open(cfg Config, logger *slog.Logger) (Ledger, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case BackendMemory:
		return NewMemory(), nil
	case BackendSQLite:
		return OpenSQLite(cfg.Path, logger)
	case BackendBolt:
		return OpenBolt(cfg.Path, logger)
	case BackendLevelDB:
		return OpenLevelDB(cfg.Path, logger)
	default:
		return nil, fmt.Errorf("unknown ledger backend %q", cfg.Backend)
	}
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
