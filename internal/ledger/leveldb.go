package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	dbm "github.com/cosmos/cosmos-db"
)

// LevelDB is a ledger on a cosmos-db database (goleveldb on disk, or the
// cosmos-db memdb in tests).
//
// cosmos-db has no read-write transactions, only atomic batches. Update
// therefore buffers writes in an overlay, serves reads from the overlay
// first, and commits the overlay as one batch. A read-write lock
// serializes writers and keeps readers out while an Update runs, so a View
// never observes half of a commit and Update never returns ErrConflict.
type LevelDB struct {
	db     dbm.DB
	lock   sync.RWMutex
	logger *slog.Logger
}

// OpenLevelDB opens or creates a goleveldb database in directory dir.
func OpenLevelDB(dir string, logger *slog.Logger) (*LevelDB, error) {
	db, err := dbm.NewDB("verifylog", dbm.GoLevelDBBackend, dir)
	if err != nil {
		return nil, fmt.Errorf("opening leveldb ledger: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("opened leveldb ledger", "dir", dir)
	return NewLevelDB(db, logger), nil
}

// NewLevelDB wraps an already open cosmos-db database.
func NewLevelDB(db dbm.DB, logger *slog.Logger) *LevelDB {
	if logger == nil {
		logger = slog.Default()
	}
	return &LevelDB{db: db, logger: logger}
}

// View runs fn against the current database state. Views run
// concurrently with each other but not with an Update.
func (l *LevelDB) View(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.lock.RLock()
	defer l.lock.RUnlock()
	return fn(&overlayTx{db: l.db, readOnly: true})
}

// Update runs fn with buffered writes and commits them in one batch.
func (l *LevelDB) Update(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.lock.Lock()
	defer l.lock.Unlock()

	tx := &overlayTx{db: l.db, writes: make(map[string][]byte)}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.commit()
}

// Close closes the underlying database.
func (l *LevelDB) Close() error {
	return l.db.Close()
}

type overlayTx struct {
	db       dbm.DB
	readOnly bool
	writes   map[string][]byte
}

func (t *overlayTx) Get(_ context.Context, key string) ([]byte, error) {
	if v, ok := t.writes[key]; ok {
		return cloneBytes(v), nil
	}
	v, err := t.db.Get([]byte(key))
	if err != nil {
		return nil, fmt.Errorf("leveldb ledger: get: %w", err)
	}
	return cloneBytes(v), nil
}

func (t *overlayTx) Put(_ context.Context, key string, value []byte) error {
	if t.readOnly {
		return ErrReadOnly
	}
	t.writes[key] = cloneBytes(value)
	return nil
}

func (t *overlayTx) commit() error {
	if len(t.writes) == 0 {
		return nil
	}

	batch := t.db.NewBatch()
	defer batch.Close()

	// Stable order keeps the batch contents reproducible.
	keys := make([]string, 0, len(t.writes))
	for k := range t.writes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		var err error
		if v := t.writes[k]; len(v) == 0 {
			err = batch.Delete([]byte(k))
		} else {
			err = batch.Set([]byte(k), v)
		}
		if err != nil {
			return fmt.Errorf("leveldb ledger: batch: %w", err)
		}
	}

	if err := batch.WriteSync(); err != nil {
		return fmt.Errorf("leveldb ledger: commit: %w", err)
	}
	return nil
}
