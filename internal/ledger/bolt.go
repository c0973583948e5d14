package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.etcd.io/bbolt"
)

var boltBucket = []byte("ledger")

// Bolt is a ledger backed by a bbolt file. bbolt allows one writer at a
// time, so Update transactions are serialized and never conflict.
type Bolt struct {
	db     *bbolt.DB
	logger *slog.Logger
}

// OpenBolt opens or creates the bbolt file at path.
func OpenBolt(path string, logger *slog.Logger) (*Bolt, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt ledger: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating bucket %s: %w", boltBucket, err)
	}

	logger.Debug("opened bolt ledger", "path", path)
	return &Bolt{db: db, logger: logger}, nil
}

// View runs fn in a read-only bbolt transaction.
func (b *Bolt) View(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.View(func(tx *bbolt.Tx) error {
		return fn(&boltTx{bucket: tx.Bucket(boltBucket), readOnly: true})
	})
}

// Update runs fn in a read-write bbolt transaction.
func (b *Bolt) Update(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return fn(&boltTx{bucket: tx.Bucket(boltBucket)})
	})
}

// Close closes the bbolt file.
func (b *Bolt) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

type boltTx struct {
	bucket   *bbolt.Bucket
	readOnly bool
}

func (t *boltTx) Get(_ context.Context, key string) ([]byte, error) {
	// Values are only valid for the life of the transaction.
	return cloneBytes(t.bucket.Get([]byte(key))), nil
}

func (t *boltTx) Put(_ context.Context, key string, value []byte) error {
	if t.readOnly {
		return ErrReadOnly
	}
	v := cloneBytes(value)
	if v == nil {
		v = []byte{}
	}
	if err := t.bucket.Put([]byte(key), v); err != nil {
		return fmt.Errorf("bolt ledger: put: %w", err)
	}
	return nil
}
