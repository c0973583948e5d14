package ledger

import (
	"context"
	"sync"
)

type memEntry struct {
	value   []byte
	version uint64
}

// Memory is an in-process ledger with optimistic concurrency control.
//
// Transactions run without holding any lock. Each remembers the version of
// every key it read; at commit the versions are re-checked and the commit is
// rejected with ErrConflict if any of them moved. This mirrors how a
// replicated ledger validates read sets at commit time.
type Memory struct {
	mu     sync.Mutex
	data   map[string]memEntry
	closed bool
}

// NewMemory creates an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]memEntry)}
}

type memTx struct {
	m        *Memory
	readOnly bool
	reads    map[string]uint64
	writes   map[string][]byte
}

func (tx *memTx) Get(_ context.Context, key string) ([]byte, error) {
	if v, ok := tx.writes[key]; ok {
		return cloneBytes(v), nil
	}

	tx.m.mu.Lock()
	defer tx.m.mu.Unlock()
	if tx.m.closed {
		return nil, ErrClosed
	}

	e := tx.m.data[key]
	if _, seen := tx.reads[key]; !seen {
		tx.reads[key] = e.version
	}
	return cloneBytes(e.value), nil
}

func (tx *memTx) Put(_ context.Context, key string, value []byte) error {
	if tx.readOnly {
		return ErrReadOnly
	}
	tx.writes[key] = cloneBytes(value)
	return nil
}

func (m *Memory) begin(readOnly bool) *memTx {
	return &memTx{
		m:        m,
		readOnly: readOnly,
		reads:    make(map[string]uint64),
		writes:   make(map[string][]byte),
	}
}

// View runs fn in a read-only transaction. If a commit changed any key fn
// read before fn returned, fn may have seen a mix of old and new state and
// View returns ErrConflict.
func (m *Memory) View(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := m.begin(true)
	if err := fn(tx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validate(tx)
}

// Update runs fn and commits its writes if every key it read is unchanged.
func (m *Memory) Update(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tx := m.begin(false)
	if err := fn(tx); err != nil {
		return err
	}
	return m.commit(tx)
}

func (m *Memory) commit(tx *memTx) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.validate(tx); err != nil {
		return err
	}
	for key, value := range tx.writes {
		e := m.data[key]
		m.data[key] = memEntry{value: value, version: e.version + 1}
	}
	return nil
}

// validate checks the read set of tx. The caller holds m.mu.
func (m *Memory) validate(tx *memTx) error {
	if m.closed {
		return ErrClosed
	}
	for key, version := range tx.reads {
		if m.data[key].version != version {
			return ErrConflict
		}
	}
	return nil
}

// Len returns the number of keys holding a value.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, e := range m.data {
		if len(e.value) > 0 {
			n++
		}
	}
	return n
}

// Close marks the ledger closed. Later transactions fail with ErrClosed.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
