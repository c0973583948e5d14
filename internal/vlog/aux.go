package vlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/verifylog/internal/ir"
)

// loadStream reads a record stream (last-N cache or failed queue).
// An absent stream is empty.
func loadStream(ctx context.Context, kv KV, key string) ([]ir.VerificationRecord, error) {
	data, err := kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get stream %s: %w", key, err)
	}
	if len(data) == 0 {
		return []ir.VerificationRecord{}, nil
	}

	var records []ir.VerificationRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, Inconsistentf("stream %s is corrupt: %v", key, err)
	}
	if records == nil {
		records = []ir.VerificationRecord{}
	}
	return records, nil
}

func saveStream(ctx context.Context, kv KV, key string, records []ir.VerificationRecord) error {
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal stream: %w", err)
	}
	if err := kv.Put(ctx, key, data); err != nil {
		return fmt.Errorf("put stream %s: %w", key, err)
	}
	return nil
}

// appendStream appends rec to the stream at key. When limit is positive the
// oldest entries are evicted so the stream never holds more than limit
// records.
func appendStream(ctx context.Context, kv KV, key string, rec ir.VerificationRecord, limit int) error {
	records, err := loadStream(ctx, kv, key)
	if err != nil {
		return err
	}
	if limit > 0 && len(records) >= limit {
		records = records[len(records)-limit+1:]
	}
	records = append(records, rec)
	return saveStream(ctx, kv, key, records)
}

// ReadMetadata returns the identity's chain metadata blob unchanged, or nil
// if none has been written.
func (s *Store) ReadMetadata(ctx context.Context, kv KV, id ir.Identity) ([]byte, error) {
	key, err := AuxKey(id, ir.StreamMetadata)
	if err != nil {
		return nil, err
	}
	data, err := kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get metadata: %w", err)
	}
	return data, nil
}

// WriteMetadata stores the identity's chain metadata blob unchanged.
// The blob is not validated; keeping it consistent with the ingested
// records is the caller's job.
func (s *Store) WriteMetadata(ctx context.Context, kv KV, id ir.Identity, blob []byte) error {
	key, err := AuxKey(id, ir.StreamMetadata)
	if err != nil {
		return err
	}
	if err := kv.Put(ctx, key, blob); err != nil {
		return fmt.Errorf("put metadata: %w", err)
	}
	return nil
}

// FetchLast100 returns the identity's last-N cache as a JSON array, oldest
// first. An identity with no records yields "[]".
func (s *Store) FetchLast100(ctx context.Context, kv KV, id ir.Identity) ([]byte, error) {
	key, err := AuxKey(id, ir.StreamLast100)
	if err != nil {
		return nil, err
	}
	data, err := kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("get last100: %w", err)
	}
	if len(data) == 0 {
		return []byte("[]"), nil
	}
	return data, nil
}

// GetFailedRows returns the identity's failed-verification records in
// ingestion order. With limit >= 0 only the trailing limit records are
// returned; a negative limit returns the whole queue.
func (s *Store) GetFailedRows(ctx context.Context, kv KV, id ir.Identity, limit int64) ([]ir.VerificationRecord, error) {
	key, err := AuxKey(id, ir.StreamFailedQueue)
	if err != nil {
		return nil, err
	}
	records, err := loadStream(ctx, kv, key)
	if err != nil {
		return nil, err
	}
	if limit < 0 || limit >= int64(len(records)) {
		return records, nil
	}
	return records[int64(len(records))-limit:], nil
}
