package vlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/verifylog/internal/ir"
)

// loadBucket reads the bucket at key. found is false if the key is absent,
// in which case the returned bucket is empty.
func loadBucket(ctx context.Context, kv KV, key string) (b *ir.Bucket, found bool, err error) {
	data, err := kv.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("get bucket %s: %w", key, err)
	}

	b = new(ir.Bucket)
	if len(data) == 0 {
		return b, false, nil
	}
	if err := json.Unmarshal(data, b); err != nil {
		return nil, false, Inconsistentf("bucket %s is corrupt: %v", key, err)
	}
	return b, true, nil
}

func saveBucket(ctx context.Context, kv KV, key string, b *ir.Bucket) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("marshal bucket: %w", err)
	}
	if err := kv.Put(ctx, key, data); err != nil {
		return fmt.Errorf("put bucket %s: %w", key, err)
	}
	return nil
}
