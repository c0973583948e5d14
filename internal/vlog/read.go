package vlog

import (
	"context"

	"github.com/roach88/verifylog/internal/ir"
)

// ReadLog returns the record stored for one sequence number of a chain.
// It fails with NOT_FOUND if the record was never ingested.
func (s *Store) ReadLog(ctx context.Context, kv KV, id ir.Identity, instanceID, chainID, seq int64) (ir.VerificationRecord, error) {
	key, err := BucketKey(id, instanceID, chainID, seq)
	if err != nil {
		return ir.VerificationRecord{}, err
	}

	bucket, found, err := loadBucket(ctx, kv, key)
	if err != nil {
		return ir.VerificationRecord{}, err
	}

	rec := bucket[ir.SlotIndex(seq)]
	if !found || rec == nil {
		return ir.VerificationRecord{}, NotFoundf(
			"log not found for %s instance %d chain %d sequence %d", id, instanceID, chainID, seq)
	}
	return *rec, nil
}
