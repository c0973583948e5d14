package vlog

import (
	"context"
	"slices"

	"github.com/roach88/verifylog/internal/ir"
)

// ReadChainLogs returns the last limit records of a chain, oldest first,
// ending at the chain's last sequence number as recorded in the identity's
// metadata. A negative limit returns the whole chain.
//
// Records are collected by walking buckets backwards from the last
// sequence number. Only ceil(limit/BucketSize)+1 buckets are read.
func (s *Store) ReadChainLogs(ctx context.Context, kv KV, id ir.Identity, instanceID, chainID, limit int64) ([]ir.VerificationRecord, error) {
	lastSeq, err := s.lastSequence(ctx, kv, id, instanceID, chainID)
	if err != nil {
		return nil, err
	}
	if limit > lastSeq {
		return nil, InvalidArgumentf(
			"limit cannot be greater than last known sequence number %d, got %d", lastSeq, limit).
			withDetail("field", "limit")
	}
	if limit < 0 {
		limit = lastSeq
	}

	// Collected newest first, reversed at the end.
	result := make([]ir.VerificationRecord, 0, min(limit, ir.BucketSize))
	remaining := limit
	cursor := lastSeq

	for remaining > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		key, err := BucketKey(id, instanceID, chainID, cursor)
		if err != nil {
			return nil, err
		}
		bucket, found, err := loadBucket(ctx, kv, key)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, Inconsistentf(
				"logs do not exist for %s instance %d chain %d sequence %d", id, instanceID, chainID, cursor)
		}

		inBucket := int64(ir.SlotIndex(cursor)) + 1
		take := min(remaining, inBucket)
		for slot := inBucket - 1; slot >= inBucket-take; slot-- {
			rec := bucket[slot]
			if rec == nil {
				seq := ir.SequenceBucket(cursor)*ir.BucketSize + slot + 1
				return nil, Inconsistentf(
					"log missing for %s instance %d chain %d sequence %d", id, instanceID, chainID, seq)
			}
			result = append(result, *rec)
		}

		remaining -= take
		cursor -= take
	}

	slices.Reverse(result)
	return result, nil
}

// lastSequence reads the chain's last sequence number from the metadata.
func (s *Store) lastSequence(ctx context.Context, kv KV, id ir.Identity, instanceID, chainID int64) (int64, error) {
	blob, err := s.ReadMetadata(ctx, kv, id)
	if err != nil {
		return 0, err
	}
	if len(blob) == 0 {
		return 0, NotFoundf("chain metadata not found for %s", id)
	}

	md, err := ir.ParseChainMetadata(blob)
	if err != nil {
		return 0, Inconsistentf("chain metadata for %s is corrupt: %v", id, err)
	}
	lastSeq, ok := md.LastSequence(instanceID, chainID)
	if !ok {
		return 0, NotFoundf("chain metadata for %s has no instance %d chain %d", id, instanceID, chainID)
	}
	if lastSeq < 0 {
		return 0, Inconsistentf("chain metadata for %s has negative sequence %d", id, lastSeq)
	}
	return lastSeq, nil
}
