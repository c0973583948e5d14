package vlog

import (
	"context"

	"github.com/roach88/verifylog/internal/ir"
)

func validateRecord(rec ir.VerificationRecord) error {
	if rec.SequenceNo < 1 {
		return InvalidArgumentf("sequence no must be >= 1, got %d", rec.SequenceNo).withDetail("field", "sequence_no")
	}
	if rec.ChainID < 1 {
		return InvalidArgumentf("chain id must be >= 1, got %d", rec.ChainID).withDetail("field", "chain_id")
	}
	if rec.GotHash == "" {
		return InvalidArgumentf("hash must be a non-empty string").withDetail("field", "got_hash")
	}
	if !rec.Result && rec.ExpectedHash == "" {
		return InvalidArgumentf("expected hash must be a non-empty string when verification failed").withDetail("field", "expected_hash")
	}
	return nil
}

// StoreLog ingests one verification record.
//
// The record is written to its bucket slot, appended to the last-N cache
// and, when Result is false, appended to the failed queue. Writing the same
// sequence number again overwrites the slot. All writes go through kv, so
// they commit or fail together with the surrounding transaction.
func (s *Store) StoreLog(ctx context.Context, kv KV, id ir.Identity, rec ir.VerificationRecord) error {
	if err := validateIdentity(id); err != nil {
		return err
	}
	if err := validateRecord(rec); err != nil {
		return err
	}
	if rec.Result {
		rec.ExpectedHash = ""
	}

	bucketKey, err := BucketKey(id, rec.InstanceID, rec.ChainID, rec.SequenceNo)
	if err != nil {
		return err
	}
	bucket, _, err := loadBucket(ctx, kv, bucketKey)
	if err != nil {
		return err
	}

	if !rec.Result {
		failedKey, err := AuxKey(id, ir.StreamFailedQueue)
		if err != nil {
			return err
		}
		if err := appendStream(ctx, kv, failedKey, rec, 0); err != nil {
			return err
		}
	}

	bucket[ir.SlotIndex(rec.SequenceNo)] = &rec

	last100Key, err := AuxKey(id, ir.StreamLast100)
	if err != nil {
		return err
	}
	if err := appendStream(ctx, kv, last100Key, rec, s.lastN); err != nil {
		return err
	}

	return saveBucket(ctx, kv, bucketKey, bucket)
}
