package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainBucket prefixes bucket key hashes.
// Version suffix enables future algorithm migration.
const DomainBucket = "verifylog/bucket/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// BucketKey computes the storage key of the bucket addressed by
// (identity, instanceID, chainID, sequenceBucket).
//
// The key is a fixed-length hex digest of the canonical JSON of the tuple.
// Hashing bounds key length and rules out separator collisions between
// fields. Callers validate the identity; this function only encodes.
func BucketKey(id Identity, instanceID, chainID, sequenceBucket int64) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"schema":              id.Schema,
		"table":               id.Table,
		"instance_identifier": id.InstanceIdentifier,
		"instance_id":         instanceID,
		"chain_id":            chainID,
		"sequence_bucket":     sequenceBucket,
	})
	if err != nil {
		return "", fmt.Errorf("BucketKey: failed to marshal: %w", err)
	}

	return hashWithDomain(DomainBucket, canonical), nil
}

// AuxKey computes the storage key of an auxiliary stream.
// Unlike bucket keys these are left unhashed so they stay readable when
// inspecting a ledger by hand.
func AuxKey(id Identity, kind StreamKind) (string, error) {
	if !ValidStreamKinds[kind] {
		return "", fmt.Errorf("AuxKey: unknown stream kind %q", kind)
	}

	canonical, err := MarshalCanonical(map[string]any{
		"schema":              id.Schema,
		"table":               id.Table,
		"instance_identifier": id.InstanceIdentifier,
		"type":                string(kind),
	})
	if err != nil {
		return "", fmt.Errorf("AuxKey: failed to marshal: %w", err)
	}

	return string(canonical), nil
}

// MustBucketKey is like BucketKey but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustBucketKey(id Identity, instanceID, chainID, sequenceBucket int64) string {
	key, err := BucketKey(id, instanceID, chainID, sequenceBucket)
	if err != nil {
		panic(err)
	}
	return key
}
