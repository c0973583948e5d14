package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testIdentity = Identity{Schema: "APP", Table: "ORDERS", InstanceIdentifier: "9A1F00C2"}

func TestBucketKeyDeterminism(t *testing.T) {
	k1, err := BucketKey(testIdentity, 1, 1, 0)
	require.NoError(t, err)

	k2, err := BucketKey(testIdentity, 1, 1, 0)
	require.NoError(t, err)

	assert.Equal(t, k1, k2, "BucketKey must be deterministic")
	assert.Len(t, k1, 64, "SHA-256 hex is 64 characters")
}

func TestBucketKeyChangesWithEachField(t *testing.T) {
	base := MustBucketKey(testIdentity, 1, 1, 0)

	variants := map[string]string{
		"schema":              MustBucketKey(Identity{"APP2", "ORDERS", "9A1F00C2"}, 1, 1, 0),
		"table":               MustBucketKey(Identity{"APP", "ORDERS2", "9A1F00C2"}, 1, 1, 0),
		"instance_identifier": MustBucketKey(Identity{"APP", "ORDERS", "9A1F00C3"}, 1, 1, 0),
		"instance_id":         MustBucketKey(testIdentity, 2, 1, 0),
		"chain_id":            MustBucketKey(testIdentity, 1, 2, 0),
		"sequence_bucket":     MustBucketKey(testIdentity, 1, 1, 1),
	}

	seen := map[string]string{base: "base"}
	for field, key := range variants {
		prev, dup := seen[key]
		assert.False(t, dup, "changing %s collides with %s", field, prev)
		seen[key] = field
	}
}

func TestBucketKeyNoSeparatorAmbiguity(t *testing.T) {
	// Concatenation would map both of these to "AB.C"
	k1 := MustBucketKey(Identity{"AB", "C", "X"}, 1, 1, 0)
	k2 := MustBucketKey(Identity{"A", "BC", "X"}, 1, 1, 0)
	assert.NotEqual(t, k1, k2)
}

func TestBucketKeyNoCollisionsAcrossDomain(t *testing.T) {
	seen := make(map[string]bool)
	for inst := int64(1); inst <= 4; inst++ {
		for chain := int64(1); chain <= 8; chain++ {
			for bucket := int64(0); bucket < 25; bucket++ {
				key := MustBucketKey(testIdentity, inst, chain, bucket)
				require.False(t, seen[key], "collision at inst=%d chain=%d bucket=%d", inst, chain, bucket)
				seen[key] = true
			}
		}
	}
}

func TestAuxKey(t *testing.T) {
	key, err := AuxKey(testIdentity, StreamLast100)
	require.NoError(t, err)
	assert.Equal(t,
		`{"instance_identifier":"9A1F00C2","schema":"APP","table":"ORDERS","type":"last100"}`,
		key)

	meta, err := AuxKey(testIdentity, StreamMetadata)
	require.NoError(t, err)
	failed, err := AuxKey(testIdentity, StreamFailedQueue)
	require.NoError(t, err)
	assert.NotEqual(t, key, meta)
	assert.NotEqual(t, meta, failed)
}

func TestAuxKeyUnknownKind(t *testing.T) {
	_, err := AuxKey(testIdentity, StreamKind("buckets"))
	assert.Error(t, err)
}

func TestSequenceArithmetic(t *testing.T) {
	tests := []struct {
		seq    int64
		bucket int64
		slot   int
	}{
		{1, 0, 0},
		{99, 0, 98},
		{100, 0, 99},
		{101, 1, 0},
		{150, 1, 49},
		{200, 1, 99},
		{201, 2, 0},
		{1_000_000, 9_999, 99},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.bucket, SequenceBucket(tt.seq), "bucket of %d", tt.seq)
		assert.Equal(t, tt.slot, SlotIndex(tt.seq), "slot of %d", tt.seq)
	}
}
