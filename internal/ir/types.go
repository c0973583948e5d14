package ir

import "fmt"

// BucketSize is the fixed number of slots in a bucket.
const BucketSize = 100

// Identity names one logical table being verified: the table owner, the
// table name and the globally unique identifier of the source instance.
// All storage keys are scoped under an Identity.
type Identity struct {
	Schema             string `json:"schema"`
	Table              string `json:"table"`
	InstanceIdentifier string `json:"instance_identifier"`
}

// String renders the identity for logs, e.g. "APP.ORDERS@9A1F...".
func (id Identity) String() string {
	return fmt.Sprintf("%s.%s@%s", id.Schema, id.Table, id.InstanceIdentifier)
}

// VerificationRecord is one verification outcome for a single row occurrence.
type VerificationRecord struct {
	InstanceID   int64  `json:"instance_id"`
	ChainID      int64  `json:"chain_id"`
	SequenceNo   int64  `json:"sequence_no"`
	Result       bool   `json:"result"`
	GotHash      string `json:"got_hash"`
	ExpectedHash string `json:"expected_hash,omitempty"` // only when Result is false
}

// Bucket holds BucketSize consecutive records of one instance and chain.
// Empty slots are nil and encode as JSON null.
type Bucket [BucketSize]*VerificationRecord

// SequenceBucket returns the bucket index holding sequence number seq.
// seq must be >= 1.
func SequenceBucket(seq int64) int64 {
	return (seq - 1) / BucketSize
}

// SlotIndex returns the slot of sequence number seq within its bucket.
// seq must be >= 1.
func SlotIndex(seq int64) int {
	return int((seq - 1) % BucketSize)
}

// StreamKind names one of the per-identity auxiliary streams.
type StreamKind string

const (
	StreamMetadata    StreamKind = "metadata"
	StreamLast100     StreamKind = "last100"
	StreamFailedQueue StreamKind = "failedQueue"
)

// ValidStreamKinds defines the allowed auxiliary stream kinds.
var ValidStreamKinds = map[StreamKind]bool{
	StreamMetadata:    true,
	StreamLast100:     true,
	StreamFailedQueue: true,
}
