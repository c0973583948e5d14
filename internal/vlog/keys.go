package vlog

import (
	"github.com/roach88/verifylog/internal/ir"
)

func validateIdentity(id ir.Identity) error {
	switch {
	case id.Schema == "":
		return InvalidArgumentf("schema must be a non-empty string").withDetail("field", "schema")
	case id.Table == "":
		return InvalidArgumentf("table name must be a non-empty string").withDetail("field", "table")
	case id.InstanceIdentifier == "":
		return InvalidArgumentf("instance identifier must be a non-empty string").withDetail("field", "instance_identifier")
	}
	return nil
}

// BucketKey returns the key of the bucket holding sequence number seq of the
// given instance and chain.
func BucketKey(id ir.Identity, instanceID, chainID, seq int64) (string, error) {
	if err := validateIdentity(id); err != nil {
		return "", err
	}
	if seq < 1 {
		return "", InvalidArgumentf("sequence no must be >= 1, got %d", seq).withDetail("field", "sequence_no")
	}
	return ir.BucketKey(id, instanceID, chainID, ir.SequenceBucket(seq))
}

// AuxKey returns the key of one of the identity's auxiliary streams.
func AuxKey(id ir.Identity, kind ir.StreamKind) (string, error) {
	if err := validateIdentity(id); err != nil {
		return "", err
	}
	return ir.AuxKey(id, kind)
}
