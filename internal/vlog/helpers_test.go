package vlog

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/verifylog/internal/ir"
)

var testIdentity = ir.Identity{Schema: "APP", Table: "ORDERS", InstanceIdentifier: "9A1F00C2"}

// mapKV is a KV without transactions, for exercising the store directly.
type mapKV struct {
	data map[string][]byte
	gets int
}

func newMapKV() *mapKV {
	return &mapKV{data: make(map[string][]byte)}
}

func (m *mapKV) Get(_ context.Context, key string) ([]byte, error) {
	m.gets++
	return m.data[key], nil
}

func (m *mapKV) Put(_ context.Context, key string, value []byte) error {
	m.data[key] = append([]byte(nil), value...)
	return nil
}

// record builds the record for seq used throughout the tests: even
// sequence numbers fail verification.
func record(instanceID, chainID, seq int64) ir.VerificationRecord {
	rec := ir.VerificationRecord{
		InstanceID: instanceID,
		ChainID:    chainID,
		SequenceNo: seq,
		Result:     seq%2 == 1,
		GotHash:    fmt.Sprintf("got-%d-%d-%d", instanceID, chainID, seq),
	}
	if !rec.Result {
		rec.ExpectedHash = fmt.Sprintf("want-%d-%d-%d", instanceID, chainID, seq)
	}
	return rec
}

// ingest stores records from..to for one chain and records to as the
// chain's last sequence in the metadata.
func ingest(t *testing.T, s *Store, kv KV, instanceID, chainID, from, to int64) {
	t.Helper()
	ctx := context.Background()

	for seq := from; seq <= to; seq++ {
		require.NoError(t, s.StoreLog(ctx, kv, testIdentity, record(instanceID, chainID, seq)))
	}
	setLastSequence(t, s, kv, instanceID, chainID, to)
}

func setLastSequence(t *testing.T, s *Store, kv KV, instanceID, chainID, seq int64) {
	t.Helper()
	ctx := context.Background()

	blob, err := s.ReadMetadata(ctx, kv, testIdentity)
	require.NoError(t, err)
	md := ir.ChainMetadata{}
	if len(blob) > 0 {
		md, err = ir.ParseChainMetadata(blob)
		require.NoError(t, err)
	}
	md.SetLastSequence(instanceID, chainID, seq)
	blob, err = md.Marshal()
	require.NoError(t, err)
	require.NoError(t, s.WriteMetadata(ctx, kv, testIdentity, blob))
}

func sequences(records []ir.VerificationRecord) []int64 {
	out := make([]int64, len(records))
	for i, r := range records {
		out[i] = r.SequenceNo
	}
	return out
}

func seqRange(from, to int64) []int64 {
	out := make([]int64, 0, to-from+1)
	for seq := from; seq <= to; seq++ {
		out = append(out, seq)
	}
	return out
}
