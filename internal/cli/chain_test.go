package cli

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/verifylog/internal/ir"
)

// seedChain stores sequences 1..n of instance 1 chain 1, failing the even
// ones, and records n as the last sequence number.
func seedChain(t *testing.T, cfg string, n int) {
	t.Helper()
	for seq := 1; seq <= n; seq++ {
		s := strconv.Itoa(seq)
		args := []string{"--config", cfg, "invoke", "storeLog", "APP", "ORDERS", "G1", "1", "1", s}
		if seq%2 == 1 {
			args = append(args, "true", "got-"+s)
		} else {
			args = append(args, "false", "got-"+s, "want-"+s)
		}
		_, _, err := execute(t, nil, args...)
		require.NoError(t, err)
	}
	_, _, err := execute(t, nil, "--config", cfg, "invoke", "writeMetadata", "APP", "ORDERS", "G1", `{"1":[`+strconv.Itoa(n)+`]}`)
	require.NoError(t, err)
}

func TestChain_JSON(t *testing.T) {
	cfg := writeConfig(t, "")
	seedChain(t, cfg, 4)

	out, _, err := execute(t, nil, "--config", cfg, "--format", "json", "chain", "APP", "ORDERS", "G1", "1", "1", "--limit", "3")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   ChainResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, int64(1), resp.Data.InstanceID)

	seqs := make([]int64, len(resp.Data.Records))
	for i, r := range resp.Data.Records {
		seqs[i] = r.SequenceNo
	}
	assert.Equal(t, []int64{2, 3, 4}, seqs)
	assert.Equal(t, ChainStats{Total: 3, Passed: 1, Failed: 2, FirstSeq: 2, LastSeq: 4, Contiguous: true}, resp.Data.Stats)
}

func TestChain_TextFailedOnly(t *testing.T) {
	cfg := writeConfig(t, "")
	seedChain(t, cfg, 3)

	out, _, err := execute(t, nil, "--config", cfg, "chain", "APP", "ORDERS", "G1", "1", "1", "--failed-only")
	require.NoError(t, err)

	assert.Contains(t, out, "Chain APP.ORDERS@G1 instance 1 chain 1")
	assert.Contains(t, out, "[2] FAILED  got=got-2 expected=want-2")
	assert.NotContains(t, out, "[1] ok")
	assert.Contains(t, out, "Stats: 3 records (2 passed, 1 failed), sequences 1..3")
}

func TestChain_NoMetadata(t *testing.T) {
	cfg := writeConfig(t, "")

	out, _, err := execute(t, nil, "--config", cfg, "chain", "APP", "ORDERS", "G1", "1", "1")
	require.Error(t, err)
	assert.Contains(t, out, "Error [NOT_FOUND]")
}

func TestChain_LimitTooLarge(t *testing.T) {
	cfg := writeConfig(t, "")
	seedChain(t, cfg, 2)

	out, _, err := execute(t, nil, "--config", cfg, "chain", "APP", "ORDERS", "G1", "1", "1", "--limit", "3")
	require.Error(t, err)
	assert.Contains(t, out, "Error [INVALID_ARGUMENT]")
}

func TestChainStats_Gap(t *testing.T) {
	stats := chainStats([]ir.VerificationRecord{
		{SequenceNo: 1, Result: true},
		{SequenceNo: 3, Result: true},
	})
	assert.False(t, stats.Contiguous)
	assert.Equal(t, 2, stats.Passed)
}
