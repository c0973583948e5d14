package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Regenerate with:
//
//	go test ./internal/harness -run TestRunWithGolden -update
func TestRunWithGolden_StoreAndRead(t *testing.T) {
	scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", "store_and_read.yaml"))
	require.NoError(t, err)

	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, result.Errors)
}

func TestMarshalTrace_Canonical(t *testing.T) {
	result := NewResult()
	result.Trace = append(result.Trace,
		TraceEvent{Seq: 1, Function: "readMetadata", Args: []string{"A", "B", "C"}, TxID: "tx-1", Outcome: "ok",
			Payload: map[string]any{"1": []any{int64(3)}}},
		TraceEvent{Seq: 2, Function: "readLog", Args: []string{}, TxID: "tx-2", Outcome: "INVALID_ARGUMENT"},
	)

	data, err := MarshalTrace("canonical", result)
	require.NoError(t, err)
	assert.Equal(t,
		`{"scenario_name":"canonical","trace":[`+
			`{"args":["A","B","C"],"function":"readMetadata","outcome":"ok","payload":{"1":[3]},"seq":1,"txid":"tx-1"},`+
			`{"args":[],"function":"readLog","outcome":"INVALID_ARGUMENT","seq":2,"txid":"tx-2"}]}`,
		string(data))
}
