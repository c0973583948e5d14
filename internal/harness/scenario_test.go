package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario_ValidFile(t *testing.T) {
	dir := t.TempDir()
	scenarioPath := filepath.Join(dir, "test.yaml")

	content := `
name: test_scenario
description: "Test scenario for validation"
last_n: 5
flow:
  - invoke: storeLog
    args: [APP, ORDERS, G1, "1", "1", "1", "true", "h1"]
  - invoke: readLog
    args: [APP, ORDERS, G1, "1", "1", "1"]
    expect:
      payload: { got_hash: h1 }
assertions:
  - type: trace_count
    function: storeLog
    count: 1
`
	require.NoError(t, os.WriteFile(scenarioPath, []byte(content), 0644))

	scenario, err := LoadScenario(scenarioPath)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	assert.Equal(t, 5, scenario.LastN)
	assert.Len(t, scenario.Flow, 2)
	assert.Len(t, scenario.Assertions, 1)
	assert.Equal(t, "storeLog", scenario.Flow[0].Invoke)
	assert.Equal(t, "h1", scenario.Flow[0].Args[7])
	require.NotNil(t, scenario.Flow[1].Expect)
	assert.Equal(t, map[string]any{"got_hash": "h1"}, scenario.Flow[1].Expect.Payload)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown field",
			yaml:    "name: x\ndescription: d\nflow: [{invoke: init}]\nassertion: []\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "missing name",
			yaml:    "description: d\nflow: [{invoke: init}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: x\nflow: [{invoke: init}]\n",
			wantErr: "description is required",
		},
		{
			name:    "empty flow",
			yaml:    "name: x\ndescription: d\n",
			wantErr: "flow list is required",
		},
		{
			name:    "negative last_n",
			yaml:    "name: x\ndescription: d\nlast_n: -1\nflow: [{invoke: init}]\n",
			wantErr: "last_n must be non-negative",
		},
		{
			name:    "step without invoke",
			yaml:    "name: x\ndescription: d\nflow: [{args: [a]}]\n",
			wantErr: "flow[0]: invoke is required",
		},
		{
			name:    "expect in setup",
			yaml:    "name: x\ndescription: d\nsetup: [{invoke: init, expect: {error: NOT_FOUND}}]\nflow: [{invoke: init}]\n",
			wantErr: "expect is not allowed in setup",
		},
		{
			name:    "bad repeat range",
			yaml:    "name: x\ndescription: d\nflow: [{invoke: init, repeat: {from: 5, to: 1}}]\n",
			wantErr: "repeat range [5, 1] is invalid",
		},
		{
			name:    "error combined with payload",
			yaml:    "name: x\ndescription: d\nflow: [{invoke: init, expect: {error: NOT_FOUND, count: 1}}]\n",
			wantErr: "error cannot be combined",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: x\ndescription: d\nflow: [{invoke: init}]\nassertions: [{type: trace_contains}]\n",
			wantErr: "unknown assertion type",
		},
		{
			name:    "metadata is not a stream",
			yaml:    "name: x\ndescription: d\nflow: [{invoke: init}]\nassertions: [{type: stream_length, stream: metadata, args: [A, B, C]}]\n",
			wantErr: "stream must be last100 or failedQueue",
		},
		{
			name:    "stream_length without identity",
			yaml:    "name: x\ndescription: d\nflow: [{invoke: init}]\nassertions: [{type: stream_length, stream: last100}]\n",
			wantErr: "args must be SCHEMA TABLE INSTANCE_IDENTIFIER",
		},
		{
			name:    "trace_order without functions",
			yaml:    "name: x\ndescription: d\nflow: [{invoke: init}]\nassertions: [{type: trace_order}]\n",
			wantErr: "functions list is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestStepExpand(t *testing.T) {
	step := Step{
		Invoke: "storeLog",
		Args:   []string{"APP", "${seq}", "${odd}", "h-${seq}"},
		Repeat: &Repeat{From: 1, To: 3},
	}

	assert.Equal(t, [][]string{
		{"APP", "1", "true", "h-1"},
		{"APP", "2", "false", "h-2"},
		{"APP", "3", "true", "h-3"},
	}, step.expand())
}

func TestStepExpand_NoRepeat(t *testing.T) {
	step := Step{Invoke: "readLog", Args: []string{"APP", "${seq}"}}
	assert.Equal(t, [][]string{{"APP", "${seq}"}}, step.expand())
}

func TestLoadScenario_TestdataFiles(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, f := range files {
		t.Run(filepath.Base(f), func(t *testing.T) {
			_, err := LoadScenario(f)
			require.NoError(t, err)
		})
	}
}
