package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestValidate_Valid(t *testing.T) {
	path := writeFile(t, "ok.cue", "ledger: backend: \"bolt\"\nstore: last_n: 50\n")

	out, _, err := execute(t, nil, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Config valid")
	assert.Contains(t, out, "ledger:   bolt (verifylog.db)")
	assert.Contains(t, out, "last_n:   50")
}

func TestValidate_UsesConfigFlag(t *testing.T) {
	path := writeFile(t, "ok.cue", "server: channel: \"verification\"\n")

	out, _, err := execute(t, nil, "--config", path, "--format", "json", "validate")
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Data.Valid)
	require.NotNil(t, resp.Data.Config)
	assert.Equal(t, "verification", resp.Data.Config.Server.Channel)
	assert.Equal(t, 100, resp.Data.Config.Store.LastN)
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"out of range", "store: last_n: 0\n"},
		{"unknown backend", "ledger: backend: \"postgres\"\n"},
		{"unknown field", "ledger: dsn: \"x\"\n"},
		{"syntax error", "ledger: {\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "bad.cue", tt.content)

			out, _, err := execute(t, nil, "validate", path)
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, out, "Validation failed")
			assert.Contains(t, out, ErrCodeConfigInvalid)
		})
	}
}

func TestValidate_InvalidJSON(t *testing.T) {
	path := writeFile(t, "bad.cue", "store: last_n: -3\n")

	out, _, err := execute(t, nil, "--format", "json", "validate", path)
	require.Error(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeConfigInvalid, resp.Error.Code)
}

func TestValidate_MissingFile(t *testing.T) {
	_, _, err := execute(t, nil, "validate", "/nonexistent/verifylog.cue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "config file not found")
}

func TestValidate_NoPath(t *testing.T) {
	_, _, err := execute(t, nil, "validate")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
