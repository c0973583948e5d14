package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe_StopsOnContextCancel(t *testing.T) {
	cfg := writeConfig(t, "")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	out, _, err := execute(t, ctx, "--config", cfg, "serve", "--listen", "127.0.0.1:0", "--channel", "verification")
	require.NoError(t, err)
	assert.Contains(t, out, `Serving channel "verification" on 127.0.0.1:0`)
}

func TestServe_BadListenAddress(t *testing.T) {
	cfg := writeConfig(t, "")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, _, err := execute(t, ctx, "--config", cfg, "serve", "--listen", "not-an-address")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
