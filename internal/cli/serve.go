package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/roach88/verifylog/internal/dispatch"
	"github.com/roach88/verifylog/internal/server"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Listen  string // overrides server.listen
	Channel string // overrides server.channel
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the functions over HTTP",
		Long: `Open the configured ledger and serve the functions over HTTP.

Writers are submitted to POST /restproxy/api/v2/channels/<channel>/transactions
and readers to .../chaincode-queries. Prometheus metrics are served on
/metrics and a liveness probe on /health.

Example:
  verifylog serve --config ./verifylog.cue
  verifylog serve --listen 127.0.0.1:9090 --channel verification --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Listen, "listen", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&opts.Channel, "channel", "", "channel name (overrides config)")

	return cmd
}

func runServer(opts *ServeOptions, cmd *cobra.Command) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	e, err := openEnv(opts.RootOptions, cmd.ErrOrStderr(), dispatch.WithMetrics(dispatch.NewMetrics(reg)))
	if err != nil {
		return err
	}
	defer e.close()

	cfg := server.Config{
		Listen:   e.cfg.Server.Listen,
		Channel:  e.cfg.Server.Channel,
		Gatherer: reg,
	}
	if opts.Listen != "" {
		cfg.Listen = opts.Listen
	}
	if opts.Channel != "" {
		cfg.Channel = opts.Channel
	}

	// Setup signal handling for graceful shutdown
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			e.logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
			// Parent context cancelled (e.g., from test)
		}
	}()

	e.logger.Info("server starting",
		slog.String("backend", e.cfg.Ledger.Backend),
		slog.String("path", e.cfg.Ledger.Path),
		slog.Int("last_n", e.cfg.Store.LastN))
	fmt.Fprintf(cmd.OutOrStdout(), "Serving channel %q on %s. Press Ctrl-C to stop.\n", cfg.Channel, cfg.Listen)

	if err := server.New(e.dispatcher, cfg, e.logger).ListenAndServe(ctx); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}
	return nil
}
