package cli

import (
	"io"
	"log/slog"

	"github.com/roach88/verifylog/internal/config"
	"github.com/roach88/verifylog/internal/dispatch"
	"github.com/roach88/verifylog/internal/ledger"
	"github.com/roach88/verifylog/internal/vlog"
)

// env is what a command needs to invoke functions against the configured
// ledger.
type env struct {
	cfg        *config.Config
	logger     *slog.Logger
	ledger     ledger.Ledger
	dispatcher *dispatch.Dispatcher
}

// loadConfig reads --config, or the defaults when it is unset.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	return cfg, nil
}

// newLogger builds the stderr text logger. --verbose forces debug level.
func newLogger(opts *RootOptions, cfg *config.Config, w io.Writer) *slog.Logger {
	level := cfg.SlogLevel()
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openEnv loads the config, opens the ledger and builds a dispatcher.
// The caller must call close.
func openEnv(opts *RootOptions, logW io.Writer, extra ...dispatch.Option) (*env, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger := newLogger(opts, cfg, logW)

	logger.Debug("opening ledger", "backend", cfg.Ledger.Backend, "path", cfg.Ledger.Path)
	l, err := ledger.Open(cfg.LedgerOptions(), logger)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open ledger", err)
	}

	dopts := []dispatch.Option{
		dispatch.WithStore(vlog.New(vlog.WithLastN(cfg.Store.LastN))),
		dispatch.WithLogger(logger),
		dispatch.WithMaxRetries(cfg.Dispatch.MaxRetries),
	}
	return &env{
		cfg:        cfg,
		logger:     logger,
		ledger:     l,
		dispatcher: dispatch.New(l, append(dopts, extra...)...),
	}, nil
}

func (e *env) close() {
	if err := e.ledger.Close(); err != nil {
		e.logger.Error("error closing ledger", "error", err)
	}
}
