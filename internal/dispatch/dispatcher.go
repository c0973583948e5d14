package dispatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/verifylog/internal/ledger"
	"github.com/roach88/verifylog/internal/vlog"
)

// TxIDGenerator creates transaction ids.
type TxIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 transaction ids.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Result is the outcome of a successful invocation.
type Result struct {
	TxID    string
	Payload []byte
}

// Dispatcher routes function invocations to the store.
type Dispatcher struct {
	ledger     ledger.Ledger
	store      *vlog.Store
	logger     *slog.Logger
	ids        TxIDGenerator
	metrics    *Metrics
	maxRetries int
	functions  map[string]*function
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithStore sets the store. Defaults to vlog.New().
func WithStore(s *vlog.Store) Option {
	return func(d *Dispatcher) { d.store = s }
}

// WithLogger sets the logger. Defaults to a logger that discards output.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// WithTxIDGenerator sets the transaction id generator.
// Defaults to UUIDv7Generator.
func WithTxIDGenerator(g TxIDGenerator) Option {
	return func(d *Dispatcher) { d.ids = g }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithMaxRetries sets how many times a transaction rejected with
// ledger.ErrConflict is re-run before the conflict is returned.
func WithMaxRetries(n int) Option {
	return func(d *Dispatcher) {
		if n >= 0 {
			d.maxRetries = n
		}
	}
}

// New creates a Dispatcher over l.
func New(l ledger.Ledger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		ledger:    l,
		store:     vlog.New(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		ids:       UUIDv7Generator{},
		functions: make(map[string]*function),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.registerFunctions()
	return d
}

type txIDKey struct{}

// ContextWithTxID returns a context carrying a caller-chosen transaction id.
// Invoke uses it instead of generating one.
func ContextWithTxID(ctx context.Context, txID string) context.Context {
	return context.WithValue(ctx, txIDKey{}, txID)
}

func (d *Dispatcher) txID(ctx context.Context) string {
	if id, ok := ctx.Value(txIDKey{}).(string); ok && id != "" {
		return id
	}
	return d.ids.Generate()
}

// Invoke runs function fn with args. Writers run in a read-write ledger
// transaction, readers in a read-only one. Errors from the store are
// returned unchanged so callers can classify them with vlog.CodeOf.
func (d *Dispatcher) Invoke(ctx context.Context, fn string, args []string) (Result, error) {
	return d.invoke(ctx, fn, args, false)
}

// Query is like Invoke but refuses functions that write.
func (d *Dispatcher) Query(ctx context.Context, fn string, args []string) (Result, error) {
	return d.invoke(ctx, fn, args, true)
}

func (d *Dispatcher) invoke(ctx context.Context, fn string, args []string, queryOnly bool) (Result, error) {
	txID := d.txID(ctx)
	res := Result{TxID: txID}
	logger := d.logger.With("txid", txID, "function", fn)
	start := time.Now()

	f, ok := d.functions[fn]
	if !ok {
		err := vlog.InvalidArgumentf("received unknown function %s invocation", fn)
		logger.Warn("invoke failed", "error", err)
		return res, err
	}
	if queryOnly && !f.readOnly {
		err := vlog.InvalidArgumentf("function %s writes to the ledger and cannot run as a query", fn)
		logger.Warn("invoke failed", "error", err)
		return res, err
	}

	payload, err := d.run(ctx, f, args, logger)
	d.metrics.observe(fn, outcome(err), time.Since(start).Seconds())
	if err != nil {
		logger.Warn("invoke failed", "error", err, "duration", time.Since(start))
		return res, err
	}

	logger.Info("invoke succeeded", "args", len(args), "payload_bytes", len(payload), "duration", time.Since(start))
	res.Payload = payload
	return res, nil
}

func (d *Dispatcher) run(ctx context.Context, f *function, args []string, logger *slog.Logger) ([]byte, error) {
	if err := f.checkArity(args); err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		var payload []byte
		body := func(tx ledger.Tx) error {
			var err error
			payload, err = f.run(ctx, tx, args)
			return err
		}

		var err error
		if f.readOnly {
			err = d.ledger.View(ctx, body)
		} else {
			err = d.ledger.Update(ctx, body)
		}
		if err == nil {
			return payload, nil
		}
		if !errors.Is(err, ledger.ErrConflict) {
			return nil, err
		}

		d.metrics.conflict(f.name)
		if attempt >= d.maxRetries {
			return nil, err
		}
		logger.Debug("ledger conflict, retrying", "attempt", attempt+1)
	}
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ledger.ErrConflict):
		return "conflict"
	case vlog.CodeOf(err) != "":
		return strings.ToLower(string(vlog.CodeOf(err)))
	default:
		return "error"
	}
}

// Functions lists the registered functions sorted by name.
func (d *Dispatcher) Functions() []FunctionInfo {
	out := make([]FunctionInfo, 0, len(d.functions))
	for _, f := range d.functions {
		out = append(out, FunctionInfo{Name: f.name, Usage: f.usage, ReadOnly: f.readOnly})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
