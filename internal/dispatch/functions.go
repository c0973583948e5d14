package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/verifylog/internal/ir"
	"github.com/roach88/verifylog/internal/ledger"
	"github.com/roach88/verifylog/internal/vlog"
)

// handler runs one function inside a transaction.
type handler func(ctx context.Context, tx ledger.Tx, args []string) ([]byte, error)

// function describes one dispatchable operation.
type function struct {
	name     string
	minArgs  int
	maxArgs  int // -1 means unbounded
	readOnly bool
	usage    string
	run      handler
}

// FunctionInfo describes a registered function for listings.
type FunctionInfo struct {
	Name     string `json:"name"`
	Usage    string `json:"usage"`
	ReadOnly bool   `json:"read_only"`
}

func (f *function) checkArity(args []string) error {
	if len(args) >= f.minArgs && (f.maxArgs < 0 || len(args) <= f.maxArgs) {
		return nil
	}

	want := fmt.Sprintf("%d", f.minArgs)
	if f.maxArgs != f.minArgs {
		want = fmt.Sprintf("%d-%d", f.minArgs, f.maxArgs)
	}
	e := vlog.InvalidArgumentf("incorrect number of arguments for %s: expecting %s, got %d. usage: %s %s",
		f.name, want, len(args), f.name, f.usage)
	e.Details = map[string]string{"function": f.name}
	return e
}

const identityUsage = "<SCHEMA> <TABLE_NAME> <INSTANCE_IDENTIFIER>"

func (d *Dispatcher) registerFunctions() {
	for _, f := range []*function{
		{
			name: "init", minArgs: 0, maxArgs: -1, readOnly: true,
			usage: "[ARGS...]",
			run: func(context.Context, ledger.Tx, []string) ([]byte, error) {
				return nil, nil
			},
		},
		{
			name: "storeLog", minArgs: 8, maxArgs: 9,
			usage: identityUsage + " <INSTANCE_ID> <CHAIN_ID> <SEQUENCE_NO> <VERIFICATION_RESULT> <GOT_HASH> [EXPECTED_HASH]",
			run:   d.storeLog,
		},
		{
			name: "readLog", minArgs: 6, maxArgs: 6, readOnly: true,
			usage: identityUsage + " <INSTANCE_ID> <CHAIN_ID> <SEQUENCE_NO>",
			run:   d.readLog,
		},
		{
			name: "readChainLogs", minArgs: 5, maxArgs: 6, readOnly: true,
			usage: identityUsage + " <INSTANCE_ID> <CHAIN_ID> [LIMIT]",
			run:   d.readChainLogs,
		},
		{
			name: "readMetadata", minArgs: 3, maxArgs: 3, readOnly: true,
			usage: identityUsage,
			run:   d.readMetadata,
		},
		{
			name: "writeMetadata", minArgs: 4, maxArgs: 4,
			usage: identityUsage + " <METADATA>",
			run:   d.writeMetadata,
		},
		{
			name: "fetchLast100", minArgs: 3, maxArgs: 3, readOnly: true,
			usage: identityUsage,
			run:   d.fetchLast100,
		},
		{
			name: "getFailedRows", minArgs: 3, maxArgs: 4, readOnly: true,
			usage: identityUsage + " [LIMIT]",
			run:   d.getFailedRows,
		},
	} {
		d.functions[f.name] = f
	}
}

func (d *Dispatcher) storeLog(ctx context.Context, tx ledger.Tx, args []string) ([]byte, error) {
	instanceID, chainID, err := parseChain(args)
	if err != nil {
		return nil, err
	}
	seq, err := parseInt("sequence_no", args[5])
	if err != nil {
		return nil, err
	}
	result, err := parseResult(args[6])
	if err != nil {
		return nil, err
	}

	rec := ir.VerificationRecord{
		InstanceID: instanceID,
		ChainID:    chainID,
		SequenceNo: seq,
		Result:     result,
		GotHash:    args[7],
	}
	if !result {
		if len(args) != 9 {
			e := vlog.InvalidArgumentf("expected hash is required when verification failed")
			e.Details = map[string]string{"field": "expected_hash"}
			return nil, e
		}
		rec.ExpectedHash = args[8]
	}

	return nil, d.store.StoreLog(ctx, tx, parseIdentity(args), rec)
}

func (d *Dispatcher) readLog(ctx context.Context, tx ledger.Tx, args []string) ([]byte, error) {
	instanceID, chainID, err := parseChain(args)
	if err != nil {
		return nil, err
	}
	seq, err := parseInt("sequence_no", args[5])
	if err != nil {
		return nil, err
	}

	rec, err := d.store.ReadLog(ctx, tx, parseIdentity(args), instanceID, chainID, seq)
	if err != nil {
		return nil, err
	}
	return json.Marshal(rec)
}

func (d *Dispatcher) readChainLogs(ctx context.Context, tx ledger.Tx, args []string) ([]byte, error) {
	instanceID, chainID, err := parseChain(args)
	if err != nil {
		return nil, err
	}
	limit, err := parseLimit(args, 5)
	if err != nil {
		return nil, err
	}

	records, err := d.store.ReadChainLogs(ctx, tx, parseIdentity(args), instanceID, chainID, limit)
	if err != nil {
		return nil, err
	}
	return json.Marshal(records)
}

func (d *Dispatcher) readMetadata(ctx context.Context, tx ledger.Tx, args []string) ([]byte, error) {
	return d.store.ReadMetadata(ctx, tx, parseIdentity(args))
}

func (d *Dispatcher) writeMetadata(ctx context.Context, tx ledger.Tx, args []string) ([]byte, error) {
	return nil, d.store.WriteMetadata(ctx, tx, parseIdentity(args), []byte(args[3]))
}

func (d *Dispatcher) fetchLast100(ctx context.Context, tx ledger.Tx, args []string) ([]byte, error) {
	return d.store.FetchLast100(ctx, tx, parseIdentity(args))
}

func (d *Dispatcher) getFailedRows(ctx context.Context, tx ledger.Tx, args []string) ([]byte, error) {
	limit, err := parseLimit(args, 3)
	if err != nil {
		return nil, err
	}

	records, err := d.store.GetFailedRows(ctx, tx, parseIdentity(args), limit)
	if err != nil {
		return nil, err
	}
	return json.Marshal(records)
}
