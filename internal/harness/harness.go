package harness

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"strings"

	"github.com/roach88/verifylog/internal/dispatch"
	"github.com/roach88/verifylog/internal/ir"
	"github.com/roach88/verifylog/internal/ledger"
	"github.com/roach88/verifylog/internal/testutil"
	"github.com/roach88/verifylog/internal/vlog"
)

// Harness runs one scenario against its own ledger.
type Harness struct {
	ledger     *ledger.Memory
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs on a fresh in-memory ledger for isolation.
//
// Execution flow:
// 1. Create fresh ledger and dispatcher
// 2. Execute setup steps, failing on the first error
// 3. Execute flow steps with expect validation
// 4. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	l := ledger.NewMemory()
	defer l.Close()

	h := &Harness{
		ledger: l,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	h.dispatcher = dispatch.New(l,
		dispatch.WithStore(vlog.New(vlog.WithLastN(scenario.LastN))),
		dispatch.WithTxIDGenerator(testutil.NewSequentialTxIDGenerator(scenario.TxPrefix)),
		dispatch.WithLogger(h.logger),
	)

	ctx := context.Background()
	result := NewResult()

	if err := h.executeSetup(ctx, scenario.Setup, result); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}
	h.executeFlow(ctx, scenario.Flow, result)

	for _, msg := range h.evaluateAssertions(ctx, result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

func (h *Harness) executeSetup(ctx context.Context, setup []Step, result *Result) error {
	for i, step := range setup {
		for _, args := range step.expand() {
			if _, err := h.dispatcher.Invoke(ctx, step.Invoke, args); err != nil {
				return fmt.Errorf("setup[%d] %s %v: %w", i, step.Invoke, args, err)
			}
			result.SetupInvocations++
		}
	}
	return nil
}

func (h *Harness) executeFlow(ctx context.Context, flow []Step, result *Result) {
	seq := 0
	for i, step := range flow {
		for _, args := range step.expand() {
			seq++
			res, err := h.dispatcher.Invoke(ctx, step.Invoke, args)

			event := TraceEvent{
				Seq:      seq,
				Function: step.Invoke,
				Args:     args,
				TxID:     res.TxID,
				Outcome:  outcomeOf(err),
			}
			if err == nil {
				event.Payload = decodePayload(res.Payload)
			}
			result.Trace = append(result.Trace, event)

			label := fmt.Sprintf("flow[%d] %s", i, step.Invoke)
			for _, msg := range checkExpect(step.Expect, res.Payload, err) {
				result.AddError(label + ": " + msg)
			}
			h.logger.Debug("flow step completed", "seq", seq, "function", step.Invoke, "outcome", event.Outcome)
		}
	}
}

func outcomeOf(err error) string {
	if err == nil {
		return "ok"
	}
	if code := vlog.CodeOf(err); code != "" {
		return string(code)
	}
	return "error"
}

// checkExpect compares an invocation outcome with the expectation.
func checkExpect(e *Expect, payload []byte, err error) []string {
	if e == nil {
		e = &Expect{}
	}

	if e.Error != "" {
		if err == nil {
			return []string{fmt.Sprintf("expected error %s, got success", e.Error)}
		}
		var errs []string
		if got := outcomeOf(err); got != e.Error {
			errs = append(errs, fmt.Sprintf("expected error %s, got %s (%v)", e.Error, got, err))
		}
		if e.ErrorContains != "" && !strings.Contains(err.Error(), e.ErrorContains) {
			errs = append(errs, fmt.Sprintf("error %q does not contain %q", err.Error(), e.ErrorContains))
		}
		return errs
	}
	if err != nil {
		return []string{fmt.Sprintf("unexpected error: %v", err)}
	}

	var errs []string
	if e.Payload != nil {
		if msg := comparePayload(e.Payload, payload); msg != "" {
			errs = append(errs, msg)
		}
	}
	if e.Count != nil {
		var items []json.RawMessage
		if uerr := json.Unmarshal(payload, &items); uerr != nil {
			errs = append(errs, fmt.Sprintf("count: payload is not an array: %s", payload))
		} else if len(items) != *e.Count {
			errs = append(errs, fmt.Sprintf("count: expected %d, got %d", *e.Count, len(items)))
		}
	}
	if e.Sequences != nil {
		var records []ir.VerificationRecord
		if uerr := json.Unmarshal(payload, &records); uerr != nil {
			errs = append(errs, fmt.Sprintf("sequences: payload is not a record array: %s", payload))
		} else {
			got := make([]int64, len(records))
			for i, r := range records {
				got[i] = r.SequenceNo
			}
			if !reflect.DeepEqual(got, e.Sequences) {
				errs = append(errs, fmt.Sprintf("sequences: expected %v, got %v", e.Sequences, got))
			}
		}
	}
	return errs
}

// comparePayload compares a YAML expectation with a payload as JSON
// values. A payload that is not JSON is compared as a string.
func comparePayload(expected any, payload []byte) string {
	expJSON, err := json.Marshal(expected)
	if err != nil {
		return fmt.Sprintf("payload: expectation is not JSON-compatible: %v", err)
	}
	var want, got any
	if err := json.Unmarshal(expJSON, &want); err != nil {
		return fmt.Sprintf("payload: %v", err)
	}
	if err := json.Unmarshal(payload, &got); err != nil {
		got = string(payload)
	}
	if !reflect.DeepEqual(want, got) {
		return fmt.Sprintf("payload: expected %s, got %s", expJSON, payload)
	}
	return ""
}

// decodePayload turns a payload into a value MarshalCanonical accepts:
// JSON with integer numbers and no nulls is decoded, anything else is kept
// as a string. An empty payload yields nil.
func decodePayload(payload []byte) any {
	if len(payload) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		return string(payload)
	}
	out, ok := canonicalValue(v)
	if !ok {
		return string(payload)
	}
	return out
}

func canonicalValue(v any) (any, bool) {
	switch val := v.(type) {
	case string, bool:
		return val, true
	case json.Number:
		n, err := val.Int64()
		return n, err == nil
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			c, ok := canonicalValue(elem)
			if !ok {
				return nil, false
			}
			out[i] = c
		}
		return out, true
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			c, ok := canonicalValue(elem)
			if !ok {
				return nil, false
			}
			out[k] = c
		}
		return out, true
	default:
		return nil, false
	}
}
