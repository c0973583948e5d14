package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/verifylog/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s %v -> %s\n", event.Seq, event.Function, event.Args, event.Outcome)
		}
	}

	return buf.String()
}

// evaluateAssertions runs every assertion and returns the failure messages.
func (h *Harness) evaluateAssertions(ctx context.Context, result *Result, assertions []Assertion) []string {
	var errs []string
	for _, a := range assertions {
		var err error
		switch a.Type {
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, a)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, a)
		case AssertStreamLength:
			err = h.assertStreamLength(ctx, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}

// assertTraceCount checks if the function appears exactly the specified
// number of times.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Function == a.Function {
			count++
		}
	}
	if count != a.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%s invoked %d time(s)", a.Function, a.Count),
			Actual:   fmt.Sprintf("invoked %d time(s)", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertTraceOrder checks if functions appear in the specified order.
// Functions don't need to be consecutive (intervening calls are allowed).
func assertTraceOrder(trace []TraceEvent, a Assertion) error {
	next := 0
	for _, event := range trace {
		if next < len(a.Functions) && event.Function == a.Functions[next] {
			next++
		}
	}
	if next < len(a.Functions) {
		return &AssertionError{
			Type:     AssertTraceOrder,
			Expected: fmt.Sprintf("functions in order: %v", a.Functions),
			Actual:   fmt.Sprintf("%s not found after %v", a.Functions[next], a.Functions[:next]),
			Trace:    trace,
		}
	}
	return nil
}

// assertStreamLength reads a stream through the dispatcher and checks its
// length.
func (h *Harness) assertStreamLength(ctx context.Context, a Assertion) error {
	fn := "getFailedRows"
	if a.Stream == string(ir.StreamLast100) {
		fn = "fetchLast100"
	}

	res, err := h.dispatcher.Query(ctx, fn, a.Args)
	if err != nil {
		return &AssertionError{
			Type:     AssertStreamLength,
			Expected: fmt.Sprintf("%s of %v readable", a.Stream, a.Args),
			Actual:   err.Error(),
		}
	}

	var records []json.RawMessage
	if err := json.Unmarshal(res.Payload, &records); err != nil {
		return &AssertionError{
			Type:     AssertStreamLength,
			Expected: fmt.Sprintf("%s of %v is a JSON array", a.Stream, a.Args),
			Actual:   string(res.Payload),
		}
	}
	if len(records) != a.Count {
		return &AssertionError{
			Type:     AssertStreamLength,
			Expected: fmt.Sprintf("%s of %v holds %d record(s)", a.Stream, a.Args, a.Count),
			Actual:   fmt.Sprintf("holds %d record(s)", len(records)),
		}
	}
	return nil
}
