package harness

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/verifylog/internal/ir"
)

// Scenario defines a test scenario: setup invocations, a flow of checked
// invocations and assertions over the result.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are named after it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// TxPrefix prefixes the deterministic transaction ids. Defaults to "tx".
	TxPrefix string `yaml:"tx_prefix,omitempty"`

	// LastN overrides the last-N cache capacity. Zero keeps the default.
	LastN int `yaml:"last_n,omitempty"`

	// Setup contains invocations that establish initial state.
	// They must succeed and are not traced.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow contains the invocations under test.
	Flow []Step `yaml:"flow"`

	// Assertions validate the trace and the final store.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one function invocation.
type Step struct {
	// Invoke is the function name, e.g. "storeLog".
	Invoke string `yaml:"invoke"`

	// Args are the ordered string arguments.
	Args []string `yaml:"args"`

	// Repeat runs the step once per counter value in [From, To].
	Repeat *Repeat `yaml:"repeat,omitempty"`

	// Expect checks the outcome. If nil the step must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Repeat is an inclusive counter range.
type Repeat struct {
	From int64 `yaml:"from"`
	To   int64 `yaml:"to"`
}

// Expect specifies the expected outcome of a step.
type Expect struct {
	// Error is the expected error code (e.g. "NOT_FOUND"). Empty means the
	// step must succeed.
	Error string `yaml:"error,omitempty"`

	// ErrorContains is a substring the error message must contain.
	ErrorContains string `yaml:"error_contains,omitempty"`

	// Payload is compared with the returned payload as JSON.
	Payload any `yaml:"payload,omitempty"`

	// Count is the expected length of an array payload.
	Count *int `yaml:"count,omitempty"`

	// Sequences are the expected sequence_no values of an array payload.
	Sequences []int64 `yaml:"sequences,omitempty"`
}

// Assertion validates the trace or the final store.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Function is the function name (trace_count).
	Function string `yaml:"function,omitempty"`

	// Functions is the expected order (trace_order).
	Functions []string `yaml:"functions,omitempty"`

	// Stream is "last100" or "failedQueue" (stream_length).
	Stream string `yaml:"stream,omitempty"`

	// Args is the identity SCHEMA TABLE INSTANCE_IDENTIFIER (stream_length).
	Args []string `yaml:"args,omitempty"`

	// Count is the expected number (trace_count, stream_length).
	Count int `yaml:"count"`
}

// Assertion type constants.
const (
	AssertTraceCount   = "trace_count"
	AssertTraceOrder   = "trace_order"
	AssertStreamLength = "stream_length"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if s.LastN < 0 {
		return fmt.Errorf("last_n must be non-negative")
	}

	for i, step := range s.Setup {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
		if step.Expect != nil {
			return fmt.Errorf("setup[%d]: expect is not allowed in setup", i)
		}
	}
	for i, step := range s.Flow {
		if err := validateStep(step); err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
	}
	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}
	return nil
}

func validateStep(step Step) error {
	if step.Invoke == "" {
		return fmt.Errorf("invoke is required")
	}
	if r := step.Repeat; r != nil && (r.From < 1 || r.To < r.From) {
		return fmt.Errorf("repeat range [%d, %d] is invalid", r.From, r.To)
	}
	if e := step.Expect; e != nil && e.Error != "" && (e.Payload != nil || e.Count != nil || e.Sequences != nil) {
		return fmt.Errorf("expect: error cannot be combined with payload checks")
	}
	return nil
}

func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertTraceCount:
		if a.Function == "" {
			return fmt.Errorf("function is required for trace_count")
		}
		if a.Count < 0 {
			return fmt.Errorf("count must be non-negative for trace_count")
		}
	case AssertTraceOrder:
		if len(a.Functions) == 0 {
			return fmt.Errorf("functions list is required for trace_order")
		}
	case AssertStreamLength:
		if !ir.ValidStreamKinds[ir.StreamKind(a.Stream)] || a.Stream == string(ir.StreamMetadata) {
			return fmt.Errorf("stream must be last100 or failedQueue, got %q", a.Stream)
		}
		if len(a.Args) != 3 {
			return fmt.Errorf("args must be SCHEMA TABLE INSTANCE_IDENTIFIER for stream_length")
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// expand returns the argument lists a step runs with, one per repeat
// counter value.
func (s Step) expand() [][]string {
	if s.Repeat == nil {
		return [][]string{s.Args}
	}

	out := make([][]string, 0, s.Repeat.To-s.Repeat.From+1)
	for n := s.Repeat.From; n <= s.Repeat.To; n++ {
		r := strings.NewReplacer(
			"${seq}", strconv.FormatInt(n, 10),
			"${odd}", strconv.FormatBool(n%2 == 1),
		)
		args := make([]string, len(s.Args))
		for i, a := range s.Args {
			args[i] = r.Replace(a)
		}
		out = append(out, args)
	}
	return out
}
