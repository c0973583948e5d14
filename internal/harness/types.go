package harness

// TraceEvent records one flow invocation and its outcome.
type TraceEvent struct {
	Seq      int      `json:"seq"` // 1-based position in the expanded flow
	Function string   `json:"function"`
	Args     []string `json:"args"`
	TxID     string   `json:"txid"`
	Outcome  string   `json:"outcome"`           // "ok" or an error code
	Payload  any      `json:"payload,omitempty"` // decoded JSON, or the raw string
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions hold.
	Pass bool `json:"pass"`

	// Trace contains the flow invocations in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// SetupInvocations counts the setup invocations that ran.
	SetupInvocations int `json:"setup_invocations"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
