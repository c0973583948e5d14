package server

import "encoding/json"

// Return codes of TxResponse.
const (
	ReturnSuccess = "Success"
	ReturnFailure = "Failure"
)

// TxRequest is the body of a transaction or query request.
// Args[0] names the function; the rest are its arguments.
type TxRequest struct {
	Chaincode string   `json:"chaincode"`
	Args      []string `json:"args"`
	TxID      string   `json:"txid,omitempty"`
	Nonce     string   `json:"nonce,omitempty"`
	Sync      bool     `json:"sync,omitempty"`
	Timeout   int64    `json:"timeout,omitempty"` // milliseconds
}

// TxResponse is the body of every transaction or query response.
type TxResponse struct {
	ReturnCode string    `json:"returnCode"`
	Result     *TxResult `json:"result,omitempty"`
	TxID       string    `json:"txid,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// TxResult carries the function's payload. JSON payloads are embedded as
// is; any other payload is sent as a JSON string, and an empty payload as
// "".
type TxResult struct {
	Payload json.RawMessage `json:"payload"`
}

func newTxResult(payload []byte) *TxResult {
	if len(payload) > 0 && json.Valid(payload) {
		return &TxResult{Payload: payload}
	}
	s, _ := json.Marshal(string(payload))
	return &TxResult{Payload: s}
}
