package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/roach88/verifylog/internal/dispatch"
	"github.com/roach88/verifylog/internal/ledger"
	"github.com/roach88/verifylog/internal/vlog"
)

// maxBodyBytes bounds request bodies. Metadata blobs are the largest
// argument and stay well below this.
const maxBodyBytes = 4 << 20

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleTransaction handles POST .../transactions
func (s *Server) handleTransaction(w http.ResponseWriter, r *http.Request) {
	s.serveInvocation(w, r, s.dispatcher.Invoke)
}

// handleQuery handles POST .../chaincode-queries
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	s.serveInvocation(w, r, s.dispatcher.Query)
}

type invokeFunc func(ctx context.Context, fn string, args []string) (dispatch.Result, error)

func (s *Server) serveInvocation(w http.ResponseWriter, r *http.Request, invoke invokeFunc) {
	channel := mux.Vars(r)["channel"]
	if channel != s.cfg.Channel {
		writeJSON(w, http.StatusNotFound, TxResponse{
			ReturnCode: ReturnFailure,
			Error:      fmt.Sprintf("channel %s not found", channel),
		})
		return
	}

	var req TxRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, TxResponse{
			ReturnCode: ReturnFailure,
			Error:      fmt.Sprintf("invalid request body: %v", err),
		})
		return
	}
	if len(req.Args) == 0 {
		writeJSON(w, http.StatusBadRequest, TxResponse{
			ReturnCode: ReturnFailure,
			TxID:       req.TxID,
			Error:      "args must name the function to invoke",
		})
		return
	}

	ctx := r.Context()
	if req.TxID != "" {
		ctx = dispatch.ContextWithTxID(ctx, req.TxID)
	}
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.Timeout)*time.Millisecond)
		defer cancel()
	}

	res, err := invoke(ctx, req.Args[0], req.Args[1:])
	if err != nil {
		writeJSON(w, statusFor(err), TxResponse{
			ReturnCode: ReturnFailure,
			TxID:       res.TxID,
			Error:      err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, TxResponse{
		ReturnCode: ReturnSuccess,
		Result:     newTxResult(res.Payload),
		TxID:       res.TxID,
	})
}

func statusFor(err error) int {
	switch {
	case vlog.IsInvalidArgument(err):
		return http.StatusBadRequest
	case vlog.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
