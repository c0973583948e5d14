package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/verifylog/internal/dispatch"
	"github.com/roach88/verifylog/internal/vlog"
)

// InvokeOptions holds flags for the invoke command.
type InvokeOptions struct {
	*RootOptions
	Query bool   // refuse functions that write
	TxID  string // caller-chosen transaction id
}

// InvokeResult is the JSON data of a successful invocation.
type InvokeResult struct {
	TxID    string `json:"txid"`
	Payload any    `json:"payload,omitempty"`
}

// NewInvokeCommand creates the invoke command.
func NewInvokeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InvokeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "invoke <function> [args...]",
		Short: "Invoke a function against the configured ledger",
		Long: `Invoke a function against the configured ledger.

Arguments are passed to the function positionally and unchanged. Flags
must come before the function name; everything after it is an argument.

Examples:
  verifylog invoke storeLog APP ORDERS 9A1F 1 1 42 false 5d41 7c21
  verifylog invoke readChainLogs APP ORDERS 9A1F 1 1 10
  verifylog --format json invoke --query fetchLast100 APP ORDERS 9A1F`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return invokeFunction(opts, args[0], args[1:], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Query, "query", false, "run as a read-only query")
	cmd.Flags().StringVar(&opts.TxID, "txid", "", "transaction id (generated when empty)")
	cmd.Flags().SetInterspersed(false)

	return cmd
}

func invokeFunction(opts *InvokeOptions, fn string, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	e, err := openEnv(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer e.close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.TxID != "" {
		ctx = dispatch.ContextWithTxID(ctx, opts.TxID)
	}

	invoke := e.dispatcher.Invoke
	if opts.Query {
		invoke = e.dispatcher.Query
	}
	res, err := invoke(ctx, fn, args)
	if err != nil {
		return outputInvokeError(formatter, res.TxID, err)
	}

	formatter.VerboseLog("txid: %s", res.TxID)
	if opts.Format == "json" {
		return formatter.Success(InvokeResult{TxID: res.TxID, Payload: jsonPayload(res.Payload)})
	}
	if len(res.Payload) > 0 {
		fmt.Fprintln(cmd.OutOrStdout(), string(res.Payload))
	}
	return nil
}

// jsonPayload embeds a payload that is valid JSON as is and any other
// payload as a string.
func jsonPayload(payload []byte) any {
	if len(payload) == 0 {
		return nil
	}
	if json.Valid(payload) {
		return json.RawMessage(payload)
	}
	return string(payload)
}

func outputInvokeError(formatter *OutputFormatter, txID string, err error) error {
	code := string(vlog.CodeOf(err))
	if code == "" {
		code = ErrCodeGeneric
	}

	var details any
	var ve *vlog.Error
	if errors.As(err, &ve) && len(ve.Details) > 0 {
		details = ve.Details
	}
	formatter.VerboseLog("txid: %s", txID)
	if err := formatter.Error(code, err.Error(), details); err != nil {
		return err
	}
	return WrapExitError(ExitFailure, "invocation failed", err)
}
