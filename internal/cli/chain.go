package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/verifylog/internal/ir"
)

// ChainOptions holds flags for the chain command.
type ChainOptions struct {
	*RootOptions
	Limit      int64
	FailedOnly bool // show only failed verifications
}

// ChainResult holds the chain timeline output.
type ChainResult struct {
	Schema             string                  `json:"schema"`
	Table              string                  `json:"table"`
	InstanceIdentifier string                  `json:"instance_identifier"`
	InstanceID         int64                   `json:"instance_id"`
	ChainID            int64                   `json:"chain_id"`
	Records            []ir.VerificationRecord `json:"records"`
	Stats              ChainStats              `json:"stats"`
}

// ChainStats holds summary statistics for the returned window.
type ChainStats struct {
	Total      int   `json:"total"`
	Passed     int   `json:"passed"`
	Failed     int   `json:"failed"`
	FirstSeq   int64 `json:"first_seq,omitempty"`
	LastSeq    int64 `json:"last_seq,omitempty"`
	Contiguous bool  `json:"contiguous"`
}

// NewChainCommand creates the chain command.
func NewChainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ChainOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "chain <schema> <table> <instance-identifier> <instance-id> <chain-id>",
		Short: "Show the newest records of a chain",
		Long: `Show the newest records of one chain as a timeline, oldest first.

The window ends at the chain's last sequence number recorded in the
identity's metadata. Without --limit the whole chain is shown.

Examples:
  verifylog chain APP ORDERS 9A1F 1 1
  verifylog chain APP ORDERS 9A1F 1 1 --limit 20 --failed-only
  verifylog chain APP ORDERS 9A1F 1 1 --format json`,
		Args:          cobra.ExactArgs(5),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChain(opts, args, cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.Limit, "limit", -1, "number of newest records to show (all when negative)")
	cmd.Flags().BoolVar(&opts.FailedOnly, "failed-only", false, "show only failed verifications")

	return cmd
}

func runChain(opts *ChainOptions, args []string, cmd *cobra.Command) error {
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

	callArgs := args
	if opts.Limit >= 0 {
		callArgs = append(args[:5:5], strconv.FormatInt(opts.Limit, 10))
	}
	res, err := e.dispatcher.Query(ctx, "readChainLogs", callArgs)
	if err != nil {
		return outputInvokeError(formatter, res.TxID, err)
	}

	var records []ir.VerificationRecord
	if err := json.Unmarshal(res.Payload, &records); err != nil {
		return WrapExitError(ExitFailure, "failed to decode chain records", err)
	}

	// The numeric arguments parsed above, so these cannot fail.
	instanceID, _ := strconv.ParseInt(args[3], 10, 64)
	chainID, _ := strconv.ParseInt(args[4], 10, 64)

	result := ChainResult{
		Schema:             args[0],
		Table:              args[1],
		InstanceIdentifier: args[2],
		InstanceID:         instanceID,
		ChainID:            chainID,
		Records:            filterRecords(records, opts.FailedOnly),
		Stats:              chainStats(records),
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}
	return outputChainText(cmd, result)
}

func filterRecords(records []ir.VerificationRecord, failedOnly bool) []ir.VerificationRecord {
	if !failedOnly {
		return records
	}
	out := make([]ir.VerificationRecord, 0)
	for _, r := range records {
		if !r.Result {
			out = append(out, r)
		}
	}
	return out
}

// chainStats summarises the unfiltered window.
func chainStats(records []ir.VerificationRecord) ChainStats {
	stats := ChainStats{Total: len(records), Contiguous: true}
	for i, r := range records {
		if r.Result {
			stats.Passed++
		} else {
			stats.Failed++
		}
		if i > 0 && r.SequenceNo != records[i-1].SequenceNo+1 {
			stats.Contiguous = false
		}
	}
	if len(records) > 0 {
		stats.FirstSeq = records[0].SequenceNo
		stats.LastSeq = records[len(records)-1].SequenceNo
	}
	return stats
}

func outputChainText(cmd *cobra.Command, result ChainResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Chain %s.%s@%s instance %d chain %d\n",
		result.Schema, result.Table, result.InstanceIdentifier, result.InstanceID, result.ChainID)
	fmt.Fprintln(w)

	for _, r := range result.Records {
		if r.Result {
			fmt.Fprintf(w, "  [%d] ok      %s\n", r.SequenceNo, r.GotHash)
		} else {
			fmt.Fprintf(w, "  [%d] FAILED  got=%s expected=%s\n", r.SequenceNo, r.GotHash, r.ExpectedHash)
		}
	}

	s := result.Stats
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Stats: %d records (%d passed, %d failed)", s.Total, s.Passed, s.Failed)
	if s.Total > 0 {
		fmt.Fprintf(w, ", sequences %d..%d", s.FirstSeq, s.LastSeq)
	}
	fmt.Fprintln(w)
	return nil
}
