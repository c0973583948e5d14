package cli

import (
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/verifylog/internal/dispatch"
	"github.com/roach88/verifylog/internal/ledger"
)

// NewFunctionsCommand creates the functions command.
func NewFunctionsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "functions",
		Short: "List the invocable functions",
		Long: `List the functions invoke and the HTTP transport accept, with their
argument usage. Read-only functions can also run as queries.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listFunctions(rootOpts, cmd)
		},
	}
}

func listFunctions(opts *RootOptions, cmd *cobra.Command) error {
	// The listing needs no ledger state.
	l := ledger.NewMemory()
	defer l.Close()
	d := dispatch.New(l, dispatch.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	functions := d.Functions()

	if opts.Format == "json" {
		formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
		return formatter.Success(functions)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, f := range functions {
		mode := "write"
		if f.ReadOnly {
			mode = "read"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Name, mode, f.Usage)
	}
	return tw.Flush()
}
