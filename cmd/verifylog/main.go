// Command verifylog stores and reads row verification logs on a
// transactional key-value ledger.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/verifylog/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "verifylog:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
