package cli

import (
	"encoding/json"
	"fmt"
	"os"

	cueerrors "cuelang.org/go/cue/errors"
	"github.com/spf13/cobra"

	"github.com/roach88/verifylog/internal/config"
)

// ConfigIssue is one problem found in a config file.
type ConfigIssue struct {
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool           `json:"valid"`
	Config *config.Config `json:"config,omitempty"`
	Errors []ConfigIssue  `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate a config file",
		Long: `Validate a CUE config file against the config schema without opening
the ledger. Without an argument the --config file is validated.

On success the effective configuration, defaults included, is printed.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.Config
			if len(args) == 1 {
				path = args[0]
			}
			return runValidate(rootOpts, path, cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	if path == "" {
		return outputValidateError(formatter, ErrCodeGeneric, "no config file given: pass a path or --config")
	}
	if _, err := os.Stat(path); err != nil {
		return outputValidateError(formatter, ErrCodeGeneric, fmt.Sprintf("config file not found: %s", path))
	}

	formatter.VerboseLog("Validating %s", path)
	cfg, err := config.Load(path)
	if err != nil {
		return outputValidationErrors(formatter, configIssues(err))
	}
	return outputValidateSuccess(formatter, cfg)
}

// configIssues flattens a CUE error list, keeping source positions.
func configIssues(err error) []ConfigIssue {
	var issues []ConfigIssue
	for _, e := range cueerrors.Errors(err) {
		issue := ConfigIssue{Message: e.Error()}
		if pos := e.Position(); pos.IsValid() {
			issue.File = pos.Filename()
			issue.Line = pos.Line()
		}
		issues = append(issues, issue)
	}
	if len(issues) == 0 {
		issues = append(issues, ConfigIssue{Message: err.Error()})
	}
	return issues
}

// outputValidateSuccess outputs successful validation results.
func outputValidateSuccess(formatter *OutputFormatter, cfg *config.Config) error {
	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Config: cfg})
	}

	w := formatter.Writer
	fmt.Fprintln(w, "\u2713 Config valid")
	fmt.Fprintf(w, "  ledger:   %s (%s)\n", cfg.Ledger.Backend, cfg.Ledger.Path)
	fmt.Fprintf(w, "  last_n:   %d\n", cfg.Store.LastN)
	fmt.Fprintf(w, "  retries:  %d\n", cfg.Dispatch.MaxRetries)
	fmt.Fprintf(w, "  server:   %s channel %q\n", cfg.Server.Listen, cfg.Server.Channel)
	fmt.Fprintf(w, "  log:      %s\n", cfg.Log.Level)
	return nil
}

// outputValidateError outputs a single command-level error.
func outputValidateError(formatter *OutputFormatter, code, message string) error {
	_ = formatter.Error(code, message, nil)
	// Missing files are command-level errors (exit code 2)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, issues []ConfigIssue) error {
	if formatter.Format == "json" {
		response := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Errors: issues},
			Error: &CLIError{
				Code:    ErrCodeConfigInvalid,
				Message: issues[0].Message,
			},
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		// Validation failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))
	}

	// Text format
	fmt.Fprintln(formatter.Writer, "\u2717 Validation failed")
	fmt.Fprintln(formatter.Writer)

	for _, issue := range issues {
		if issue.Line > 0 {
			fmt.Fprintf(formatter.Writer, "%s:%d\n", issue.File, issue.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", ErrCodeConfigInvalid, issue.Message)
	}

	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(issues)))
}
