package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/entregas/internal/engine"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Database   string // overrides config database
	ConfigPath string

	// TraceGenerator allows overriding trace id generation (for testing).
	// If nil, defaults to UUIDv7Generator.
	TraceGenerator TraceIDGenerator

	// Clock allows overriding the delivered_at clock (for testing).
	// If nil, the engine uses the system clock.
	Clock engine.Clock

	traceID string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the entregas CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entregas",
		Short: "Sales and delivery ledger",
		Long: `Record sales and deliveries in a local SQLite file.

Each record gets a sequential display number. Marking a record delivered
stamps the time of day; the stamp is kept if the record goes back to pending.

Settings come from entregas.yaml, then ENTREGAS_DB, ENTREGAS_LOG_LEVEL and
ENTREGAS_PAYMENT_METHODS (from .env or the environment), then flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file (default entregas.yaml if present)")

	// Add subcommands
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewDeliverCommand(opts, true))
	cmd.AddCommand(NewDeliverCommand(opts, false))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// Execute runs the CLI with the process arguments and returns the exit code.
func Execute() int {
	return Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

// Run executes the CLI with the given arguments and streams, rendering any
// error in the selected output format, and returns the exit code.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	return run(&RootOptions{}, args, stdin, stdout, stderr)
}

func run(opts *RootOptions, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	gen := opts.TraceGenerator
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	opts.traceID = gen.Generate()

	cmd := newRootCommand(opts)
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	// Commands wrap their own failures; anything else is a flag or
	// argument error reported by cobra.
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		err = WrapExitError(ExitCommandError, "invalid usage", err)
	} else if exitErr.Silent {
		return exitErr.Code
	}

	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    stdout,
		ErrWriter: stderr,
		Verbose:   opts.Verbose,
		TraceID:   opts.traceID,
	}
	if !isValidFormat(out.Format) {
		out.Format = "text"
	}
	_ = out.Error(ErrorCode(err), err.Error(), nil)
	return GetExitCode(err)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
