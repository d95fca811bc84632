package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// ResetOptions holds flags for the reset command.
type ResetOptions struct {
	*RootOptions
	Yes bool // skip the confirmation prompt
}

// ResetResult is the payload of the reset command.
type ResetResult struct {
	Removed int64 `json:"removed"`
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every record",
		Long: `Delete every record. Numbering restarts at 1.

Asks for confirmation on stdin unless --yes is given.

Exit codes:
  0 - Records deleted
  1 - Confirmation declined
  2 - Command error

Examples:
  entregas reset
  entregas reset --yes`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(opts, cmd)
		},
	}

	cmd.Flags().BoolVarP(&opts.Yes, "yes", "y", false, "skip confirmation")

	return cmd
}

func runReset(opts *ResetOptions, cmd *cobra.Command) error {
	if !opts.Yes && !confirm(cmd) {
		return NewExitError(ExitFailure, "reset cancelled")
	}

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	n, err := s.engine.Reset(cmd.Context())
	if err != nil {
		return WrapExitError(ExitFailure, "failed to reset records", err)
	}

	return s.out.Success(ResetResult{Removed: n}, fmt.Sprintf("Removed %d records", n))
}

// confirm asks on stderr and reads one line from stdin.
// Only "yes" (any case) confirms.
func confirm(cmd *cobra.Command) bool {
	fmt.Fprint(cmd.ErrOrStderr(), "This deletes every record. Type 'yes' to continue: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(line), "yes")
}
