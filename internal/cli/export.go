package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/entregas/internal/export"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Out   string
	Type  string // "xlsx" | "csv"; empty infers from --out, then config
	Sheet string
}

// ExportResult is the payload of the export command.
type ExportResult struct {
	Path    string `json:"path"`
	Format  string `json:"format"`
	Records int    `json:"records"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write all records to a spreadsheet",
		Long: `Write all records to a spreadsheet, one row per record.

The format is taken from --type, else from the --out extension (.xlsx or
.csv), else from the config file (default xlsx).

Examples:
  entregas export --out entregas.xlsx
  entregas export --out entregas.csv
  entregas export --out dump --type csv`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "output file path (required)")
	_ = cmd.MarkFlagRequired("out")
	cmd.Flags().StringVar(&opts.Type, "type", "", "export format (xlsx|csv)")
	cmd.Flags().StringVar(&opts.Sheet, "sheet", "", "xlsx sheet name (default from config)")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	format, err := exportFormat(opts.Type, opts.Out, s.cfg.Export.Format)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid export format", err)
	}

	sheet := opts.Sheet
	if sheet == "" {
		sheet = s.cfg.Export.Sheet
	}

	records, err := s.engine.List(cmd.Context())
	if err != nil {
		return WrapExitError(ExitFailure, "failed to list records", err)
	}

	f, err := os.Create(opts.Out)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create output file", err)
	}
	if err := export.Write(f, format, sheet, records); err != nil {
		f.Close()
		return WrapExitError(ExitFailure, "failed to export records", err)
	}
	if err := f.Close(); err != nil {
		return WrapExitError(ExitFailure, "failed to close output file", err)
	}

	s.logger.Info("records exported", "path", opts.Out, "format", format, "records", len(records))

	return s.out.Success(
		ExportResult{Path: opts.Out, Format: string(format), Records: len(records)},
		fmt.Sprintf("Exported %d records to %s", len(records), opts.Out),
	)
}

// exportFormat resolves the format: explicit type, then a recognized file
// extension, then the configured default.
func exportFormat(typ, path, configured string) (export.Format, error) {
	if typ != "" {
		return export.ParseFormat(typ)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx":
		return export.FormatFromPath(path), nil
	}
	if configured != "" {
		return export.ParseFormat(configured)
	}
	return export.FormatXLSX, nil
}
