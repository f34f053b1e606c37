package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dialdeck/dialdeck/internal/mirror"
	"github.com/dialdeck/dialdeck/internal/store"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Database string
	Mirror   string
	Profile  string
	Quota    int
}

// ExportResult holds the export output.
type ExportResult struct {
	Profile  string `json:"profile"`
	Mirror   string `json:"mirror"`
	Occupied int    `json:"occupied"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the durable record to a mirror blob",
		Long: `Copy the durable store's record into a mirror blob file.

Useful after restoring a database backup, when the mirror on disk still
holds an older record.

Examples:
  dialdeck export --db ~/.dialdeck/prefs.db --mirror ~/.dialdeck/mirror.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Mirror, "mirror", "", "path to mirror blob file (required)")
	_ = cmd.MarkFlagRequired("mirror")
	cmd.Flags().StringVar(&opts.Profile, "profile", "default", "profile key")
	cmd.Flags().IntVar(&opts.Quota, "quota", 0, "mirror quota in bytes (0 = default)")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	rec, err := st.GetPreferences(ctx, opts.Profile)
	if err != nil {
		return WrapExitError(ExitFailure, "stored record is unreadable", err)
	}
	if rec == nil {
		return NewExitError(ExitFailure, fmt.Sprintf("no record stored for profile %q", opts.Profile))
	}

	m := mirror.New(opts.Mirror)
	m.Quota = opts.Quota
	if err := m.Put(rec); err != nil {
		if errors.Is(err, mirror.ErrQuotaExceeded) {
			return WrapExitError(ExitFailure, "record does not fit the mirror quota", err)
		}
		return WrapExitError(ExitCommandError, "failed to write mirror blob", err)
	}

	result := ExportResult{Profile: opts.Profile, Mirror: opts.Mirror, Occupied: rec.Occupied()}
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return out.SuccessJSON(result)
	}
	fmt.Fprintf(out.Writer, "Exported %d tiles to %s\n", result.Occupied, result.Mirror)
	return nil
}
