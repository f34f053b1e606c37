package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dialdeck/dialdeck/internal/mirror"
	"github.com/dialdeck/dialdeck/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Database string
	Mirror   string
	Profile  string
}

// ImportResult holds the import output.
type ImportResult struct {
	Profile  string `json:"profile"`
	Occupied int    `json:"occupied"`
}

// NewImportCommand creates the import command.
//
// This is the one deliberate exception to "the durable store is
// authoritative on read": an operator explicitly promoting the mirror blob,
// typically onto a fresh machine before first launch.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Seed the durable store from a mirror blob",
		Long: `Read a mirror blob file and write it into the durable store.

Overwrites whatever record the durable store holds for the profile.

Examples:
  dialdeck import --db ~/.dialdeck/prefs.db --mirror ~/.dialdeck/mirror.json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Mirror, "mirror", "", "path to mirror blob file (required)")
	_ = cmd.MarkFlagRequired("mirror")
	cmd.Flags().StringVar(&opts.Profile, "profile", "default", "profile key")

	return cmd
}

func runImport(opts *ImportOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	rec, err := mirror.New(opts.Mirror).Get()
	if err != nil {
		return WrapExitError(ExitFailure, "mirror blob is unreadable", err)
	}
	if rec == nil {
		return NewExitError(ExitFailure, fmt.Sprintf("no mirror blob at %s", opts.Mirror))
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	if err := st.PutPreferences(ctx, opts.Profile, rec); err != nil {
		return WrapExitError(ExitCommandError, "failed to write durable store", err)
	}

	result := ImportResult{Profile: opts.Profile, Occupied: rec.Occupied()}
	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return out.SuccessJSON(result)
	}
	fmt.Fprintf(out.Writer, "Imported %d tiles into profile %q\n", result.Occupied, result.Profile)
	return nil
}
