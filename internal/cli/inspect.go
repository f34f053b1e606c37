package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dialdeck/dialdeck/internal/store"
	"github.com/dialdeck/dialdeck/internal/tile"
)

// InspectOptions holds flags for the inspect command.
type InspectOptions struct {
	*RootOptions
	Database string
	Profile  string
}

// SlotInfo is one occupied slot in the inspect output.
type SlotInfo struct {
	Slot   int    `json:"slot"`
	TileID string `json:"tile_id"`
	Kind   string `json:"kind"`
	Title  string `json:"title"`
	URL    string `json:"url,omitempty"`
}

// InspectResult holds the complete inspect output.
type InspectResult struct {
	Profile   string     `json:"profile"`
	UpdatedAt string     `json:"updated_at,omitempty"`
	Capacity  int        `json:"capacity"`
	Occupied  int        `json:"occupied"`
	Slots     []SlotInfo `json:"slots"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the stored dashboard record",
		Long: `Show the preferences record stored in the durable store.

Lists every occupied slot with its tile id, kind, title and URL, plus the
record's last write time.

Examples:
  dialdeck inspect --db ~/.dialdeck/prefs.db
  dialdeck inspect --db ~/.dialdeck/prefs.db --profile work --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Profile, "profile", "default", "profile key")

	return cmd
}

func runInspect(opts *InspectOptions, cmd *cobra.Command) error {
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
	updated, err := st.UpdatedAt(ctx, opts.Profile)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read record timestamp", err)
	}

	result := InspectResult{
		Profile:  opts.Profile,
		Capacity: tile.Capacity,
		Occupied: rec.Occupied(),
		Slots:    []SlotInfo{},
	}
	if !updated.IsZero() {
		result.UpdatedAt = updated.UTC().Format(time.RFC3339)
	}
	for i, t := range rec.Tiles {
		if t == nil {
			continue
		}
		result.Slots = append(result.Slots, SlotInfo{
			Slot:   i,
			TileID: t.ID,
			Kind:   string(t.Kind),
			Title:  t.Title,
			URL:    t.URL,
		})
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return out.SuccessJSON(result)
	}

	fmt.Fprintf(out.Writer, "Profile:  %s\n", result.Profile)
	if result.UpdatedAt != "" {
		fmt.Fprintf(out.Writer, "Updated:  %s\n", result.UpdatedAt)
	}
	fmt.Fprintf(out.Writer, "Occupied: %d / %d\n", result.Occupied, result.Capacity)
	for _, s := range result.Slots {
		if s.URL != "" {
			fmt.Fprintf(out.Writer, "  slot %2d  %-8s  %s  (%s)  [%s]\n", s.Slot, s.Kind, s.Title, s.URL, s.TileID)
		} else {
			fmt.Fprintf(out.Writer, "  slot %2d  %-8s  %s  [%s]\n", s.Slot, s.Kind, s.Title, s.TileID)
		}
	}
	return nil
}
