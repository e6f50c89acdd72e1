package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/retrace-io/retrace/internal/archive"
)

// ArchiveOptions holds flags shared by the archive subcommands.
type ArchiveOptions struct {
	*RootOptions
	Database string
}

// ArchiveEntry is the JSON shape for one listed recording.
type ArchiveEntry struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CreatedAt   string `json:"created_at"`
	DurationMs  int64  `json:"duration_ms"`
	SampleCount int    `json:"sample_count"`
}

// NewArchiveCommand creates the archive command group.
func NewArchiveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ArchiveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Manage the recording archive",
		Long: `Store, list, fetch and delete recordings in a SQLite archive.

Documents are validated on put; the archive never contains a recording
the replay engine would reject.`,
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "retrace.db", "archive database path")

	cmd.AddCommand(newArchivePutCommand(opts))
	cmd.AddCommand(newArchiveListCommand(opts))
	cmd.AddCommand(newArchiveGetCommand(opts))
	cmd.AddCommand(newArchiveDeleteCommand(opts))

	return cmd
}

func newArchivePutCommand(opts *ArchiveOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:           "put <recording.json>",
		Short:         "Validate and store a recording",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("read %s", path), err)
			}
			if name == "" {
				name = filepath.Base(path)
			}

			a, err := openArchive(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := a.Put(cmd.Context(), name, data)
			if err != nil {
				return WrapExitError(ExitFailure, "put recording", err)
			}

			formatter := newFormatter(opts.RootOptions, cmd)
			return formatter.Emit(toEntry(rec), func(w io.Writer) {
				fmt.Fprintf(w, "stored %s as %s (%d ms, %d samples)\n",
					name, rec.ID, rec.DurationMs, rec.SampleCount)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "recording name (defaults to file basename)")
	return cmd
}

func newArchiveListCommand(opts *ArchiveOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "ls",
		Short:         "List archived recordings",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openArchive(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			recordings, err := a.List(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "list recordings", err)
			}

			entries := make([]ArchiveEntry, 0, len(recordings))
			for _, rec := range recordings {
				entries = append(entries, toEntry(rec))
			}

			formatter := newFormatter(opts.RootOptions, cmd)
			return formatter.Emit(entries, func(w io.Writer) {
				if len(entries) == 0 {
					fmt.Fprintln(w, "archive is empty")
					return
				}
				for _, e := range entries {
					fmt.Fprintf(w, "%s  %-24s %8d ms %6d samples  %s\n",
						e.ID, e.Name, e.DurationMs, e.SampleCount, e.CreatedAt)
				}
			})
		},
	}
}

func newArchiveGetCommand(opts *ArchiveOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:           "get <id>",
		Short:         "Fetch a recording's document",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openArchive(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := a.Get(cmd.Context(), args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "get recording", err)
			}

			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(rec.Document)
				return err
			}
			if err := os.WriteFile(out, rec.Document, 0o644); err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("write %s", out), err)
			}

			formatter := newFormatter(opts.RootOptions, cmd)
			return formatter.Emit(toEntry(rec), func(w io.Writer) {
				fmt.Fprintf(w, "wrote %s to %s\n", rec.ID, out)
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	return cmd
}

func newArchiveDeleteCommand(opts *ArchiveOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "rm <id>",
		Short:         "Delete a recording",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openArchive(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.Delete(cmd.Context(), args[0]); err != nil {
				return WrapExitError(ExitCommandError, "delete recording", err)
			}

			formatter := newFormatter(opts.RootOptions, cmd)
			return formatter.Emit(map[string]string{"deleted": args[0]}, func(w io.Writer) {
				fmt.Fprintf(w, "deleted %s\n", args[0])
			})
		},
	}
}

func openArchive(opts *ArchiveOptions) (*archive.Archive, error) {
	a, err := archive.Open(opts.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("open archive %s", opts.Database), err)
	}
	return a, nil
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

func toEntry(rec archive.Recording) ArchiveEntry {
	return ArchiveEntry{
		ID:          rec.ID,
		Name:        rec.Name,
		CreatedAt:   rec.CreatedAt.Format(time.RFC3339),
		DurationMs:  rec.DurationMs,
		SampleCount: rec.SampleCount,
	}
}
