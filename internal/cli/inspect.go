package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/retrace-io/retrace/internal/trajectory"
)

// TrackSummary describes one track for inspect output.
type TrackSummary struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Samples int    `json:"samples"`
	StartMs int64  `json:"start_ms"`
	EndMs   int64  `json:"end_ms"`
}

// InspectResult holds the inspect command output.
type InspectResult struct {
	File       string         `json:"file"`
	DurationMs int64          `json:"duration_ms"`
	Tracks     []TrackSummary `json:"tracks"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <recording.json>",
		Short: "Summarize a recorded trajectory document",
		Long: `Decode a recording and print a per-track summary.

Shows each track's kind, sample count and time range, plus the overall
recording duration. Rejected documents exit non-zero; use validate for
detailed rejection output.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runInspect(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	store, err := decodeFile(path)
	if err != nil {
		return err
	}
	formatter.VerboseLog("decoded %d track(s) from %s", store.Len(), path)

	result := InspectResult{
		File:       path,
		DurationMs: store.DurationMs(),
		Tracks:     []TrackSummary{},
	}
	for _, t := range store.Tracks() {
		summary := TrackSummary{
			Name:    t.Name,
			Kind:    t.Kind.String(),
			Samples: t.Len(),
			EndMs:   t.EndMs(),
		}
		if t.Len() > 0 {
			summary.StartMs = t.At(0).TimeMs
		}
		result.Tracks = append(result.Tracks, summary)
	}

	return formatter.Emit(result, func(w io.Writer) {
		fmt.Fprintf(w, "%s: %d track(s), %d ms\n", path, len(result.Tracks), result.DurationMs)
		for _, t := range result.Tracks {
			fmt.Fprintf(w, "  %-30s %-8s %5d samples  [%d..%d] ms\n",
				t.Name, t.Kind, t.Samples, t.StartMs, t.EndMs)
		}
	})
}

// decodeFile reads and decodes a recording, mapping failures to exit
// codes: missing/unreadable files are command errors, rejected documents
// are validation failures.
func decodeFile(path string) (*trajectory.Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, fmt.Sprintf("read %s", path), err)
	}
	store, err := trajectory.Decode(data)
	if err != nil {
		var de *trajectory.DocumentError
		if errors.As(err, &de) {
			return nil, WrapExitError(ExitFailure, fmt.Sprintf("reject %s", path), de)
		}
		return nil, WrapExitError(ExitFailure, fmt.Sprintf("decode %s", path), err)
	}
	return store, nil
}
