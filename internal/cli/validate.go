package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/retrace-io/retrace/internal/trajectory"
)

// ValidationResult holds the validate command output.
type ValidationResult struct {
	File   string `json:"file"`
	Valid  bool   `json:"valid"`
	Tracks int    `json:"tracks,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <recording.json>",
		Short: "Validate a recorded trajectory document",
		Long: `Check a recording against the document schema and invariants.

Validation covers JSON syntax, the embedded CUE schema (field shapes,
non-negative timestamps), strictly increasing sample timestamps per
track, and track-name uniqueness. Exit code 1 means the document was
rejected; the rejection code and path are reported.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("read %s", path), err)
	}

	store, err := trajectory.Decode(data)
	if err != nil {
		var de *trajectory.DocumentError
		if errors.As(err, &de) {
			if emitErr := formatter.EmitError(string(de.Code), de.Message, de.Path); emitErr != nil {
				return emitErr
			}
			return NewExitError(ExitFailure, "document rejected")
		}
		return WrapExitError(ExitFailure, fmt.Sprintf("decode %s", path), err)
	}

	result := ValidationResult{File: path, Valid: true, Tracks: store.Len()}
	return formatter.Emit(result, func(w io.Writer) {
		fmt.Fprintf(w, "%s: valid (%d track(s), %d sample(s))\n",
			path, store.Len(), store.SampleCount())
	})
}
