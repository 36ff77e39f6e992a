package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/curves/internal/harness"
)

// SynthOptions holds flags for the synth command.
type SynthOptions struct {
	*RootOptions
	Out string // destination directory; defaults to the log dir
}

// SynthResult is the output of the synth command.
type SynthResult struct {
	Fixture string   `json:"fixture"`
	Runs    []string `json:"runs"`
}

// NewSynthCommand creates the synth command.
func NewSynthCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SynthOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "synth <fixture.yaml>",
		Short: "Write synthetic run directories from a YAML fixture",
		Long: `Write the runs described by a YAML fixture as real TensorBoard event
logs, for trying out figure specs without a training job.`,
		Example: `  curves synth internal/harness/testdata/fixtures/q2_search.yaml --out /tmp/runs
  curves plot specs/ --log-dir /tmp/runs`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSynth(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Out, "out", "o", "", "directory to write runs into (default: the log dir)")

	return cmd
}

func runSynth(opts *SynthOptions, path string, cmd *cobra.Command) error {
	if err := opts.setup(cmd); err != nil {
		return err
	}
	formatter := opts.formatter(cmd)

	fixture, err := harness.LoadFixture(path)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeFixture, err.Error(), nil)
	}

	out := opts.Out
	if out == "" {
		out = opts.Config.LogDir
	}

	dirs, err := harness.Materialize(fixture, out)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, err.Error(), nil)
	}

	if formatter.JSON() {
		return formatter.Success(SynthResult{Fixture: fixture.Name, Runs: dirs})
	}

	fmt.Fprintf(formatter.Writer, "✓ Wrote %d run(s) for fixture %s\n", len(dirs), fixture.Name)
	for _, dir := range dirs {
		fmt.Fprintf(formatter.Writer, "  %s\n", dir)
	}
	return nil
}
