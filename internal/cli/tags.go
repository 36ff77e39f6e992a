package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// TagsResult is the output of the tags command.
type TagsResult struct {
	Run  string   `json:"run"`
	Tags []string `json:"tags"`
}

// NewTagsCommand creates the tags command.
func NewTagsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tags <run-dir>",
		Short:         "List the scalar tags recorded in a run",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTags(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runTags(opts *RootOptions, run string, cmd *cobra.Command) error {
	if err := opts.setup(cmd); err != nil {
		return err
	}
	formatter := opts.formatter(cmd)

	loader, closeCache := opts.loader()
	defer closeCache()

	tags, err := loader.Tags(opts.resolveRun(run))
	if err != nil {
		return formatter.SeriesError(err)
	}

	if formatter.JSON() {
		return formatter.Success(TagsResult{Run: run, Tags: tags})
	}
	for _, tag := range tags {
		fmt.Fprintln(formatter.Writer, tag)
	}
	return nil
}
