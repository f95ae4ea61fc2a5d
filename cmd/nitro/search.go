package main

import (
	"github.com/gingerrexayers/nitro-go/internal/nitro/commands"
	"github.com/spf13/cobra"
)

// NewSearchCommand creates the 'search' command for the CLI.
func NewSearchCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:               "search <image> <path>",
		Short:             "Find a file or directory by its path inside an image.",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: entryCompletions(flags),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := commands.SearchOptions{ImageOptions: flags.imageOptions(), Out: cmd.OutOrStdout()}
			return commands.Search(args[0], args[1], opts)
		},
	}
	return cmd
}
