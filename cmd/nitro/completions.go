package main

import (
	"github.com/gingerrexayers/nitro-go/internal/nitro/commands"
	"github.com/spf13/cobra"
)

// entryCompletions provides dynamic tab completion for paths inside the
// image named by the first argument.
func entryCompletions(flags *globalFlags) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		// The first argument is the image itself, a regular file.
		if len(args) == 0 {
			return nil, cobra.ShellCompDirectiveDefault
		}
		if len(args) != 1 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		suggestions, err := commands.CompleteEntries(args[0], toComplete, commands.ImageOptions{Archive: flags.archive})
		if err != nil {
			// Don't return an error, just fail to complete.
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return suggestions, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
	}
}
