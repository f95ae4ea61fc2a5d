package main

import (
	"github.com/gingerrexayers/nitro-go/internal/nitro/commands"
	"github.com/spf13/cobra"
)

// NewExtractCommand creates the 'extract' command for the CLI.
func NewExtractCommand(flags *globalFlags) *cobra.Command {
	var opts commands.ExtractOptions
	var outputDir string

	cmd := &cobra.Command{
		Use:   "extract <image> [path]",
		Short: "Extract files from an image.",
		Long: `Writes the contents of the file or directory at path to the output
directory. Without a path, the whole filesystem is extracted.`,
		Args:              cobra.RangeArgs(1, 2),
		ValidArgsFunction: entryCompletions(flags),
		RunE: func(cmd *cobra.Command, args []string) error {
			// The second, optional argument is the path inside the image.
			entryPath := ""
			if len(args) > 1 {
				entryPath = args[1]
			}

			opts.ImageOptions = flags.imageOptions()
			opts.Out = cmd.OutOrStdout()
			return commands.Extract(args[0], entryPath, outputDir, opts)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "The directory to extract files to")
	addFilterFlags(cmd, &opts.FilterOptions)

	return cmd
}
