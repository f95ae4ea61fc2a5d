package main

import (
	"github.com/gingerrexayers/nitro-go/internal/nitro/commands"
	"github.com/spf13/cobra"
)

// addFilterFlags registers the include/exclude flags on cmd.
func addFilterFlags(cmd *cobra.Command, opts *commands.FilterOptions) {
	cmd.Flags().StringArrayVarP(&opts.Exclude, "exclude", "x", nil, "Skip in-image paths matching this gitignore-style pattern (repeatable)")
	cmd.Flags().StringVar(&opts.IgnoreFile, "ignore-file", ".nitroignore", "File of further patterns to skip")
}

// NewListCommand creates the 'list' command for the CLI.
func NewListCommand(flags *globalFlags) *cobra.Command {
	var opts commands.ListOptions

	cmd := &cobra.Command{
		Use:   "list <image>",
		Short: "List all files and directories of an image.",
		Long: `Lists the filesystem of a cartridge image or NARC archive, one entry per
line, indented by depth. Files of a directory come before its subdirectories;
sibling directories are listed in reverse declaration order.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ImageOptions = flags.imageOptions()
			opts.Out = cmd.OutOrStdout()
			return commands.List(args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print entries as JSON")
	addFilterFlags(cmd, &opts.FilterOptions)

	return cmd
}
