package main

import (
	"github.com/gingerrexayers/nitro-go/internal/nitro/commands"
	"github.com/spf13/cobra"
)

// NewFingerprintCommand creates the 'fingerprint' command for the CLI.
func NewFingerprintCommand(flags *globalFlags) *cobra.Command {
	var opts commands.FingerprintOptions

	cmd := &cobra.Command{
		Use:   "fingerprint <image>",
		Short: "Hash every file of an image and report duplicates.",
		Long: `Computes the SHA-256 of every file and splits its contents into
content-defined chunks, then reports files with identical contents and how
many chunks are shared across the image.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ImageOptions = flags.imageOptions()
			opts.Out = cmd.OutOrStdout()
			return commands.Fingerprint(args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print the report as JSON")
	addFilterFlags(cmd, &opts.FilterOptions)

	return cmd
}
