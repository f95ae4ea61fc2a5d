package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/gingerrexayers/nitro-go/internal/nitro/commands"
	"github.com/spf13/cobra"
)

// globalFlags are shared by every command that reads an image.
type globalFlags struct {
	verbose bool
	archive string
}

func (g *globalFlags) imageOptions() commands.ImageOptions {
	opts := commands.ImageOptions{Archive: g.archive}
	if g.verbose {
		opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return opts
}

func main() {
	var flags globalFlags
	var rootCmd = &cobra.Command{
		Use:           "nitro",
		Short:         "Inspect the NitroROM filesystem of Nintendo DS cartridges and NARC archives.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log parse diagnostics to stderr")
	rootCmd.PersistentFlags().StringVar(&flags.archive, "narc", "", "Path of a NARC file inside the image to work on instead")

	// Add commands
	rootCmd.AddCommand(NewListCommand(&flags))
	rootCmd.AddCommand(NewSearchCommand(&flags))
	rootCmd.AddCommand(NewExtractCommand(&flags))
	rootCmd.AddCommand(NewFingerprintCommand(&flags))
	rootCmd.AddCommand(NewCompletionCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
