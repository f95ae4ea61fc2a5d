package main

import (
	"github.com/spf13/cobra"
)

// NewCompletionCommand creates the 'completion' command, which writes a shell
// completion script to stdout. The script also completes paths inside the
// image for the search and extract commands.
func NewCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate completion script",
		Long: `To load completions for the current session:

  Bash:       $ source <(nitro completion bash)
  Zsh:        $ source <(nitro completion zsh)
  Fish:       $ nitro completion fish | source
  PowerShell: PS> nitro completion powershell | Out-String | Invoke-Expression

To load them for every session, write the script to your shell's completion
directory instead, e.g. /etc/bash_completion.d/nitro or "${fpath[1]}/_nitro".
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
