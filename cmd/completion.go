package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Print a shell completion script",
	Long: `Print a completion script for arxivsum so your shell can complete
subcommands and flags such as --store, --devtools and --no-browser.

Try it in the current session:

  bash:        source <(arxivsum completion bash)
  zsh:         source <(arxivsum completion zsh)
  fish:        arxivsum completion fish | source
  powershell:  arxivsum completion powershell | Out-String | Invoke-Expression

Install it permanently:

  bash:  arxivsum completion bash > ~/.local/share/bash-completion/completions/arxivsum
  zsh:   arxivsum completion zsh > "${fpath[1]}/_arxivsum"   (needs compinit)
  fish:  arxivsum completion fish > ~/.config/fish/completions/arxivsum.fish

Open a new shell afterwards.`,
	Example: `  arxivsum completion zsh > "${fpath[1]}/_arxivsum"`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := cmd.Root()
		switch args[0] {
		case "bash":
			return root.GenBashCompletionV2(os.Stdout, true)
		case "zsh":
			return root.GenZshCompletion(os.Stdout)
		case "fish":
			return root.GenFishCompletion(os.Stdout, true)
		default:
			return root.GenPowerShellCompletionWithDesc(os.Stdout)
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
