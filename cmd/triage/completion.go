package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for triage, including adapter and flag names.

To load completions:

Bash:
  $ source <(triage completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ triage completion bash > /etc/bash_completion.d/triage
  # macOS:
  $ triage completion bash > $(brew --prefix)/etc/bash_completion.d/triage

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ triage completion zsh > "${fpath[1]}/_triage"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ triage completion fish | source

  # To load completions for each session, execute once:
  $ triage completion fish > ~/.config/fish/completions/triage.fish

PowerShell:
  PS> triage completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> triage completion powershell > triage.ps1
  # and source this file from your PowerShell profile.
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(out)
		case "zsh":
			return rootCmd.GenZshCompletion(out)
		case "fish":
			return rootCmd.GenFishCompletion(out, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(out)
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
