package cli

import (
	"github.com/spf13/cobra"

	"github.com/leafstorm/railgen/pkg/loader"
)

var completionShells = []string{"bash", "zsh", "fish", "powershell"}

// completionCommand prints a completion script for the given shell.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion bash|zsh|fish|powershell",
		Short: "Generate shell completion scripts",
		Long: `Print a completion script for railgen. DATA arguments complete to YAML,
TOML and JSON documents; the render TEMPLATE argument to template files.`,
		Example: `  source <(railgen completion bash)
  railgen completion zsh > "${fpath[1]}/_railgen"
  railgen completion fish > ~/.config/fish/completions/railgen.fish`,
		DisableFlagsInUseLine: true,
		ValidArgs:             completionShells,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		// Completion must work before a config file exists.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(c.out, true)
			case "zsh":
				return root.GenZshCompletion(c.out)
			case "fish":
				return root.GenFishCompletion(c.out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(c.out)
			}
		},
	}
}

// templateExts are the extensions offered for the render TEMPLATE argument.
var templateExts = []string{"tmpl", "html", "gohtml"}

// completeData completes the DATA argument of a command taking up to max
// arguments: network documents first, then templates.
func completeData(max int) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		switch {
		case len(args) == 0:
			return documentExts(), cobra.ShellCompDirectiveFilterFileExt
		case len(args) < max:
			return templateExts, cobra.ShellCompDirectiveFilterFileExt
		default:
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
	}
}

func documentExts() []string {
	exts := []string{"yml"}
	for _, f := range loader.Formats() {
		exts = append(exts, string(f))
	}
	return exts
}
