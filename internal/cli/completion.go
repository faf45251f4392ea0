package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphilizer/pkg/pipeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for graphilizer.

Besides commands and flags, completions suggest node IDs for
"graphilizer focus <file> <node>" by reading the graph file.

Bash:
  $ source <(graphilizer completion bash)

Zsh:
  $ graphilizer completion zsh > "${fpath[1]}/_graphilizer"

Fish:
  $ graphilizer completion fish > ~/.config/fish/completions/graphilizer.fish

PowerShell:
  PS> graphilizer completion powershell | Out-String | Invoke-Expression
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
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// graphFileCompletion completes the first argument with graph documents.
func graphFileCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"json", "yaml", "yml", "toml"}, cobra.ShellCompDirectiveFilterFileExt
}

// graphFilesCompletion completes every argument with graph documents.
func graphFilesCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return graphFileCompletion(cmd, nil, toComplete)
}

// nodeCompletion completes the first argument with graph documents and the
// second with node IDs from that document, using their labels as
// descriptions.
func nodeCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	switch len(args) {
	case 0:
		return graphFileCompletion(cmd, args, toComplete)
	case 1:
		g, _, err := pipeline.Load(context.Background(), pipeline.Options{Path: args[0]})
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		var ids []string
		for _, n := range g.Nodes {
			if n.IsGroup || !strings.HasPrefix(n.ID, toComplete) {
				continue
			}
			if n.Label != n.ID {
				ids = append(ids, n.ID+"\t"+n.Label)
			} else {
				ids = append(ids, n.ID)
			}
		}
		return ids, cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
