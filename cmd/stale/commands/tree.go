package commands

import "github.com/spf13/cobra"

func (c *CLI) newTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tree [target]",
		Short: "Print the project dependency tree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			return c.app.Tree(cmd.Context(), targetArg(args), configPath)
		},
	}
}
