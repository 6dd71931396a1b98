package commands

import "github.com/spf13/cobra"

func (c *CLI) newStampCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stamp [target]",
		Short: "Record content stamps of built translation units",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			return c.app.Stamp(cmd.Context(), targetArg(args), configPath)
		},
	}
}
