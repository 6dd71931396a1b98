package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/stale/internal/app"
	"go.trai.ch/stale/internal/engine/analyzer"
)

func (c *CLI) newDependCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "depend [target]",
		Short: "Analyze includes and write dependency records",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dumpFlag, _ := cmd.Flags().GetString("dump-headers")
			dump, err := analyzer.ParseDumpMode(dumpFlag)
			if err != nil {
				return err
			}
			watch, _ := cmd.Flags().GetBool("watch")
			return c.app.Depend(cmd.Context(), targetArg(args), app.DependOptions{
				RunOptions:  runOptions(cmd),
				DumpHeaders: dump,
				Watch:       watch,
			})
		},
	}
	addRunFlags(cmd)
	cmd.Flags().String("dump-headers", "none", "Print include trees: none, std or full")
	cmd.Flags().BoolP("watch", "w", false, "Refresh the records whenever sources change")
	return cmd
}
