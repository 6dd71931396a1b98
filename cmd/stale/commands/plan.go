package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/stale/internal/app"
	"go.trai.ch/stale/internal/engine/planner"
)

func (c *CLI) newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan [target]",
		Short: "Print what has to be compiled and relinked",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			contentHash, _ := cmd.Flags().GetBool("content-hash")
			explain, _ := cmd.Flags().GetBool("explain")
			_, err := c.app.Plan(cmd.Context(), targetArg(args), app.PlanOptions{
				RunOptions: runOptions(cmd),
				Options:    planner.Options{Force: force, ContentHash: contentHash},
				Explain:    explain,
			})
			return err
		},
	}
	addRunFlags(cmd)
	cmd.Flags().BoolP("force", "f", false, "Compile and relink everything")
	cmd.Flags().Bool("content-hash", false, "Skip units whose inputs were touched but not changed")
	cmd.Flags().BoolP("explain", "e", false, "Print the reason of every decision")
	return cmd
}
