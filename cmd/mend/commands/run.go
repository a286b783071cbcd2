package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/mend/internal/app"
)

func (c *CLI) newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the repair loop over the task manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resume, _ := cmd.Flags().GetBool("resume")
			workers, _ := cmd.Flags().GetInt("workers")
			maxIterations, _ := cmd.Flags().GetInt("max-iterations")
			return c.app.Run(cmd.Context(), app.RunOptions{
				Resume:        resume,
				Workers:       workers,
				MaxIterations: maxIterations,
			})
		},
	}
	cmd.Flags().BoolP("resume", "r", false, "Resume from the recorded run state")
	cmd.Flags().IntP("workers", "w", 0, "Override the configured worker count")
	cmd.Flags().IntP("max-iterations", "m", 0, "Override the configured iteration ceiling")
	return cmd
}
