package cli

import (
	"github.com/spf13/cobra"
)

func newTimelineCmd() *cobra.Command {
	var duration float64
	cmd := &cobra.Command{
		Use:   "timeline <result.json>",
		Short: "List timed issues in playback order with their timeline positions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, issues, err := loadIssues(args[0])
			if err != nil {
				return err
			}
			return writeTimeline(cmd.OutOrStdout(), issues, duration)
		},
	}
	cmd.Flags().Float64Var(&duration, "duration", 0, "video length in seconds (estimated from the issues when 0)")
	return cmd
}
