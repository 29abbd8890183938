package cli

import (
	"github.com/spf13/cobra"
)

func (r *root) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show note counts and notable notes",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := r.app.notes.Summary(cmd.Context())
			if err != nil {
				return err
			}
			renderStats(r.streams.Out, st)
			return nil
		},
	}
}
