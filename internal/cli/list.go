package cli

import (
	"github.com/spf13/cobra"
)

func (r *root) listCmd() *cobra.Command {
	var trashed bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List notes",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.list(cmd, trashed)
		},
	}
	cmd.Flags().BoolVar(&trashed, "trashed", false, "list notes in the trash")
	return cmd
}

func (r *root) list(cmd *cobra.Command, trashed bool) error {
	list, err := r.app.notes.List(cmd.Context(), trashed)
	if err != nil {
		return err
	}
	renderList(r.streams.Out, list)
	return nil
}
