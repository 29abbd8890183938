package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// idCmd builds a command that applies fn to a single note id.
func (r *root) idCmd(use, short, done string, fn func(ctx context.Context, id int64) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := fn(cmd.Context(), id); err != nil {
				return err
			}
			r.app.reporter.Info(fmt.Sprintf("Note %d %s.", id, done))
			return nil
		},
	}
}

func (r *root) trashCmd() *cobra.Command {
	return r.idCmd("trash", "Move a note to the trash", "moved to the trash",
		func(ctx context.Context, id int64) error { return r.app.notes.Trash(ctx, id) })
}

func (r *root) restoreCmd() *cobra.Command {
	return r.idCmd("restore", "Take a note out of the trash", "restored",
		func(ctx context.Context, id int64) error { return r.app.notes.Restore(ctx, id) })
}

func (r *root) deleteCmd() *cobra.Command {
	return r.idCmd("delete", "Delete a note permanently", "deleted",
		func(ctx context.Context, id int64) error { return r.app.notes.Delete(ctx, id) })
}

func (r *root) emptyTrashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "empty-trash",
		Short: "Permanently delete every note in the trash",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := r.app.notes.EmptyTrash(cmd.Context())
			if err != nil {
				return err
			}
			r.app.reporter.Info(fmt.Sprintf("%d notes deleted.", n))
			return nil
		},
	}
}
