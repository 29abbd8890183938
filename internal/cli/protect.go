package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (r *root) protectCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "protect <id>",
		Aliases: []string{"encrypt"},
		Short:   "Encrypt a note under your password",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := r.app.engine.Protect(cmd.Context(), id); err != nil {
				return err
			}
			r.app.reporter.Info(fmt.Sprintf("Note %d encrypted.", id))
			return nil
		},
	}
}

func (r *root) unprotectCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "unprotect <id>",
		Aliases: []string{"decrypt"},
		Short:   "Decrypt a note and store it as plain text",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := r.app.engine.Unprotect(cmd.Context(), id); err != nil {
				return err
			}
			r.app.reporter.Info(fmt.Sprintf("Note %d decrypted.", id))
			return nil
		},
	}
}
