package cli

import (
	"github.com/spf13/cobra"
)

func (r *root) setupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Create your password and recovery code",
		Long: `Creates the password that protects encrypted notes and prints a one-time
recovery code. Keep the recovery code safe: it is the only way to reset a
forgotten password.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := r.app.keys.Setup(cmd.Context())
			return err
		},
	}
}

func (r *root) passwdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "passwd",
		Short: "Change your password using the recovery code",
		Long: `Asks for your current recovery code and a new password. Encrypted notes
stay readable under the new password. A new recovery code is printed and
the old one stops working.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := r.app.keys.ChangePassword(cmd.Context())
			return err
		},
	}
}
