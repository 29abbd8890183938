package cli

import (
	"github.com/spf13/cobra"
)

func (r *root) dumpCmd() *cobra.Command {
	var decrypt bool

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print every note with its metadata",
		Long: `Prints all notes that are not in the trash, one line per line of text.
Encrypted notes are masked unless --decrypt is given, in which case the
password is asked for once.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := r.app.notes.Dump(cmd.Context(), decrypt)
			if err != nil {
				return err
			}
			renderDump(r.streams.Out, list)
			return nil
		},
	}
	cmd.Flags().BoolVar(&decrypt, "decrypt", false, "decrypt encrypted notes")
	return cmd
}
