package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/trusty/internal/models"
	"github.com/spf13/cobra"
)

func (r *root) getCmd() *cobra.Command {
	var (
		last      bool
		menu      bool
		withTitle bool
	)

	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Print a note",
		Long: `Prints the text of a note. Encrypted notes ask for the password.

  tru get 7
  tru get --last
  tru list | fzf | tru get --menu   # read the id from a listing line`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := r.app
			ctx := cmd.Context()

			var (
				n   *models.Note
				err error
			)
			switch {
			case menu:
				line, rerr := a.reader.ReadString('\n')
				if rerr != nil && !errors.Is(rerr, io.EOF) {
					return fmt.Errorf("failed to read menu line: %w", rerr)
				}
				id, perr := ParseMenuLine(line)
				if perr != nil {
					return perr
				}
				n, err = a.notes.Get(ctx, id)
			case last:
				n, err = a.notes.GetLastTouched(ctx)
			case len(args) == 1:
				id, perr := parseID(args[0])
				if perr != nil {
					return perr
				}
				n, err = a.notes.Get(ctx, id)
			default:
				return newUsageError(errors.New("a note id, --last or --menu is required"))
			}
			if err != nil {
				return err
			}

			if withTitle {
				fmt.Fprintln(r.streams.Out, n.Title)
				fmt.Fprintln(r.streams.Out, rule)
			}
			fmt.Fprintln(r.streams.Out, n.Body)
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&last, "last", "l", false, "print the last added or read note")
	f.BoolVarP(&menu, "menu", "m", false, "read a listing line from stdin and print that note")
	f.BoolVarP(&withTitle, "with-title", "T", false, "print the title above the text")
	return cmd
}
