package cli

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/trusty/internal/services"
	"github.com/spf13/cobra"
)

func (r *root) editCmd() *cobra.Command {
	var (
		last  bool
		title string
		body  string
		piped bool
	)

	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Change the title or text of a note",
		Long: `Replaces the title and/or text of a note. Without --title, --note or
--stdin the new text is asked for interactively. Encrypted notes stay
encrypted.`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := r.app
			ctx := cmd.Context()

			var id int64
			switch {
			case last:
				v, err := a.notes.LastTouchedID(ctx)
				if err != nil {
					return err
				}
				id = v
			case len(args) == 1:
				v, err := parseID(args[0])
				if err != nil {
					return err
				}
				id = v
			default:
				return newUsageError(errors.New("a note id or --last is required"))
			}

			var req services.EditRequest
			if cmd.Flags().Changed("title") {
				req.Title = &title
			}
			switch {
			case cmd.Flags().Changed("note") && piped:
				return newUsageError(errors.New("use only one of --note and --stdin"))
			case cmd.Flags().Changed("note"):
				req.Body = &body
			case piped:
				text, err := ReadPiped(a.reader)
				if err != nil {
					return fmt.Errorf("failed to read note from stdin: %w", err)
				}
				req.Body = &text
			case req.Title == nil:
				text, err := GetMultiline(a.reader, "New note text", a.streams.Err)
				if err != nil {
					return err
				}
				req.Body = &text
			}

			if err := a.notes.Edit(ctx, id, req); err != nil {
				return err
			}
			a.reporter.Info(fmt.Sprintf("Note %d updated.", id))
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&last, "last", "l", false, "edit the last added or read note")
	f.StringVarP(&title, "title", "t", "", "new title")
	f.StringVarP(&body, "note", "n", "", "new text")
	f.BoolVarP(&piped, "stdin", "i", false, "read the new text from stdin")
	return cmd
}
