package cli

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/trusty/internal/services"
	"github.com/spf13/cobra"
)

func (r *root) addCmd() *cobra.Command {
	var (
		title   string
		body    string
		quick   string
		piped   bool
		encrypt bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a note",
		Long: `Adds a note. Without flags the title and text are asked for interactively.

  tru add -t "Groceries" -n "milk, eggs"
  tru add -q "call mom"            # title is the first line of the text
  echo "from a pipe" | tru add -i  # title defaults to Untitled
  tru add -t "pin" -n 1234 -E      # encrypted from the start`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := r.app
			sources := 0
			for _, set := range []bool{cmd.Flags().Changed("note"), quick != "", piped} {
				if set {
					sources++
				}
			}
			if sources > 1 {
				return newUsageError(errors.New("use only one of --note, --quick and --stdin"))
			}

			req := services.AddRequest{Title: title, Body: body, Encrypt: encrypt}
			switch {
			case quick != "":
				req.Body, req.Quick = quick, true
			case piped:
				text, err := ReadPiped(a.reader)
				if err != nil {
					return fmt.Errorf("failed to read note from stdin: %w", err)
				}
				req.Body = text
			case !cmd.Flags().Changed("note"):
				if req.Title == "" {
					t, err := GetSimpleText(a.reader, "Title", a.streams.Err)
					if err != nil {
						return err
					}
					req.Title = t
				}
				text, err := GetMultiline(a.reader, "Note", a.streams.Err)
				if err != nil {
					return err
				}
				req.Body = text
			}

			id, err := a.notes.Add(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.reporter.Info(fmt.Sprintf("Note %d added.", id))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&title, "title", "t", "", "note title")
	f.StringVarP(&body, "note", "n", "", "note text")
	f.StringVarP(&quick, "quick", "q", "", "quick note; the first line becomes the title")
	f.BoolVarP(&piped, "stdin", "i", false, "read the note text from stdin")
	f.BoolVarP(&encrypt, "encrypt", "E", false, "encrypt the note")
	return cmd
}
