package cli

import (
	"fmt"
	"io"

	"github.com/dmitrijs2005/trusty/internal/ui"
)

// consoleReporter implements services.Reporter. Info goes to stdout, errors
// to stderr.
type consoleReporter struct {
	out io.Writer
	err io.Writer
}

func newConsoleReporter(out, err io.Writer) *consoleReporter {
	return &consoleReporter{out: out, err: err}
}

func (r *consoleReporter) Info(msg string) {
	fmt.Fprintln(r.out, ui.Info.Sprint("→"), msg)
}

func (r *consoleReporter) Error(msg string) {
	fmt.Fprintln(r.err, ui.Error.Sprint("✗"), msg)
}
