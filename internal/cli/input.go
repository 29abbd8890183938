package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
	openTTY      = func() (*os.File, error) { return os.Open("/dev/tty") }
)

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The trailing newline is trimmed. If EOF occurs after some input was read,
// the partial line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetMultiline prints a prompt to w and reads multiple lines until an empty
// line is entered (i.e., the user presses Enter twice) or input ends.
func GetMultiline(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n(press Enter on an empty line to finish)\n"); err != nil {
		return "", err
	}

	var lines []string
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		lines = append(lines, line)
		if err != nil {
			break
		}
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}

// ReadPiped returns everything left on reader with trailing newlines removed.
func ReadPiped(reader *bufio.Reader) (string, error) {
	b, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}

// terminalPrompter implements services.Prompter. Secrets are read without
// echo from stdin when it is a terminal, otherwise from /dev/tty, so note
// text can be piped in while the password is typed.
type terminalPrompter struct {
	in  io.Reader
	out io.Writer
}

func newTerminalPrompter(in io.Reader, out io.Writer) *terminalPrompter {
	return &terminalPrompter{in: in, out: out}
}

func (p *terminalPrompter) PromptSecret(label string) (string, error) {
	if _, err := fmt.Fprint(p.out, label+" "); err != nil {
		return "", err
	}
	pw, err := p.readSecret()
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func (p *terminalPrompter) readSecret() ([]byte, error) {
	if f, ok := p.in.(*os.File); ok && isTerminal(int(f.Fd())) {
		return readPassword(int(f.Fd()))
	}

	tty, err := openTTY()
	if err != nil {
		return nil, fmt.Errorf("cannot open terminal for password input: %w", err)
	}
	defer tty.Close()

	if !isTerminal(int(tty.Fd())) {
		return nil, errors.New("password input requires a terminal")
	}
	return readPassword(int(tty.Fd()))
}
