package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// prompter reads one trimmed line per prompt.
type prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{scanner: bufio.NewScanner(in), out: out}
}

// ask writes label and returns the next line. ok is false at end of input.
func (p *prompter) ask(label string) (string, bool) {
	fmt.Fprint(p.out, label)
	if !p.scanner.Scan() {
		fmt.Fprintln(p.out)
		return "", false
	}
	return strings.TrimSpace(p.scanner.Text()), true
}

func isQuit(s string) bool {
	switch strings.ToLower(s) {
	case "quit", "exit", "q":
		return true
	}
	return false
}

func isHelp(s string) bool {
	switch strings.ToLower(s) {
	case "help", "h":
		return true
	}
	return false
}

func banner(out io.Writer, title string) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, separator)
	fmt.Fprintln(out, title)
	fmt.Fprintln(out, separator)
}
