// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package confirm asks the operator to approve destructive actions.
package confirm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter writes questions to a terminal and reads the answers.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New returns a Prompter over in and out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// YesNo prints question followed by [y/N] and reports whether the answer
// was y or yes. End of input counts as no.
func (p *Prompter) YesNo(question string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", question)
	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	return IsYes(answer), nil
}

// IsYes reports whether answer is y or yes, ignoring case and surrounding
// space.
func IsYes(answer string) bool {
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes"
}

// Phrase asks the operator to type phrase exactly and reports whether
// they did.
func (p *Prompter) Phrase(question, phrase string) (bool, error) {
	fmt.Fprintf(p.out, "%s\nType %q to continue: ", question, phrase)
	answer, err := p.readLine()
	if err != nil {
		return false, err
	}
	return answer == phrase, nil
}

// DeletePhrase is the phrase typed to approve deleting n documents.
func DeletePhrase(n int) string {
	return fmt.Sprintf("DELETE %d", n)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
