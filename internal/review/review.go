// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package review lets an operator walk the duplicate groups of a scanned
// run and change which member is kept before the plan is built.
package review

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/pdiddy/careerlink/internal/confirm"
	"github.com/pdiddy/careerlink/internal/dedupe"
	"github.com/pdiddy/careerlink/internal/reconcile"
)

// ErrAborted is returned when the operator leaves without accepting.
var ErrAborted = errors.New("review aborted")

// errDone ends the loop after the operator accepts.
var errDone = errors.New("done")

// lineReader is the part of *readline.Instance the review uses.
type lineReader interface {
	Readline() (string, error)
	SetPrompt(prompt string)
	Close() error
}

// Reviewer holds the run under review and the terminal it reads from.
type Reviewer struct {
	run   *reconcile.Run
	out   io.Writer
	lines lineReader
}

// New returns a Reviewer writing to out.
func New(run *reconcile.Run, out io.Writer) *Reviewer {
	return &Reviewer{run: run, out: out}
}

func (r *Reviewer) prompt() string {
	return color.New(color.FgCyan).Sprint(r.run.Profile.Name + "> ")
}

func (r *Reviewer) open() error {
	if r.lines != nil {
		return nil
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            r.prompt(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "quit",
		HistorySearchFold: true,
		Stdout:            r.out,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	r.lines = rl
	return nil
}

// Close releases the terminal. Call it after the last YesNo.
func (r *Reviewer) Close() error {
	if r.lines == nil {
		return nil
	}
	return r.lines.Close()
}

// Run reads commands until the operator accepts (nil) or quits
// (ErrAborted). Ctrl+C redraws the prompt; Ctrl+D aborts. The terminal
// stays open for YesNo until Close.
func (r *Reviewer) Run() error {
	if err := r.open(); err != nil {
		return err
	}
	r.lines.SetPrompt(r.prompt())

	reconcile.WritePlan(r.out, r.run)
	fmt.Fprintln(r.out, "\nType 'help' for commands, 'done' to accept the plan.")

	for {
		line, err := r.lines.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				return ErrAborted
			}
			return err
		}
		if err := r.Handle(line); err != nil {
			switch {
			case errors.Is(err, errDone):
				return nil
			case errors.Is(err, ErrAborted):
				return err
			}
			red := color.New(color.FgRed).SprintFunc()
			fmt.Fprintf(r.out, "%s %v\n", red("Error:"), err)
		}
	}
}

// YesNo asks question on the review's terminal and reports whether the
// answer was y or yes. Ctrl+C and Ctrl+D count as no.
func (r *Reviewer) YesNo(question string) (bool, error) {
	if err := r.open(); err != nil {
		return false, err
	}
	r.lines.SetPrompt(question + " [y/N]: ")
	line, err := r.lines.Readline()
	switch {
	case err == readline.ErrInterrupt || err == io.EOF:
		return false, nil
	case err != nil:
		return false, err
	}
	return confirm.IsYes(line), nil
}

// Handle executes one command line.
func (r *Reviewer) Handle(line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}
	args := parts[1:]

	switch parts[0] {
	case "help", "?":
		r.help()
		return nil
	case "list", "ls":
		reconcile.WritePlan(r.out, r.run)
		return nil
	case "show":
		if len(args) != 1 {
			return errors.New("usage: show <group>")
		}
		n, g, err := r.group(args[0])
		if err != nil {
			return err
		}
		reconcile.WriteGroup(r.out, n, g, r.run.Session.Retained()[g.Key])
		return nil
	case "keep":
		if len(args) != 2 {
			return errors.New("usage: keep <group> <member number or id>")
		}
		return r.keep(args[0], args[1])
	case "done", "accept":
		return errDone
	case "quit", "exit", "abort":
		return ErrAborted
	default:
		return fmt.Errorf("unknown command %q (try 'help')", parts[0])
	}
}

func (r *Reviewer) group(arg string) (int, dedupe.Group, error) {
	groups := r.run.Session.Groups()
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(groups) {
		return 0, dedupe.Group{}, fmt.Errorf("group must be a number from 1 to %d", len(groups))
	}
	return n, groups[n-1], nil
}

func (r *Reviewer) keep(groupArg, memberArg string) error {
	n, g, err := r.group(groupArg)
	if err != nil {
		return err
	}
	id := memberArg
	if m, err := strconv.Atoi(memberArg); err == nil && m >= 1 && m <= len(g.Members) && !g.Has(memberArg) {
		id = g.Members[m-1].ID
	}
	if err := r.run.Session.Override(g.Key, id); err != nil {
		return err
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Fprintf(r.out, "%s group %d keeps %s\n", green("✓"), n, id)
	return nil
}

func (r *Reviewer) help() {
	commands := []struct{ name, desc string }{
		{"list", "show every group and the current picks"},
		{"show <group>", "show one group"},
		{"keep <group> <member>", "keep a member, by number or document ID"},
		{"done", "accept the picks and continue"},
		{"quit", "leave without deleting anything"},
	}
	green := color.New(color.FgGreen).SprintFunc()
	for _, c := range commands {
		fmt.Fprintf(r.out, "  %-24s %s\n", green(c.name), c.desc)
	}
}
