// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reconcile

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/pdiddy/careerlink/internal/dedupe"
)

var (
	keepColor   = color.New(color.FgGreen)
	deleteColor = color.New(color.FgRed)
	headColor   = color.New(color.FgCyan, color.Bold)
	warnColor   = color.New(color.FgYellow)
)

// WriteSummaries prints one line per scanned profile and a total.
func WriteSummaries(w io.Writer, sums []Summary) {
	headColor.Fprintf(w, "%-14s %-14s %8s %7s %11s\n", "PROFILE", "COLLECTION", "SCANNED", "GROUPS", "DUPLICATES")
	total := 0
	for _, s := range sums {
		line := fmt.Sprintf("%-14s %-14s %8d %7d %11d", s.Profile, s.Collection, s.Scanned, s.Groups, s.Duplicates)
		if s.Duplicates > 0 {
			warnColor.Fprintln(w, line)
		} else {
			fmt.Fprintln(w, line)
		}
		total += s.Duplicates
	}
	fmt.Fprintf(w, "\n%d duplicate document(s) across %d profile(s)\n", total, len(sums))
}

// WritePlan prints every duplicate group of run with its members, marking
// the retained member KEEP and the rest DELETE. Groups are numbered from 1.
func WritePlan(w io.Writer, run *Run) {
	sess := run.Session
	retained := sess.Retained()
	groups := sess.Groups()

	headColor.Fprintf(w, "%s: %d duplicate group(s) in %s (%s policy)\n",
		run.Profile.Name, len(groups), run.Profile.Collection, run.Profile.Policy().Name())
	for i, g := range groups {
		WriteGroup(w, i+1, g, retained[g.Key])
	}
	fmt.Fprintf(w, "\n%d document(s) will be deleted\n", dedupe.CountDuplicates(groups))
}

// WriteGroup prints one numbered group. Members are numbered from 1 as well.
func WriteGroup(w io.Writer, n int, g dedupe.Group, keep string) {
	fmt.Fprintf(w, "\n[%d] %s\n", n, strings.ReplaceAll(g.Key, "|", " / "))
	for j, m := range g.Members {
		created := "-"
		if !m.CreatedAt.IsZero() {
			created = m.CreatedAt.UTC().Format("2006-01-02 15:04")
		}
		if m.ID == keep {
			keepColor.Fprintf(w, "  %d. KEEP   %-24s %-16s %s\n", j+1, m.ID, created, m.Label())
		} else {
			deleteColor.Fprintf(w, "  %d. DELETE %-24s %-16s %s\n", j+1, m.ID, created, m.Label())
		}
	}
}

// WriteReport prints the outcome of an execution.
func WriteReport(w io.Writer, r *dedupe.Report) {
	switch r.Status() {
	case dedupe.StatusCompleted:
		keepColor.Fprintf(w, "Deleted %d of %d document(s) from %s\n", r.Succeeded, r.Requested, r.Collection)
	case dedupe.StatusCompletedWithErrors:
		warnColor.Fprintf(w, "Deleted %d of %d document(s) from %s; %d failed\n",
			r.Succeeded, r.Requested, r.Collection, len(r.Failed))
	case dedupe.StatusCancelled:
		warnColor.Fprintf(w, "Cancelled: deleted %d, failed %d, skipped %d of %d document(s) from %s\n",
			r.Succeeded, len(r.Failed), r.Skipped, r.Requested, r.Collection)
	}
	for _, f := range r.Failed {
		deleteColor.Fprintf(w, "  FAILED %s: %v\n", f.ID, f.Err)
	}
}

// ProgressWriter returns a ProgressFunc that prints a counter line to w
// every step deletes and at the end.
func ProgressWriter(w io.Writer, step int) dedupe.ProgressFunc {
	if step < 1 {
		step = 1
	}
	return func(done, total int) {
		if done%step == 0 || done == total {
			fmt.Fprintf(w, "  processed %d/%d\n", done, total)
		}
	}
}
