// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package review

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/careerlink/internal/dedupe"
	"github.com/pdiddy/careerlink/internal/docstore"
	"github.com/pdiddy/careerlink/internal/profile"
	"github.com/pdiddy/careerlink/internal/reconcile"
	"github.com/pdiddy/careerlink/pkg/types"
)

func init() {
	color.NoColor = true
}

func newReviewer(t *testing.T) (*Reviewer, *reconcile.Run, *bytes.Buffer) {
	t.Helper()
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	for _, d := range []types.Document{
		{ID: "j-1", Collection: "jobs", Fields: map[string]any{"title": "Bank Teller", "companyId": "c-1", "createdAt": "2024-02-01"}},
		{ID: "j-2", Collection: "jobs", Fields: map[string]any{"title": "bank teller", "companyId": "c-1", "createdAt": "2024-05-01"}},
		{ID: "j-3", Collection: "jobs", Fields: map[string]any{"title": "Nurse", "companyId": "c-2", "createdAt": "2024-06-01"}},
		{ID: "j-4", Collection: "jobs", Fields: map[string]any{"title": "Nurse", "companyId": "c-2", "createdAt": "2024-01-01"}},
	} {
		require.NoError(t, store.Put(ctx, d))
	}
	reg, err := profile.NewRegistry(nil)
	require.NoError(t, err)
	run, err := reconcile.NewService(store, reg, types.ReconcileConfig{}, nil).Scan(ctx, "jobs")
	require.NoError(t, err)

	var out bytes.Buffer
	return New(run, &out), run, &out
}

func TestHandleKeepByMemberNumber(t *testing.T) {
	r, run, out := newReviewer(t)
	assert.Equal(t, "j-2", run.Session.Retained()["bank teller|c-1"])

	require.NoError(t, r.Handle("keep 1 1"))
	assert.Equal(t, "j-1", run.Session.Retained()["bank teller|c-1"])
	assert.Contains(t, out.String(), "group 1 keeps j-1")
}

func TestHandleKeepByID(t *testing.T) {
	r, run, _ := newReviewer(t)
	require.NoError(t, r.Handle("keep 2 j-4"))
	assert.Equal(t, "j-4", run.Session.Retained()["nurse|c-2"])
}

func TestHandleRejectsBadInput(t *testing.T) {
	r, run, _ := newReviewer(t)

	assert.ErrorContains(t, r.Handle("keep 3 1"), "from 1 to 2")
	assert.ErrorContains(t, r.Handle("keep one 1"), "from 1 to 2")
	assert.ErrorIs(t, r.Handle("keep 1 j-3"), dedupe.ErrInvalidSelection)
	assert.ErrorContains(t, r.Handle("keep 1"), "usage")
	assert.ErrorContains(t, r.Handle("frobnicate"), "unknown command")
	assert.Equal(t, "j-2", run.Session.Retained()["bank teller|c-1"])
}

func TestHandleListAndShow(t *testing.T) {
	r, _, out := newReviewer(t)

	require.NoError(t, r.Handle("list"))
	assert.Contains(t, out.String(), "jobs: 2 duplicate group(s)")

	out.Reset()
	require.NoError(t, r.Handle("show 2"))
	assert.Contains(t, out.String(), "[2] nurse / c-2")
	assert.Contains(t, out.String(), "1. KEEP   j-3")

	out.Reset()
	require.NoError(t, r.Handle("help"))
	assert.Contains(t, out.String(), "keep <group> <member>")

	assert.NoError(t, r.Handle("   "))
}

func TestHandleDoneAndQuit(t *testing.T) {
	r, _, _ := newReviewer(t)
	assert.ErrorIs(t, r.Handle("done"), errDone)
	assert.ErrorIs(t, r.Handle("quit"), ErrAborted)
}

// scriptedLines replays fixed input lines and records the prompts shown.
type scriptedLines struct {
	lines   []string
	prompts []string
	closed  bool
}

func (s *scriptedLines) Readline() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	if line == "^C" {
		return "", readline.ErrInterrupt
	}
	return line, nil
}

func (s *scriptedLines) SetPrompt(p string) { s.prompts = append(s.prompts, p) }

func (s *scriptedLines) Close() error {
	s.closed = true
	return nil
}

func TestRunThenYesNoShareTheTerminal(t *testing.T) {
	r, run, _ := newReviewer(t)
	lines := &scriptedLines{lines: []string{"keep 1 j-1", "^C", "done", "y"}}
	r.lines = lines

	require.NoError(t, r.Run())
	assert.Equal(t, "j-1", run.Session.Retained()["bank teller|c-1"])

	ok, err := r.YesNo("Delete 2 document(s) from jobs?")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Delete 2 document(s) from jobs? [y/N]: ", lines.prompts[len(lines.prompts)-1])

	require.NoError(t, r.Close())
	assert.True(t, lines.closed)
}

func TestRunEndOfInputAborts(t *testing.T) {
	r, _, _ := newReviewer(t)
	r.lines = &scriptedLines{}
	assert.ErrorIs(t, r.Run(), ErrAborted)
}

func TestYesNoDeclines(t *testing.T) {
	for _, input := range [][]string{{"n"}, {""}, {"^C"}, nil} {
		r, _, _ := newReviewer(t)
		r.lines = &scriptedLines{lines: input}
		ok, err := r.YesNo("Delete?")
		require.NoError(t, err)
		assert.False(t, ok, "%q", input)
	}
}
