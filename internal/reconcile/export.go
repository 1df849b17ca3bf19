// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reconcile

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/careerlink/internal/dedupe"
)

// ExportRun is the reviewable form of a run written by scan --json and
// scan --export.
type ExportRun struct {
	Session    string        `json:"session" yaml:"session"`
	Profile    string        `json:"profile" yaml:"profile"`
	Collection string        `json:"collection" yaml:"collection"`
	Policy     string        `json:"policy" yaml:"policy"`
	StartedAt  time.Time     `json:"started_at" yaml:"started_at"`
	State      string        `json:"state" yaml:"state"`
	Scanned    int           `json:"scanned" yaml:"scanned"`
	Groups     []ExportGroup `json:"groups" yaml:"groups"`
	Delete     []string      `json:"delete" yaml:"delete"`
	Report     *ExportReport `json:"report,omitempty" yaml:"report,omitempty"`
}

// ExportGroup is one duplicate group with the proposed retention.
type ExportGroup struct {
	Key     string         `json:"key" yaml:"key"`
	Retain  string         `json:"retain" yaml:"retain"`
	Members []ExportMember `json:"members" yaml:"members"`
}

// ExportMember describes one group member.
type ExportMember struct {
	ID        string    `json:"id" yaml:"id"`
	Label     string    `json:"label" yaml:"label"`
	CreatedAt time.Time `json:"created_at,omitzero" yaml:"created_at,omitempty"`
	Score     *int      `json:"score,omitempty" yaml:"score,omitempty"`
}

// ExportReport is the outcome of an executed plan.
type ExportReport struct {
	Status    string          `json:"status" yaml:"status"`
	Requested int             `json:"requested" yaml:"requested"`
	Succeeded int             `json:"succeeded" yaml:"succeeded"`
	Skipped   int             `json:"skipped" yaml:"skipped"`
	Failed    []ExportFailure `json:"failed" yaml:"failed"`
}

// ExportFailure is one failed delete.
type ExportFailure struct {
	ID    string `json:"id" yaml:"id"`
	Error string `json:"error" yaml:"error"`
}

// NewExport builds the export view of run. Delete lists the IDs the
// current retention would remove, whether or not a plan has been built.
func NewExport(run *Run) ExportRun {
	sess := run.Session
	p := run.Profile
	policy := p.Policy()
	retained := sess.Retained()

	out := ExportRun{
		Session:    sess.ID,
		Profile:    p.Name,
		Collection: p.Collection,
		Policy:     policy.Name(),
		StartedAt:  sess.StartedAt,
		State:      string(sess.State()),
		Scanned:    sess.Scanned(),
		Groups:     []ExportGroup{},
		Delete:     []string{},
	}

	for _, g := range sess.Groups() {
		eg := ExportGroup{Key: g.Key, Retain: retained[g.Key]}
		for _, m := range g.Members {
			em := ExportMember{ID: m.ID, Label: m.Label(), CreatedAt: m.CreatedAt}
			if c, ok := policy.(dedupe.Completeness); ok {
				score := dedupe.CompletenessScore(m, c.Fields)
				em.Score = &score
			}
			eg.Members = append(eg.Members, em)
			if m.ID != eg.Retain {
				out.Delete = append(out.Delete, m.ID)
			}
		}
		out.Groups = append(out.Groups, eg)
	}

	if r := sess.Report(); r != nil {
		er := &ExportReport{
			Status:    string(r.Status()),
			Requested: r.Requested,
			Succeeded: r.Succeeded,
			Skipped:   r.Skipped,
			Failed:    make([]ExportFailure, len(r.Failed)),
		}
		for i, f := range r.Failed {
			er.Failed[i] = ExportFailure{ID: f.ID, Error: f.Err.Error()}
		}
		out.Report = er
	}
	return out
}

// WriteJSON writes the export views of runs as an indented JSON array.
func WriteJSON(w io.Writer, runs []*Run) error {
	views := make([]ExportRun, len(runs))
	for i, r := range runs {
		views[i] = NewExport(r)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(views)
}

// exportBase returns the path, without extension, of run's export files.
func exportBase(dir string, run *Run) string {
	stamp := run.Session.StartedAt.UTC().Format("20060102-150405")
	return filepath.Join(dir, fmt.Sprintf("%s-%s", run.Profile.Name, stamp))
}

// ExportYAML writes run to <dir>/<profile>-<timestamp>.yaml and returns the
// path written.
func ExportYAML(dir string, run *Run) (string, error) {
	data, err := yaml.Marshal(NewExport(run))
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return writeExport(exportBase(dir, run)+".yaml", data)
}

// ExportJSON writes run to <dir>/<profile>-<timestamp>.json and returns the
// path written.
func ExportJSON(dir string, run *Run) (string, error) {
	data, err := json.MarshalIndent(NewExport(run), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return writeExport(exportBase(dir, run)+".json", data)
}

func writeExport(path string, data []byte) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

// LoadExport reads an export written by ExportYAML or ExportJSON. The
// format follows the file extension.
func LoadExport(path string) (ExportRun, error) {
	var out ExportRun
	data, err := os.ReadFile(path)
	if err != nil {
		return out, err
	}
	if filepath.Ext(path) == ".json" {
		err = json.Unmarshal(data, &out)
	} else {
		err = yaml.Unmarshal(data, &out)
	}
	if err != nil {
		return out, fmt.Errorf("parsing %s: %w", path, err)
	}
	return out, nil
}

// Retention returns the retention picks recorded in an export, keyed by
// group key.
func (e ExportRun) Retention() dedupe.RetentionChoice {
	choice := make(dedupe.RetentionChoice, len(e.Groups))
	for _, g := range e.Groups {
		choice[g.Key] = g.Retain
	}
	return choice
}
