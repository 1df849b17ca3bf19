// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reconcile runs deduplication profiles against a document store:
// it scans collections into dedupe sessions, applies confirmed plans with
// the configured pacing, verifies the result and exports plans for review.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pdiddy/careerlink/internal/dedupe"
	"github.com/pdiddy/careerlink/internal/docstore"
	"github.com/pdiddy/careerlink/internal/profile"
	"github.com/pdiddy/careerlink/pkg/types"
)

// ErrApprovalExceeded is returned by Cleanup when a rescan proposes more
// deletions than remain of the approved total.
var ErrApprovalExceeded = errors.New("more deletions proposed than approved")

// Run pairs a profile with the session scanned for it.
type Run struct {
	Profile profile.Profile
	Session *dedupe.Session
}

// Summary holds the counts reported for one scanned profile.
type Summary struct {
	Profile    string `json:"profile" yaml:"profile"`
	Collection string `json:"collection" yaml:"collection"`
	Scanned    int    `json:"scanned" yaml:"scanned"`
	Groups     int    `json:"groups" yaml:"groups"`
	Duplicates int    `json:"duplicates" yaml:"duplicates"`
}

// Summary returns the counts for r.
func (r Run) Summary() Summary {
	return Summary{
		Profile:    r.Profile.Name,
		Collection: r.Profile.Collection,
		Scanned:    r.Session.Scanned(),
		Groups:     len(r.Session.Groups()),
		Duplicates: dedupe.CountDuplicates(r.Session.Groups()),
	}
}

// Service binds a store to the profile registry.
type Service struct {
	store    docstore.Store
	profiles *profile.Registry
	cfg      types.ReconcileConfig
	log      *slog.Logger
}

// NewService returns a Service. A nil logger discards records.
func NewService(store docstore.Store, profiles *profile.Registry, cfg types.ReconcileConfig, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Service{store: store, profiles: profiles, cfg: cfg, log: log}
}

// Profiles returns the registry the service resolves names against.
func (s *Service) Profiles() *profile.Registry {
	return s.profiles
}

// Scan loads the profile's collection, groups it and proposes a
// representative for every group with the profile's policy.
func (s *Service) Scan(ctx context.Context, name string) (*Run, error) {
	p, err := s.profiles.Lookup(name)
	if err != nil {
		return nil, err
	}
	docs, err := s.store.List(ctx, p.Collection)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", p.Collection, err)
	}

	sess := dedupe.NewSession(p.Collection, docs, p.KeyFunc())
	if err := sess.Retain(p.Policy()); err != nil {
		return nil, fmt.Errorf("selecting representatives for %s: %w", p.Name, err)
	}
	run := &Run{Profile: p, Session: sess}
	sum := run.Summary()
	s.log.Info("scanned collection", "profile", p.Name, "collection", p.Collection,
		"session", sess.ID, "scanned", sum.Scanned, "groups", sum.Groups, "duplicates", sum.Duplicates)
	return run, nil
}

// ScanAll scans every registered profile in registration order.
func (s *Service) ScanAll(ctx context.Context) ([]*Run, error) {
	var runs []*Run
	for _, p := range s.profiles.All() {
		run, err := s.Scan(ctx, p.Name)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// CleanupResult totals a Cleanup across collections.
type CleanupResult struct {
	Reports   []*dedupe.Report
	Requested int
	Succeeded int
	Failed    int
}

// Cleanup reconciles every profile in registration order with its
// automatic picks, writing progress and reports to out. Each profile is
// rescanned right before its plan is built, so a profile sharing a
// collection with an earlier one only sees the documents that one kept.
// approved caps the total number of deletions across all profiles.
func (s *Service) Cleanup(ctx context.Context, approved int, out io.Writer) (CleanupResult, error) {
	var res CleanupResult
	for _, p := range s.profiles.All() {
		run, err := s.Scan(ctx, p.Name)
		if err != nil {
			return res, err
		}
		if len(run.Session.Groups()) == 0 {
			continue
		}
		plan, err := run.Session.BuildPlan()
		if err != nil {
			return res, err
		}
		if remaining := approved - res.Requested; plan.Len() > remaining {
			return res, fmt.Errorf("%w: %s proposes %d deletion(s), %d remain approved",
				ErrApprovalExceeded, p.Name, plan.Len(), remaining)
		}
		if err := run.Session.Confirm(plan.Len()); err != nil {
			return res, err
		}

		fmt.Fprintf(out, "\n%s: deleting %d document(s) from %s\n", p.Name, plan.Len(), p.Collection)
		report, err := s.Execute(ctx, run, ProgressWriter(out, 10))
		if report != nil {
			WriteReport(out, report)
			res.Reports = append(res.Reports, report)
			res.Requested += report.Requested
			res.Succeeded += report.Succeeded
			res.Failed += len(report.Failed)
		}
		if err != nil {
			return res, err
		}
	}
	return res, nil
}

// Limiter returns the delete pacing limiter, or nil when pacing is off.
func (s *Service) Limiter() *rate.Limiter {
	if s.cfg.DeleteRate <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(s.cfg.DeleteRate), max(s.cfg.DeleteBurst, 1))
}

// Execute applies a confirmed session through the store. A document that
// disappeared since the scan counts as a failure for that item only.
func (s *Service) Execute(ctx context.Context, run *Run, progress dedupe.ProgressFunc) (*dedupe.Report, error) {
	return run.Session.Execute(ctx, s.store.Delete, dedupe.ExecuteOptions{
		Progress: progress,
		Limiter:  s.Limiter(),
		Logger:   s.log.With("profile", run.Profile.Name, "session", run.Session.ID),
	})
}

// Verify rescans the profile and returns the duplicate groups that remain.
func (s *Service) Verify(ctx context.Context, name string) ([]dedupe.Group, error) {
	run, err := s.Scan(ctx, name)
	if err != nil {
		return nil, err
	}
	groups := run.Session.Groups()
	if len(groups) > 0 {
		s.log.Warn("duplicates remain after reconciliation", "profile", name, "groups", len(groups))
	}
	return groups, nil
}

// Check returns the documents of the profile's collection whose grouping
// key matches values, one value per key field. It lets a writer test for an
// existing record before inserting a new one.
func (s *Service) Check(ctx context.Context, name string, values ...string) ([]types.Document, error) {
	p, err := s.profiles.Lookup(name)
	if err != nil {
		return nil, err
	}
	if len(values) != len(p.KeyFields) {
		return nil, fmt.Errorf("profile %s keys on %s: got %d value(s), want %d",
			p.Name, strings.Join(p.KeyFields, ", "), len(values), len(p.KeyFields))
	}

	candidate := types.Document{Fields: make(map[string]any, len(values))}
	for i, f := range p.KeyFields {
		candidate.Fields[f] = values[i]
	}
	key := p.KeyFunc()
	want := key(candidate)
	if want == "" {
		return nil, errors.New("key values must not be blank")
	}

	docs, err := s.store.List(ctx, p.Collection)
	if err != nil {
		return nil, fmt.Errorf("checking %s: %w", p.Collection, err)
	}
	var matches []types.Document
	for _, d := range docs {
		if key(d) == want {
			matches = append(matches, d)
		}
	}
	return matches, nil
}

// ApplyRetention overrides the session's picks with choice, typically read
// back from an edited export. Keys that no longer name a duplicate group
// are skipped and returned so the caller can report them.
func (s *Service) ApplyRetention(run *Run, choice dedupe.RetentionChoice) ([]string, error) {
	var stale []string
	for _, g := range run.Session.Groups() {
		id, ok := choice[g.Key]
		if !ok || id == "" {
			continue
		}
		if err := run.Session.Override(g.Key, id); err != nil {
			return nil, err
		}
	}
	for key := range choice {
		if _, ok := run.Session.Group(key); !ok {
			stale = append(stale, key)
		}
	}
	slices.Sort(stale)
	if len(stale) > 0 {
		s.log.Warn("retention picks for unknown groups ignored", "profile", run.Profile.Name, "keys", stale)
	}
	return stale, nil
}
