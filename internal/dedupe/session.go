// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedupe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/careerlink/pkg/types"
)

// State is the position of a Session in its lifecycle.
type State string

const (
	StateScanned             State = "scanned"
	StatePlanBuilt           State = "plan_built"
	StateConfirmed           State = "confirmed"
	StateExecuting           State = "executing"
	StateCompleted           State = "completed"
	StateCompletedWithErrors State = "completed_with_errors"
	StateCancelled           State = "cancelled"
)

// Session is one reconciliation run over a collection snapshot:
//
//	scanned -> plan_built -> confirmed -> executing -> completed | completed_with_errors
//
// Retention picks may be changed until the plan is built. A session is not
// safe for concurrent use and is never persisted.
type Session struct {
	ID         string
	Collection string
	StartedAt  time.Time

	state    State
	scanned  int
	groups   []Group
	retained RetentionChoice
	plan     *Plan
	report   *Report
}

// NewSession scans docs under key and returns a session in the scanned state.
func NewSession(collection string, docs []types.Document, key KeyFunc) *Session {
	return &Session{
		ID:         uuid.NewString(),
		Collection: collection,
		StartedAt:  time.Now().UTC(),
		state:      StateScanned,
		scanned:    len(docs),
		groups:     FindGroups(docs, key),
		retained:   RetentionChoice{},
	}
}

func (s *Session) State() State              { return s.state }
func (s *Session) Scanned() int              { return s.scanned }
func (s *Session) Groups() []Group           { return s.groups }
func (s *Session) Plan() *Plan               { return s.plan }
func (s *Session) Report() *Report           { return s.report }
func (s *Session) Retained() RetentionChoice { return s.retained }

// Group returns the duplicate group with the given key.
func (s *Session) Group(key string) (Group, bool) {
	for _, g := range s.groups {
		if g.Key == key {
			return g, true
		}
	}
	return Group{}, false
}

func (s *Session) expect(want State) error {
	if s.state != want {
		return fmt.Errorf("%w: session is %s, need %s", ErrInvalidState, s.state, want)
	}
	return nil
}

// Retain proposes a representative for every group using policy,
// replacing earlier picks.
func (s *Session) Retain(policy Policy) error {
	if err := s.expect(StateScanned); err != nil {
		return err
	}
	choice, err := AutoRetain(s.groups, policy)
	if err != nil {
		return err
	}
	s.retained = choice
	return nil
}

// Override records an operator's pick for one group.
func (s *Session) Override(key, id string) error {
	if err := s.expect(StateScanned); err != nil {
		return err
	}
	g, ok := s.Group(key)
	if !ok {
		return fmt.Errorf("no duplicate group %q", key)
	}
	keep, err := SelectRepresentative(g.Members, Manual{ID: id})
	if err != nil {
		return fmt.Errorf("group %q: %w", key, err)
	}
	s.retained[key] = keep
	return nil
}

// BuildPlan freezes the retention picks into a plan.
func (s *Session) BuildPlan() (*Plan, error) {
	if err := s.expect(StateScanned); err != nil {
		return nil, err
	}
	plan, err := BuildPlan(s.Collection, s.groups, s.retained)
	if err != nil {
		return nil, err
	}
	s.plan = plan
	s.state = StatePlanBuilt
	return plan, nil
}

// Confirm records operator approval. count is the number of deletions the
// operator was shown and must match the plan.
func (s *Session) Confirm(count int) error {
	if err := s.expect(StatePlanBuilt); err != nil {
		return err
	}
	if count != s.plan.Len() {
		return fmt.Errorf("%w: confirmed %d deletions, plan has %d", ErrNotConfirmed, count, s.plan.Len())
	}
	s.state = StateConfirmed
	return nil
}

// Execute applies the confirmed plan. opts.Confirmed is implied by the
// session state.
func (s *Session) Execute(ctx context.Context, del DeleteFunc, opts ExecuteOptions) (*Report, error) {
	if err := s.expect(StateConfirmed); err != nil {
		return nil, err
	}
	s.state = StateExecuting
	opts.Confirmed = true

	report, err := Execute(ctx, s.plan, del, opts)
	s.report = report
	switch {
	case report == nil:
		s.state = StateConfirmed
	case report.Status() == StatusCancelled || errors.Is(err, context.Canceled):
		s.state = StateCancelled
	case report.Status() == StatusCompletedWithErrors:
		s.state = StateCompletedWithErrors
	default:
		s.state = StateCompleted
	}
	return report, err
}
