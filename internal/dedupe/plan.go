// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedupe

import "fmt"

// RetentionChoice maps a group key to the ID of the member to keep.
type RetentionChoice map[string]string

// PlanGroup is the per-group breakdown of a Plan, shown to the operator.
type PlanGroup struct {
	Key    string   `json:"key" yaml:"key"`
	Retain string   `json:"retain" yaml:"retain"`
	Delete []string `json:"delete" yaml:"delete"`
}

// Plan is the reviewable set of deletions for one collection. Retained and
// deleted IDs are disjoint and together cover every group member.
type Plan struct {
	Collection string      `json:"collection" yaml:"collection"`
	Groups     []PlanGroup `json:"groups" yaml:"groups"`
	Delete     []string    `json:"delete" yaml:"delete"`
}

// Retained returns the retained IDs in group order.
func (p *Plan) Retained() []string {
	ids := make([]string, len(p.Groups))
	for i, g := range p.Groups {
		ids[i] = g.Retain
	}
	return ids
}

// Len returns the number of documents the plan deletes.
func (p *Plan) Len() int {
	return len(p.Delete)
}

// BuildPlan computes, for each group, the members other than the retained
// one. It fails before anything is deleted if a group has no retained ID or
// the retained ID is not a member.
func BuildPlan(collection string, groups []Group, retained RetentionChoice) (*Plan, error) {
	plan := &Plan{Collection: collection}
	for _, g := range groups {
		keep, ok := retained[g.Key]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingRetention, g.Key)
		}
		if !g.Has(keep) {
			return nil, fmt.Errorf("%w: %s in group %q", ErrInvalidSelection, keep, g.Key)
		}

		pg := PlanGroup{Key: g.Key, Retain: keep}
		for _, m := range g.Members {
			if m.ID == keep {
				continue
			}
			pg.Delete = append(pg.Delete, m.ID)
		}
		plan.Groups = append(plan.Groups, pg)
		plan.Delete = append(plan.Delete, pg.Delete...)
	}
	return plan, nil
}
