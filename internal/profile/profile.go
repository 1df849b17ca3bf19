// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package profile defines the deduplication profiles of the career-guidance
// platform: which collection to scan, how to build the grouping key and
// which policy proposes the record to keep.
package profile

import (
	"fmt"
	"slices"
	"sort"

	"github.com/pdiddy/careerlink/internal/dedupe"
	"github.com/pdiddy/careerlink/pkg/types"
)

// DefaultTimestampField is read by the recency policy when a profile does
// not name one.
const DefaultTimestampField = "createdAt"

// Profile is a validated deduplication profile.
type Profile struct {
	types.ProfileConfig
}

// KeyFunc returns the grouping key function for the profile.
func (p Profile) KeyFunc() dedupe.KeyFunc {
	return dedupe.FieldKey(p.KeyFields...)
}

// Policy returns the automatic selection policy for the profile.
func (p Profile) Policy() dedupe.Policy {
	if p.ProfileConfig.Policy == types.PolicyRecency {
		field := p.TimestampField
		if field == "" {
			field = DefaultTimestampField
		}
		return dedupe.Recency{Field: field}
	}
	return dedupe.Completeness{Fields: p.ScoreFields}
}

// Validate reports the first problem with the profile.
func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile: name is required")
	}
	if p.Collection == "" {
		return fmt.Errorf("profile %s: collection is required", p.Name)
	}
	if len(p.KeyFields) == 0 {
		return fmt.Errorf("profile %s: at least one key field is required", p.Name)
	}
	if slices.Contains(p.KeyFields, "") {
		return fmt.Errorf("profile %s: key fields must not be empty", p.Name)
	}
	switch p.ProfileConfig.Policy {
	case types.PolicyCompleteness:
		if len(p.ScoreFields) == 0 {
			return fmt.Errorf("profile %s: completeness policy needs score_fields", p.Name)
		}
	case types.PolicyRecency:
	default:
		return fmt.Errorf("profile %s: unknown policy %q (use completeness or recency)", p.Name, p.ProfileConfig.Policy)
	}
	return nil
}

// Builtin returns the profiles for the platform's collections.
func Builtin() []Profile {
	return []Profile{
		{types.ProfileConfig{
			Name:        "institutions",
			Collection:  types.CollectionInstitutions,
			KeyFields:   []string{"name"},
			Policy:      types.PolicyCompleteness,
			ScoreFields: []string{"address", "phone", "email", "website", "description", "location"},
		}},
		{types.ProfileConfig{
			Name:       "users",
			Collection: types.CollectionUsers,
			KeyFields:  []string{"email"},
			Policy:     types.PolicyRecency,
		}},
		{types.ProfileConfig{
			Name:        "companies",
			Collection:  types.CollectionCompanies,
			KeyFields:   []string{"name"},
			Policy:      types.PolicyCompleteness,
			ScoreFields: []string{"address", "phone", "email", "website", "description", "industry"},
		}},
		{types.ProfileConfig{
			Name:        "courses",
			Collection:  types.CollectionCourses,
			KeyFields:   []string{"name", "institutionId"},
			Policy:      types.PolicyCompleteness,
			ScoreFields: []string{"description", "duration", "requirements", "faculty", "fees"},
		}},
		{types.ProfileConfig{
			Name:       "jobs",
			Collection: types.CollectionJobs,
			KeyFields:  []string{"title", "companyId"},
			Policy:     types.PolicyRecency,
		}},
		{types.ProfileConfig{
			Name:       "applications",
			Collection: types.CollectionApplications,
			KeyFields:  []string{"studentId", "courseId"},
			Policy:     types.PolicyRecency,
		}},
	}
}

// Registry resolves profiles by name.
type Registry struct {
	byName map[string]Profile
	order  []string
}

// NewRegistry starts from the built-in profiles and applies overrides.
// An override whose name matches a built-in replaces it; others are added
// after the built-ins in the order given.
func NewRegistry(overrides []types.ProfileConfig) (*Registry, error) {
	r := &Registry{byName: map[string]Profile{}}
	for _, p := range Builtin() {
		r.add(p)
	}
	for _, pc := range overrides {
		p := Profile{pc}
		if p.Collection == "" {
			if base, ok := r.byName[p.Name]; ok {
				p.Collection = base.Collection
			}
		}
		if err := p.Validate(); err != nil {
			return nil, err
		}
		r.add(p)
	}
	return r, nil
}

func (r *Registry) add(p Profile) {
	if _, ok := r.byName[p.Name]; !ok {
		r.order = append(r.order, p.Name)
	}
	r.byName[p.Name] = p
}

// Lookup returns the profile named name.
func (r *Registry) Lookup(name string) (Profile, error) {
	p, ok := r.byName[name]
	if !ok {
		names := slices.Clone(r.order)
		sort.Strings(names)
		return Profile{}, fmt.Errorf("unknown profile %q (available: %v)", name, names)
	}
	return p, nil
}

// All returns the profiles in registration order.
func (r *Registry) All() []Profile {
	out := make([]Profile, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.byName[name])
	}
	return out
}
