// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedupe

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/pdiddy/careerlink/pkg/types"
)

// Policy chooses the representative of a duplicate group. Choose is only
// called with non-empty member lists and must return the ID of a member.
type Policy interface {
	Name() string
	Choose(members []types.Document) (string, error)
}

// SelectRepresentative returns the ID of the member of group that policy
// chooses to retain.
func SelectRepresentative(members []types.Document, policy Policy) (string, error) {
	if len(members) == 0 {
		return "", ErrEmptyGroup
	}
	return policy.Choose(members)
}

// AutoRetain applies policy to every group and returns the resulting
// retention choice.
func AutoRetain(groups []Group, policy Policy) (RetentionChoice, error) {
	choice := make(RetentionChoice, len(groups))
	for _, g := range groups {
		id, err := SelectRepresentative(g.Members, policy)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", g.Key, err)
		}
		choice[g.Key] = id
	}
	return choice, nil
}

// Completeness keeps the member with the most non-empty Fields. Ties go to
// the earliest member.
type Completeness struct {
	Fields []string
}

func (Completeness) Name() string { return string(types.PolicyCompleteness) }

func (p Completeness) Choose(members []types.Document) (string, error) {
	best, bestScore := 0, -1
	for i, m := range members {
		if s := CompletenessScore(m, p.Fields); s > bestScore {
			best, bestScore = i, s
		}
	}
	return members[best].ID, nil
}

// CompletenessScore counts the fields of doc that are present and non-empty.
// Nil values, blank strings, and empty slices or maps are empty; numbers and
// booleans count whatever their value.
func CompletenessScore(doc types.Document, fields []string) int {
	score := 0
	for _, f := range fields {
		if filled(doc.Field(f)) {
			score++
		}
	}
	return score
}

func filled(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(x) != ""
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// Recency keeps the member with the latest creation time, read from Field
// and falling back to Document.CreatedAt. Members without a timestamp rank
// as the epoch. Ties go to the earliest member.
type Recency struct {
	Field string
}

func (Recency) Name() string { return string(types.PolicyRecency) }

func (p Recency) Choose(members []types.Document) (string, error) {
	best := 0
	bestTime := p.timestamp(members[0])
	for i := 1; i < len(members); i++ {
		if t := p.timestamp(members[i]); t.After(bestTime) {
			best, bestTime = i, t
		}
	}
	return members[best].ID, nil
}

func (p Recency) timestamp(d types.Document) time.Time {
	if p.Field != "" {
		if t, ok := ParseTimestamp(d.Field(p.Field)); ok {
			return t
		}
	}
	if !d.CreatedAt.IsZero() {
		return d.CreatedAt
	}
	return time.Unix(0, 0).UTC()
}

// Manual retains the operator-designated ID after checking it belongs to
// the group.
type Manual struct {
	ID string
}

func (Manual) Name() string { return "manual" }

func (p Manual) Choose(members []types.Document) (string, error) {
	for _, m := range members {
		if m.ID == p.ID {
			return p.ID, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidSelection, p.ID)
}

// unixMillisThreshold separates unix seconds from unix milliseconds: any
// value above it is read as milliseconds.
const unixMillisThreshold = 1e11

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp interprets the timestamp representations document stores
// produce: time.Time, RFC 3339 and date strings, unix seconds or
// milliseconds, and {seconds, nanoseconds} maps.
func ParseTimestamp(v any) (time.Time, bool) {
	switch x := v.(type) {
	case time.Time:
		return x, !x.IsZero()
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return *x, !x.IsZero()
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
		return time.Time{}, false
	case int:
		return fromUnix(float64(x)), true
	case int64:
		return fromUnix(float64(x)), true
	case uint64:
		return fromUnix(float64(x)), true
	case float64:
		return fromUnix(x), true
	case map[string]any:
		secs, ok := number(x["seconds"])
		if !ok {
			secs, ok = number(x["_seconds"])
		}
		if !ok {
			return time.Time{}, false
		}
		nanos, _ := number(x["nanoseconds"])
		if nanos == 0 {
			nanos, _ = number(x["_nanoseconds"])
		}
		return time.Unix(int64(secs), int64(nanos)).UTC(), true
	}
	return time.Time{}, false
}

func fromUnix(v float64) time.Time {
	if v > unixMillisThreshold {
		return time.UnixMilli(int64(v)).UTC()
	}
	return time.Unix(int64(v), 0).UTC()
}

func number(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}
