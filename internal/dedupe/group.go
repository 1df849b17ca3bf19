// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedupe finds duplicate documents, chooses which to keep, and
// deletes the rest.
//
// A run has three steps. FindGroups partitions a collection snapshot into
// duplicate groups under a caller-supplied key function. A Policy picks one
// representative per group. BuildPlan turns the picks into a delete list that
// Execute applies through a caller-supplied delete function. Session ties the
// steps together and enforces their order.
package dedupe

import (
	"strings"

	"github.com/pdiddy/careerlink/pkg/types"
)

// KeyFunc maps a document to its normalized grouping key. Documents with an
// empty key are never grouped. The engine compares keys byte for byte, so
// the function must do its own normalization (see Normalize).
type KeyFunc func(types.Document) string

// Group is a set of documents sharing one grouping key.
type Group struct {
	Key     string           `json:"key" yaml:"key"`
	Members []types.Document `json:"members" yaml:"members"`
}

// IDs returns the member IDs in group order.
func (g Group) IDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return ids
}

// Has reports whether id is a member of the group.
func (g Group) Has(id string) bool {
	for _, m := range g.Members {
		if m.ID == id {
			return true
		}
	}
	return false
}

// Partition applies key to every document and collects documents into
// classes by exact key equality. Empty keys are dropped. Source order is
// preserved within each class. Singletons are included; callers wanting
// only duplicates use FindGroups.
func Partition(docs []types.Document, key KeyFunc) map[string][]types.Document {
	classes := make(map[string][]types.Document)
	for _, d := range docs {
		k := key(d)
		if k == "" {
			continue
		}
		classes[k] = append(classes[k], d)
	}
	return classes
}

// FindGroups returns the duplicate groups (two or more members) of docs
// under key, ordered by the first appearance of each key in docs.
func FindGroups(docs []types.Document, key KeyFunc) []Group {
	classes := Partition(docs, key)

	var groups []Group
	for _, d := range docs {
		k := key(d)
		members, ok := classes[k]
		if !ok {
			continue
		}
		// The first member of each class claims its position.
		delete(classes, k)
		if len(members) >= 2 {
			groups = append(groups, Group{Key: k, Members: members})
		}
	}
	return groups
}

// CountDuplicates returns the number of documents that would be removed if
// every group kept exactly one member.
func CountDuplicates(groups []Group) int {
	n := 0
	for _, g := range groups {
		if len(g.Members) > 1 {
			n += len(g.Members) - 1
		}
	}
	return n
}

// Normalize lower-cases s and trims surrounding whitespace. It is the
// normalization every built-in key function applies.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// keySeparator joins the components of a composite key.
const keySeparator = "|"

// FieldKey returns a KeyFunc over the normalized string values of fields.
// The key is empty, and the document ungrouped, when any component is empty.
func FieldKey(fields ...string) KeyFunc {
	return func(d types.Document) string {
		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			v := Normalize(d.String(f))
			if v == "" {
				return ""
			}
			parts = append(parts, v)
		}
		return strings.Join(parts, keySeparator)
	}
}
