// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the data and configuration types shared across careerlink packages.
package types

import (
	"fmt"
	"strings"
	"time"
)

// Well-known collections of the career-guidance platform.
const (
	CollectionUsers        = "users"
	CollectionInstitutions = "institutions"
	CollectionCourses      = "courses"
	CollectionJobs         = "jobs"
	CollectionCompanies    = "companies"
	CollectionApplications = "applications"
)

// Document is a schemaless record in a named collection. IDs are unique
// within a collection only.
type Document struct {
	// ID is the collection-scoped document identifier.
	ID string `json:"id" yaml:"id"`

	// Collection names the collection the document belongs to.
	Collection string `json:"collection" yaml:"collection"`

	// Fields holds the document body as untyped key/value pairs.
	Fields map[string]any `json:"fields" yaml:"fields"`

	// CreatedAt is the store-reported creation time. Zero when the store
	// does not track it.
	CreatedAt time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// Field returns the raw value of a field, or nil when absent.
func (d Document) Field(name string) any {
	if d.Fields == nil {
		return nil
	}
	return d.Fields[name]
}

// String returns the field formatted as a string. Absent and nil fields
// yield "". Strings are returned as stored, without trimming.
func (d Document) String(name string) string {
	switch v := d.Field(name).(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Label returns a short human-readable description of the document for
// operator output: the first non-empty of name, title, email, then the ID.
func (d Document) Label() string {
	for _, f := range []string{"name", "title", "email"} {
		if s := strings.TrimSpace(d.String(f)); s != "" {
			return s
		}
	}
	return d.ID
}
