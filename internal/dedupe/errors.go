// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedupe

import (
	"errors"
	"fmt"
)

// Sentinel errors. Use errors.Is to test for them; the returned errors carry
// the offending key or ID as context.
var (
	// ErrEmptyGroup indicates a selector was handed a group with no members.
	ErrEmptyGroup = errors.New("empty duplicate group")

	// ErrInvalidSelection indicates a retained ID is not a member of its group.
	ErrInvalidSelection = errors.New("selected document is not a member of the group")

	// ErrMissingRetention indicates a group has no retained ID in the plan input.
	ErrMissingRetention = errors.New("no retained document for group")

	// ErrNotConfirmed indicates Execute was called without operator confirmation.
	ErrNotConfirmed = errors.New("reconciliation plan not confirmed")

	// ErrInvalidState indicates a session step was called out of order.
	ErrInvalidState = errors.New("invalid session state")
)

// DeleteError records the failure to delete one document. It is collected
// in a Report rather than returned.
type DeleteError struct {
	Collection string `json:"collection" yaml:"collection"`
	ID         string `json:"id" yaml:"id"`
	Err        error  `json:"-" yaml:"-"`
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("deleting %s/%s: %v", e.Collection, e.ID, e.Err)
}

func (e *DeleteError) Unwrap() error {
	return e.Err
}
