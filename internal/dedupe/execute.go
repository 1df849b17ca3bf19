// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedupe

import (
	"context"
	"log/slog"

	"golang.org/x/time/rate"
)

// DeleteFunc removes one document from the store.
type DeleteFunc func(ctx context.Context, collection, id string) error

// ProgressFunc is called after each attempted delete with the number of
// attempts so far and the plan size.
type ProgressFunc func(done, total int)

// ExecuteOptions controls Execute.
type ExecuteOptions struct {
	// Confirmed must be set once the operator has approved the plan.
	Confirmed bool

	// Progress receives incremental progress. Optional.
	Progress ProgressFunc

	// Limiter paces deletes. Optional.
	Limiter *rate.Limiter

	// Logger receives per-item debug and failure records. Optional.
	Logger *slog.Logger
}

// Status is the terminal state of an execution.
type Status string

const (
	StatusCompleted           Status = "completed"
	StatusCompletedWithErrors Status = "completed_with_errors"
	StatusCancelled           Status = "cancelled"
)

// Report summarizes an execution. Succeeded + len(Failed) + Skipped equals
// Requested; Skipped is non-zero only after cancellation.
type Report struct {
	Collection string         `json:"collection" yaml:"collection"`
	Requested  int            `json:"requested" yaml:"requested"`
	Succeeded  int            `json:"succeeded" yaml:"succeeded"`
	Failed     []*DeleteError `json:"failed" yaml:"failed"`
	Skipped    int            `json:"skipped,omitempty" yaml:"skipped,omitempty"`
}

// Status reports the terminal state the report represents.
func (r *Report) Status() Status {
	switch {
	case r.Skipped > 0:
		return StatusCancelled
	case len(r.Failed) > 0:
		return StatusCompletedWithErrors
	default:
		return StatusCompleted
	}
}

// Execute deletes every ID in plan.Delete, one at a time, through del.
// A failed delete is recorded and the batch continues. The context is
// checked before each delete; on cancellation the remaining items are
// counted as skipped and the partial report is returned with ctx.Err().
func Execute(ctx context.Context, plan *Plan, del DeleteFunc, opts ExecuteOptions) (*Report, error) {
	if !opts.Confirmed {
		return nil, ErrNotConfirmed
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	total := len(plan.Delete)
	report := &Report{Collection: plan.Collection, Requested: total, Failed: []*DeleteError{}}

	for i, id := range plan.Delete {
		if err := ctx.Err(); err != nil {
			report.Skipped = total - i
			log.Warn("reconciliation cancelled", "collection", plan.Collection, "remaining", report.Skipped)
			return report, err
		}
		if opts.Limiter != nil {
			if err := opts.Limiter.Wait(ctx); err != nil {
				report.Skipped = total - i
				log.Warn("reconciliation cancelled while throttled", "collection", plan.Collection, "remaining", report.Skipped)
				if ctxErr := ctx.Err(); ctxErr != nil {
					return report, ctxErr
				}
				return report, err
			}
		}

		if err := del(ctx, plan.Collection, id); err != nil {
			report.Failed = append(report.Failed, &DeleteError{Collection: plan.Collection, ID: id, Err: err})
			log.Error("delete failed", "collection", plan.Collection, "id", id, "error", err)
		} else {
			report.Succeeded++
			log.Debug("deleted", "collection", plan.Collection, "id", id)
		}

		if opts.Progress != nil {
			opts.Progress(i+1, total)
		}
	}

	log.Info("reconciliation finished", "collection", plan.Collection,
		"requested", report.Requested, "succeeded", report.Succeeded, "failed", len(report.Failed))
	return report, nil
}
