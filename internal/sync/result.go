// Package sync orchestrates batched synchronization from the upstream
// provider into the store and object storage: fixture window sync, team
// logo backfill, and fixture statistics sync.
//
// Every operation is fail-open: item-level failures are logged, recorded
// in the run result, and never abort the remaining batch. Only setup
// failures surface as errors.
package sync

import (
	"fmt"
	"time"
)

// Result tracks the outcome of one sync run. It is the contract every
// operation fulfills for its caller: counters plus failure causes, never
// a propagated per-item error.
type Result struct {
	Mode      string
	Attempted int
	Succeeded int
	Failed    int
	Skipped   int
	Errors    []string
	Duration  time.Duration
}

func newResult(mode string) Result {
	return Result{Mode: mode}
}

// AddError records a failure cause.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// AddErrorf records a formatted failure cause.
func (r *Result) AddErrorf(format string, args ...interface{}) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the run.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"mode=%s attempted=%d succeeded=%d failed=%d skipped=%d errors=%d dur=%s",
		r.Mode, r.Attempted, r.Succeeded, r.Failed, r.Skipped,
		len(r.Errors), r.Duration.Round(time.Millisecond),
	)
}
