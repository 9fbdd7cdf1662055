/*
errors.go - Error taxonomy for the compliance engine

PURPOSE:
  Three failure families, kept strictly apart:
  1. Configuration errors - the worker's setup is broken (no effective rule
     set, unknown worker). Fatal to the call; the caller must fix setup.
  2. Dependency errors - a store was unreachable or timed out. Fatal to the
     current call, retryable, and NEVER conflated with "compliant".
  3. Compliance violations are NOT errors: they are structured data on the
     validation results. Severity decides whether the caller blocks.

  The engine never silently approves on ambiguous input: a missing rule set
  or unreachable dependency is always an explicit error, not a default pass.

USAGE:
  if engine.IsRetryable(err) { backoff and retry }
  if engine.IsConfiguration(err) { surface to an admin }

SEE ALSO:
  - rules/validate.go: InvariantError for malformed rule sets, rejected at
    authoring time so they never reach the validators here
*/
package engine

import (
	"errors"
	"fmt"
	"time"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrNoEffectiveRuleSet is returned when no rule set version governs the
	// worker's category at the requested instant.
	ErrNoEffectiveRuleSet = errors.New("no effective rule set")

	// ErrWorkerNotFound is returned when the worker directory has no record
	// for the requested worker.
	ErrWorkerNotFound = errors.New("worker not found")

	// ErrDependencyUnavailable is returned when a read dependency (rule set
	// store, history store, schedule store) failed or timed out.
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrInvalidPeriod is returned when a payroll period ends before it starts.
	ErrInvalidPeriod = errors.New("invalid period: end before start")

	// ErrInvalidInterval is returned when clock-out is not after clock-in.
	ErrInvalidInterval = errors.New("invalid interval: clock-out not after clock-in")

	// ErrIntervalNotFound is returned by stores for unknown interval IDs.
	ErrIntervalNotFound = errors.New("interval not found")

	// ErrInvalidTransition is returned when an interval status change is not
	// allowed by the lifecycle (active -> completed -> approved|rejected -> paid).
	ErrInvalidTransition = errors.New("invalid interval status transition")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NoRuleSetError reports the worker and instant that had no governing rules.
type NoRuleSetError struct {
	WorkerID WorkerID
	AsOf     time.Time
}

func (e *NoRuleSetError) Error() string {
	return fmt.Sprintf("no effective rule set for worker %s as of %s",
		e.WorkerID, e.AsOf.Format(time.RFC3339))
}

func (e *NoRuleSetError) Unwrap() error { return ErrNoEffectiveRuleSet }

// DependencyError names the dependency that failed and keeps the cause.
type DependencyError struct {
	Dependency string
	Err        error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependency %s unavailable: %v", e.Dependency, e.Err)
}

func (e *DependencyError) Unwrap() []error {
	return []error{ErrDependencyUnavailable, e.Err}
}

// dependency wraps a store failure, preserving configuration sentinels:
// a store saying "not found" is a setup problem, not an outage.
func dependency(name string, err error) error {
	if errors.Is(err, ErrNoEffectiveRuleSet) || errors.Is(err, ErrWorkerNotFound) {
		return err
	}
	return &DependencyError{Dependency: name, Err: err}
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable reports whether the call might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrDependencyUnavailable)
}

// IsConfiguration reports whether the error requires fixing worker or rule
// set setup before retrying makes sense.
func IsConfiguration(err error) bool {
	return errors.Is(err, ErrNoEffectiveRuleSet) || errors.Is(err, ErrWorkerNotFound)
}
