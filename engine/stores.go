/*
stores.go - Read dependencies consumed by the engine

PURPOSE:
  The engine performs only reads, through these four interfaces. Concrete
  implementations live in store/sqlite (production) and engine/store
  (in-memory, tests/dev). Any error from these interfaces is surfaced as a
  dependency failure, never swallowed into a compliant result.

CONTRACTS:
  - EffectiveFor resolves the rule set version governing a worker at an
    instant; it must return ErrNoEffectiveRuleSet (wrapped or bare) when
    none is active, never a nil rule set with nil error.
  - IntervalsInRange returns intervals ordered by clock-in ascending.
  - LastIntervalBefore returns the completed interval with the greatest
    clock-out at or before the timestamp, or nil when there is none.

SEE ALSO:
  - store/sqlite/sqlite.go: production implementation
  - engine/store/memory.go: in-memory implementation
*/
package engine

import (
	"context"
	"time"

	"github.com/warp/compliance-engine/rules"
)

// RuleSetStore supplies the effective rule set for a worker as of a date.
// Read-only from the engine's perspective; the store boundary also owns the
// atomic "one default version per category" operation.
type RuleSetStore interface {
	EffectiveFor(ctx context.Context, workerID WorkerID, asOf time.Time) (*rules.RuleSet, error)
}

// HistoryStore supplies a worker's completed work history.
type HistoryStore interface {
	// IntervalsInRange returns intervals with clock-in inside [from, to),
	// ordered by clock-in ascending.
	IntervalsInRange(ctx context.Context, workerID WorkerID, from, to time.Time) ([]WorkedInterval, error)

	// LastIntervalBefore returns the interval with the greatest clock-out at
	// or before the timestamp, or nil when the worker has no prior work.
	LastIntervalBefore(ctx context.Context, workerID WorkerID, before time.Time) (*WorkedInterval, error)
}

// ScheduleStore supplies already-committed future shifts. Optional: when not
// wired, the scheduler's rest check falls back to completed history alone.
type ScheduleStore interface {
	// LastShiftBefore returns the scheduled shift with the greatest end at or
	// before the timestamp, or nil.
	LastShiftBefore(ctx context.Context, workerID WorkerID, before time.Time) (*ProposedShift, error)

	// ShiftsInRange returns scheduled shifts starting inside [from, to).
	ShiftsInRange(ctx context.Context, workerID WorkerID, from, to time.Time) ([]ProposedShift, error)
}

// WorkerDirectory maps workers to their category and pay rate.
type WorkerDirectory interface {
	// Profile returns the worker's profile or ErrWorkerNotFound.
	Profile(ctx context.Context, workerID WorkerID) (*WorkerProfile, error)
}
