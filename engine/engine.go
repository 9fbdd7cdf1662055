package engine

import (
	"context"
	"time"

	"github.com/warp/compliance-engine/rules"
)

// =============================================================================
// ENGINE - Wiring of the read dependencies
// =============================================================================

// Engine evaluates compliance over data supplied by its stores. It holds no
// mutable state: every operation is a bounded, synchronous computation, safe
// to run in parallel across workers. Calls for the same worker must be
// serialized by the caller (check-then-act).
type Engine struct {
	rulesets RuleSetStore
	history  HistoryStore
	workers  WorkerDirectory
	schedule ScheduleStore // optional
	calendar Calendar

	weekStart time.Weekday
	now       func() time.Time
}

type Option func(*Engine)

// WithCalendar injects a holiday calendar. Defaults to DefaultCalendar
// (no holidays).
func WithCalendar(c Calendar) Option {
	return func(e *Engine) { e.calendar = c }
}

// WithScheduleStore lets the scheduler's rest check see already-scheduled
// shifts, not just completed work.
func WithScheduleStore(s ScheduleStore) Option {
	return func(e *Engine) { e.schedule = s }
}

// WithWeekStart changes the weekly accumulation boundary.
func WithWeekStart(d time.Weekday) Option {
	return func(e *Engine) { e.weekStart = d }
}

// WithNow injects the clock, for advance-notice checks and tests.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(rulesets RuleSetStore, history HistoryStore, workers WorkerDirectory, opts ...Option) *Engine {
	e := &Engine{
		rulesets:  rulesets,
		history:   history,
		workers:   workers,
		calendar:  DefaultCalendar{},
		weekStart: DefaultWeekStart,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// effectiveRuleSet resolves the governing rule set, mapping store failures
// into the engine's error taxonomy.
func (e *Engine) effectiveRuleSet(ctx context.Context, workerID WorkerID, asOf time.Time) (*rules.RuleSet, error) {
	rs, err := e.rulesets.EffectiveFor(ctx, workerID, asOf)
	if err != nil {
		return nil, dependency("rule set store", err)
	}
	if rs == nil {
		return nil, &NoRuleSetError{WorkerID: workerID, AsOf: asOf}
	}
	return rs, nil
}
