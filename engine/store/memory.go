// Package store provides in-memory implementations of the engine's store
// interfaces, for tests and development.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/compliance-engine/engine"
	"github.com/warp/compliance-engine/rules"
)

// =============================================================================
// MEMORY STORE - Implements all four engine store interfaces
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	workers   map[engine.WorkerID]engine.WorkerProfile
	rulesets  map[rules.Category][]rules.RuleSet
	intervals map[engine.WorkerID][]engine.WorkedInterval // sorted by clock-in
	shifts    map[engine.WorkerID][]engine.ProposedShift  // sorted by start
}

func NewMemory() *Memory {
	return &Memory{
		workers:   make(map[engine.WorkerID]engine.WorkerProfile),
		rulesets:  make(map[rules.Category][]rules.RuleSet),
		intervals: make(map[engine.WorkerID][]engine.WorkedInterval),
		shifts:    make(map[engine.WorkerID][]engine.ProposedShift),
	}
}

// =============================================================================
// WORKER DIRECTORY
// =============================================================================

func (m *Memory) CreateWorker(_ context.Context, p engine.WorkerProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workers[p.ID] = p
	return nil
}

func (m *Memory) Profile(_ context.Context, id engine.WorkerID) (*engine.WorkerProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.workers[id]
	if !ok {
		return nil, engine.ErrWorkerNotFound
	}
	return &p, nil
}

func (m *Memory) ListWorkers(_ context.Context) ([]engine.WorkerProfile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]engine.WorkerProfile, 0, len(m.workers))
	for _, p := range m.workers {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// =============================================================================
// RULE SET STORE
// =============================================================================

// CreateRuleSet appends a validated version. Versions are immutable once
// stored; changes are new versions.
func (m *Memory) CreateRuleSet(_ context.Context, rs rules.RuleSet) error {
	validated, err := rules.New(rs)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if validated.Default {
		m.clearDefaultLocked(validated.Category)
	}
	m.rulesets[validated.Category] = append(m.rulesets[validated.Category], *validated)
	return nil
}

func (m *Memory) ListRuleSets(_ context.Context, category rules.Category) ([]rules.RuleSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]rules.RuleSet, len(m.rulesets[category]))
	copy(out, m.rulesets[category])
	return out, nil
}

// SetDefault atomically makes one version the category default, clearing
// any previous default under the same lock.
func (m *Memory) SetDefault(_ context.Context, category rules.Category, id rules.RuleSetID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearDefaultLocked(category)
	for i := range m.rulesets[category] {
		if m.rulesets[category][i].ID == id {
			m.rulesets[category][i].Default = true
			return nil
		}
	}
	return engine.ErrNoEffectiveRuleSet
}

func (m *Memory) clearDefaultLocked(category rules.Category) {
	for i := range m.rulesets[category] {
		m.rulesets[category][i].Default = false
	}
}

func (m *Memory) EffectiveFor(_ context.Context, workerID engine.WorkerID, asOf time.Time) (*rules.RuleSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.workers[workerID]
	if !ok {
		return nil, engine.ErrWorkerNotFound
	}
	rs := rules.Resolve(m.rulesets[p.Category], asOf)
	if rs == nil {
		return nil, engine.ErrNoEffectiveRuleSet
	}
	return rs, nil
}

// =============================================================================
// HISTORY STORE
// =============================================================================

func (m *Memory) RecordInterval(_ context.Context, wi engine.WorkedInterval) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.intervals[wi.WorkerID]
	i := sort.Search(len(list), func(i int) bool {
		return list[i].ClockIn.After(wi.ClockIn)
	})
	list = append(list, engine.WorkedInterval{})
	copy(list[i+1:], list[i:])
	list[i] = wi
	m.intervals[wi.WorkerID] = list
	return nil
}

func (m *Memory) GetInterval(_ context.Context, id engine.IntervalID) (*engine.WorkedInterval, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, list := range m.intervals {
		for _, wi := range list {
			if wi.ID == id {
				return &wi, nil
			}
		}
	}
	return nil, engine.ErrIntervalNotFound
}

func (m *Memory) TransitionInterval(_ context.Context, id engine.IntervalID, to engine.IntervalStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for workerID, list := range m.intervals {
		for i, wi := range list {
			if wi.ID != id {
				continue
			}
			if !wi.Status.CanTransition(to) {
				return engine.ErrInvalidTransition
			}
			m.intervals[workerID][i].Status = to
			return nil
		}
	}
	return engine.ErrIntervalNotFound
}

func (m *Memory) IntervalsInRange(_ context.Context, workerID engine.WorkerID, from, to time.Time) ([]engine.WorkedInterval, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.WorkedInterval
	for _, wi := range m.intervals[workerID] {
		if !wi.ClockIn.Before(from) && wi.ClockIn.Before(to) {
			out = append(out, wi)
		}
	}
	return out, nil
}

func (m *Memory) LastIntervalBefore(_ context.Context, workerID engine.WorkerID, before time.Time) (*engine.WorkedInterval, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *engine.WorkedInterval
	for _, wi := range m.intervals[workerID] {
		if wi.ClockOut.After(before) {
			continue
		}
		if latest == nil || wi.ClockOut.After(latest.ClockOut) {
			cp := wi
			latest = &cp
		}
	}
	return latest, nil
}

// =============================================================================
// SCHEDULE STORE
// =============================================================================

func (m *Memory) ScheduleShift(_ context.Context, ps engine.ProposedShift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.shifts[ps.WorkerID]
	i := sort.Search(len(list), func(i int) bool {
		return list[i].Start.After(ps.Start)
	})
	list = append(list, engine.ProposedShift{})
	copy(list[i+1:], list[i:])
	list[i] = ps
	m.shifts[ps.WorkerID] = list
	return nil
}

func (m *Memory) ShiftsInRange(_ context.Context, workerID engine.WorkerID, from, to time.Time) ([]engine.ProposedShift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.ProposedShift
	for _, ps := range m.shifts[workerID] {
		if !ps.Start.Before(from) && ps.Start.Before(to) {
			out = append(out, ps)
		}
	}
	return out, nil
}

func (m *Memory) LastShiftBefore(_ context.Context, workerID engine.WorkerID, before time.Time) (*engine.ProposedShift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *engine.ProposedShift
	for _, ps := range m.shifts[workerID] {
		if ps.End.After(before) {
			continue
		}
		if latest == nil || ps.End.After(latest.End) {
			cp := ps
			latest = &cp
		}
	}
	return latest, nil
}
