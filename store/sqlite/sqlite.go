/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces consumed by the compliance engine and the API layer.

PURPOSE:
  Implements engine.RuleSetStore, engine.HistoryStore, engine.ScheduleStore
  and engine.WorkerDirectory plus the write surface the API needs. In
  production the same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

IMMUTABILITY:
  rule_set_versions is append-only: no UPDATE touches a version's rules.
  The only mutable columns are is_default and status. worked_intervals only
  ever change status, and only along the legal lifecycle
  (active -> completed -> approved|rejected -> paid).

KEY TABLES:
  workers:            worker profiles (category, hourly rate)
  rule_set_versions:  immutable, date-ranged rule set versions per category
  worked_intervals:   clock-in/clock-out records
  scheduled_shifts:   committed future shifts (rest-period lookups)

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  A sync.RWMutex guards multi-statement operations. In production with
  PostgreSQL, database-level concurrency control handles this instead.

USAGE:
  store, err := sqlite.New("./data/compliance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  eng := engine.New(store, store, store, engine.WithScheduleStore(store))

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - engine/stores.go: Interface definitions
  - engine/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/compliance-engine/engine"
	"github.com/warp/compliance-engine/rules"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store. Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS workers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		hourly_rate TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_workers_category ON workers(category);

	CREATE TABLE IF NOT EXISTS rule_set_versions (
		id TEXT PRIMARY KEY,
		category TEXT NOT NULL,
		name TEXT NOT NULL,
		version INTEGER NOT NULL,
		is_default BOOLEAN NOT NULL DEFAULT FALSE,
		status TEXT NOT NULL,
		effective_from TEXT NOT NULL,
		expires_at TEXT,
		config_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(category, version)
	);

	CREATE INDEX IF NOT EXISTS idx_rule_sets_category
		ON rule_set_versions(category, effective_from);

	CREATE TABLE IF NOT EXISTS worked_intervals (
		id TEXT PRIMARY KEY,
		worker_id TEXT NOT NULL,
		clock_in TEXT NOT NULL,
		clock_out TEXT NOT NULL,
		break_minutes INTEGER NOT NULL DEFAULT 0,
		rule_set_id TEXT,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- Hot path: weekly accumulation and payroll range scans
	CREATE INDEX IF NOT EXISTS idx_intervals_worker_clock_in
		ON worked_intervals(worker_id, clock_in);
	CREATE INDEX IF NOT EXISTS idx_intervals_worker_clock_out
		ON worked_intervals(worker_id, clock_out DESC);

	CREATE TABLE IF NOT EXISTS scheduled_shifts (
		id TEXT PRIMARY KEY,
		worker_id TEXT NOT NULL,
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_shifts_worker_start
		ON scheduled_shifts(worker_id, start_at);
	CREATE INDEX IF NOT EXISTS idx_shifts_worker_end
		ON scheduled_shifts(worker_id, end_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// WORKER DIRECTORY
// =============================================================================

func (s *Store) CreateWorker(ctx context.Context, p engine.WorkerProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO workers (id, name, category, hourly_rate, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		string(p.ID), p.Name, string(p.Category), p.HourlyRate.String(),
		time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *Store) Profile(ctx context.Context, id engine.WorkerID) (*engine.WorkerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, category, hourly_rate FROM workers WHERE id = ?`, string(id))
	p, err := scanWorker(row)
	if err == sql.ErrNoRows {
		return nil, engine.ErrWorkerNotFound
	}
	return p, err
}

func (s *Store) ListWorkers(ctx context.Context) ([]engine.WorkerProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, hourly_rate FROM workers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.WorkerProfile
	for rows.Next() {
		p, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanWorker(row scannable) (*engine.WorkerProfile, error) {
	var p engine.WorkerProfile
	var id, category, rate string
	if err := row.Scan(&id, &p.Name, &category, &rate); err != nil {
		return nil, err
	}
	hourly, err := decimal.NewFromString(rate)
	if err != nil {
		return nil, fmt.Errorf("corrupt hourly rate for worker %s: %w", id, err)
	}
	p.ID = engine.WorkerID(id)
	p.Category = rules.Category(category)
	p.HourlyRate = hourly
	return &p, nil
}

// =============================================================================
// RULE SET STORE
// =============================================================================

// CreateRuleSet validates and appends a rule set version. When the version
// is marked default, the previous default for the category is cleared in
// the same transaction.
func (s *Store) CreateRuleSet(ctx context.Context, rs rules.RuleSet) error {
	validated, err := rules.New(rs)
	if err != nil {
		return err
	}

	configJSON, err := json.Marshal(validated)
	if err != nil {
		return fmt.Errorf("failed to serialize rule set: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if validated.Default {
		if _, err := tx.ExecContext(ctx, `
			UPDATE rule_set_versions SET is_default = FALSE WHERE category = ?`,
			string(validated.Category)); err != nil {
			return err
		}
	}

	var expires any
	if validated.ExpiresAt != nil {
		expires = validated.ExpiresAt.UTC().Format(time.RFC3339)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO rule_set_versions
			(id, category, name, version, is_default, status, effective_from, expires_at, config_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(validated.ID), string(validated.Category), validated.Name,
		validated.Version, validated.Default, string(validated.Status),
		validated.EffectiveFrom.UTC().Format(time.RFC3339), expires,
		string(configJSON), time.Now().UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	return tx.Commit()
}

// SetDefault atomically makes one version the category default.
func (s *Store) SetDefault(ctx context.Context, category rules.Category, id rules.RuleSetID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE rule_set_versions SET is_default = FALSE WHERE category = ?`,
		string(category)); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE rule_set_versions SET is_default = TRUE WHERE id = ? AND category = ?`,
		string(id), string(category))
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return engine.ErrNoEffectiveRuleSet
	}
	return tx.Commit()
}

func (s *Store) ListRuleSets(ctx context.Context, category rules.Category) ([]rules.RuleSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadRuleSets(ctx, category)
}

func (s *Store) loadRuleSets(ctx context.Context, category rules.Category) ([]rules.RuleSet, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT config_json, is_default, status FROM rule_set_versions
		WHERE category = ? ORDER BY version`, string(category))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []rules.RuleSet
	for rows.Next() {
		var configJSON, status string
		var isDefault bool
		if err := rows.Scan(&configJSON, &isDefault, &status); err != nil {
			return nil, err
		}
		var rs rules.RuleSet
		if err := json.Unmarshal([]byte(configJSON), &rs); err != nil {
			return nil, fmt.Errorf("corrupt rule set config: %w", err)
		}
		// Mutable columns win over the serialized snapshot.
		rs.Default = isDefault
		rs.Status = rules.Status(status)
		out = append(out, rs)
	}
	return out, rows.Err()
}

func (s *Store) EffectiveFor(ctx context.Context, workerID engine.WorkerID, asOf time.Time) (*rules.RuleSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var category string
	err := s.db.QueryRowContext(ctx, `
		SELECT category FROM workers WHERE id = ?`, string(workerID)).Scan(&category)
	if err == sql.ErrNoRows {
		return nil, engine.ErrWorkerNotFound
	}
	if err != nil {
		return nil, err
	}

	versions, err := s.loadRuleSets(ctx, rules.Category(category))
	if err != nil {
		return nil, err
	}
	rs := rules.Resolve(versions, asOf)
	if rs == nil {
		return nil, engine.ErrNoEffectiveRuleSet
	}
	return rs, nil
}

// =============================================================================
// HISTORY STORE
// =============================================================================

func (s *Store) RecordInterval(ctx context.Context, wi engine.WorkedInterval) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO worked_intervals
			(id, worker_id, clock_in, clock_out, break_minutes, rule_set_id, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(wi.ID), string(wi.WorkerID),
		wi.ClockIn.UTC().Format(time.RFC3339), wi.ClockOut.UTC().Format(time.RFC3339),
		wi.BreakMinutes, string(wi.RuleSetID), string(wi.Status),
		time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *Store) GetInterval(ctx context.Context, id engine.IntervalID) (*engine.WorkedInterval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx, `
		SELECT id, worker_id, clock_in, clock_out, break_minutes, rule_set_id, status
		FROM worked_intervals WHERE id = ?`, string(id))
	wi, err := scanInterval(row)
	if err == sql.ErrNoRows {
		return nil, engine.ErrIntervalNotFound
	}
	return wi, err
}

// TransitionInterval moves an interval along its lifecycle. Illegal
// transitions are rejected without touching the row.
func (s *Store) TransitionInterval(ctx context.Context, id engine.IntervalID, to engine.IntervalStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var current string
	err = tx.QueryRowContext(ctx, `
		SELECT status FROM worked_intervals WHERE id = ?`, string(id)).Scan(&current)
	if err == sql.ErrNoRows {
		return engine.ErrIntervalNotFound
	}
	if err != nil {
		return err
	}
	if !engine.IntervalStatus(current).CanTransition(to) {
		return engine.ErrInvalidTransition
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE worked_intervals SET status = ? WHERE id = ?`,
		string(to), string(id)); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) IntervalsInRange(ctx context.Context, workerID engine.WorkerID, from, to time.Time) ([]engine.WorkedInterval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, worker_id, clock_in, clock_out, break_minutes, rule_set_id, status
		FROM worked_intervals
		WHERE worker_id = ? AND clock_in >= ? AND clock_in < ?
		ORDER BY clock_in`,
		string(workerID), from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.WorkedInterval
	for rows.Next() {
		wi, err := scanInterval(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *wi)
	}
	return out, rows.Err()
}

func (s *Store) LastIntervalBefore(ctx context.Context, workerID engine.WorkerID, before time.Time) (*engine.WorkedInterval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx, `
		SELECT id, worker_id, clock_in, clock_out, break_minutes, rule_set_id, status
		FROM worked_intervals
		WHERE worker_id = ? AND clock_out <= ?
		ORDER BY clock_out DESC LIMIT 1`,
		string(workerID), before.UTC().Format(time.RFC3339))
	wi, err := scanInterval(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return wi, err
}

func scanInterval(row scannable) (*engine.WorkedInterval, error) {
	var wi engine.WorkedInterval
	var id, workerID, clockIn, clockOut, ruleSetID, status string
	if err := row.Scan(&id, &workerID, &clockIn, &clockOut, &wi.BreakMinutes, &ruleSetID, &status); err != nil {
		return nil, err
	}
	in, err := time.Parse(time.RFC3339, clockIn)
	if err != nil {
		return nil, fmt.Errorf("corrupt clock_in for interval %s: %w", id, err)
	}
	out, err := time.Parse(time.RFC3339, clockOut)
	if err != nil {
		return nil, fmt.Errorf("corrupt clock_out for interval %s: %w", id, err)
	}
	wi.ID = engine.IntervalID(id)
	wi.WorkerID = engine.WorkerID(workerID)
	wi.ClockIn = in
	wi.ClockOut = out
	wi.RuleSetID = rules.RuleSetID(ruleSetID)
	wi.Status = engine.IntervalStatus(status)
	return &wi, nil
}

// =============================================================================
// SCHEDULE STORE
// =============================================================================

func (s *Store) ScheduleShift(ctx context.Context, ps engine.ProposedShift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scheduled_shifts (id, worker_id, start_at, end_at, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		string(engine.NewIntervalID()), string(ps.WorkerID),
		ps.Start.UTC().Format(time.RFC3339), ps.End.UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339))
	return err
}

func (s *Store) ShiftsInRange(ctx context.Context, workerID engine.WorkerID, from, to time.Time) ([]engine.ProposedShift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `
		SELECT worker_id, start_at, end_at FROM scheduled_shifts
		WHERE worker_id = ? AND start_at >= ? AND start_at < ?
		ORDER BY start_at`,
		string(workerID), from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.ProposedShift
	for rows.Next() {
		ps, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ps)
	}
	return out, rows.Err()
}

func (s *Store) LastShiftBefore(ctx context.Context, workerID engine.WorkerID, before time.Time) (*engine.ProposedShift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx, `
		SELECT worker_id, start_at, end_at FROM scheduled_shifts
		WHERE worker_id = ? AND end_at <= ?
		ORDER BY end_at DESC LIMIT 1`,
		string(workerID), before.UTC().Format(time.RFC3339))
	ps, err := scanShift(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return ps, err
}

func scanShift(row scannable) (*engine.ProposedShift, error) {
	var ps engine.ProposedShift
	var workerID, startAt, endAt string
	if err := row.Scan(&workerID, &startAt, &endAt); err != nil {
		return nil, err
	}
	start, err := time.Parse(time.RFC3339, startAt)
	if err != nil {
		return nil, fmt.Errorf("corrupt start_at: %w", err)
	}
	end, err := time.Parse(time.RFC3339, endAt)
	if err != nil {
		return nil, fmt.Errorf("corrupt end_at: %w", err)
	}
	ps.WorkerID = engine.WorkerID(workerID)
	ps.Start = start
	ps.End = end
	return &ps, nil
}
