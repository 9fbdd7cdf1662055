/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry struct tags consumed by go-playground/validator;
  handlers run validate.Struct before touching domain logic. Engine result
  types (ValidationResult, PayrollSummary, ...) are returned as-is - they
  already carry a stable JSON shape.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/rulesets.go: RuleSetJSON, the rule set authoring schema
*/
package api

import (
	"github.com/warp/compliance-engine/factory"
)

// =============================================================================
// WORKERS
// =============================================================================

// WorkerDTO represents a worker in API responses.
type WorkerDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Category   string `json:"category"`
	HourlyRate string `json:"hourly_rate"`
}

// CreateWorkerRequest is the request to register a worker.
type CreateWorkerRequest struct {
	ID         string  `json:"id" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	Category   string  `json:"category" validate:"required"`
	HourlyRate float64 `json:"hourly_rate" validate:"gt=0"`
}

// =============================================================================
// RULE SETS
// =============================================================================

// CreateRuleSetRequest wraps a rule set definition in the authoring schema.
type CreateRuleSetRequest struct {
	Config factory.RuleSetJSON `json:"config" validate:"required"`
}

// SetDefaultRequest names the version to promote to category default.
type SetDefaultRequest struct {
	ID string `json:"id" validate:"required"`
}

// =============================================================================
// INTERVALS
// =============================================================================

// RecordIntervalRequest records a completed clock-in/clock-out pair.
type RecordIntervalRequest struct {
	ClockIn      string `json:"clock_in" validate:"required"`
	ClockOut     string `json:"clock_out" validate:"required"`
	BreakMinutes int    `json:"break_minutes" validate:"gte=0"`
}

// RecordIntervalResponse returns the stored interval ID together with the
// compliance outcome. Violations never block recording; they are findings.
type RecordIntervalResponse struct {
	IntervalID string `json:"interval_id"`
	Validation any    `json:"validation"`
}

// IntervalDTO represents a stored interval in API responses.
type IntervalDTO struct {
	ID           string `json:"id"`
	WorkerID     string `json:"worker_id"`
	ClockIn      string `json:"clock_in"`
	ClockOut     string `json:"clock_out"`
	BreakMinutes int    `json:"break_minutes"`
	RuleSetID    string `json:"rule_set_id,omitempty"`
	Status       string `json:"status"`
}

// =============================================================================
// VALIDATION (dry-run)
// =============================================================================

// ValidateIntervalRequest checks a worked interval without storing it.
type ValidateIntervalRequest struct {
	WorkerID     string `json:"worker_id" validate:"required"`
	ClockIn      string `json:"clock_in" validate:"required"`
	ClockOut     string `json:"clock_out" validate:"required"`
	BreakMinutes int    `json:"break_minutes" validate:"gte=0"`
}

// ValidateShiftRequest checks a proposed future shift. With commit=true a
// schedulable shift is also persisted to the schedule store.
type ValidateShiftRequest struct {
	WorkerID string `json:"worker_id" validate:"required"`
	Start    string `json:"start" validate:"required"`
	End      string `json:"end" validate:"required"`
	Commit   bool   `json:"commit,omitempty"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
