/*
handlers.go - HTTP API handlers for the compliance engine

PURPOSE:
  Exposes the compliance engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Workers:
    GET    /api/workers                 List all workers
    POST   /api/workers                 Register worker
    GET    /api/workers/{id}            Get worker profile
    GET    /api/workers/{id}/ruleset    Effective rule set (optional ?as_of=)
    POST   /api/workers/{id}/intervals  Record a worked interval
    GET    /api/workers/{id}/payroll    Payroll summary (?start=&end=)

  Rule sets:
    GET    /api/rulesets?category=      List versions for a category
    POST   /api/rulesets                Create version from JSON definition
    POST   /api/rulesets/{category}/default  Promote a version to default

  Intervals:
    GET    /api/intervals/{id}          Get one interval
    POST   /api/intervals/{id}/approve  Mark approved (payable)
    POST   /api/intervals/{id}/reject   Mark rejected
    POST   /api/intervals/{id}/pay      Mark paid

  Validations (dry-run):
    POST   /api/validations/interval    Check a worked interval
    POST   /api/validations/shift       Check a proposed shift (commit=true persists)

ERROR HANDLING:
  Domain errors map onto HTTP status by family:
  - 400: malformed input, invalid intervals/periods, rule set invariants
  - 404: unknown worker or interval
  - 409: illegal interval lifecycle transition
  - 422: no effective rule set governs the worker
  - 503: a read dependency was unavailable (retryable)
  Compliance violations are NEVER errors - they ride on 200 responses.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/compliance-engine/engine"
	"github.com/warp/compliance-engine/factory"
	"github.com/warp/compliance-engine/rules"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Store is the persistence surface the handlers need. *sqlite.Store and the
// in-memory store both satisfy it.
type Store interface {
	engine.WorkerDirectory
	engine.RuleSetStore
	engine.HistoryStore
	engine.ScheduleStore

	CreateWorker(ctx context.Context, p engine.WorkerProfile) error
	ListWorkers(ctx context.Context) ([]engine.WorkerProfile, error)
	CreateRuleSet(ctx context.Context, rs rules.RuleSet) error
	ListRuleSets(ctx context.Context, category rules.Category) ([]rules.RuleSet, error)
	SetDefault(ctx context.Context, category rules.Category, id rules.RuleSetID) error
	RecordInterval(ctx context.Context, wi engine.WorkedInterval) error
	GetInterval(ctx context.Context, id engine.IntervalID) (*engine.WorkedInterval, error)
	TransitionInterval(ctx context.Context, id engine.IntervalID, to engine.IntervalStatus) error
	ScheduleShift(ctx context.Context, ps engine.ProposedShift) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Engine  *engine.Engine
	Store   Store
	Logger  *zap.Logger
	factory *factory.Factory
	v       *validator.Validate
}

// NewHandler creates a new handler.
func NewHandler(eng *engine.Engine, store Store, logger *zap.Logger) *Handler {
	return &Handler{
		Engine:  eng,
		Store:   store,
		Logger:  logger,
		factory: factory.NewFactory(),
		v:       validator.New(),
	}
}

// Health is a liveness probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// WORKER HANDLERS
// =============================================================================

// ListWorkers returns all registered workers.
func (h *Handler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	workers, err := h.Store.ListWorkers(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to list workers", err)
		return
	}
	dtos := make([]WorkerDTO, len(workers))
	for i, p := range workers {
		dtos[i] = toWorkerDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateWorker registers a new worker.
func (h *Handler) CreateWorker(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}

	p := engine.WorkerProfile{
		ID:         engine.WorkerID(req.ID),
		Name:       req.Name,
		Category:   rules.Category(req.Category),
		HourlyRate: decimal.NewFromFloat(req.HourlyRate),
	}
	if err := h.Store.CreateWorker(r.Context(), p); err != nil {
		h.writeDomainError(w, "Failed to create worker", err)
		return
	}
	writeJSON(w, http.StatusCreated, toWorkerDTO(p))
}

// GetWorker returns one worker profile.
func (h *Handler) GetWorker(w http.ResponseWriter, r *http.Request) {
	id := engine.WorkerID(chi.URLParam(r, "id"))
	p, err := h.Store.Profile(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get worker", err)
		return
	}
	writeJSON(w, http.StatusOK, toWorkerDTO(*p))
}

// GetEffectiveRuleSet resolves the rule set governing a worker, at the
// ?as_of= instant or now.
func (h *Handler) GetEffectiveRuleSet(w http.ResponseWriter, r *http.Request) {
	id := engine.WorkerID(chi.URLParam(r, "id"))
	asOf := time.Now()
	if s := r.URL.Query().Get("as_of"); s != "" {
		t, err := parseTime(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid as_of", err)
			return
		}
		asOf = t
	}
	rs, err := h.Store.EffectiveFor(r.Context(), id, asOf)
	if err != nil {
		h.writeDomainError(w, "Failed to resolve rule set", err)
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

func toWorkerDTO(p engine.WorkerProfile) WorkerDTO {
	return WorkerDTO{
		ID:         string(p.ID),
		Name:       p.Name,
		Category:   string(p.Category),
		HourlyRate: p.HourlyRate.String(),
	}
}

// =============================================================================
// RULE SET HANDLERS
// =============================================================================

// ListRuleSets returns all versions for a category.
func (h *Handler) ListRuleSets(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		writeError(w, http.StatusBadRequest, "Missing category query parameter", nil)
		return
	}
	versions, err := h.Store.ListRuleSets(r.Context(), rules.Category(category))
	if err != nil {
		h.writeDomainError(w, "Failed to list rule sets", err)
		return
	}
	writeJSON(w, http.StatusOK, versions)
}

// CreateRuleSet builds and stores a rule set version from its JSON
// definition. Invariant failures come back as 400 with the broken field.
func (h *Handler) CreateRuleSet(w http.ResponseWriter, r *http.Request) {
	var req CreateRuleSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	rs, err := h.factory.Build(req.Config)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid rule set definition", err)
		return
	}
	if err := h.Store.CreateRuleSet(r.Context(), *rs); err != nil {
		h.writeDomainError(w, "Failed to create rule set", err)
		return
	}
	writeJSON(w, http.StatusCreated, rs)
}

// SetDefaultRuleSet promotes a version to category default.
func (h *Handler) SetDefaultRuleSet(w http.ResponseWriter, r *http.Request) {
	category := rules.Category(chi.URLParam(r, "category"))
	var req SetDefaultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}
	if err := h.Store.SetDefault(r.Context(), category, rules.RuleSetID(req.ID)); err != nil {
		h.writeDomainError(w, "Failed to set default", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// INTERVAL HANDLERS
// =============================================================================

// RecordInterval validates and stores a completed interval. Violations do
// not block recording; they are returned alongside the interval ID so the
// caller can flag the record for review.
func (h *Handler) RecordInterval(w http.ResponseWriter, r *http.Request) {
	workerID := engine.WorkerID(chi.URLParam(r, "id"))
	var req RecordIntervalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}
	clockIn, err := parseTime(req.ClockIn)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid clock_in", err)
		return
	}
	clockOut, err := parseTime(req.ClockOut)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid clock_out", err)
		return
	}

	wi := engine.WorkedInterval{
		ID:           engine.NewIntervalID(),
		WorkerID:     workerID,
		ClockIn:      clockIn,
		ClockOut:     clockOut,
		BreakMinutes: req.BreakMinutes,
		Status:       engine.IntervalCompleted,
	}
	result, err := h.Engine.ValidateRecordedInterval(r.Context(), wi)
	if err != nil {
		h.writeDomainError(w, "Failed to validate interval", err)
		return
	}
	wi.RuleSetID = result.RuleSetID
	if err := h.Store.RecordInterval(r.Context(), wi); err != nil {
		h.writeDomainError(w, "Failed to record interval", err)
		return
	}
	writeJSON(w, http.StatusCreated, RecordIntervalResponse{
		IntervalID: string(wi.ID),
		Validation: result,
	})
}

// GetInterval returns one stored interval.
func (h *Handler) GetInterval(w http.ResponseWriter, r *http.Request) {
	id := engine.IntervalID(chi.URLParam(r, "id"))
	wi, err := h.Store.GetInterval(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get interval", err)
		return
	}
	writeJSON(w, http.StatusOK, toIntervalDTO(*wi))
}

// ApproveInterval marks a completed interval approved (payable).
func (h *Handler) ApproveInterval(w http.ResponseWriter, r *http.Request) {
	h.transitionInterval(w, r, engine.IntervalApproved)
}

// RejectInterval marks a completed interval rejected.
func (h *Handler) RejectInterval(w http.ResponseWriter, r *http.Request) {
	h.transitionInterval(w, r, engine.IntervalRejected)
}

// MarkIntervalPaid marks an approved interval paid.
func (h *Handler) MarkIntervalPaid(w http.ResponseWriter, r *http.Request) {
	h.transitionInterval(w, r, engine.IntervalPaid)
}

func (h *Handler) transitionInterval(w http.ResponseWriter, r *http.Request, to engine.IntervalStatus) {
	id := engine.IntervalID(chi.URLParam(r, "id"))
	if err := h.Store.TransitionInterval(r.Context(), id, to); err != nil {
		h.writeDomainError(w, "Failed to transition interval", err)
		return
	}
	wi, err := h.Store.GetInterval(r.Context(), id)
	if err != nil {
		h.writeDomainError(w, "Failed to get interval", err)
		return
	}
	writeJSON(w, http.StatusOK, toIntervalDTO(*wi))
}

func toIntervalDTO(wi engine.WorkedInterval) IntervalDTO {
	return IntervalDTO{
		ID:           string(wi.ID),
		WorkerID:     string(wi.WorkerID),
		ClockIn:      wi.ClockIn.Format(time.RFC3339),
		ClockOut:     wi.ClockOut.Format(time.RFC3339),
		BreakMinutes: wi.BreakMinutes,
		RuleSetID:    string(wi.RuleSetID),
		Status:       string(wi.Status),
	}
}

// =============================================================================
// VALIDATION HANDLERS (dry-run)
// =============================================================================

// ValidateInterval checks a worked interval without storing anything.
func (h *Handler) ValidateInterval(w http.ResponseWriter, r *http.Request) {
	var req ValidateIntervalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}
	clockIn, err := parseTime(req.ClockIn)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid clock_in", err)
		return
	}
	clockOut, err := parseTime(req.ClockOut)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid clock_out", err)
		return
	}

	result, err := h.Engine.ValidateWorkedInterval(r.Context(),
		engine.WorkerID(req.WorkerID), clockIn, clockOut, req.BreakMinutes)
	if err != nil {
		h.writeDomainError(w, "Failed to validate interval", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ValidateShift checks a proposed shift. With commit=true, a schedulable
// shift is also persisted; a conflicted one never is.
func (h *Handler) ValidateShift(w http.ResponseWriter, r *http.Request) {
	var req ValidateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed", err)
		return
	}
	start, err := parseTime(req.Start)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start", err)
		return
	}
	end, err := parseTime(req.End)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end", err)
		return
	}

	workerID := engine.WorkerID(req.WorkerID)
	result, err := h.Engine.ValidateProposedShift(r.Context(), workerID, start, end)
	if err != nil {
		h.writeDomainError(w, "Failed to validate shift", err)
		return
	}
	if req.Commit && result.CanSchedule {
		ps := engine.ProposedShift{WorkerID: workerID, Start: start, End: end}
		if err := h.Store.ScheduleShift(r.Context(), ps); err != nil {
			h.writeDomainError(w, "Failed to schedule shift", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, result)
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

// GetPayroll computes the payroll summary for ?start= and ?end=.
func (h *Handler) GetPayroll(w http.ResponseWriter, r *http.Request) {
	workerID := engine.WorkerID(chi.URLParam(r, "id"))
	start, err := parseTime(r.URL.Query().Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start", err)
		return
	}
	end, err := parseTime(r.URL.Query().Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end", err)
		return
	}

	summary, err := h.Engine.ComputePayroll(r.Context(), workerID, start, end)
	if err != nil {
		h.writeDomainError(w, "Failed to compute payroll", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// =============================================================================
// HELPERS
// =============================================================================

// parseTime accepts RFC3339 or a bare date.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// writeDomainError maps a domain error onto its HTTP status.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrWorkerNotFound),
		errors.Is(err, engine.ErrIntervalNotFound):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrNoEffectiveRuleSet):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, engine.ErrInvalidInterval),
		errors.Is(err, engine.ErrInvalidPeriod),
		errors.Is(err, rules.ErrInvariant):
		status = http.StatusBadRequest
	case engine.IsRetryable(err):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		h.Logger.Error(message, zap.Error(err))
	}
	writeError(w, status, message, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
