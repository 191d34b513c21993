/*
handlers.go - HTTP handlers for the scheduling engine

PURPOSE:
  Exposes the engine via REST. Handlers parse/validate input, call the
  guard or the pure engine functions, and serialize the result.

ERROR MAPPING:
  - input / eligibility errors  -> 400
  - unknown referenced records  -> 404
  - uniqueness conflicts        -> 409
  - invalid status transition   -> 409
  - capability check failure    -> 403
  - anything else               -> 500
  The failure kind travels in the "kind" response field so clients can
  distinguish conflicts from eligibility problems without parsing
  messages.

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: routing and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/forge/crew-engine/engine"
	"github.com/forge/crew-engine/rules"
)

// Preview bounds: callers pick the window, within reason.
const (
	defaultPreviewDays = 14
	maxPreviewDays     = 90
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Workforce   engine.WorkforceStore
	Assignments engine.AssignmentStore
	Guard       *engine.Guard

	currentScenario string
}

func NewHandler(workforce engine.WorkforceStore, assignments engine.AssignmentStore, guard *engine.Guard) *Handler {
	return &Handler{Workforce: workforce, Assignments: assignments, Guard: guard}
}

// =============================================================================
// WORKFORCE READS
// =============================================================================

// ListMachines returns all machines.
// GET /api/machines
func (h *Handler) ListMachines(w http.ResponseWriter, r *http.Request) {
	machines, err := h.Workforce.ListMachines(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list machines", err)
		return
	}
	dtos := make([]MachineDTO, len(machines))
	for i, m := range machines {
		dtos[i] = toMachineDTO(m)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetMachine returns one machine.
// GET /api/machines/{id}
func (h *Handler) GetMachine(w http.ResponseWriter, r *http.Request) {
	m, ok := h.machine(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toMachineDTO(*m))
}

// ListCrews returns a machine's crews.
// GET /api/machines/{id}/crews
func (h *Handler) ListCrews(w http.ResponseWriter, r *http.Request) {
	m, ok := h.machine(w, r)
	if !ok {
		return
	}
	crews, err := h.Workforce.ListCrews(r.Context(), m.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list crews", err)
		return
	}
	dtos := make([]CrewDTO, len(crews))
	for i, c := range crews {
		dtos[i] = toCrewDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListEmployees returns all employees.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Workforce.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list employees", err)
		return
	}
	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// SCHEDULE READS
// =============================================================================

// GetPreview projects the rotation forward.
// GET /api/machines/{id}/preview?start=YYYY-MM-DD&days=N
func (h *Handler) GetPreview(w http.ResponseWriter, r *http.Request) {
	m, ok := h.machine(w, r)
	if !ok {
		return
	}

	start := engine.Today()
	if s := r.URL.Query().Get("start"); s != "" {
		var err error
		if start, err = engine.ParseDate(s); err != nil {
			writeEngineError(w, err)
			return
		}
	}
	days := defaultPreviewDays
	if s := r.URL.Query().Get("days"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "days must be a positive integer", err)
			return
		}
		days = n
	}
	if days > maxPreviewDays {
		days = maxPreviewDays
	}

	crews, err := h.Workforce.ListCrews(r.Context(), m.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list crews", err)
		return
	}
	entries, err := engine.Preview(*m, crews, start, days)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	dtos := make([]PreviewEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = PreviewEntryDTO{Date: e.Date.String(), Day: e.Day, Night: e.Night, Rest: e.Rest}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetStaffing resolves the effective staffing for a date.
// GET /api/machines/{id}/staffing?date=YYYY-MM-DD
func (h *Handler) GetStaffing(w http.ResponseWriter, r *http.Request) {
	m, ok := h.machine(w, r)
	if !ok {
		return
	}
	date, ok := dateParam(w, r, "date")
	if !ok {
		return
	}
	report, err := h.Guard.StaffingFor(r.Context(), m.ID, date)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StaffingReportDTO{
		MachineID: string(report.MachineID),
		Date:      report.Date.String(),
		Day:       toBreakdownDTO(report.Day),
		Night:     toBreakdownDTO(report.Night),
	})
}

// GetCoverage validates a machine's crew configuration.
// GET /api/machines/{id}/coverage
func (h *Handler) GetCoverage(w http.ResponseWriter, r *http.Request) {
	m, ok := h.machine(w, r)
	if !ok {
		return
	}
	crews, err := h.Workforce.ListCrews(r.Context(), m.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list crews", err)
		return
	}
	report := engine.ValidateCoverage(*m, crews)
	writeJSON(w, http.StatusOK, CoverageReportDTO{
		MachineID: string(report.MachineID),
		OK:        report.OK,
		Findings:  toFindingDTOs(report.Findings),
	})
}

// GetRuleFindings runs the full rule registry for a machine and date.
// GET /api/machines/{id}/rules?date=YYYY-MM-DD
func (h *Handler) GetRuleFindings(w http.ResponseWriter, r *http.Request) {
	m, ok := h.machine(w, r)
	if !ok {
		return
	}
	date, ok := dateParam(w, r, "date")
	if !ok {
		return
	}
	findings, err := rules.EvaluateForMachine(r.Context(), h.Workforce, h.Assignments, m.ID, date)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRuleFindingDTOs(findings))
}

// GetEffectiveRole resolves an employee's role for a date/shift.
// GET /api/employees/{id}/effective-role?date=...&shift=...
func (h *Handler) GetEffectiveRole(w http.ResponseWriter, r *http.Request) {
	id := engine.EmployeeID(chi.URLParam(r, "id"))
	date, ok := dateParam(w, r, "date")
	if !ok {
		return
	}
	shift := engine.Shift(r.URL.Query().Get("shift"))

	role, err := h.Guard.EffectiveRoleFor(r.Context(), id, date, shift)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, EffectiveRoleDTO{
		EmployeeID: string(id),
		Date:       date.String(),
		Shift:      string(shift),
		Role:       string(role),
	})
}

// GetSupervisorCoverage reports supervisor coverage for a date.
// GET /api/supervisor-coverage?date=YYYY-MM-DD
func (h *Handler) GetSupervisorCoverage(w http.ResponseWriter, r *http.Request) {
	date, ok := dateParam(w, r, "date")
	if !ok {
		return
	}
	report, err := h.Guard.SupervisorCoverageReport(r.Context(), date)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	dto := SupervisorCoverageDTO{
		Date:     report.Date.String(),
		Findings: toFindingDTOs(report.Findings),
	}
	for _, slot := range report.Slots {
		supervisors := make([]string, len(slot.Supervisors))
		for i, s := range slot.Supervisors {
			supervisors[i] = string(s)
		}
		dto.Slots = append(dto.Slots, SupervisorSlotDTO{
			Shift:       string(slot.Shift),
			Supervisors: supervisors,
			Covered:     slot.Covered,
		})
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// WRITES
// =============================================================================

// CreateAssignment books an employee onto a machine slot.
// POST /api/assignments
func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req CreateAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if !allowed(w, req.ActorRole, rules.CapAssignLabor) {
		return
	}
	date, err := engine.ParseDate(req.Date)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	a, err := h.Guard.CreateAssignment(r.Context(),
		engine.EmployeeID(req.EmployeeID), engine.MachineID(req.MachineID),
		date, engine.Shift(req.Shift), req.CreatedBy)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAssignmentDTO(*a))
}

// TransitionAssignment moves an assignment through its lifecycle.
// POST /api/assignments/{id}/transition
func (h *Handler) TransitionAssignment(w http.ResponseWriter, r *http.Request) {
	id := engine.AssignmentID(chi.URLParam(r, "id"))
	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	a, err := h.Guard.TransitionAssignment(r.Context(), id, engine.AssignmentStatus(req.Status))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssignmentDTO(*a))
}

// CreateSupervisorAssignment puts a supervisor on duty.
// POST /api/supervisor-assignments
func (h *Handler) CreateSupervisorAssignment(w http.ResponseWriter, r *http.Request) {
	var req CreateSupervisorAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if !allowed(w, req.ActorRole, rules.CapAssignSupervisor) {
		return
	}
	date, err := engine.ParseDate(req.Date)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	s, err := h.Guard.CreateSupervisorAssignment(r.Context(),
		engine.EmployeeID(req.SupervisorID), date, engine.Shift(req.Shift), req.CreatedBy)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, SupervisorAssignmentDTO{
		ID:           s.ID,
		SupervisorID: string(s.SupervisorID),
		Date:         s.Date.String(),
		Shift:        string(s.Shift),
		CreatedBy:    s.CreatedBy,
	})
}

// CreateOverride records a one-day role change.
// POST /api/overrides
func (h *Handler) CreateOverride(w http.ResponseWriter, r *http.Request) {
	var req CreateOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if !allowed(w, req.ActorRole, rules.CapOverrideRole) {
		return
	}
	date, err := engine.ParseDate(req.Date)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	o, err := h.Guard.CreateOverride(r.Context(),
		engine.EmployeeID(req.EmployeeID), date,
		engine.ShiftScope(req.Scope), engine.Role(req.OverrideRole),
		req.AssignedBy, req.Notes)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOverrideDTO(*o))
}

// =============================================================================
// HELPERS
// =============================================================================

func (h *Handler) machine(w http.ResponseWriter, r *http.Request) (*engine.Machine, bool) {
	id := engine.MachineID(chi.URLParam(r, "id"))
	m, err := h.Workforce.GetMachine(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get machine", err)
		return nil, false
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "machine not found", nil)
		return nil, false
	}
	return m, true
}

func dateParam(w http.ResponseWriter, r *http.Request, name string) (engine.Date, bool) {
	s := r.URL.Query().Get(name)
	if s == "" {
		writeError(w, http.StatusBadRequest, name+" query parameter is required", nil)
		return engine.Date{}, false
	}
	d, err := engine.ParseDate(s)
	if err != nil {
		writeEngineError(w, err)
		return engine.Date{}, false
	}
	return d, true
}

// allowed enforces the capability table when the caller declares an
// actor role. No role declared means no check; authentication is an
// outer concern.
func allowed(w http.ResponseWriter, actorRole string, cap rules.Capability) bool {
	if actorRole == "" {
		return true
	}
	if !rules.Allowed(engine.Role(actorRole), cap) {
		writeJSON(w, http.StatusForbidden, ErrorResponse{
			Error: "role " + actorRole + " may not perform " + string(cap),
			Kind:  "forbidden",
		})
		return false
	}
	return true
}

// writeEngineError maps an engine failure kind to an HTTP status.
func writeEngineError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Error: err.Error(), Kind: errorKind(err)}
	switch {
	case engine.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, resp)
	case engine.IsConflict(err), errors.Is(err, engine.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, resp)
	case engine.IsClientError(err):
		writeJSON(w, http.StatusBadRequest, resp)
	default:
		writeJSON(w, http.StatusInternalServerError, resp)
	}
}

func errorKind(err error) string {
	for sentinel, kind := range map[error]string{
		engine.ErrInvalidOffset:                 "invalid_offset",
		engine.ErrInvalidDate:                   "invalid_date",
		engine.ErrInvalidShift:                  "invalid_shift",
		engine.ErrInvalidScope:                  "invalid_scope",
		engine.ErrInvalidRole:                   "invalid_role",
		engine.ErrInactiveEmployee:              "inactive_employee",
		engine.ErrMachineUnavailable:            "machine_unavailable",
		engine.ErrNotSupervisor:                 "not_supervisor",
		engine.ErrDuplicateEmployeeAssignment:   "duplicate_employee_assignment",
		engine.ErrDuplicateMachineAssignment:    "duplicate_machine_assignment",
		engine.ErrDuplicateOverride:             "duplicate_override",
		engine.ErrDuplicateSupervisorAssignment: "duplicate_supervisor_assignment",
		engine.ErrInvalidTransition:             "invalid_transition",
		engine.ErrEmployeeNotFound:              "employee_not_found",
		engine.ErrMachineNotFound:               "machine_not_found",
		engine.ErrAssignmentNotFound:            "assignment_not_found",
	} {
		if errors.Is(err, sentinel) {
			return kind
		}
	}
	return "internal"
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
