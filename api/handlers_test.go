package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/forge/crew-engine/api"
	"github.com/forge/crew-engine/engine"
	"github.com/forge/crew-engine/engine/store"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := engine.DefaultConfig()
	mem := store.NewMemory(cfg)
	guard := engine.NewGuard(cfg, mem, mem)
	return api.NewRouter(api.NewHandler(mem, mem, guard))
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return out
}

func loadScenario(t *testing.T, router http.Handler, name string) {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/scenarios/load", api.LoadScenarioRequest{Name: name})
	if rec.Code != http.StatusOK {
		t.Fatalf("load scenario %s: status %d, body %s", name, rec.Code, rec.Body.String())
	}
}

// =============================================================================
// SCENARIOS AND READS
// =============================================================================

func TestLoadScenarioAndListMachines(t *testing.T) {
	router := newTestRouter(t)
	loadScenario(t, router, "three-crew-line")

	rec := doJSON(t, router, http.MethodGet, "/api/machines", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	machines := decode[[]api.MachineDTO](t, rec)
	if len(machines) != 1 || machines[0].ID != "mach-bagger-1" {
		t.Fatalf("machines = %+v", machines)
	}
	if machines[0].CycleStartDate != "2025-07-30" {
		t.Errorf("cycle start = %q", machines[0].CycleStartDate)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/machines/mach-bagger-1/crews", nil)
	crews := decode[[]api.CrewDTO](t, rec)
	if len(crews) != 3 {
		t.Fatalf("expected three crews, got %+v", crews)
	}
}

func TestLoadScenario_Unknown(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/scenarios/load", api.LoadScenarioRequest{Name: "nope"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestGetMachine_NotFound(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/machines/ghost", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestGetPreview(t *testing.T) {
	router := newTestRouter(t)
	loadScenario(t, router, "three-crew-line")

	rec := doJSON(t, router, http.MethodGet,
		"/api/machines/mach-bagger-1/preview?start=2025-07-30&days=6", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	entries := decode[[]api.PreviewEntryDTO](t, rec)
	if len(entries) != 6 {
		t.Fatalf("expected 6 entries, got %d", len(entries))
	}
	// On the anchor date crew A works days, B nights, C rests.
	first := entries[0]
	if first.Date != "2025-07-30" || first.Day != "A" || first.Night != "B" {
		t.Fatalf("anchor entry = %+v", first)
	}
	if len(first.Rest) != 1 || first.Rest[0] != "C" {
		t.Fatalf("rest = %v", first.Rest)
	}
}

func TestGetPreview_BadDays(t *testing.T) {
	router := newTestRouter(t)
	loadScenario(t, router, "three-crew-line")

	rec := doJSON(t, router, http.MethodGet,
		"/api/machines/mach-bagger-1/preview?days=zero", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestGetPreview_ClampsWindow(t *testing.T) {
	router := newTestRouter(t)
	loadScenario(t, router, "three-crew-line")

	rec := doJSON(t, router, http.MethodGet,
		"/api/machines/mach-bagger-1/preview?start=2025-07-30&days=500", nil)
	entries := decode[[]api.PreviewEntryDTO](t, rec)
	if len(entries) != 90 {
		t.Fatalf("expected the window clamped to 90 days, got %d", len(entries))
	}
}

func TestGetCoverage_BrokenOffsets(t *testing.T) {
	router := newTestRouter(t)
	loadScenario(t, router, "broken-offsets")

	rec := doJSON(t, router, http.MethodGet, "/api/machines/mach-extruder-2/coverage", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	report := decode[api.CoverageReportDTO](t, rec)
	if report.OK {
		t.Fatal("expected a failing coverage report")
	}
	var sawDuplicate bool
	for _, f := range report.Findings {
		if f.Code == "duplicate_offset" {
			sawDuplicate = true
		}
	}
	if !sawDuplicate {
		t.Fatalf("findings = %+v", report.Findings)
	}
}

func TestGetStaffing(t *testing.T) {
	router := newTestRouter(t)
	loadScenario(t, router, "three-crew-line")

	rec := doJSON(t, router, http.MethodGet,
		"/api/machines/mach-bagger-1/staffing?date=2025-07-30", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	report := decode[api.StaffingReportDTO](t, rec)
	// Crew A (2 op, 1 loader, 1 packer) on days: full quota.
	if report.Day.Operators != 2 || report.Day.Loaders != 1 || report.Day.Packers != 1 {
		t.Fatalf("day breakdown = %+v", report.Day)
	}
	if report.Day.Fulfillment != "1.00" {
		t.Errorf("day fulfillment = %q", report.Day.Fulfillment)
	}
	// Crew B is one operator short of the 2/1/1 quota.
	if report.Night.OperatorShortfall != 1 {
		t.Fatalf("night breakdown = %+v", report.Night)
	}

	rec = doJSON(t, router, http.MethodGet, "/api/machines/mach-bagger-1/staffing", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing date: status %d", rec.Code)
	}
}

func TestGetRuleFindings(t *testing.T) {
	router := newTestRouter(t)
	loadScenario(t, router, "three-crew-line")

	// No supervisor rows on the date, so the supervisor rule fires.
	rec := doJSON(t, router, http.MethodGet,
		"/api/machines/mach-bagger-1/rules?date=2025-07-30", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	findings := decode[[]api.RuleFindingDTO](t, rec)
	if len(findings) != 2 {
		t.Fatalf("findings = %+v", findings)
	}
	for _, f := range findings {
		if f.Rule != "supervisor_coverage" {
			t.Errorf("unexpected rule %q", f.Rule)
		}
	}
}

// =============================================================================
// WRITES
// =============================================================================

func TestCreateAssignment_ConflictMapsTo409(t *testing.T) {
	router := newTestRouter(t)
	loadScenario(t, router, "three-crew-line")

	req := api.CreateAssignmentRequest{
		EmployeeID: "emp-001", MachineID: "mach-bagger-1",
		Date: "2025-07-30", Shift: "day", CreatedBy: "emp-011",
	}
	rec := doJSON(t, router, http.MethodPost, "/api/assignments", req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first create: status %d, body %s", rec.Code, rec.Body.String())
	}
	created := decode[api.AssignmentDTO](t, rec)
	if created.Status != "planned" {
		t.Errorf("status = %q", created.Status)
	}

	rec = doJSON(t, router, http.MethodPost, "/api/assignments", req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate create: status %d", rec.Code)
	}
	errResp := decode[api.ErrorResponse](t, rec)
	if errResp.Kind != "duplicate_employee_assignment" {
		t.Errorf("kind = %q", errResp.Kind)
	}
}

func TestCreateAssignment_CapabilityCheck(t *testing.T) {
	router := newTestRouter(t)
	loadScenario(t, router, "three-crew-line")

	req := api.CreateAssignmentRequest{
		EmployeeID: "emp-001", MachineID: "mach-bagger-1",
		Date: "2025-07-30", Shift: "day",
		ActorRole: "operator",
	}
	rec := doJSON(t, router, http.MethodPost, "/api/assignments", req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}

	req.ActorRole = "supervisor"
	rec = doJSON(t, router, http.MethodPost, "/api/assignments", req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("supervisor actor: status %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestTransitionAssignment(t *testing.T) {
	router := newTestRouter(t)
	loadScenario(t, router, "three-crew-line")

	rec := doJSON(t, router, http.MethodPost, "/api/assignments", api.CreateAssignmentRequest{
		EmployeeID: "emp-001", MachineID: "mach-bagger-1",
		Date: "2025-07-30", Shift: "day",
	})
	created := decode[api.AssignmentDTO](t, rec)

	rec = doJSON(t, router, http.MethodPost,
		"/api/assignments/"+created.ID+"/transition", api.TransitionRequest{Status: "present"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	updated := decode[api.AssignmentDTO](t, rec)
	if updated.Status != "present" {
		t.Errorf("status = %q", updated.Status)
	}

	// present -> absent is not a legal move.
	rec = doJSON(t, router, http.MethodPost,
		"/api/assignments/"+created.ID+"/transition", api.TransitionRequest{Status: "absent"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("illegal transition: status %d", rec.Code)
	}
	errResp := decode[api.ErrorResponse](t, rec)
	if errResp.Kind != "invalid_transition" {
		t.Errorf("kind = %q", errResp.Kind)
	}

	rec = doJSON(t, router, http.MethodPost,
		"/api/assignments/ghost/transition", api.TransitionRequest{Status: "present"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown assignment: status %d", rec.Code)
	}
}

func TestOverrideAndEffectiveRole(t *testing.T) {
	router := newTestRouter(t)
	loadScenario(t, router, "three-crew-line")

	rec := doJSON(t, router, http.MethodPost, "/api/overrides", api.CreateOverrideRequest{
		EmployeeID: "emp-001", Date: "2025-07-30",
		Scope: "day", OverrideRole: "packer", AssignedBy: "emp-011",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
	o := decode[api.OverrideDTO](t, rec)
	if o.OriginalRole != "operator" || o.OverrideRole != "packer" {
		t.Fatalf("override = %+v", o)
	}

	rec = doJSON(t, router, http.MethodGet,
		"/api/employees/emp-001/effective-role?date=2025-07-30&shift=day", nil)
	role := decode[api.EffectiveRoleDTO](t, rec)
	if role.Role != "packer" {
		t.Errorf("day role = %q", role.Role)
	}

	rec = doJSON(t, router, http.MethodGet,
		"/api/employees/emp-001/effective-role?date=2025-07-30&shift=night", nil)
	role = decode[api.EffectiveRoleDTO](t, rec)
	if role.Role != "operator" {
		t.Errorf("night role = %q", role.Role)
	}
}

func TestSupervisorAssignmentAndCoverage(t *testing.T) {
	router := newTestRouter(t)
	loadScenario(t, router, "three-crew-line")

	rec := doJSON(t, router, http.MethodGet, "/api/supervisor-coverage?date=2025-07-30", nil)
	report := decode[api.SupervisorCoverageDTO](t, rec)
	if len(report.Slots) != 2 || report.Slots[0].Covered || report.Slots[1].Covered {
		t.Fatalf("expected both slots uncovered, got %+v", report.Slots)
	}

	// Rosa Delgado is the roster's supervisor.
	rec = doJSON(t, router, http.MethodPost, "/api/supervisor-assignments",
		api.CreateSupervisorAssignmentRequest{
			SupervisorID: "emp-011", Date: "2025-07-30", Shift: "day",
		})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}

	// An operator is rejected outright.
	rec = doJSON(t, router, http.MethodPost, "/api/supervisor-assignments",
		api.CreateSupervisorAssignmentRequest{
			SupervisorID: "emp-001", Date: "2025-07-30", Shift: "night",
		})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("non-supervisor: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/api/supervisor-coverage?date=2025-07-30", nil)
	report = decode[api.SupervisorCoverageDTO](t, rec)
	var dayCovered, nightCovered bool
	for _, slot := range report.Slots {
		switch slot.Shift {
		case "day":
			dayCovered = slot.Covered
		case "night":
			nightCovered = slot.Covered
		}
	}
	if !dayCovered || nightCovered {
		t.Fatalf("slots = %+v", report.Slots)
	}
	if len(report.Findings) != 1 {
		t.Fatalf("findings = %+v", report.Findings)
	}
}
