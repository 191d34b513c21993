/*
scenarios.go - Demo seed data

PURPOSE:
  Loads self-contained demo workforces so the API can be explored
  without a real dataset. Each scenario wipes the store (when the
  store supports Reset) and seeds machines, crews and employees.

SCENARIOS:
  three-crew-line  One bagging line with crews A/B/C at offsets 0/2/4,
                   a full roster, and a supervisor. The rotation anchor
                   is 2025-07-30, so A works days on the anchor date.
  broken-offsets   A line whose two crews share offset 0: the coverage
                   report shows the duplicate-offset violation.
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/forge/crew-engine/engine"
)

type scenario struct {
	Name        string
	Description string
	Load        func(ctx context.Context, h *Handler) error
}

var scenarios = []scenario{
	{
		Name:        "three-crew-line",
		Description: "One line, crews A/B/C at offsets 0/2/4, full roster and a supervisor",
		Load:        loadThreeCrewLine,
	},
	{
		Name:        "broken-offsets",
		Description: "Two crews sharing an offset, for exploring coverage findings",
		Load:        loadBrokenOffsets,
	},
}

// ListScenarios returns the available demo scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	dtos := make([]ScenarioDTO, len(scenarios))
	for i, s := range scenarios {
		dtos[i] = ScenarioDTO{Name: s.Name, Description: s.Description}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// LoadScenario wipes the store and seeds the named scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	for _, s := range scenarios {
		if s.Name != req.Name {
			continue
		}
		if resetter, ok := h.Workforce.(interface{ Reset(context.Context) error }); ok {
			if err := resetter.Reset(r.Context()); err != nil {
				writeError(w, http.StatusInternalServerError, "failed to reset store", err)
				return
			}
		}
		if err := s.Load(r.Context(), h); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load scenario", err)
			return
		}
		h.currentScenario = s.Name
		writeJSON(w, http.StatusOK, ScenarioDTO{Name: s.Name, Description: s.Description})
		return
	}
	writeError(w, http.StatusNotFound, "unknown scenario: "+req.Name, nil)
}

func loadThreeCrewLine(ctx context.Context, h *Handler) error {
	employees := []engine.Employee{
		{ID: "emp-001", Code: "OP-001", Name: "Mara Ellison", BaseRole: engine.RoleOperator, Active: true},
		{ID: "emp-002", Code: "OP-002", Name: "Dmitri Kovac", BaseRole: engine.RoleOperator, Active: true},
		{ID: "emp-003", Code: "LD-001", Name: "Teresa Okafor", BaseRole: engine.RoleLoader, Active: true},
		{ID: "emp-004", Code: "PK-001", Name: "Jo Lindqvist", BaseRole: engine.RolePacker, Active: true},
		{ID: "emp-005", Code: "OP-003", Name: "Hugo Braun", BaseRole: engine.RoleOperator, Active: true},
		{ID: "emp-006", Code: "LD-002", Name: "Priya Nair", BaseRole: engine.RoleLoader, Active: true},
		{ID: "emp-007", Code: "PK-002", Name: "Sam Whitfield", BaseRole: engine.RolePacker, Active: true},
		{ID: "emp-008", Code: "OP-004", Name: "Lena Fischer", BaseRole: engine.RoleOperator, Active: true},
		{ID: "emp-009", Code: "LD-003", Name: "Karl Jensen", BaseRole: engine.RoleLoader, Active: true},
		{ID: "emp-010", Code: "PK-003", Name: "Aiko Tanaka", BaseRole: engine.RolePacker, Active: true},
		{ID: "emp-011", Code: "SV-001", Name: "Rosa Delgado", BaseRole: engine.RoleSupervisor, Active: true},
	}
	for _, e := range employees {
		if err := h.Workforce.SaveEmployee(ctx, e); err != nil {
			return err
		}
	}

	machine := engine.Machine{
		ID:                    "mach-bagger-1",
		Name:                  "Bagging Line 1",
		Environment:           "packing-hall",
		Status:                engine.MachineActive,
		OperatorsPerShift:     2,
		HopperLoadersPerShift: 1,
		PackersPerShift:       1,
		ShiftCycleEnabled:     true,
		CycleStartDate:        engine.NewDate(2025, 7, 30),
		CrewSize:              4,
	}
	if err := h.Workforce.SaveMachine(ctx, machine); err != nil {
		return err
	}

	crews := []engine.Crew{
		{ID: "crew-a", MachineID: machine.ID, Letter: "A", CycleOffset: 0, Active: true,
			Members: []engine.EmployeeID{"emp-001", "emp-002", "emp-003", "emp-004"}},
		{ID: "crew-b", MachineID: machine.ID, Letter: "B", CycleOffset: 2, Active: true,
			Members: []engine.EmployeeID{"emp-005", "emp-006", "emp-007"}},
		{ID: "crew-c", MachineID: machine.ID, Letter: "C", CycleOffset: 4, Active: true,
			Members: []engine.EmployeeID{"emp-008", "emp-009", "emp-010"}},
	}
	for _, c := range crews {
		if err := h.Workforce.SaveCrew(ctx, c); err != nil {
			return err
		}
	}
	return nil
}

func loadBrokenOffsets(ctx context.Context, h *Handler) error {
	employees := []engine.Employee{
		{ID: "emp-101", Code: "OP-101", Name: "Nils Berg", BaseRole: engine.RoleOperator, Active: true},
		{ID: "emp-102", Code: "OP-102", Name: "Ines Moreau", BaseRole: engine.RoleOperator, Active: true},
	}
	for _, e := range employees {
		if err := h.Workforce.SaveEmployee(ctx, e); err != nil {
			return err
		}
	}

	machine := engine.Machine{
		ID:                "mach-extruder-2",
		Name:              "Extruder 2",
		Environment:       "extrusion",
		Status:            engine.MachineActive,
		OperatorsPerShift: 1,
		ShiftCycleEnabled: true,
		CycleStartDate:    engine.NewDate(2025, 1, 6),
		CrewSize:          1,
	}
	if err := h.Workforce.SaveMachine(ctx, machine); err != nil {
		return err
	}

	crews := []engine.Crew{
		{ID: "crew-x", MachineID: machine.ID, Letter: "X", CycleOffset: 0, Active: true,
			Members: []engine.EmployeeID{"emp-101"}},
		{ID: "crew-y", MachineID: machine.ID, Letter: "Y", CycleOffset: 0, Active: true,
			Members: []engine.EmployeeID{"emp-102"}},
	}
	for _, c := range crews {
		if err := h.Workforce.SaveCrew(ctx, c); err != nil {
			return err
		}
	}
	return nil
}
