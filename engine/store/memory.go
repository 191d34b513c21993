// Package store provides in-memory implementations of the engine's
// persistence interfaces, for tests and demos.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/forge/crew-engine/engine"
)

// =============================================================================
// MEMORY STORE - Implements WorkforceStore and AssignmentStore
// =============================================================================

type Memory struct {
	mu  sync.RWMutex
	cfg engine.Config

	employees map[engine.EmployeeID]engine.Employee
	machines  map[engine.MachineID]engine.Machine
	crews     map[engine.CrewID]engine.Crew

	assignments map[engine.AssignmentID]engine.LaborAssignment
	overrides   map[engine.OverrideID]engine.DailyRoleOverride
	supervisors map[string]engine.ShiftSupervisorAssignment

	// Uniqueness indexes, mirroring the SQL store's unique indexes.
	employeeSlots   map[string]engine.AssignmentID // employee/date/shift
	machineSlots    map[string]engine.AssignmentID // machine/date/shift
	overrideKeys    map[string]engine.OverrideID   // employee/date/scope
	supervisorSlots map[string]string              // supervisor/date/shift
}

func NewMemory(cfg engine.Config) *Memory {
	return &Memory{
		cfg:             cfg,
		employees:       make(map[engine.EmployeeID]engine.Employee),
		machines:        make(map[engine.MachineID]engine.Machine),
		crews:           make(map[engine.CrewID]engine.Crew),
		assignments:     make(map[engine.AssignmentID]engine.LaborAssignment),
		overrides:       make(map[engine.OverrideID]engine.DailyRoleOverride),
		supervisors:     make(map[string]engine.ShiftSupervisorAssignment),
		employeeSlots:   make(map[string]engine.AssignmentID),
		machineSlots:    make(map[string]engine.AssignmentID),
		overrideKeys:    make(map[string]engine.OverrideID),
		supervisorSlots: make(map[string]string),
	}
}

// Reset clears every record. Dev/demo only.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees = make(map[engine.EmployeeID]engine.Employee)
	m.machines = make(map[engine.MachineID]engine.Machine)
	m.crews = make(map[engine.CrewID]engine.Crew)
	m.assignments = make(map[engine.AssignmentID]engine.LaborAssignment)
	m.overrides = make(map[engine.OverrideID]engine.DailyRoleOverride)
	m.supervisors = make(map[string]engine.ShiftSupervisorAssignment)
	m.employeeSlots = make(map[string]engine.AssignmentID)
	m.machineSlots = make(map[string]engine.AssignmentID)
	m.overrideKeys = make(map[string]engine.OverrideID)
	m.supervisorSlots = make(map[string]string)
	return nil
}

// -----------------------------------------------------------------------------
// WorkforceStore
// -----------------------------------------------------------------------------

func (m *Memory) SaveEmployee(_ context.Context, e engine.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
	return nil
}

func (m *Memory) GetEmployee(_ context.Context, id engine.EmployeeID) (*engine.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.employees[id]; ok {
		return &e, nil
	}
	return nil, nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]engine.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]engine.Employee, 0, len(m.employees))
	for _, e := range m.employees {
		out = append(out, e)
	}
	return out, nil
}

func (m *Memory) SaveMachine(_ context.Context, mc engine.Machine) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.machines[mc.ID] = mc
	return nil
}

func (m *Memory) GetMachine(_ context.Context, id engine.MachineID) (*engine.Machine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if mc, ok := m.machines[id]; ok {
		return &mc, nil
	}
	return nil, nil
}

func (m *Memory) ListMachines(_ context.Context) ([]engine.Machine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]engine.Machine, 0, len(m.machines))
	for _, mc := range m.machines {
		out = append(out, mc)
	}
	return out, nil
}

func (m *Memory) SaveCrew(_ context.Context, c engine.Crew) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.crews[c.ID] = c
	return nil
}

func (m *Memory) ListCrews(_ context.Context, machineID engine.MachineID) ([]engine.Crew, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.Crew
	for _, c := range m.crews {
		if c.MachineID == machineID {
			out = append(out, c)
		}
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// AssignmentStore
// -----------------------------------------------------------------------------

func slotKey(a, b, c string) string { return a + "/" + b + "/" + c }

func (m *Memory) CreateAssignment(_ context.Context, a engine.LaborAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	empKey := slotKey(string(a.EmployeeID), a.Date.String(), string(a.Shift))
	if existing, ok := m.employeeSlots[empKey]; ok {
		return &engine.ConflictError{Key: empKey, Existing: string(existing), Kind: engine.ErrDuplicateEmployeeAssignment}
	}
	machKey := slotKey(string(a.MachineID), a.Date.String(), string(a.Shift))
	if !m.cfg.SharedMachineSlots {
		if existing, ok := m.machineSlots[machKey]; ok {
			return &engine.ConflictError{Key: machKey, Existing: string(existing), Kind: engine.ErrDuplicateMachineAssignment}
		}
	}

	m.assignments[a.ID] = a
	m.employeeSlots[empKey] = a.ID
	m.machineSlots[machKey] = a.ID
	return nil
}

func (m *Memory) GetAssignment(_ context.Context, id engine.AssignmentID) (*engine.LaborAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if a, ok := m.assignments[id]; ok {
		return &a, nil
	}
	return nil, nil
}

func (m *Memory) UpdateAssignmentStatus(_ context.Context, id engine.AssignmentID, status engine.AssignmentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.assignments[id]
	if !ok {
		return fmt.Errorf("%w: %s", engine.ErrAssignmentNotFound, id)
	}
	a.Status = status
	m.assignments[id] = a
	return nil
}

func (m *Memory) ListAssignmentsForDate(_ context.Context, date engine.Date) ([]engine.LaborAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.LaborAssignment
	for _, a := range m.assignments {
		if a.Date.Equal(date) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *Memory) CreateOverride(_ context.Context, o engine.DailyRoleOverride) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := slotKey(string(o.EmployeeID), o.Date.String(), string(o.Scope))
	if existing, ok := m.overrideKeys[key]; ok {
		return &engine.ConflictError{Key: key, Existing: string(existing), Kind: engine.ErrDuplicateOverride}
	}
	m.overrides[o.ID] = o
	m.overrideKeys[key] = o.ID
	return nil
}

func (m *Memory) ListOverrides(_ context.Context, employeeID engine.EmployeeID, date engine.Date) ([]engine.DailyRoleOverride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.DailyRoleOverride
	for _, o := range m.overrides {
		if o.EmployeeID == employeeID && o.Date.Equal(date) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *Memory) ListOverridesForDate(_ context.Context, date engine.Date) ([]engine.DailyRoleOverride, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.DailyRoleOverride
	for _, o := range m.overrides {
		if o.Date.Equal(date) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *Memory) CreateSupervisorAssignment(_ context.Context, s engine.ShiftSupervisorAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := slotKey(string(s.SupervisorID), s.Date.String(), string(s.Shift))
	if existing, ok := m.supervisorSlots[key]; ok {
		return &engine.ConflictError{Key: key, Existing: existing, Kind: engine.ErrDuplicateSupervisorAssignment}
	}
	m.supervisors[s.ID] = s
	m.supervisorSlots[key] = s.ID
	return nil
}

func (m *Memory) ListSupervisorAssignments(_ context.Context, date engine.Date) ([]engine.ShiftSupervisorAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []engine.ShiftSupervisorAssignment
	for _, s := range m.supervisors {
		if s.Date.Equal(date) {
			out = append(out, s)
		}
	}
	return out, nil
}
