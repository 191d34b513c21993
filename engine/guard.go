/*
guard.go - Write-side invariants for concrete assignments

PURPOSE:
  Every write to the daily records (labor assignments, supervisor
  assignments, role overrides) goes through the Guard. It checks
  eligibility before touching storage and relies on the store's
  uniqueness contract for conflicts, so concurrent creates for the
  same slot race safely.

PRECONDITION ORDER (CreateAssignment):
  1. employee exists and is active        -> ErrInactiveEmployee
  2. machine exists and is assignable     -> ErrMachineUnavailable
  3. (employee, date, shift) free         -> ErrDuplicateEmployeeAssignment
  4. (machine, date, shift) free, unless
     Config.SharedMachineSlots            -> ErrDuplicateMachineAssignment

STATE MACHINE:
  planned -> present | absent | cancelled
  present -> completed
  Terminal states (completed, cancelled) accept nothing.

SUPERVISOR COVERAGE:
  SupervisorCoverageReport flags (date, shift) slots with zero
  supervisor rows. Critical severity, advisory only: it reports,
  it never blocks a write.
*/
package engine

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// transitions is the full assignment lifecycle, as data.
var transitions = map[AssignmentStatus][]AssignmentStatus{
	StatusPlanned: {StatusPresent, StatusAbsent, StatusCancelled},
	StatusPresent: {StatusCompleted},
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to AssignmentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Guard mediates all writes against the persisted daily records.
type Guard struct {
	cfg         Config
	workforce   WorkforceStore
	assignments AssignmentStore

	now   func() time.Time // swappable for tests
	newID func(prefix string) string
}

func NewGuard(cfg Config, workforce WorkforceStore, assignments AssignmentStore) *Guard {
	return &Guard{
		cfg:         cfg,
		workforce:   workforce,
		assignments: assignments,
		now:         time.Now,
		newID:       randomID,
	}
}

func randomID(prefix string) string {
	var b [8]byte
	rand.Read(b[:])
	return prefix + "-" + hex.EncodeToString(b[:])
}

// =============================================================================
// LABOR ASSIGNMENTS
// =============================================================================

// CreateAssignment books employee onto machine for date/shift. On
// success the assignment is persisted with status planned.
func (g *Guard) CreateAssignment(ctx context.Context, employeeID EmployeeID, machineID MachineID, date Date, shift Shift, createdBy string) (*LaborAssignment, error) {
	if !shift.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidShift, shift)
	}

	emp, err := g.workforce.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, fmt.Errorf("%w: %s", ErrEmployeeNotFound, employeeID)
	}
	if !emp.Active {
		return nil, fmt.Errorf("%w: %s", ErrInactiveEmployee, employeeID)
	}

	machine, err := g.workforce.GetMachine(ctx, machineID)
	if err != nil {
		return nil, err
	}
	if machine == nil {
		return nil, fmt.Errorf("%w: %s", ErrMachineNotFound, machineID)
	}
	if !machine.Assignable() {
		return nil, fmt.Errorf("%w: %s is %s", ErrMachineUnavailable, machineID, machine.Status)
	}

	// Friendly conflict pre-check. The store's uniqueness keys remain
	// the authoritative backstop, so a concurrent create that slips
	// past this still resolves to exactly one winner.
	existing, err := g.assignments.ListAssignmentsForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	for _, row := range existing {
		if row.Shift != shift {
			continue
		}
		if row.EmployeeID == employeeID {
			return nil, &ConflictError{
				Key:      fmt.Sprintf("%s/%s/%s", employeeID, date, shift),
				Existing: string(row.ID),
				Kind:     ErrDuplicateEmployeeAssignment,
			}
		}
		if !g.cfg.SharedMachineSlots && row.MachineID == machineID {
			return nil, &ConflictError{
				Key:      fmt.Sprintf("%s/%s/%s", machineID, date, shift),
				Existing: string(row.ID),
				Kind:     ErrDuplicateMachineAssignment,
			}
		}
	}

	a := LaborAssignment{
		ID:         AssignmentID(g.newID("asg")),
		EmployeeID: employeeID,
		MachineID:  machineID,
		Date:       date,
		Shift:      shift,
		Status:     StatusPlanned,
		CreatedBy:  createdBy,
		CreatedAt:  g.now().UTC(),
	}
	if err := g.assignments.CreateAssignment(ctx, a); err != nil {
		return nil, err
	}
	return &a, nil
}

// TransitionAssignment moves an assignment through its lifecycle.
func (g *Guard) TransitionAssignment(ctx context.Context, id AssignmentID, to AssignmentStatus) (*LaborAssignment, error) {
	if !to.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	a, err := g.assignments.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("%w: %s", ErrAssignmentNotFound, id)
	}
	if !CanTransition(a.Status, to) {
		return nil, &TransitionError{AssignmentID: id, From: a.Status, To: to}
	}
	if err := g.assignments.UpdateAssignmentStatus(ctx, id, to); err != nil {
		return nil, err
	}
	a.Status = to
	return a, nil
}

// =============================================================================
// SUPERVISOR ASSIGNMENTS
// =============================================================================

// CreateSupervisorAssignment puts a supervisor on duty for date/shift.
// The employee's base or effective role on that date/shift must be
// supervisor.
func (g *Guard) CreateSupervisorAssignment(ctx context.Context, supervisorID EmployeeID, date Date, shift Shift, createdBy string) (*ShiftSupervisorAssignment, error) {
	if !shift.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidShift, shift)
	}

	emp, err := g.workforce.GetEmployee(ctx, supervisorID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, fmt.Errorf("%w: %s", ErrEmployeeNotFound, supervisorID)
	}
	if !emp.Active {
		return nil, fmt.Errorf("%w: %s", ErrInactiveEmployee, supervisorID)
	}

	if emp.BaseRole != RoleSupervisor {
		overrides, err := g.assignments.ListOverrides(ctx, supervisorID, date)
		if err != nil {
			return nil, err
		}
		if EffectiveRole(*emp, date, shift, overrides) != RoleSupervisor {
			return nil, fmt.Errorf("%w: %s has role %s on %s/%s", ErrNotSupervisor, supervisorID, emp.BaseRole, date, shift)
		}
	}

	s := ShiftSupervisorAssignment{
		ID:           g.newID("sup"),
		SupervisorID: supervisorID,
		Date:         date,
		Shift:        shift,
		CreatedBy:    createdBy,
		CreatedAt:    g.now().UTC(),
	}
	if err := g.assignments.CreateSupervisorAssignment(ctx, s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SupervisorSlot is the coverage state of one (date, shift).
type SupervisorSlot struct {
	Date        Date
	Shift       Shift
	Supervisors []EmployeeID
	Covered     bool
}

// SupervisorCoverageReport lists both shifts on a date with their
// supervisor rows. Uncovered slots carry critical severity but the
// report never blocks anything.
type SupervisorCoverageReport struct {
	Date     Date
	Slots    []SupervisorSlot
	Findings []CoverageFinding
}

const FindingNoSupervisor FindingCode = "no_supervisor"

func (g *Guard) SupervisorCoverageReport(ctx context.Context, date Date) (*SupervisorCoverageReport, error) {
	rows, err := g.assignments.ListSupervisorAssignments(ctx, date)
	if err != nil {
		return nil, err
	}

	report := &SupervisorCoverageReport{Date: date}
	for _, shift := range Shifts() {
		slot := SupervisorSlot{Date: date, Shift: shift, Supervisors: []EmployeeID{}}
		for _, r := range rows {
			if r.Shift == shift {
				slot.Supervisors = append(slot.Supervisors, r.SupervisorID)
			}
		}
		slot.Covered = len(slot.Supervisors) > 0
		if !slot.Covered {
			report.Findings = append(report.Findings, CoverageFinding{
				Code:     FindingNoSupervisor,
				Severity: SeverityCritical,
				Detail:   fmt.Sprintf("no supervisor assigned for %s %s shift", date, shift),
			})
		}
		report.Slots = append(report.Slots, slot)
	}
	return report, nil
}

// =============================================================================
// ROLE OVERRIDES
// =============================================================================

// CreateOverride records a one-day role change for an employee. The
// original (base) role is captured on the row for auditability.
func (g *Guard) CreateOverride(ctx context.Context, employeeID EmployeeID, date Date, scope ShiftScope, role Role, assignedBy, notes string) (*DailyRoleOverride, error) {
	if !scope.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidScope, scope)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	emp, err := g.workforce.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, fmt.Errorf("%w: %s", ErrEmployeeNotFound, employeeID)
	}
	if !emp.Active {
		return nil, fmt.Errorf("%w: %s", ErrInactiveEmployee, employeeID)
	}

	o := DailyRoleOverride{
		ID:           OverrideID(g.newID("ovr")),
		EmployeeID:   employeeID,
		OriginalRole: emp.BaseRole,
		OverrideRole: role,
		Date:         date,
		Scope:        scope,
		AssignedBy:   assignedBy,
		Notes:        notes,
		CreatedAt:    g.now().UTC(),
	}
	if err := g.assignments.CreateOverride(ctx, o); err != nil {
		return nil, err
	}
	return &o, nil
}

// EffectiveRoleFor is the store-backed form of EffectiveRole.
func (g *Guard) EffectiveRoleFor(ctx context.Context, employeeID EmployeeID, date Date, shift Shift) (Role, error) {
	if !shift.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidShift, shift)
	}
	emp, err := g.workforce.GetEmployee(ctx, employeeID)
	if err != nil {
		return "", err
	}
	if emp == nil {
		return "", fmt.Errorf("%w: %s", ErrEmployeeNotFound, employeeID)
	}
	overrides, err := g.assignments.ListOverrides(ctx, employeeID, date)
	if err != nil {
		return "", err
	}
	return EffectiveRole(*emp, date, shift, overrides), nil
}

// StaffingFor resolves a machine's staffing on date using stored crews,
// employees and overrides.
func (g *Guard) StaffingFor(ctx context.Context, machineID MachineID, date Date) (*StaffingReport, error) {
	machine, err := g.workforce.GetMachine(ctx, machineID)
	if err != nil {
		return nil, err
	}
	if machine == nil {
		return nil, fmt.Errorf("%w: %s", ErrMachineNotFound, machineID)
	}
	crews, err := g.workforce.ListCrews(ctx, machineID)
	if err != nil {
		return nil, err
	}
	list, err := g.workforce.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	employees := make(map[EmployeeID]Employee, len(list))
	for _, e := range list {
		employees[e.ID] = e
	}
	overrides, err := g.assignments.ListOverridesForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	report, err := ResolveStaffing(*machine, crews, employees, overrides, date)
	if err != nil {
		return nil, err
	}
	return &report, nil
}
