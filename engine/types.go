/*
Package engine provides the core crew-rotation scheduling engine.

PURPOSE:
  This package contains the domain model and algorithms for factory-floor
  shift scheduling: the deterministic 2-2-2 crew rotation, per-machine
  role quotas, daily role overrides, and the guard that mediates all
  concrete assignment writes.

KEY CONCEPTS IN THIS FILE (types.go):
  - Employee/Machine/Crew: the workforce configuration records
  - DailyRoleOverride: a one-day role change layered over a base role
  - LaborAssignment: a concrete (employee, machine, date, shift) record
  - ShiftSupervisorAssignment: supervisor on duty for a (date, shift)
  - Typed IDs: prevent mixing employee/machine/crew identifiers

DESIGN PRINCIPLES:
  1. Derivation over storage: shift labels and rosters are always
     recomputed from Machine.CycleStartDate and Crew.CycleOffset,
     never persisted. Editing the anchor date changes history views.
  2. Type safety: strong typing for IDs and enums.
  3. Explicit configuration: engine behavior toggles travel in a
     Config value handed to constructors, never in package state.

USAGE:
  label, err := engine.ShiftLabelAt(date, machine.CycleStartDate, crew.CycleOffset)
  report := engine.ValidateCoverage(machine, crews)

SEE ALSO:
  - cycle.go: rotation arithmetic
  - guard.go: write-side invariants
  - store.go: persistence interfaces
*/
package engine

import "time"

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type MachineID string
type CrewID string
type AssignmentID string
type OverrideID string

// =============================================================================
// ROLES
// =============================================================================

type Role string

const (
	RoleOperator   Role = "operator"
	RoleLoader     Role = "loader"
	RolePacker     Role = "packer"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

// Roles returns every known role, in display order.
func Roles() []Role {
	return []Role{RoleOperator, RoleLoader, RolePacker, RoleSupervisor, RoleAdmin}
}

// Valid reports whether the role is one of the known role tags.
func (r Role) Valid() bool {
	switch r {
	case RoleOperator, RoleLoader, RolePacker, RoleSupervisor, RoleAdmin:
		return true
	}
	return false
}

// =============================================================================
// SHIFTS
// =============================================================================

// Shift is a working shift on a calendar date. Rest is not a Shift;
// it only appears as a ShiftLabel in the rotation.
type Shift string

const (
	ShiftDay   Shift = "day"
	ShiftNight Shift = "night"
)

func (s Shift) Valid() bool { return s == ShiftDay || s == ShiftNight }

// Shifts returns both working shifts.
func Shifts() []Shift { return []Shift{ShiftDay, ShiftNight} }

// ShiftScope is the reach of a role override: one shift or both.
type ShiftScope string

const (
	ScopeDay   ShiftScope = "day"
	ScopeNight ShiftScope = "night"
	ScopeBoth  ShiftScope = "both"
)

func (s ShiftScope) Valid() bool {
	return s == ScopeDay || s == ScopeNight || s == ScopeBoth
}

// Covers reports whether the scope applies to the given shift.
func (s ShiftScope) Covers(shift Shift) bool {
	return s == ScopeBoth || string(s) == string(shift)
}

// ShiftLabel is a crew's computed status on a date: working days,
// working nights, or resting.
type ShiftLabel string

const (
	LabelDay   ShiftLabel = "day"
	LabelNight ShiftLabel = "night"
	LabelRest  ShiftLabel = "rest"
)

// =============================================================================
// WORKFORCE RECORDS
// =============================================================================

// Employee is owned by the identity subsystem; the engine reads it for
// eligibility and role checks only.
type Employee struct {
	ID       EmployeeID
	Code     string // unique employee code
	Name     string
	BaseRole Role
	Active   bool
}

type MachineStatus string

const (
	MachineActive      MachineStatus = "active"
	MachineMaintenance MachineStatus = "maintenance"
	MachineRetired     MachineStatus = "retired"
)

// Machine carries the per-shift role quotas and the rotation anchor.
type Machine struct {
	ID          MachineID
	Name        string
	Environment string
	Status      MachineStatus

	OperatorsPerShift     int
	HopperLoadersPerShift int
	PackersPerShift       int

	ShiftCycleEnabled bool
	CycleStartDate    Date // rotation anchor; editing it rewrites history views
	CrewSize          int  // informational headcount target
}

// Assignable reports whether labor can be booked onto this machine.
func (m Machine) Assignable() bool { return m.Status == MachineActive }

// Crew is a named group of employees sharing one rotation offset on one
// machine. Membership is many-to-many: crews reference employees, they
// do not own them.
type Crew struct {
	ID          CrewID
	MachineID   MachineID
	Letter      string // "A", "B", "C", ...
	CycleOffset int    // integer in [0, 6); conventionally 0/2/4
	Members     []EmployeeID
	Active      bool
}

// =============================================================================
// DAILY RECORDS
// =============================================================================

// DailyRoleOverride changes an employee's effective role for one date,
// scoped to one shift or both. At most one row per
// (employee, date, scope).
type DailyRoleOverride struct {
	ID           OverrideID
	EmployeeID   EmployeeID
	OriginalRole Role
	OverrideRole Role
	Date         Date
	Scope        ShiftScope
	AssignedBy   string
	Notes        string
	CreatedAt    time.Time
}

// ShiftSupervisorAssignment puts a supervisor on duty for one
// (date, shift). Unique per (supervisor, date, shift).
type ShiftSupervisorAssignment struct {
	ID           string
	SupervisorID EmployeeID
	Date         Date
	Shift        Shift
	CreatedBy    string
	CreatedAt    time.Time
}

// =============================================================================
// LABOR ASSIGNMENTS
// =============================================================================

type AssignmentStatus string

const (
	StatusPlanned   AssignmentStatus = "planned"
	StatusPresent   AssignmentStatus = "present"
	StatusAbsent    AssignmentStatus = "absent"
	StatusCompleted AssignmentStatus = "completed"
	StatusCancelled AssignmentStatus = "cancelled"
)

func (s AssignmentStatus) Valid() bool {
	switch s {
	case StatusPlanned, StatusPresent, StatusAbsent, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted.
func (s AssignmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// LaborAssignment binds one employee to one machine for one date/shift,
// independent of the recurring crew pattern.
type LaborAssignment struct {
	ID         AssignmentID
	EmployeeID EmployeeID
	MachineID  MachineID
	Date       Date
	Shift      Shift
	Status     AssignmentStatus
	CreatedBy  string
	CreatedAt  time.Time
}

// =============================================================================
// ENGINE CONFIGURATION
// =============================================================================

// Config is an immutable value passed into the engine's entry points.
// There is deliberately no package-level configuration state, so one
// process can run engines with different settings side by side.
type Config struct {
	// SharedMachineSlots allows multiple employees on the same
	// (machine, date, shift) slot. When false, the stricter
	// one-assignment-per-machine-slot rule applies.
	SharedMachineSlots bool
}

// DefaultConfig returns the strict configuration: one assignment per
// machine slot.
func DefaultConfig() Config {
	return Config{SharedMachineSlots: false}
}
