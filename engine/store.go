/*
store.go - Persistence interfaces for the scheduling engine

PURPOSE:
  Defines the boundary between the engine and storage. Implementations
  may use SQLite, PostgreSQL, or in-memory maps; the engine only cares
  about the contracts below.

UNIQUENESS CONTRACT:
  The conflict invariants live in the store, not in engine-level locks:
  CreateAssignment, CreateOverride and CreateSupervisorAssignment MUST
  reject a second row for the same key with the matching Duplicate*
  sentinel. Two concurrent creates for one key then race safely -
  exactly one succeeds, the other gets the conflict error. SQL
  implementations express this as unique indexes.

  Whether (machine, date, shift) is a uniqueness key is a Config
  choice handed to the store constructor; see Config.SharedMachineSlots.

NO DELETES:
  The engine exposes no deletion. Elapsed rows are history; any
  cleanup policy belongs to an outer layer.

IMPLEMENTATIONS:
  - store/sqlite: production store
  - engine/store: in-memory store for tests and demos
*/
package engine

import "context"

// WorkforceStore reads and writes the configuration records: employees,
// machines, crews. The engine treats employees as read-only except for
// seeding.
type WorkforceStore interface {
	SaveEmployee(ctx context.Context, e Employee) error
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)

	SaveMachine(ctx context.Context, m Machine) error
	GetMachine(ctx context.Context, id MachineID) (*Machine, error)
	ListMachines(ctx context.Context) ([]Machine, error)

	SaveCrew(ctx context.Context, c Crew) error
	ListCrews(ctx context.Context, machineID MachineID) ([]Crew, error)
}

// AssignmentStore persists the daily records: labor assignments, role
// overrides, supervisor assignments. All Create methods enforce their
// uniqueness key and return the matching Duplicate* sentinel on
// collision.
type AssignmentStore interface {
	CreateAssignment(ctx context.Context, a LaborAssignment) error
	GetAssignment(ctx context.Context, id AssignmentID) (*LaborAssignment, error)
	UpdateAssignmentStatus(ctx context.Context, id AssignmentID, status AssignmentStatus) error
	ListAssignmentsForDate(ctx context.Context, date Date) ([]LaborAssignment, error)

	CreateOverride(ctx context.Context, o DailyRoleOverride) error
	ListOverrides(ctx context.Context, employeeID EmployeeID, date Date) ([]DailyRoleOverride, error)
	ListOverridesForDate(ctx context.Context, date Date) ([]DailyRoleOverride, error)

	CreateSupervisorAssignment(ctx context.Context, s ShiftSupervisorAssignment) error
	ListSupervisorAssignments(ctx context.Context, date Date) ([]ShiftSupervisorAssignment, error)
}
