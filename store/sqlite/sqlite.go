/*
Package sqlite provides a SQLite-backed implementation of the engine's
storage interfaces.

PURPOSE:
  Implements engine.WorkforceStore and engine.AssignmentStore on
  SQLite. The same patterns carry to PostgreSQL with only dialect
  differences.

UNIQUE INDEXES CARRY THE INVARIANTS:
  idx_unique_employee_slot:   one row per (employee, date, shift)
  idx_unique_machine_slot:    one row per (machine, date, shift),
                              created only under the strict (non
                              shared-slot) configuration
  idx_unique_override:        one row per (employee, date, scope)
  idx_unique_supervisor_slot: one row per (supervisor, date, shift)

  Two concurrent conflicting creates race safely: exactly one insert
  wins, the other maps to the matching Duplicate* sentinel. No
  engine-level locking is needed.

WAL MODE:
  The database is opened with WAL so readers never block on the single
  writer.

USAGE:
  st, err := sqlite.New("./data/floor.db", engine.DefaultConfig())
  if err != nil { log.Fatal(err) }
  defer st.Close()
  guard := engine.NewGuard(cfg, st, st)

SEE ALSO:
  - engine/store.go: interface contracts
  - engine/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/forge/crew-engine/engine"
)

// Store implements both storage interfaces using SQLite.
type Store struct {
	db  *sql.DB
	cfg engine.Config
}

// New opens (or creates) the database at dbPath and migrates the
// schema. Use ":memory:" for an in-memory database.
func New(dbPath string, cfg engine.Config) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		base_role TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS machines (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		environment TEXT,
		status TEXT NOT NULL DEFAULT 'active',
		operators_per_shift INTEGER NOT NULL DEFAULT 0,
		hopper_loaders_per_shift INTEGER NOT NULL DEFAULT 0,
		packers_per_shift INTEGER NOT NULL DEFAULT 0,
		shift_cycle_enabled INTEGER NOT NULL DEFAULT 0,
		cycle_start_date TEXT,
		crew_size INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS crews (
		id TEXT PRIMARY KEY,
		machine_id TEXT NOT NULL REFERENCES machines(id),
		letter TEXT NOT NULL,
		cycle_offset INTEGER NOT NULL,
		active INTEGER NOT NULL DEFAULT 1
	);
	CREATE INDEX IF NOT EXISTS idx_crews_machine ON crews(machine_id);

	CREATE TABLE IF NOT EXISTS crew_members (
		crew_id TEXT NOT NULL REFERENCES crews(id),
		employee_id TEXT NOT NULL REFERENCES employees(id),
		PRIMARY KEY (crew_id, employee_id)
	);

	CREATE TABLE IF NOT EXISTS labor_assignments (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		machine_id TEXT NOT NULL REFERENCES machines(id),
		assignment_date TEXT NOT NULL,
		shift TEXT NOT NULL,
		status TEXT NOT NULL,
		created_by TEXT,
		created_at TEXT NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_employee_slot
		ON labor_assignments(employee_id, assignment_date, shift);
	CREATE INDEX IF NOT EXISTS idx_assignments_date
		ON labor_assignments(assignment_date);

	CREATE TABLE IF NOT EXISTS role_overrides (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		original_role TEXT NOT NULL,
		override_role TEXT NOT NULL,
		override_date TEXT NOT NULL,
		shift_scope TEXT NOT NULL,
		assigned_by TEXT,
		notes TEXT,
		created_at TEXT NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_override
		ON role_overrides(employee_id, override_date, shift_scope);
	CREATE INDEX IF NOT EXISTS idx_overrides_date
		ON role_overrides(override_date);

	CREATE TABLE IF NOT EXISTS supervisor_assignments (
		id TEXT PRIMARY KEY,
		supervisor_id TEXT NOT NULL REFERENCES employees(id),
		assignment_date TEXT NOT NULL,
		shift TEXT NOT NULL,
		created_by TEXT,
		created_at TEXT NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_supervisor_slot
		ON supervisor_assignments(supervisor_id, assignment_date, shift);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// The machine-slot key is a configuration choice: multi-operator
	// machines drop the index and allow several rows per slot.
	if !s.cfg.SharedMachineSlots {
		_, err := s.db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_machine_slot
			ON labor_assignments(machine_id, assignment_date, shift)`)
		return err
	}
	_, err := s.db.Exec(`DROP INDEX IF EXISTS idx_unique_machine_slot`)
	return err
}

// =============================================================================
// WORKFORCE STORE
// =============================================================================

func (s *Store) SaveEmployee(ctx context.Context, e engine.Employee) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, code, name, base_role, active)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			code = excluded.code, name = excluded.name,
			base_role = excluded.base_role, active = excluded.active`,
		string(e.ID), e.Code, e.Name, string(e.BaseRole), boolInt(e.Active))
	return err
}

func (s *Store) GetEmployee(ctx context.Context, id engine.EmployeeID) (*engine.Employee, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, code, name, base_role, active FROM employees WHERE id = ?`, string(id))
	var e engine.Employee
	var active int
	err := row.Scan(&e.ID, &e.Code, &e.Name, &e.BaseRole, &active)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	e.Active = active != 0
	return &e, nil
}

func (s *Store) ListEmployees(ctx context.Context) ([]engine.Employee, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, code, name, base_role, active FROM employees ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Employee
	for rows.Next() {
		var e engine.Employee
		var active int
		if err := rows.Scan(&e.ID, &e.Code, &e.Name, &e.BaseRole, &active); err != nil {
			return nil, err
		}
		e.Active = active != 0
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) SaveMachine(ctx context.Context, m engine.Machine) error {
	var cycleStart any
	if !m.CycleStartDate.IsZero() {
		cycleStart = m.CycleStartDate.String()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO machines (id, name, environment, status,
			operators_per_shift, hopper_loaders_per_shift, packers_per_shift,
			shift_cycle_enabled, cycle_start_date, crew_size)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, environment = excluded.environment,
			status = excluded.status,
			operators_per_shift = excluded.operators_per_shift,
			hopper_loaders_per_shift = excluded.hopper_loaders_per_shift,
			packers_per_shift = excluded.packers_per_shift,
			shift_cycle_enabled = excluded.shift_cycle_enabled,
			cycle_start_date = excluded.cycle_start_date,
			crew_size = excluded.crew_size`,
		string(m.ID), m.Name, m.Environment, string(m.Status),
		m.OperatorsPerShift, m.HopperLoadersPerShift, m.PackersPerShift,
		boolInt(m.ShiftCycleEnabled), cycleStart, m.CrewSize)
	return err
}

func (s *Store) GetMachine(ctx context.Context, id engine.MachineID) (*engine.Machine, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, environment, status,
			operators_per_shift, hopper_loaders_per_shift, packers_per_shift,
			shift_cycle_enabled, cycle_start_date, crew_size
		FROM machines WHERE id = ?`, string(id))
	m, err := scanMachine(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) ListMachines(ctx context.Context) ([]engine.Machine, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, environment, status,
			operators_per_shift, hopper_loaders_per_shift, packers_per_shift,
			shift_cycle_enabled, cycle_start_date, crew_size
		FROM machines ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Machine
	for rows.Next() {
		m, err := scanMachine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMachine(r rowScanner) (*engine.Machine, error) {
	var m engine.Machine
	var env sql.NullString
	var cycleStart sql.NullString
	var enabled int
	err := r.Scan(&m.ID, &m.Name, &env, &m.Status,
		&m.OperatorsPerShift, &m.HopperLoadersPerShift, &m.PackersPerShift,
		&enabled, &cycleStart, &m.CrewSize)
	if err != nil {
		return nil, err
	}
	m.Environment = env.String
	m.ShiftCycleEnabled = enabled != 0
	if cycleStart.Valid && cycleStart.String != "" {
		d, err := engine.ParseDate(cycleStart.String)
		if err != nil {
			return nil, err
		}
		m.CycleStartDate = d
	}
	return &m, nil
}

// SaveCrew upserts the crew row and replaces its membership set
// atomically.
func (s *Store) SaveCrew(ctx context.Context, c engine.Crew) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO crews (id, machine_id, letter, cycle_offset, active)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			machine_id = excluded.machine_id, letter = excluded.letter,
			cycle_offset = excluded.cycle_offset, active = excluded.active`,
		string(c.ID), string(c.MachineID), c.Letter, c.CycleOffset, boolInt(c.Active)); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM crew_members WHERE crew_id = ?`, string(c.ID)); err != nil {
		return err
	}
	for _, empID := range c.Members {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO crew_members (crew_id, employee_id) VALUES (?, ?)`,
			string(c.ID), string(empID)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) ListCrews(ctx context.Context, machineID engine.MachineID) ([]engine.Crew, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, machine_id, letter, cycle_offset, active
		FROM crews WHERE machine_id = ? ORDER BY letter`, string(machineID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Crew
	for rows.Next() {
		var c engine.Crew
		var active int
		if err := rows.Scan(&c.ID, &c.MachineID, &c.Letter, &c.CycleOffset, &active); err != nil {
			return nil, err
		}
		c.Active = active != 0
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		members, err := s.crewMembers(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Members = members
	}
	return out, nil
}

func (s *Store) crewMembers(ctx context.Context, crewID engine.CrewID) ([]engine.EmployeeID, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT employee_id FROM crew_members WHERE crew_id = ? ORDER BY employee_id`, string(crewID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.EmployeeID
	for rows.Next() {
		var id engine.EmployeeID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// =============================================================================
// ASSIGNMENT STORE
// =============================================================================

func (s *Store) CreateAssignment(ctx context.Context, a engine.LaborAssignment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO labor_assignments
			(id, employee_id, machine_id, assignment_date, shift, status, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(a.ID), string(a.EmployeeID), string(a.MachineID),
		a.Date.String(), string(a.Shift), string(a.Status),
		a.CreatedBy, a.CreatedAt.UTC().Format(time.RFC3339))
	return mapUniqueError(err)
}

func (s *Store) GetAssignment(ctx context.Context, id engine.AssignmentID) (*engine.LaborAssignment, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, employee_id, machine_id, assignment_date, shift, status, created_by, created_at
		FROM labor_assignments WHERE id = ?`, string(id))
	a, err := scanAssignment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Store) UpdateAssignmentStatus(ctx context.Context, id engine.AssignmentID, status engine.AssignmentStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE labor_assignments SET status = ? WHERE id = ?`, string(status), string(id))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", engine.ErrAssignmentNotFound, id)
	}
	return nil
}

func (s *Store) ListAssignmentsForDate(ctx context.Context, date engine.Date) ([]engine.LaborAssignment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, machine_id, assignment_date, shift, status, created_by, created_at
		FROM labor_assignments WHERE assignment_date = ? ORDER BY id`, date.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.LaborAssignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func scanAssignment(r rowScanner) (*engine.LaborAssignment, error) {
	var a engine.LaborAssignment
	var date, createdAt string
	var createdBy sql.NullString
	err := r.Scan(&a.ID, &a.EmployeeID, &a.MachineID, &date, &a.Shift, &a.Status, &createdBy, &createdAt)
	if err != nil {
		return nil, err
	}
	d, err := engine.ParseDate(date)
	if err != nil {
		return nil, err
	}
	a.Date = d
	a.CreatedBy = createdBy.String
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		a.CreatedAt = t
	}
	return &a, nil
}

func (s *Store) CreateOverride(ctx context.Context, o engine.DailyRoleOverride) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO role_overrides
			(id, employee_id, original_role, override_role, override_date, shift_scope, assigned_by, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(o.ID), string(o.EmployeeID), string(o.OriginalRole), string(o.OverrideRole),
		o.Date.String(), string(o.Scope), o.AssignedBy, o.Notes,
		o.CreatedAt.UTC().Format(time.RFC3339))
	return mapUniqueError(err)
}

func (s *Store) ListOverrides(ctx context.Context, employeeID engine.EmployeeID, date engine.Date) ([]engine.DailyRoleOverride, error) {
	return s.queryOverrides(ctx, `
		SELECT id, employee_id, original_role, override_role, override_date, shift_scope, assigned_by, notes, created_at
		FROM role_overrides WHERE employee_id = ? AND override_date = ?`,
		string(employeeID), date.String())
}

func (s *Store) ListOverridesForDate(ctx context.Context, date engine.Date) ([]engine.DailyRoleOverride, error) {
	return s.queryOverrides(ctx, `
		SELECT id, employee_id, original_role, override_role, override_date, shift_scope, assigned_by, notes, created_at
		FROM role_overrides WHERE override_date = ?`, date.String())
}

func (s *Store) queryOverrides(ctx context.Context, query string, args ...any) ([]engine.DailyRoleOverride, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.DailyRoleOverride
	for rows.Next() {
		var o engine.DailyRoleOverride
		var date, createdAt string
		var assignedBy, notes sql.NullString
		if err := rows.Scan(&o.ID, &o.EmployeeID, &o.OriginalRole, &o.OverrideRole,
			&date, &o.Scope, &assignedBy, &notes, &createdAt); err != nil {
			return nil, err
		}
		d, err := engine.ParseDate(date)
		if err != nil {
			return nil, err
		}
		o.Date = d
		o.AssignedBy = assignedBy.String
		o.Notes = notes.String
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			o.CreatedAt = t
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) CreateSupervisorAssignment(ctx context.Context, sup engine.ShiftSupervisorAssignment) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO supervisor_assignments
			(id, supervisor_id, assignment_date, shift, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sup.ID, string(sup.SupervisorID), sup.Date.String(), string(sup.Shift),
		sup.CreatedBy, sup.CreatedAt.UTC().Format(time.RFC3339))
	return mapUniqueError(err)
}

func (s *Store) ListSupervisorAssignments(ctx context.Context, date engine.Date) ([]engine.ShiftSupervisorAssignment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, supervisor_id, assignment_date, shift, created_by, created_at
		FROM supervisor_assignments WHERE assignment_date = ? ORDER BY shift, supervisor_id`,
		date.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.ShiftSupervisorAssignment
	for rows.Next() {
		var sup engine.ShiftSupervisorAssignment
		var d, createdAt string
		var createdBy sql.NullString
		if err := rows.Scan(&sup.ID, &sup.SupervisorID, &d, &sup.Shift, &createdBy, &createdAt); err != nil {
			return nil, err
		}
		date, err := engine.ParseDate(d)
		if err != nil {
			return nil, err
		}
		sup.Date = date
		sup.CreatedBy = createdBy.String
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			sup.CreatedAt = t
		}
		out = append(out, sup)
	}
	return out, rows.Err()
}

// Reset truncates every table. Dev/demo only.
func (s *Store) Reset(ctx context.Context) error {
	tables := []string{
		"labor_assignments", "role_overrides", "supervisor_assignments",
		"crew_members", "crews", "machines", "employees",
	}
	for _, t := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+t); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// mapUniqueError translates SQLite unique-constraint failures into the
// engine's conflict sentinels by inspecting the violated columns.
func mapUniqueError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return err
	}
	switch {
	case strings.Contains(msg, "labor_assignments.employee_id"):
		return fmt.Errorf("%w: %v", engine.ErrDuplicateEmployeeAssignment, err)
	case strings.Contains(msg, "labor_assignments.machine_id"):
		return fmt.Errorf("%w: %v", engine.ErrDuplicateMachineAssignment, err)
	case strings.Contains(msg, "role_overrides."):
		return fmt.Errorf("%w: %v", engine.ErrDuplicateOverride, err)
	case strings.Contains(msg, "supervisor_assignments."):
		return fmt.Errorf("%w: %v", engine.ErrDuplicateSupervisorAssignment, err)
	}
	return err
}
