/*
Package rules holds the declarative business-rule layer: the role
capability table and the severity-tagged scheduling rules.

PURPOSE:
  Keep policy as data, not scattered conditionals. Adding a role or a
  rule is an entry in a table here; no call site changes. Rules are
  typed predicate functions, statically checkable, never free-form
  query strings.

RULE SEVERITY:
  critical - surfaced prominently (e.g. a shift with no supervisor);
             still advisory, never blocks a write
  warning  - configuration smells (non-standard crew count, empty crew)
  All hard write failures live in engine/guard.go, not here.

SEE ALSO:
  - engine/coverage.go: the machine-level checks the coverage rule wraps
  - engine/guard.go: supervisor coverage data source
*/
package rules

import (
	"context"
	"fmt"

	"github.com/forge/crew-engine/engine"
)

// =============================================================================
// ROLE CAPABILITIES
// =============================================================================

// Capability is an operation class a role may perform.
type Capability string

const (
	CapViewSchedule     Capability = "view_schedule"
	CapAssignLabor      Capability = "assign_labor"
	CapOverrideRole     Capability = "override_role"
	CapAssignSupervisor Capability = "assign_supervisor"
	CapManageWorkforce  Capability = "manage_workforce"
)

// capabilities is the role -> allowed-operation table. Floor roles can
// look but not write; supervisors run the day; admins configure the
// workforce itself.
var capabilities = map[engine.Role][]Capability{
	engine.RoleOperator:   {CapViewSchedule},
	engine.RoleLoader:     {CapViewSchedule},
	engine.RolePacker:     {CapViewSchedule},
	engine.RoleSupervisor: {CapViewSchedule, CapAssignLabor, CapOverrideRole, CapAssignSupervisor},
	engine.RoleAdmin:      {CapViewSchedule, CapAssignLabor, CapOverrideRole, CapAssignSupervisor, CapManageWorkforce},
}

// Allowed reports whether role may perform cap. Unknown roles may do
// nothing.
func Allowed(role engine.Role, cap Capability) bool {
	for _, c := range capabilities[role] {
		if c == cap {
			return true
		}
	}
	return false
}

// Capabilities returns the capability set for a role.
func Capabilities(role engine.Role) []Capability {
	out := make([]Capability, len(capabilities[role]))
	copy(out, capabilities[role])
	return out
}

// =============================================================================
// SCHEDULING RULES
// =============================================================================

// Finding is one advisory result from rule evaluation.
type Finding struct {
	Rule     string
	Code     engine.FindingCode
	Severity engine.Severity
	Detail   string
}

// Context is the data a rule may inspect for one (machine, date).
type Context struct {
	Machine     engine.Machine
	Crews       []engine.Crew
	Supervisors []engine.ShiftSupervisorAssignment
	Date        engine.Date
}

// Rule is one named, severity-tagged predicate over a Context.
type Rule struct {
	Name     string
	Severity engine.Severity
	Check    func(Context) []Finding
}

// Registry is the closed set of scheduling rules, evaluated in order.
var Registry = []Rule{
	{
		Name:     "crew_coverage",
		Severity: engine.SeverityViolation,
		Check:    checkCrewCoverage,
	},
	{
		Name:     "supervisor_coverage",
		Severity: engine.SeverityCritical,
		Check:    checkSupervisorCoverage,
	},
	{
		Name:     "rotation_anchor",
		Severity: engine.SeverityWarning,
		Check:    checkRotationAnchor,
	},
}

// Evaluate runs every registered rule against ctx.
func Evaluate(ctx Context) []Finding {
	var out []Finding
	for _, r := range Registry {
		out = append(out, r.Check(ctx)...)
	}
	return out
}

func checkCrewCoverage(ctx Context) []Finding {
	report := engine.ValidateCoverage(ctx.Machine, ctx.Crews)
	var out []Finding
	for _, f := range report.Findings {
		out = append(out, Finding{
			Rule:     "crew_coverage",
			Code:     f.Code,
			Severity: f.Severity,
			Detail:   f.Detail,
		})
	}
	return out
}

func checkSupervisorCoverage(ctx Context) []Finding {
	var out []Finding
	for _, shift := range engine.Shifts() {
		covered := false
		for _, s := range ctx.Supervisors {
			if s.Shift == shift && s.Date.Equal(ctx.Date) {
				covered = true
				break
			}
		}
		if !covered {
			out = append(out, Finding{
				Rule:     "supervisor_coverage",
				Code:     engine.FindingNoSupervisor,
				Severity: engine.SeverityCritical,
				Detail:   fmt.Sprintf("no supervisor assigned for %s %s shift", ctx.Date, shift),
			})
		}
	}
	return out
}

// checkRotationAnchor flags a cycle-enabled machine missing its anchor
// date: every label computation would key off the zero date.
func checkRotationAnchor(ctx Context) []Finding {
	if ctx.Machine.ShiftCycleEnabled && ctx.Machine.CycleStartDate.IsZero() {
		return []Finding{{
			Rule:     "rotation_anchor",
			Code:     "missing_cycle_start",
			Severity: engine.SeverityWarning,
			Detail:   fmt.Sprintf("machine %s has the shift cycle enabled but no cycle start date", ctx.Machine.Name),
		}}
	}
	return nil
}

// EvaluateForMachine loads rule inputs from the stores and runs the
// registry. Convenience for report endpoints.
func EvaluateForMachine(c context.Context, workforce engine.WorkforceStore, assignments engine.AssignmentStore, machineID engine.MachineID, date engine.Date) ([]Finding, error) {
	machine, err := workforce.GetMachine(c, machineID)
	if err != nil {
		return nil, err
	}
	if machine == nil {
		return nil, fmt.Errorf("%w: %s", engine.ErrMachineNotFound, machineID)
	}
	crews, err := workforce.ListCrews(c, machineID)
	if err != nil {
		return nil, err
	}
	supervisors, err := assignments.ListSupervisorAssignments(c, date)
	if err != nil {
		return nil, err
	}
	return Evaluate(Context{
		Machine:     *machine,
		Crews:       crews,
		Supervisors: supervisors,
		Date:        date,
	}), nil
}
