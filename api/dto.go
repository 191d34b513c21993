/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the engine's
  domain model from the wire contract.

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - *Request: request body types from clients

VALIDATION:
  Validation happens in handlers, not in DTOs. DTOs are pure data
  carriers.

SEE ALSO:
  - handlers.go: uses these types
*/
package api

import (
	"github.com/forge/crew-engine/engine"
	"github.com/forge/crew-engine/rules"
)

// =============================================================================
// WORKFORCE
// =============================================================================

type EmployeeDTO struct {
	ID       string `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	BaseRole string `json:"base_role"`
	Active   bool   `json:"active"`
}

type MachineDTO struct {
	ID                    string `json:"id"`
	Name                  string `json:"name"`
	Environment           string `json:"environment,omitempty"`
	Status                string `json:"status"`
	OperatorsPerShift     int    `json:"operators_per_shift"`
	HopperLoadersPerShift int    `json:"hopper_loaders_per_shift"`
	PackersPerShift       int    `json:"packers_per_shift"`
	ShiftCycleEnabled     bool   `json:"shift_cycle_enabled"`
	CycleStartDate        string `json:"cycle_start_date,omitempty"`
	CrewSize              int    `json:"crew_size"`
}

type CrewDTO struct {
	ID          string   `json:"id"`
	MachineID   string   `json:"machine_id"`
	Letter      string   `json:"letter"`
	CycleOffset int      `json:"cycle_offset"`
	Active      bool     `json:"active"`
	Members     []string `json:"members"`
}

// =============================================================================
// SCHEDULE
// =============================================================================

type PreviewEntryDTO struct {
	Date  string   `json:"date"`
	Day   string   `json:"day,omitempty"`
	Night string   `json:"night,omitempty"`
	Rest  []string `json:"rest"`
}

type RoleBreakdownDTO struct {
	Crews             []string `json:"crews"`
	Operators         int      `json:"operators"`
	Loaders           int      `json:"loaders"`
	Packers           int      `json:"packers"`
	Total             int      `json:"total"`
	OperatorShortfall int      `json:"operator_shortfall"`
	LoaderShortfall   int      `json:"loader_shortfall"`
	PackerShortfall   int      `json:"packer_shortfall"`
	Fulfillment       string   `json:"fulfillment"` // decimal, e.g. "0.67"
}

type StaffingReportDTO struct {
	MachineID string           `json:"machine_id"`
	Date      string           `json:"date"`
	Day       RoleBreakdownDTO `json:"day"`
	Night     RoleBreakdownDTO `json:"night"`
}

type CoverageFindingDTO struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	CrewID   string `json:"crew_id,omitempty"`
	Detail   string `json:"detail"`
}

type CoverageReportDTO struct {
	MachineID string               `json:"machine_id"`
	OK        bool                 `json:"ok"`
	Findings  []CoverageFindingDTO `json:"findings"`
}

type RuleFindingDTO struct {
	Rule     string `json:"rule"`
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Detail   string `json:"detail"`
}

type EffectiveRoleDTO struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Shift      string `json:"shift"`
	Role       string `json:"role"`
}

type SupervisorSlotDTO struct {
	Shift       string   `json:"shift"`
	Supervisors []string `json:"supervisors"`
	Covered     bool     `json:"covered"`
}

type SupervisorCoverageDTO struct {
	Date     string               `json:"date"`
	Slots    []SupervisorSlotDTO  `json:"slots"`
	Findings []CoverageFindingDTO `json:"findings"`
}

// =============================================================================
// WRITES
// =============================================================================

type CreateAssignmentRequest struct {
	EmployeeID string `json:"employee_id"`
	MachineID  string `json:"machine_id"`
	Date       string `json:"date"`
	Shift      string `json:"shift"`
	CreatedBy  string `json:"created_by,omitempty"`
	ActorRole  string `json:"actor_role,omitempty"` // checked against the capability table when present
}

type TransitionRequest struct {
	Status string `json:"status"`
}

type CreateSupervisorAssignmentRequest struct {
	SupervisorID string `json:"supervisor_id"`
	Date         string `json:"date"`
	Shift        string `json:"shift"`
	CreatedBy    string `json:"created_by,omitempty"`
	ActorRole    string `json:"actor_role,omitempty"`
}

type CreateOverrideRequest struct {
	EmployeeID   string `json:"employee_id"`
	Date         string `json:"date"`
	Scope        string `json:"scope"`
	OverrideRole string `json:"override_role"`
	AssignedBy   string `json:"assigned_by,omitempty"`
	Notes        string `json:"notes,omitempty"`
	ActorRole    string `json:"actor_role,omitempty"`
}

type AssignmentDTO struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employee_id"`
	MachineID  string `json:"machine_id"`
	Date       string `json:"date"`
	Shift      string `json:"shift"`
	Status     string `json:"status"`
	CreatedBy  string `json:"created_by,omitempty"`
}

type SupervisorAssignmentDTO struct {
	ID           string `json:"id"`
	SupervisorID string `json:"supervisor_id"`
	Date         string `json:"date"`
	Shift        string `json:"shift"`
	CreatedBy    string `json:"created_by,omitempty"`
}

type OverrideDTO struct {
	ID           string `json:"id"`
	EmployeeID   string `json:"employee_id"`
	OriginalRole string `json:"original_role"`
	OverrideRole string `json:"override_role"`
	Date         string `json:"date"`
	Scope        string `json:"scope"`
	AssignedBy   string `json:"assigned_by,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// =============================================================================
// SCENARIOS / ERRORS
// =============================================================================

type ScenarioDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	Name string `json:"name"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// MAPPERS
// =============================================================================

func toEmployeeDTO(e engine.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:       string(e.ID),
		Code:     e.Code,
		Name:     e.Name,
		BaseRole: string(e.BaseRole),
		Active:   e.Active,
	}
}

func toMachineDTO(m engine.Machine) MachineDTO {
	dto := MachineDTO{
		ID:                    string(m.ID),
		Name:                  m.Name,
		Environment:           m.Environment,
		Status:                string(m.Status),
		OperatorsPerShift:     m.OperatorsPerShift,
		HopperLoadersPerShift: m.HopperLoadersPerShift,
		PackersPerShift:       m.PackersPerShift,
		ShiftCycleEnabled:     m.ShiftCycleEnabled,
		CrewSize:              m.CrewSize,
	}
	if !m.CycleStartDate.IsZero() {
		dto.CycleStartDate = m.CycleStartDate.String()
	}
	return dto
}

func toCrewDTO(c engine.Crew) CrewDTO {
	members := make([]string, len(c.Members))
	for i, m := range c.Members {
		members[i] = string(m)
	}
	return CrewDTO{
		ID:          string(c.ID),
		MachineID:   string(c.MachineID),
		Letter:      c.Letter,
		CycleOffset: c.CycleOffset,
		Active:      c.Active,
		Members:     members,
	}
}

func toBreakdownDTO(b engine.RoleBreak) RoleBreakdownDTO {
	crews := b.Crews
	if crews == nil {
		crews = []string{}
	}
	return RoleBreakdownDTO{
		Crews:             crews,
		Operators:         b.Operators,
		Loaders:           b.Loaders,
		Packers:           b.Packers,
		Total:             b.Total,
		OperatorShortfall: b.OperatorShortfall,
		LoaderShortfall:   b.LoaderShortfall,
		PackerShortfall:   b.PackerShortfall,
		Fulfillment:       b.Fulfillment.StringFixed(2),
	}
}

func toFindingDTOs(findings []engine.CoverageFinding) []CoverageFindingDTO {
	out := make([]CoverageFindingDTO, 0, len(findings))
	for _, f := range findings {
		out = append(out, CoverageFindingDTO{
			Code:     string(f.Code),
			Severity: string(f.Severity),
			CrewID:   string(f.CrewID),
			Detail:   f.Detail,
		})
	}
	return out
}

func toRuleFindingDTOs(findings []rules.Finding) []RuleFindingDTO {
	out := make([]RuleFindingDTO, 0, len(findings))
	for _, f := range findings {
		out = append(out, RuleFindingDTO{
			Rule:     f.Rule,
			Code:     string(f.Code),
			Severity: string(f.Severity),
			Detail:   f.Detail,
		})
	}
	return out
}

func toAssignmentDTO(a engine.LaborAssignment) AssignmentDTO {
	return AssignmentDTO{
		ID:         string(a.ID),
		EmployeeID: string(a.EmployeeID),
		MachineID:  string(a.MachineID),
		Date:       a.Date.String(),
		Shift:      string(a.Shift),
		Status:     string(a.Status),
		CreatedBy:  a.CreatedBy,
	}
}

func toOverrideDTO(o engine.DailyRoleOverride) OverrideDTO {
	return OverrideDTO{
		ID:           string(o.ID),
		EmployeeID:   string(o.EmployeeID),
		OriginalRole: string(o.OriginalRole),
		OverrideRole: string(o.OverrideRole),
		Date:         o.Date.String(),
		Scope:        string(o.Scope),
		AssignedBy:   o.AssignedBy,
		Notes:        o.Notes,
	}
}
