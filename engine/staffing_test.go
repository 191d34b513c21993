package engine_test

import (
	"testing"
	"time"

	"github.com/forge/crew-engine/engine"
	"github.com/shopspring/decimal"
)

func staffedMachine() engine.Machine {
	m := cycleMachine()
	m.OperatorsPerShift = 2
	m.HopperLoadersPerShift = 1
	m.PackersPerShift = 1
	return m
}

func staffedEmployees() map[engine.EmployeeID]engine.Employee {
	mk := func(id string, role engine.Role) engine.Employee {
		return engine.Employee{ID: engine.EmployeeID(id), BaseRole: role, Active: true}
	}
	return map[engine.EmployeeID]engine.Employee{
		"op1": mk("op1", engine.RoleOperator),
		"op2": mk("op2", engine.RoleOperator),
		"op3": mk("op3", engine.RoleOperator),
		"ld1": mk("ld1", engine.RoleLoader),
		"ld2": mk("ld2", engine.RoleLoader),
		"pk1": mk("pk1", engine.RolePacker),
		"pk2": mk("pk2", engine.RolePacker),
	}
}

func staffedCrews() []engine.Crew {
	return []engine.Crew{
		crew("c-a", "A", 0, "op1", "op2", "ld1", "pk1"),
		crew("c-b", "B", 2, "op3", "ld2"),
		crew("c-c", "C", 4, "pk2"),
	}
}

func TestResolveStaffing_OnAnchorDate(t *testing.T) {
	// GIVEN: A=0 (day), B=2 (night), C=4 (rest) on the anchor date
	// THEN: day shift is fully staffed, night shift is short one
	// operator and one packer
	m := staffedMachine()
	d := m.CycleStartDate

	report, err := engine.ResolveStaffing(m, staffedCrews(), staffedEmployees(), nil, d)
	if err != nil {
		t.Fatal(err)
	}

	day := report.Day
	if day.Operators != 2 || day.Loaders != 1 || day.Packers != 1 {
		t.Errorf("day breakdown: got %d/%d/%d, want 2/1/1", day.Operators, day.Loaders, day.Packers)
	}
	if day.OperatorShortfall != 0 || day.LoaderShortfall != 0 || day.PackerShortfall != 0 {
		t.Errorf("day shortfalls: got %d/%d/%d, want none",
			day.OperatorShortfall, day.LoaderShortfall, day.PackerShortfall)
	}
	if !day.Fulfillment.Equal(decimal.NewFromInt(1)) {
		t.Errorf("day fulfillment: got %s, want 1", day.Fulfillment)
	}
	if len(day.Crews) != 1 || day.Crews[0] != "A" {
		t.Errorf("day crews: got %v, want [A]", day.Crews)
	}

	night := report.Night
	if night.Operators != 1 || night.Loaders != 1 || night.Packers != 0 {
		t.Errorf("night breakdown: got %d/%d/%d, want 1/1/0", night.Operators, night.Loaders, night.Packers)
	}
	if night.OperatorShortfall != 1 || night.PackerShortfall != 1 {
		t.Errorf("night shortfalls: got op=%d pk=%d, want 1/1",
			night.OperatorShortfall, night.PackerShortfall)
	}
	if !night.Fulfillment.Equal(decimal.NewFromInt(1).Div(decimal.NewFromInt(2))) {
		t.Errorf("night fulfillment: got %s, want 0.5", night.Fulfillment)
	}
}

func TestResolveStaffing_OverrideMovesHeadcount(t *testing.T) {
	// An operator overridden to packer for the day shift shifts one
	// head between buckets.
	m := staffedMachine()
	d := m.CycleStartDate
	overrides := []engine.DailyRoleOverride{
		{EmployeeID: "op2", Date: d, Scope: engine.ScopeDay, OverrideRole: engine.RolePacker},
	}

	report, err := engine.ResolveStaffing(m, staffedCrews(), staffedEmployees(), overrides, d)
	if err != nil {
		t.Fatal(err)
	}
	if report.Day.Operators != 1 || report.Day.Packers != 2 {
		t.Errorf("got operators=%d packers=%d, want 1/2", report.Day.Operators, report.Day.Packers)
	}
	if report.Day.OperatorShortfall != 1 {
		t.Errorf("operator shortfall: got %d, want 1", report.Day.OperatorShortfall)
	}
}

func TestResolveStaffing_InactiveMembersSkipped(t *testing.T) {
	m := staffedMachine()
	d := m.CycleStartDate
	employees := staffedEmployees()
	e := employees["op1"]
	e.Active = false
	employees["op1"] = e

	report, err := engine.ResolveStaffing(m, staffedCrews(), employees, nil, d)
	if err != nil {
		t.Fatal(err)
	}
	if report.Day.Operators != 1 {
		t.Errorf("inactive operator counted: got %d, want 1", report.Day.Operators)
	}
}

func TestResolveStaffing_ZeroQuotas(t *testing.T) {
	m := cycleMachine() // all quotas zero
	d := engine.NewDate(2025, time.August, 3)

	report, err := engine.ResolveStaffing(m, staffedCrews(), staffedEmployees(), nil, d)
	if err != nil {
		t.Fatal(err)
	}
	if !report.Day.Fulfillment.Equal(decimal.NewFromInt(1)) {
		t.Errorf("zero quotas must report full fulfillment, got %s", report.Day.Fulfillment)
	}
}
