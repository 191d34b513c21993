package engine_test

import (
	"testing"
	"time"

	"github.com/forge/crew-engine/engine"
)

func cycleMachine() engine.Machine {
	return engine.Machine{
		ID:                "mach-1",
		Name:              "Bagging Line 1",
		Status:            engine.MachineActive,
		ShiftCycleEnabled: true,
		CycleStartDate:    engine.NewDate(2025, time.July, 30),
	}
}

func crew(id, letter string, offset int, members ...engine.EmployeeID) engine.Crew {
	return engine.Crew{
		ID:          engine.CrewID(id),
		MachineID:   "mach-1",
		Letter:      letter,
		CycleOffset: offset,
		Members:     members,
		Active:      true,
	}
}

func findingCodes(r engine.CoverageReport) map[engine.FindingCode]int {
	out := map[engine.FindingCode]int{}
	for _, f := range r.Findings {
		out[f.Code]++
	}
	return out
}

func TestValidateCoverage_StandardThreeCrews(t *testing.T) {
	// GIVEN: three crews at offsets 0/2/4 with members
	// THEN: no findings at all
	crews := []engine.Crew{
		crew("c-a", "A", 0, "e1"),
		crew("c-b", "B", 2, "e2"),
		crew("c-c", "C", 4, "e3"),
	}
	report := engine.ValidateCoverage(cycleMachine(), crews)
	if !report.OK {
		t.Errorf("expected OK, got findings: %v", report.Findings)
	}
	if len(report.Findings) != 0 {
		t.Errorf("expected no findings, got %d", len(report.Findings))
	}
}

func TestValidateCoverage_NoCrews(t *testing.T) {
	// Cycle enabled with zero active crews is a violation, and the
	// remaining checks are skipped.
	report := engine.ValidateCoverage(cycleMachine(), nil)
	if report.OK {
		t.Error("expected not OK")
	}
	codes := findingCodes(report)
	if codes[engine.FindingNoCrewsConfigured] != 1 {
		t.Errorf("expected one no_crews_configured finding, got %v", codes)
	}
	if len(report.Findings) != 1 {
		t.Errorf("expected exactly one finding, got %d", len(report.Findings))
	}
}

func TestValidateCoverage_DuplicateOffset(t *testing.T) {
	// Two crews sharing offset 0 break the coverage guarantee.
	crews := []engine.Crew{
		crew("c-a", "A", 0, "e1"),
		crew("c-b", "B", 0, "e2"),
		crew("c-c", "C", 4, "e3"),
	}
	report := engine.ValidateCoverage(cycleMachine(), crews)
	if report.OK {
		t.Error("expected not OK")
	}
	codes := findingCodes(report)
	if codes[engine.FindingDuplicateOffset] != 1 {
		t.Errorf("expected one duplicate_offset finding, got %v", codes)
	}
}

func TestValidateCoverage_NonStandardCountAndEmptyCrew(t *testing.T) {
	// Two crews: accepted, but flagged. The memberless crew gets its
	// own warning. Warnings alone keep the report OK.
	crews := []engine.Crew{
		crew("c-a", "A", 0, "e1"),
		crew("c-b", "B", 2),
	}
	report := engine.ValidateCoverage(cycleMachine(), crews)
	if !report.OK {
		t.Error("warnings must not flip OK")
	}
	codes := findingCodes(report)
	if codes[engine.FindingNonStandardCrewCount] != 1 {
		t.Errorf("expected non_standard_crew_count, got %v", codes)
	}
	if codes[engine.FindingEmptyCrew] != 1 {
		t.Errorf("expected empty_crew, got %v", codes)
	}
}

func TestValidateCoverage_InactiveCrewsIgnored(t *testing.T) {
	// An inactive crew with a clashing offset does not count.
	inactive := crew("c-x", "X", 0, "e9")
	inactive.Active = false
	crews := []engine.Crew{
		crew("c-a", "A", 0, "e1"),
		crew("c-b", "B", 2, "e2"),
		crew("c-c", "C", 4, "e3"),
		inactive,
	}
	report := engine.ValidateCoverage(cycleMachine(), crews)
	if !report.OK {
		t.Errorf("expected OK, got findings: %v", report.Findings)
	}
}

func TestValidateCoverage_CycleDisabled(t *testing.T) {
	m := cycleMachine()
	m.ShiftCycleEnabled = false
	report := engine.ValidateCoverage(m, nil)
	if !report.OK || len(report.Findings) != 0 {
		t.Errorf("disabled cycle must report clean, got %v", report.Findings)
	}
}
