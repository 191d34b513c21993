/*
coverage.go - Configuration checks for the 24/7 coverage invariant

PURPOSE:
  Inspects a machine's crew set and reports anything that weakens or
  breaks the rotation's coverage guarantee. Findings are advisory:
  they are surfaced for display and never block assignment or
  override writes (those have their own guard, see guard.go).

CHECK ORDER:
  1. NoCrewsConfigured   violation  cycle enabled, zero active crews
  2. NonStandardCrewCount warning   active crew count != 3
  3. DuplicateOffset     violation  two active crews share offset mod 6
  4. EmptyCrew           warning    active crew with no members

The rotation is only proven correct for exactly three crews spaced two
apart; other counts are accepted but always flagged, never silently
trusted.
*/
package engine

import (
	"fmt"
	"sort"
)

// =============================================================================
// FINDINGS
// =============================================================================

type Severity string

const (
	SeverityViolation Severity = "violation"
	SeverityWarning   Severity = "warning"
	SeverityCritical  Severity = "critical"
)

type FindingCode string

const (
	FindingNoCrewsConfigured    FindingCode = "no_crews_configured"
	FindingNonStandardCrewCount FindingCode = "non_standard_crew_count"
	FindingDuplicateOffset      FindingCode = "duplicate_offset"
	FindingEmptyCrew            FindingCode = "empty_crew"
)

// CoverageFinding is one advisory result from ValidateCoverage.
type CoverageFinding struct {
	Code     FindingCode
	Severity Severity
	CrewID   CrewID // set when the finding concerns one crew
	Detail   string
}

// CoverageReport is the full result for one machine.
type CoverageReport struct {
	MachineID MachineID
	OK        bool // no violation-severity findings
	Findings  []CoverageFinding
}

// =============================================================================
// VALIDATOR
// =============================================================================

// ValidateCoverage checks a machine's crew configuration against the
// coverage invariant. Inactive crews are ignored. Machines with the
// shift cycle disabled always report OK.
func ValidateCoverage(m Machine, crews []Crew) CoverageReport {
	report := CoverageReport{MachineID: m.ID, OK: true}
	if !m.ShiftCycleEnabled {
		return report
	}

	var active []Crew
	for _, c := range crews {
		if c.Active && c.MachineID == m.ID {
			active = append(active, c)
		}
	}

	if len(active) == 0 {
		report.Findings = append(report.Findings, CoverageFinding{
			Code:     FindingNoCrewsConfigured,
			Severity: SeverityViolation,
			Detail:   "shift cycle is enabled but no active crews exist",
		})
		report.OK = false
		return report
	}

	if len(active) != 3 {
		report.Findings = append(report.Findings, CoverageFinding{
			Code:     FindingNonStandardCrewCount,
			Severity: SeverityWarning,
			Detail:   fmt.Sprintf("coverage is only guaranteed for 3 crews, found %d", len(active)),
		})
	}

	// Pairwise offset collision check, mod 6.
	sort.Slice(active, func(i, j int) bool { return active[i].Letter < active[j].Letter })
	byOffset := make(map[int]Crew)
	for _, c := range active {
		off := floorMod(c.CycleOffset, CycleLength)
		if prev, ok := byOffset[off]; ok {
			report.Findings = append(report.Findings, CoverageFinding{
				Code:     FindingDuplicateOffset,
				Severity: SeverityViolation,
				CrewID:   c.ID,
				Detail:   fmt.Sprintf("crews %s and %s share cycle offset %d", prev.Letter, c.Letter, off),
			})
			report.OK = false
			continue
		}
		byOffset[off] = c
	}

	for _, c := range active {
		if len(c.Members) == 0 {
			report.Findings = append(report.Findings, CoverageFinding{
				Code:     FindingEmptyCrew,
				Severity: SeverityWarning,
				CrewID:   c.ID,
				Detail:   fmt.Sprintf("crew %s has no members", c.Letter),
			})
		}
	}

	return report
}
