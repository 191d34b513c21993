/*
cycle.go - The 2-2-2 rotation calculator

PURPOSE:
  Pure arithmetic mapping (date, cycle anchor, crew offset) to a shift
  label. Two days on days, two on nights, two off, repeating every six
  days. No state, no I/O.

COVERAGE GUARANTEE:
  For three crews at offsets 0, 2, 4 on the same machine, every
  calendar date has exactly one crew on day, one on night, one at rest:
  the offsets partition the residues mod 6 into {0,2,4} or {1,3,5}
  depending on the parity of the day count, and each of those sets hits
  each two-day block exactly once.

SEE ALSO:
  - coverage.go: flags configurations that break the guarantee
  - preview.go: projects the rotation forward for display
*/
package engine

// CycleLength is the rotation period in days: 2 day + 2 night + 2 rest.
const CycleLength = 6

// cycleLabels maps a cycle day in [0, 6) to its label.
var cycleLabels = [CycleLength]ShiftLabel{
	LabelDay, LabelDay,
	LabelNight, LabelNight,
	LabelRest, LabelRest,
}

// ShiftLabelAt computes a crew's label on date given the machine's
// rotation anchor and the crew's offset. Deterministic and total apart
// from the offset range check.
func ShiftLabelAt(date, cycleStart Date, offset int) (ShiftLabel, error) {
	if offset < 0 || offset >= CycleLength {
		return "", &OffsetError{Offset: offset}
	}
	days := DaysBetween(cycleStart, date)
	return cycleLabels[floorMod(days+offset, CycleLength)], nil
}

// CrewLabelOn is ShiftLabelAt wired to a machine/crew pair.
func CrewLabelOn(m Machine, c Crew, date Date) (ShiftLabel, error) {
	return ShiftLabelAt(date, m.CycleStartDate, c.CycleOffset)
}

// floorMod normalizes into [0, m) even for negative x. Go's % keeps the
// sign of the dividend, so dates before the anchor need the adjustment.
func floorMod(x, m int) int {
	return ((x % m) + m) % m
}
