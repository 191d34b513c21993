/*
staffing.go - Per-date workforce resolution

PURPOSE:
  Combines a machine's declared role quotas with crew membership and
  daily overrides to answer: on this date, who is on day shift, who is
  on night shift, and where are we short?

ALGORITHM:
  For each active crew, compute its rotation label for the date. Crews
  labeled day contribute to the day breakdown, night to night, rest to
  neither. Each member is bucketed by effective role (override-aware).
  Shortfall per role is max(0, required - actual). Read-only
  composition of cycle.go and override.go; no side effects.

FULFILLMENT:
  The fulfillment ratio (actual staff / required staff) is reported as
  a decimal, not a float. Ratios travel to reporting surfaces and must
  round predictably there.
*/
package engine

import "github.com/shopspring/decimal"

// RoleBreakdown is the staffing picture for one shift on one date.
type RoleBreakdown struct {
	Operators int
	Loaders   int
	Packers   int
	Total     int // sum of the three floor-role buckets

	OperatorShortfall int
	LoaderShortfall   int
	PackerShortfall   int

	// Fulfillment = Total / required total, 1 when nothing is required.
	Fulfillment decimal.Decimal
}

// StaffingReport is the resolved day and night staffing for a machine
// on one date.
type StaffingReport struct {
	MachineID MachineID
	Date      Date
	Day       RoleBreak
	Night     RoleBreak
}

// RoleBreak pairs a breakdown with the crews that produced it.
type RoleBreak struct {
	Crews []string // crew letters on this shift
	RoleBreakdown
}

// ResolveStaffing computes the staffing report for machine on date.
// Members whose effective role is supervisor or admin do not count
// toward the floor-role buckets. Fails only on a misconfigured crew
// offset.
func ResolveStaffing(
	m Machine,
	crews []Crew,
	employees map[EmployeeID]Employee,
	overrides []DailyRoleOverride,
	date Date,
) (StaffingReport, error) {
	report := StaffingReport{MachineID: m.ID, Date: date}

	for _, c := range crews {
		if !c.Active || c.MachineID != m.ID {
			continue
		}
		label, err := CrewLabelOn(m, c, date)
		if err != nil {
			return StaffingReport{}, err
		}

		var shift Shift
		var target *RoleBreak
		switch label {
		case LabelDay:
			shift, target = ShiftDay, &report.Day
		case LabelNight:
			shift, target = ShiftNight, &report.Night
		default:
			continue // resting crew
		}

		target.Crews = append(target.Crews, c.Letter)
		for _, id := range c.Members {
			e, ok := employees[id]
			if !ok || !e.Active {
				continue
			}
			switch EffectiveRole(e, date, shift, overrides) {
			case RoleOperator:
				target.Operators++
			case RoleLoader:
				target.Loaders++
			case RolePacker:
				target.Packers++
			}
		}
	}

	finishBreakdown(&report.Day.RoleBreakdown, m)
	finishBreakdown(&report.Night.RoleBreakdown, m)
	return report, nil
}

func finishBreakdown(b *RoleBreakdown, m Machine) {
	b.Total = b.Operators + b.Loaders + b.Packers
	b.OperatorShortfall = shortfall(m.OperatorsPerShift, b.Operators)
	b.LoaderShortfall = shortfall(m.HopperLoadersPerShift, b.Loaders)
	b.PackerShortfall = shortfall(m.PackersPerShift, b.Packers)

	required := m.OperatorsPerShift + m.HopperLoadersPerShift + m.PackersPerShift
	if required == 0 {
		b.Fulfillment = decimal.NewFromInt(1)
		return
	}
	b.Fulfillment = decimal.NewFromInt(int64(b.Total)).
		Div(decimal.NewFromInt(int64(required)))
}

func shortfall(required, actual int) int {
	if actual >= required {
		return 0
	}
	return required - actual
}
