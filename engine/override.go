/*
override.go - Effective-role resolution

PURPOSE:
  An employee has one base role, but a daily override can change what
  they do on a specific date, for one shift or both. This file decides
  which role wins.

PRECEDENCE (most to least specific):
  1. Override whose scope equals the requested shift
  2. Override with scope "both"
  3. The employee's base role

  Both a specific-scope and a both-scope row may legally coexist for
  the same employee and date; the uniqueness key is
  (employee, date, scope), so the tie-break lives here, not in storage.
*/
package engine

// EffectiveRole resolves the role an employee works on date/shift,
// applying any matching override on top of the base role. Overrides for
// other employees or dates in the slice are ignored, so callers can
// pass a whole day's rows unfiltered.
func EffectiveRole(e Employee, date Date, shift Shift, overrides []DailyRoleOverride) Role {
	var both *DailyRoleOverride
	for i := range overrides {
		o := &overrides[i]
		if o.EmployeeID != e.ID || !o.Date.Equal(date) {
			continue
		}
		switch o.Scope {
		case ShiftScope(shift):
			// Specific scope wins outright.
			return o.OverrideRole
		case ScopeBoth:
			both = o
		}
	}
	if both != nil {
		return both.OverrideRole
	}
	return e.BaseRole
}
