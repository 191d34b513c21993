/*
preview.go - Forward schedule projection

PURPOSE:
  Produces a bounded sequence of per-day crew placements for display:
  "A on days, C on nights, B resting". Purely derived from the
  rotation; does not consult assignments or overrides. It answers
  "what does the recurring pattern say", not "who is actually staffed"
  (that is staffing.go).

  The sequence is restartable: calling again with a later start date
  continues the pattern exactly, so pagination is just date arithmetic.
*/
package engine

import "sort"

// PreviewEntry is one day of the projected rotation for a machine.
type PreviewEntry struct {
	Date  Date
	Day   string   // crew letter on day shift, "" if none
	Night string   // crew letter on night shift, "" if none
	Rest  []string // crew letters at rest, sorted
}

// Preview projects the rotation for machine over [start, start+days).
// Returns exactly max(days, 0) entries with dates increasing by one
// calendar day. Inactive crews are skipped. With duplicate offsets the
// last crew by letter wins a contested slot; run ValidateCoverage to
// surface that misconfiguration.
func Preview(m Machine, crews []Crew, start Date, days int) ([]PreviewEntry, error) {
	if days <= 0 {
		return []PreviewEntry{}, nil
	}

	var active []Crew
	for _, c := range crews {
		if c.Active && c.MachineID == m.ID {
			active = append(active, c)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].Letter < active[j].Letter })

	entries := make([]PreviewEntry, 0, days)
	for i := 0; i < days; i++ {
		date := start.AddDays(i)
		entry := PreviewEntry{Date: date, Rest: []string{}}
		for _, c := range active {
			label, err := CrewLabelOn(m, c, date)
			if err != nil {
				return nil, err
			}
			switch label {
			case LabelDay:
				entry.Day = c.Letter
			case LabelNight:
				entry.Night = c.Letter
			case LabelRest:
				entry.Rest = append(entry.Rest, c.Letter)
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
