package engine_test

import (
	"testing"
	"time"

	"github.com/forge/crew-engine/engine"
)

func TestPreview_LengthAndDates(t *testing.T) {
	// Preview of length N returns exactly N entries, dates strictly
	// increasing by one calendar day from the start.
	m := cycleMachine()
	crews := []engine.Crew{
		crew("c-a", "A", 0, "e1"),
		crew("c-b", "B", 2, "e2"),
		crew("c-c", "C", 4, "e3"),
	}
	start := engine.NewDate(2025, time.August, 10)

	entries, err := engine.Preview(m, crews, start, 30)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 30 {
		t.Fatalf("got %d entries, want 30", len(entries))
	}
	for i, e := range entries {
		want := start.AddDays(i)
		if !e.Date.Equal(want) {
			t.Errorf("entry %d: date %s, want %s", i, e.Date, want)
		}
	}
}

func TestPreview_CrewPlacement(t *testing.T) {
	m := cycleMachine()
	crews := []engine.Crew{
		crew("c-a", "A", 0, "e1"),
		crew("c-b", "B", 2, "e2"),
		crew("c-c", "C", 4, "e3"),
	}

	entries, err := engine.Preview(m, crews, m.CycleStartDate, 6)
	if err != nil {
		t.Fatal(err)
	}

	// Anchor date: A days, B nights, C rest.
	if entries[0].Day != "A" || entries[0].Night != "B" {
		t.Errorf("anchor date: day=%s night=%s, want A/B", entries[0].Day, entries[0].Night)
	}
	if len(entries[0].Rest) != 1 || entries[0].Rest[0] != "C" {
		t.Errorf("anchor date rest: %v, want [C]", entries[0].Rest)
	}

	// Every day has exactly one crew per slot with three healthy crews.
	for _, e := range entries {
		if e.Day == "" || e.Night == "" || len(e.Rest) != 1 {
			t.Errorf("%s: day=%q night=%q rest=%v", e.Date, e.Day, e.Night, e.Rest)
		}
	}
}

func TestPreview_Restartable(t *testing.T) {
	// Re-running from a mid-window date continues the pattern exactly.
	m := cycleMachine()
	crews := []engine.Crew{
		crew("c-a", "A", 0, "e1"),
		crew("c-b", "B", 2, "e2"),
		crew("c-c", "C", 4, "e3"),
	}
	start := m.CycleStartDate

	full, err := engine.Preview(m, crews, start, 20)
	if err != nil {
		t.Fatal(err)
	}
	tail, err := engine.Preview(m, crews, start.AddDays(10), 10)
	if err != nil {
		t.Fatal(err)
	}
	for i := range tail {
		if tail[i].Day != full[10+i].Day || tail[i].Night != full[10+i].Night {
			t.Errorf("entry %d diverges after restart", i)
		}
	}
}

func TestPreview_ZeroDays(t *testing.T) {
	m := cycleMachine()
	entries, err := engine.Preview(m, nil, m.CycleStartDate, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
}

func TestPreview_NoCrews(t *testing.T) {
	// No crews still yields well-formed empty entries.
	m := cycleMachine()
	entries, err := engine.Preview(m, nil, m.CycleStartDate, 3)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.Day != "" || e.Night != "" || len(e.Rest) != 0 {
			t.Errorf("%s: expected empty slots, got %+v", e.Date, e)
		}
	}
}
