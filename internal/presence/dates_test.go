package presence

import (
	"testing"
	"time"
)

func day(s string) time.Time {
	t, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestExpandRange(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  []string
	}{
		{name: "single day", start: "2024-03-01", end: "2024-03-01", want: []string{"2024-03-01"}},
		{name: "three days", start: "2024-03-01", end: "2024-03-03", want: []string{"2024-03-01", "2024-03-02", "2024-03-03"}},
		{name: "month boundary", start: "2024-02-28", end: "2024-03-01", want: []string{"2024-02-28", "2024-02-29", "2024-03-01"}},
		{name: "year boundary", start: "2023-12-30", end: "2024-01-02", want: []string{"2023-12-30", "2023-12-31", "2024-01-01", "2024-01-02"}},
		{name: "start after end", start: "2024-03-03", end: "2024-03-01", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandRange(day(tt.start), day(tt.end))
			if len(got) != len(tt.want) {
				t.Fatalf("got %d days, want %d", len(got), len(tt.want))
			}
			for i, d := range got {
				if d.Format(DayLayout) != tt.want[i] {
					t.Errorf("day %d = %s, want %s", i, d.Format(DayLayout), tt.want[i])
				}
			}
		})
	}
}

func TestExpandRangeLengthAndOrder(t *testing.T) {
	start, end := day("2024-01-15"), day("2024-04-20")
	got := ExpandRange(start, end)

	wantLen := int(end.Sub(start).Hours()/24) + 1
	if len(got) != wantLen {
		t.Fatalf("got %d days, want %d", len(got), wantLen)
	}
	seen := make(map[string]bool, len(got))
	for i, d := range got {
		key := d.Format(DayLayout)
		if seen[key] {
			t.Fatalf("duplicate date %s", key)
		}
		seen[key] = true
		if i > 0 && !got[i-1].Before(d) {
			t.Fatalf("dates not ascending at index %d", i)
		}
	}
}

func TestExpandRangeIgnoresTimeOfDay(t *testing.T) {
	// Late-evening timestamps on the boundary days must not lose a day.
	start := time.Date(2024, 3, 1, 23, 30, 0, 0, time.FixedZone("CET", 3600))
	end := time.Date(2024, 3, 3, 0, 15, 0, 0, time.UTC)
	got := ExpandRange(start, end)
	if len(got) != 3 {
		t.Fatalf("got %d days, want 3", len(got))
	}
	if got[0].Format(DayLayout) != "2024-03-01" || got[2].Format(DayLayout) != "2024-03-03" {
		t.Fatalf("boundaries wrong: %v", got)
	}
}
