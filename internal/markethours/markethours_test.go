package markethours

import (
	"strings"
	"testing"
	"time"
)

func ist(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, IST)
}

func TestIsMarketOpen(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"monday mid-session", ist(2026, time.March, 2, 11, 0), true},
		{"exactly at open", ist(2026, time.March, 2, 9, 15), true},
		{"one minute before open", ist(2026, time.March, 2, 9, 14), false},
		{"at close", ist(2026, time.March, 2, 15, 30), false},
		{"saturday", ist(2026, time.March, 7, 11, 0), false},
		{"republic day", ist(2026, time.January, 26, 11, 0), false},
		{"utc input", time.Date(2026, time.March, 2, 5, 0, 0, 0, time.UTC), true}, // 10:30 IST
	}
	for _, tc := range tests {
		if got := IsMarketOpen(tc.t); got != tc.want {
			t.Errorf("%s: IsMarketOpen = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestNextOpen_SkipsWeekendAndHoliday(t *testing.T) {
	// Friday 3 April 2026 after close; Mon 6 April is Mahavir Jayanti.
	got := NextOpen(ist(2026, time.April, 3, 16, 0))
	want := ist(2026, time.April, 7, 9, 15)
	if !got.Equal(want) {
		t.Fatalf("NextOpen = %v, want %v", got, want)
	}
}

func TestNextOpen_SameDayBeforeOpen(t *testing.T) {
	got := NextOpen(ist(2026, time.March, 2, 8, 0))
	if !got.Equal(ist(2026, time.March, 2, 9, 15)) {
		t.Fatalf("NextOpen = %v", got)
	}
}

func TestHolidayName(t *testing.T) {
	name, ok := HolidayName(ist(2026, time.December, 25, 12, 0))
	if !ok || name != "Christmas" {
		t.Fatalf("HolidayName = %q, %v", name, ok)
	}
	if _, ok := HolidayName(ist(2026, time.December, 24, 12, 0)); ok {
		t.Fatal("24 Dec should not be a holiday")
	}
}

func TestCurrentStatus(t *testing.T) {
	tests := []struct {
		name  string
		t     time.Time
		phase string
		open  bool
	}{
		{"open", ist(2026, time.March, 2, 10, 0), PhaseOpen, true},
		{"pre-open", ist(2026, time.March, 2, 9, 5), PhasePreOpen, false},
		{"closed evening", ist(2026, time.March, 2, 18, 0), PhaseClosed, false},
		{"weekend", ist(2026, time.March, 8, 10, 0), PhaseWeekend, false},
		{"holiday", ist(2026, time.October, 2, 10, 0), PhaseHoliday, false},
	}
	for _, tc := range tests {
		s := CurrentStatus(tc.t)
		if s.Phase != tc.phase || s.Open != tc.open {
			t.Errorf("%s: got phase=%s open=%v, want %s/%v", tc.name, s.Phase, s.Open, tc.phase, tc.open)
		}
		if s.Message == "" {
			t.Errorf("%s: empty message", tc.name)
		}
	}

	h := CurrentStatus(ist(2026, time.October, 2, 10, 0))
	if h.Holiday != "Mahatma Gandhi Jayanti" || !strings.Contains(h.Message, "Gandhi") {
		t.Errorf("holiday status = %+v", h)
	}
}

func TestTimeUntilClose(t *testing.T) {
	if d := TimeUntilClose(ist(2026, time.March, 2, 15, 0)); d != 30*time.Minute {
		t.Errorf("TimeUntilClose = %v, want 30m", d)
	}
	if d := TimeUntilClose(ist(2026, time.March, 2, 16, 0)); d != 0 {
		t.Errorf("TimeUntilClose after close = %v, want 0", d)
	}
}
