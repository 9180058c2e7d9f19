package domain

import (
	"testing"
	"time"
	_ "time/tzdata"
)

// helper: load a zone or fail the test
func mustLoc(t *testing.T, tz string) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(tz)
	if err != nil {
		t.Fatalf("load tz: %v", err)
	}
	return loc
}

func TestNextDaily_LaterToday(t *testing.T) {
	loc := mustLoc(t, "Europe/Moscow")
	now := time.Date(2025, time.May, 5, 18, 46, 0, 0, loc)
	next := NextDaily(now, loc, 19, 0)
	want := time.Date(2025, time.May, 5, 19, 0, 0, 0, loc)
	if !next.Equal(want) {
		t.Fatalf("want %s, got %s", want, next)
	}
}

func TestNextDaily_AlreadyPassedRollsToTomorrow(t *testing.T) {
	loc := mustLoc(t, "Europe/Moscow")
	now := time.Date(2025, time.May, 5, 19, 0, 0, 0, loc)
	next := NextDaily(now, loc, 19, 0)
	want := time.Date(2025, time.May, 6, 19, 0, 0, 0, loc)
	if !next.Equal(want) {
		t.Fatalf("fire instant itself must not repeat: want %s, got %s", want, next)
	}
}

func TestNextDaily_MonthAndYearRollover(t *testing.T) {
	loc := mustLoc(t, "Europe/Moscow")
	now := time.Date(2025, time.December, 31, 23, 59, 30, 0, loc)
	next := NextDaily(now, loc, 0, 0)
	want := time.Date(2026, time.January, 1, 0, 0, 0, 0, loc)
	if !next.Equal(want) {
		t.Fatalf("want %s, got %s", want, next)
	}
}

func TestNextDaily_InputInOtherZone(t *testing.T) {
	loc := mustLoc(t, "Europe/Moscow")
	// 15:30 UTC is 18:30 MSK.
	now := time.Date(2025, time.May, 5, 15, 30, 0, 0, time.UTC)
	next := NextDaily(now, loc, 19, 0)
	want := time.Date(2025, time.May, 5, 16, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("want %s, got %s", want, next.UTC())
	}
}

func TestNextDaily_SpringForwardGap(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	// 2025-03-09: 02:00 EST jumps to 03:00 EDT; 02:30 does not exist.
	now := time.Date(2025, time.March, 8, 12, 0, 0, 0, loc)

	first := NextDaily(now, loc, 2, 30)
	want := time.Date(2025, time.March, 9, 7, 0, 0, 0, time.UTC) // 03:00 EDT
	if !first.Equal(want) {
		t.Fatalf("gap: want %s, got %s", want, first.UTC())
	}
	if h, m := first.In(loc).Hour(), first.In(loc).Minute(); h != 3 || m != 0 {
		t.Fatalf("gap: want local 03:00, got %02d:%02d", h, m)
	}

	second := NextDaily(first, loc, 2, 30)
	want = time.Date(2025, time.March, 10, 2, 30, 0, 0, loc)
	if !second.Equal(want) {
		t.Fatalf("after gap: want %s, got %s", want, second)
	}
}

func TestNextDaily_FallBackOverlapFiresOnce(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	// 2025-11-02: 02:00 EDT falls back to 01:00 EST; 01:30 happens twice.
	now := time.Date(2025, time.November, 1, 12, 0, 0, 0, loc)

	first := NextDaily(now, loc, 1, 30)
	want := time.Date(2025, time.November, 2, 5, 30, 0, 0, time.UTC) // 01:30 EDT
	if !first.Equal(want) {
		t.Fatalf("overlap: want %s, got %s", want, first.UTC())
	}

	second := NextDaily(first, loc, 1, 30)
	want = time.Date(2025, time.November, 3, 6, 30, 0, 0, time.UTC) // 01:30 EST next day
	if !second.Equal(want) {
		t.Fatalf("second occurrence must be skipped: want %s, got %s", want, second.UTC())
	}

	// Asking from inside the repeated hour also skips to the next day.
	inRepeat := time.Date(2025, time.November, 2, 6, 15, 0, 0, time.UTC) // 01:15 EST
	if got := NextDaily(inRepeat, loc, 1, 30); !got.Equal(want) {
		t.Fatalf("from repeated hour: want %s, got %s", want, got.UTC())
	}
}

func TestNextDaily_OutsideTransitionsUnchanged(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	now := time.Date(2025, time.March, 9, 4, 0, 0, 0, loc)
	next := NextDaily(now, loc, 4, 0)
	want := time.Date(2025, time.March, 10, 4, 0, 0, 0, loc)
	if !next.Equal(want) {
		t.Fatalf("want %s, got %s", want, next)
	}
	if d := next.Sub(now); d != 24*time.Hour {
		t.Fatalf("post-transition day should be 24h, got %s", d)
	}
}

func TestLastDaily(t *testing.T) {
	loc := mustLoc(t, "Europe/Moscow")
	cases := []struct {
		now  time.Time
		want time.Time
	}{
		{time.Date(2025, time.May, 5, 19, 0, 0, 0, loc), time.Date(2025, time.May, 5, 19, 0, 0, 0, loc)},
		{time.Date(2025, time.May, 5, 19, 0, 1, 0, loc), time.Date(2025, time.May, 5, 19, 0, 0, 0, loc)},
		{time.Date(2025, time.May, 5, 18, 59, 59, 0, loc), time.Date(2025, time.May, 4, 19, 0, 0, 0, loc)},
		{time.Date(2026, time.January, 1, 0, 30, 0, 0, loc), time.Date(2025, time.December, 31, 19, 0, 0, 0, loc)},
	}
	for _, tc := range cases {
		if got := LastDaily(tc.now, loc, 19, 0); !got.Equal(tc.want) {
			t.Fatalf("at %s: want %s, got %s", tc.now, tc.want, got)
		}
	}
}

func TestLastDaily_FallBackCountsEarlierTwinOnly(t *testing.T) {
	loc := mustLoc(t, "America/New_York")
	// 2025-11-02: 01:30 happens at 05:30 UTC (EDT) and again at 06:30 UTC (EST).
	second := time.Date(2025, time.November, 2, 6, 45, 0, 0, time.UTC)
	want := time.Date(2025, time.November, 2, 5, 30, 0, 0, time.UTC)
	if got := LastDaily(second, loc, 1, 30); !got.Equal(want) {
		t.Fatalf("want %s, got %s", want, got.UTC())
	}
}
