package testfixtures

import (
	"testing"
	"time"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	t.Parallel()

	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
}

func TestClockAdvanceSetAndNextDay(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.March, 29, 9, 30, 0, 0, SalonLocation())
	clock := NewClock(start)

	if got := clock.Advance(90 * time.Minute); !got.Equal(start.Add(90 * time.Minute)) {
		t.Fatalf("Advance returned %v", got)
	}

	clock.Set(start)
	next := clock.NextDay()
	if next.Day() != 30 || next.Hour() != 9 || next.Minute() != 30 {
		t.Fatalf("expected 30 March 09:30 across the DST switch, got %v", next)
	}
}

func TestClockNowFuncFollowsUpdates(t *testing.T) {
	t.Parallel()

	clock := NewClock(time.Time{})
	nowFn := clock.NowFunc()

	clock.Advance(time.Minute)
	if got := nowFn(); !got.Equal(ReferenceTime().Add(time.Minute)) {
		t.Fatalf("expected advanced time from NowFunc, got %v", got)
	}

	var missing *Clock
	if missing.NowFunc() == nil {
		t.Fatal("expected a fallback clock function")
	}
}
