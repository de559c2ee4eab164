package testfixtures

import (
	"testing"
	"time"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	clock := NewClock(time.Time{})
	if !clock.Now().Equal(ReferenceTime()) {
		t.Fatalf("expected ReferenceTime, got %v", clock.Now())
	}
}

func TestClockAdvanceAndSet(t *testing.T) {
	start := time.Date(2024, time.March, 14, 9, 26, 0, 0, time.UTC)
	clock := NewClock(start)

	updated := clock.AdvanceDays(2)
	if !updated.Equal(start.AddDate(0, 0, 2)) {
		t.Fatalf("advance returned %v", updated)
	}

	clock.Set(start.Add(2 * time.Hour))
	if got := clock.Now(); !got.Equal(start.Add(2 * time.Hour)) {
		t.Fatalf("expected %v, got %v", start.Add(2*time.Hour), got)
	}
}

func TestClockProviderFollowsClock(t *testing.T) {
	clock := NewClock(time.Time{})
	provider := clock.Provider(time.UTC)

	week := provider.WeekDates()
	if week[0].Date != ReferenceWeekStart() {
		t.Fatalf("expected week to start on %s, got %s", ReferenceWeekStart(), week[0].Date)
	}

	clock.AdvanceDays(7)
	next := provider.WeekDates()
	if next[0].Date != ReferenceWeekStart().AddDays(7) {
		t.Fatalf("expected next week to start on %s, got %s", ReferenceWeekStart().AddDays(7), next[0].Date)
	}
}
