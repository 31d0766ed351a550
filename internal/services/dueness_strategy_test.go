package services

import (
	"testing"
	"time"

	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/core"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestDailyChecker(t *testing.T) {
	checker := DailyChecker{}
	tests := []struct {
		name    string
		lastRun time.Time
		now     time.Time
		want    bool
	}{
		{"never run", time.Time{}, day(2025, time.March, 10), true},
		{"ran yesterday", day(2025, time.March, 9), day(2025, time.March, 10), true},
		{"ran today", day(2025, time.March, 10), day(2025, time.March, 10), false},
		{"ran last week", day(2025, time.March, 3), day(2025, time.March, 10), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checker.IsDue(tt.lastRun, tt.now, time.Time{}); got != tt.want {
				t.Errorf("IsDue = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWeeklyChecker(t *testing.T) {
	checker := WeeklyChecker{}
	tests := []struct {
		name    string
		lastRun time.Time
		now     time.Time
		want    bool
	}{
		{"never run", time.Time{}, day(2025, time.March, 10), true},
		{"exactly 7 days", day(2025, time.March, 3), day(2025, time.March, 10), true},
		{"6 days", day(2025, time.March, 4), day(2025, time.March, 10), false},
		{"10 days", day(2025, time.February, 28), day(2025, time.March, 10), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checker.IsDue(tt.lastRun, tt.now, time.Time{}); got != tt.want {
				t.Errorf("IsDue = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMonthlyChecker(t *testing.T) {
	checker := MonthlyChecker{}
	start := day(2025, time.January, 15)
	tests := []struct {
		name    string
		lastRun time.Time
		now     time.Time
		start   time.Time
		want    bool
	}{
		{"never run", time.Time{}, day(2025, time.March, 15), start, true},
		{"already ran this month", day(2025, time.March, 15), day(2025, time.March, 20), start, false},
		{"new month before anchor day", day(2025, time.February, 15), day(2025, time.March, 10), start, false},
		{"new month on anchor day", day(2025, time.February, 15), day(2025, time.March, 15), start, true},
		{"new month after anchor day", day(2025, time.February, 15), day(2025, time.March, 20), start, true},
		{"anchor 31 clamps in february", day(2025, time.January, 31), day(2025, time.February, 28), day(2025, time.January, 31), true},
		{"anchor 31 not yet in february", day(2025, time.January, 31), day(2025, time.February, 27), day(2025, time.January, 31), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checker.IsDue(tt.lastRun, tt.now, tt.start); got != tt.want {
				t.Errorf("IsDue = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestYearlyChecker(t *testing.T) {
	checker := YearlyChecker{}
	start := day(2024, time.June, 15)
	tests := []struct {
		name    string
		lastRun time.Time
		now     time.Time
		want    bool
	}{
		{"never run", time.Time{}, day(2025, time.June, 15), true},
		{"already ran this year", day(2025, time.June, 15), day(2025, time.December, 1), false},
		{"new year before anchor month", day(2024, time.June, 15), day(2025, time.May, 20), false},
		{"anchor month before anchor day", day(2024, time.June, 15), day(2025, time.June, 10), false},
		{"anchor month on anchor day", day(2024, time.June, 15), day(2025, time.June, 15), true},
		{"past anchor month", day(2024, time.June, 15), day(2025, time.July, 1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checker.IsDue(tt.lastRun, tt.now, start); got != tt.want {
				t.Errorf("IsDue = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetDuenessChecker(t *testing.T) {
	for _, freq := range []core.RecurringType{core.Daily, core.Weekly, core.Monthly, core.Yearly} {
		if _, err := GetDuenessChecker(freq); err != nil {
			t.Errorf("GetDuenessChecker(%s): %v", freq, err)
		}
	}
	if _, err := GetDuenessChecker("fortnightly"); err == nil {
		t.Error("expected error for unknown recurring type")
	}
}
