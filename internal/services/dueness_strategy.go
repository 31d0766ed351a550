// Package services provides business logic over the stores: dashboard
// aggregation, insight generation, the expense write path and
// recurring expense materialization.
//
// This file implements the dueness check for recurring expenses. Each
// frequency has its own checker so new frequencies can be added
// without touching the processor loop.
package services

import (
	"fmt"
	"time"

	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/core"
)

// DuenessChecker decides whether a recurring expense template should
// produce a new instance.
type DuenessChecker interface {
	// IsDue returns true if the template should be materialized given
	// when it last produced an instance and the current time. start is
	// the template's original expense date; its day (and month, for
	// yearly) anchor the schedule.
	IsDue(lastRun, now time.Time, start time.Time) bool
}

// DailyChecker fires once per calendar day.
type DailyChecker struct{}

func (DailyChecker) IsDue(lastRun, now time.Time, _ time.Time) bool {
	if lastRun.IsZero() {
		return true
	}
	return lastRun.Format("2006-01-02") != now.Format("2006-01-02")
}

// WeeklyChecker fires when 7 or more days have passed.
type WeeklyChecker struct{}

func (WeeklyChecker) IsDue(lastRun, now time.Time, _ time.Time) bool {
	if lastRun.IsZero() {
		return true
	}
	return now.Sub(lastRun).Hours()/24 >= 7
}

// MonthlyChecker fires once per month, on or after the anchor day.
// Anchor days past the end of a short month clamp to its last day.
type MonthlyChecker struct{}

func (MonthlyChecker) IsDue(lastRun, now time.Time, start time.Time) bool {
	if lastRun.IsZero() {
		return true
	}
	if lastRun.Year() == now.Year() && lastRun.Month() == now.Month() {
		return false
	}
	return now.Day() >= clampDay(start.Day(), now)
}

// YearlyChecker fires once per year, on or after the anchor month/day.
type YearlyChecker struct{}

func (YearlyChecker) IsDue(lastRun, now time.Time, start time.Time) bool {
	if lastRun.IsZero() {
		return true
	}
	if lastRun.Year() == now.Year() {
		return false
	}

	targetMonth := int(start.Month())
	switch {
	case int(now.Month()) < targetMonth:
		return false
	case int(now.Month()) == targetMonth:
		return now.Day() >= clampDay(start.Day(), now)
	default:
		return true
	}
}

// clampDay limits an anchor day to the last day of now's month, so a
// template anchored on the 31st still fires in February.
func clampDay(day int, now time.Time) int {
	lastDay := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDay {
		return lastDay
	}
	return day
}

var duenessStrategies = map[core.RecurringType]DuenessChecker{
	core.Daily:   DailyChecker{},
	core.Weekly:  WeeklyChecker{},
	core.Monthly: MonthlyChecker{},
	core.Yearly:  YearlyChecker{},
}

// GetDuenessChecker returns the checker for a recurring type, or an
// error for unsupported types.
func GetDuenessChecker(frequency core.RecurringType) (DuenessChecker, error) {
	checker, ok := duenessStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown recurring type: %s", frequency)
	}
	return checker, nil
}
