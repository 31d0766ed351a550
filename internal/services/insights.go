package services

import (
	"fmt"
	"math"

	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/core"
)

// insightInput carries everything the rule chain can look at.
type insightInput struct {
	budgetCents int64
	current     core.AggregateResult
	last        core.AggregateResult
}

// insightRule inspects the input and optionally produces one event.
// Rules are independent of each other; the chain order is the order
// events reach the caller, which is part of the dashboard contract.
type insightRule func(in insightInput) (core.InsightEvent, bool)

var insightRules = []insightRule{
	budgetUtilizationRule,
	monthOverMonthRule,
	highestSpendingDayRule,
}

// GenerateInsights evaluates the rule chain over the current and
// previous month aggregates. The returned events are in rule order.
func GenerateInsights(monthlyBudget core.Money, current, last core.AggregateResult) ([]core.InsightEvent, error) {
	if monthlyBudget.Cents < 0 {
		return nil, fmt.Errorf("negative monthly budget %d: %w", monthlyBudget.Cents, core.ErrInvalidArgument)
	}

	in := insightInput{
		budgetCents: monthlyBudget.Cents,
		current:     current,
		last:        last,
	}

	insights := make([]core.InsightEvent, 0, len(insightRules))
	for _, rule := range insightRules {
		if event, ok := rule(in); ok {
			insights = append(insights, event)
		}
	}
	return insights, nil
}

// PercentageChange is the month-over-month spending delta in percent,
// rounded to 2 decimals. Zero when last month had no spending.
func PercentageChange(currentCents, lastCents int64) float64 {
	if lastCents <= 0 {
		return 0
	}
	pct := float64(currentCents-lastCents) / float64(lastCents) * 100
	return round2(pct)
}

// BudgetUtilization is spending as a percentage of budget, rounded to
// 2 decimals. Zero when the budget is zero.
func BudgetUtilization(totalCents, budgetCents int64) float64 {
	if budgetCents <= 0 {
		return 0
	}
	return round2(float64(totalCents) / float64(budgetCents) * 100)
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func roundPct(f float64) int {
	return int(math.Round(f))
}

func budgetUtilizationRule(in insightInput) (core.InsightEvent, bool) {
	if in.budgetCents <= 0 {
		return core.InsightEvent{}, false
	}
	utilization := float64(in.current.TotalCents) / float64(in.budgetCents) * 100

	switch {
	case utilization > 90:
		return core.InsightEvent{
			Severity: core.SeverityWarning,
			Title:    "Budget Alert",
			Message:  fmt.Sprintf("You've used %d%% of your monthly budget. Consider reducing expenses.", roundPct(utilization)),
		}, true
	case utilization > 75:
		return core.InsightEvent{
			Severity: core.SeverityInfo,
			Title:    "Budget Notice",
			Message:  fmt.Sprintf("You've used %d%% of your monthly budget.", roundPct(utilization)),
		}, true
	}
	return core.InsightEvent{}, false
}

func monthOverMonthRule(in insightInput) (core.InsightEvent, bool) {
	if in.last.TotalCents <= 0 {
		return core.InsightEvent{}, false
	}
	pct := float64(in.current.TotalCents-in.last.TotalCents) / float64(in.last.TotalCents) * 100

	switch {
	case pct > 20:
		return core.InsightEvent{
			Severity: core.SeverityWarning,
			Title:    "Spending Increase",
			Message:  fmt.Sprintf("Your spending is %d%% higher than last month.", roundPct(pct)),
		}, true
	case pct < -20:
		return core.InsightEvent{
			Severity: core.SeveritySuccess,
			Title:    "Great Job!",
			Message:  fmt.Sprintf("Your spending is %d%% lower than last month.", roundPct(math.Abs(pct))),
		}, true
	}
	return core.InsightEvent{}, false
}

func highestSpendingDayRule(in insightInput) (core.InsightEvent, bool) {
	day, ok := highestSpendingDay(in.current)
	if !ok {
		return core.InsightEvent{}, false
	}
	return core.InsightEvent{
		Severity: core.SeverityInfo,
		Title:    "Highest Spending Day",
		Message:  fmt.Sprintf("Your highest spending day this month was %s with %s.", day.Date, core.FormatUSD(day.Cents)),
	}, true
}
