package services

import (
	"errors"
	"testing"

	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/core"
)

func aggWithTotal(cents int64) core.AggregateResult {
	return core.AggregateResult{TotalCents: cents}
}

func TestGenerateInsights_BudgetAlert(t *testing.T) {
	current := aggWithTotal(95000)
	insights, err := GenerateInsights(core.Money{Cents: 100000}, current, core.AggregateResult{})
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}

	if len(insights) != 1 {
		t.Fatalf("got %d insights, want 1", len(insights))
	}
	got := insights[0]
	if got.Severity != core.SeverityWarning {
		t.Errorf("Severity = %q, want warning", got.Severity)
	}
	if got.Title != "Budget Alert" {
		t.Errorf("Title = %q, want Budget Alert", got.Title)
	}
	want := "You've used 95% of your monthly budget. Consider reducing expenses."
	if got.Message != want {
		t.Errorf("Message = %q, want %q", got.Message, want)
	}
}

func TestGenerateInsights_BudgetNotice(t *testing.T) {
	insights, err := GenerateInsights(core.Money{Cents: 100000}, aggWithTotal(80000), core.AggregateResult{})
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}

	if len(insights) != 1 {
		t.Fatalf("got %d insights, want 1", len(insights))
	}
	if insights[0].Severity != core.SeverityInfo || insights[0].Title != "Budget Notice" {
		t.Errorf("got %+v, want info Budget Notice", insights[0])
	}
	if want := "You've used 80% of your monthly budget."; insights[0].Message != want {
		t.Errorf("Message = %q, want %q", insights[0].Message, want)
	}
}

func TestGenerateInsights_SpendingIncrease(t *testing.T) {
	insights, err := GenerateInsights(core.Money{}, aggWithTotal(13000), aggWithTotal(10000))
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}

	if len(insights) != 1 {
		t.Fatalf("got %d insights, want 1", len(insights))
	}
	got := insights[0]
	if got.Severity != core.SeverityWarning || got.Title != "Spending Increase" {
		t.Errorf("got %+v, want warning Spending Increase", got)
	}
	if want := "Your spending is 30% higher than last month."; got.Message != want {
		t.Errorf("Message = %q, want %q", got.Message, want)
	}
}

func TestGenerateInsights_SpendingDecrease(t *testing.T) {
	insights, err := GenerateInsights(core.Money{}, aggWithTotal(15000), aggWithTotal(20000))
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}

	if len(insights) != 1 {
		t.Fatalf("got %d insights, want 1", len(insights))
	}
	got := insights[0]
	if got.Severity != core.SeveritySuccess || got.Title != "Great Job!" {
		t.Errorf("got %+v, want success Great Job!", got)
	}
	if want := "Your spending is 25% lower than last month."; got.Message != want {
		t.Errorf("Message = %q, want %q", got.Message, want)
	}
}

func TestGenerateInsights_NoSignalBands(t *testing.T) {
	tests := []struct {
		name    string
		budget  int64
		current int64
		last    int64
	}{
		{"utilization at 75", 100000, 75000, 0},
		{"no budget configured", 0, 40000, 0},
		{"change within band", 0, 11000, 10000},
		{"decrease within band", 0, 9000, 10000},
		{"zero last month", 0, 5000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := aggWithTotal(tt.current)
			insights, err := GenerateInsights(core.Money{Cents: tt.budget}, current, aggWithTotal(tt.last))
			if err != nil {
				t.Fatalf("GenerateInsights: %v", err)
			}
			for _, in := range insights {
				if in.Title != "Highest Spending Day" {
					t.Errorf("unexpected insight %+v", in)
				}
			}
		})
	}
}

func TestGenerateInsights_HighestSpendingDay(t *testing.T) {
	current := core.AggregateResult{
		TotalCents: 1550,
		ByDay: []core.DayAmount{
			{Date: "2025-03-09", Cents: 0},
			{Date: "2025-03-10", Cents: 1550},
		},
	}

	insights, err := GenerateInsights(core.Money{}, current, core.AggregateResult{})
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}

	if len(insights) != 1 {
		t.Fatalf("got %d insights, want 1", len(insights))
	}
	want := "Your highest spending day this month was 2025-03-10 with $15.50."
	if insights[0].Message != want {
		t.Errorf("Message = %q, want %q", insights[0].Message, want)
	}
	if insights[0].Severity != core.SeverityInfo {
		t.Errorf("Severity = %q, want info", insights[0].Severity)
	}
}

func TestGenerateInsights_RuleOrder(t *testing.T) {
	current := core.AggregateResult{
		TotalCents: 95000,
		ByDay:      []core.DayAmount{{Date: "2025-03-10", Cents: 95000}},
	}
	last := aggWithTotal(50000)

	insights, err := GenerateInsights(core.Money{Cents: 100000}, current, last)
	if err != nil {
		t.Fatalf("GenerateInsights: %v", err)
	}

	wantTitles := []string{"Budget Alert", "Spending Increase", "Highest Spending Day"}
	if len(insights) != len(wantTitles) {
		t.Fatalf("got %d insights, want %d", len(insights), len(wantTitles))
	}
	for i, title := range wantTitles {
		if insights[i].Title != title {
			t.Errorf("insights[%d].Title = %q, want %q", i, insights[i].Title, title)
		}
	}
}

func TestGenerateInsights_NegativeBudget(t *testing.T) {
	_, err := GenerateInsights(core.Money{Cents: -1}, core.AggregateResult{}, core.AggregateResult{})
	if !errors.Is(err, core.ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestPercentageChange(t *testing.T) {
	tests := []struct {
		name    string
		current int64
		last    int64
		want    float64
	}{
		{"increase", 13000, 10000, 30},
		{"decrease", 15000, 20000, -25},
		{"no last month", 5000, 0, 0},
		{"equal", 10000, 10000, 0},
		{"fractional rounds to 2 decimals", 10001, 30000, -66.66},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PercentageChange(tt.current, tt.last); got != tt.want {
				t.Errorf("PercentageChange(%d, %d) = %v, want %v", tt.current, tt.last, got, tt.want)
			}
		})
	}
}

func TestBudgetUtilization(t *testing.T) {
	tests := []struct {
		name   string
		total  int64
		budget int64
		want   float64
	}{
		{"under budget", 95000, 100000, 95},
		{"over budget", 120000, 100000, 120},
		{"zero budget", 50000, 0, 0},
		{"fractional", 10000, 30000, 33.33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BudgetUtilization(tt.total, tt.budget); got != tt.want {
				t.Errorf("BudgetUtilization(%d, %d) = %v, want %v", tt.total, tt.budget, got, tt.want)
			}
		})
	}
}
