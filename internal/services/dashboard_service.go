package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/core"
	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/period"
)

const recentExpenseLimit = 5

// DashboardService computes dashboard payloads from the expense and
// user stores. Every operation is a pure read: the service holds no
// state beyond its injected dependencies and a clock.
type DashboardService struct {
	expenses ExpenseReader
	users    UserReader
	now      func() time.Time
}

func NewDashboardService(expenses ExpenseReader, users UserReader) *DashboardService {
	return &DashboardService{
		expenses: expenses,
		users:    users,
		now:      time.Now,
	}
}

type PeriodDTO struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Type  string    `json:"type"`
}

type SummaryStatsDTO struct {
	TotalAmount       float64 `json:"totalAmount"`
	ExpenseCount      int     `json:"expenseCount"`
	MonthlyBudget     float64 `json:"monthlyBudget"`
	BudgetUtilization float64 `json:"budgetUtilization"`
}

type CategoryAmountDTO struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type ExpenseDTO struct {
	ID            uuid.UUID        `json:"id"`
	Title         string           `json:"title"`
	Amount        float64          `json:"amount"`
	Category      CategoryRefDTO   `json:"category"`
	Date          time.Time        `json:"date"`
	PaymentMethod string           `json:"paymentMethod"`
	Tags          []string         `json:"tags,omitempty"`
}

type CategoryRefDTO struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

type SummaryResponse struct {
	Period            PeriodDTO           `json:"period"`
	Summary           SummaryStatsDTO     `json:"summary"`
	CategoryBreakdown map[string]float64  `json:"categoryBreakdown"`
	CategoryCounts    map[string]int      `json:"categoryCounts"`
	TopCategories     []CategoryAmountDTO `json:"topCategories"`
	RecentExpenses    []ExpenseDTO        `json:"recentExpenses"`
}

type DayAmountDTO struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

type MethodAmountDTO struct {
	Method string  `json:"method"`
	Amount float64 `json:"amount"`
}

type ChartsResponse struct {
	DailyTrend             []DayAmountDTO      `json:"dailyTrend"`
	CategoryBreakdown      []CategoryAmountDTO `json:"categoryBreakdown"`
	PaymentMethodBreakdown []MethodAmountDTO   `json:"paymentMethodBreakdown"`
}

type InsightsResponse struct {
	CurrentMonthTotal float64              `json:"currentMonthTotal"`
	LastMonthTotal    float64              `json:"lastMonthTotal"`
	PercentageChange  float64              `json:"percentageChange"`
	Insights          []core.InsightEvent  `json:"insights"`
}

// GetSummary aggregates the owner's expenses over the named period and
// pairs them with budget utilization and the latest activity. The
// window expenses, the all-time recent expenses and the user record
// are independent reads and are fetched concurrently; if any of them
// fails the whole call fails.
func (s *DashboardService) GetSummary(ctx context.Context, ownerID uuid.UUID, periodToken string) (SummaryResponse, error) {
	if ownerID == uuid.Nil {
		return SummaryResponse{}, fmt.Errorf("owner id is required: %w", core.ErrInvalidArgument)
	}

	w := period.Resolve(periodToken, s.now())

	var (
		windowExpenses []core.Expense
		recent         []core.Expense
		user           core.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		windowExpenses, err = s.expenses.ListExpensesInRange(gctx, ownerID, w.Start, w.End)
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.expenses.ListRecentExpenses(gctx, ownerID, recentExpenseLimit)
		return err
	})
	g.Go(func() error {
		var err error
		user, err = s.users.GetUser(gctx, ownerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return SummaryResponse{}, fmt.Errorf("load summary data: %w", err)
	}

	agg := Aggregate(windowExpenses)

	resp := SummaryResponse{
		Period: PeriodDTO{Start: w.Start, End: w.End, Type: w.Label},
		Summary: SummaryStatsDTO{
			TotalAmount:       centsToAmount(agg.TotalCents),
			ExpenseCount:      agg.ExpenseCount,
			MonthlyBudget:     user.MonthlyBudget.Amount(),
			BudgetUtilization: BudgetUtilization(agg.TotalCents, user.MonthlyBudget.Cents),
		},
		CategoryBreakdown: make(map[string]float64, len(agg.ByCategory)),
		CategoryCounts:    agg.CategoryCount,
		TopCategories:     toCategoryDTOs(agg.TopCategories),
		RecentExpenses:    toExpenseDTOs(recent),
	}
	for _, c := range agg.ByCategory {
		resp.CategoryBreakdown[c.Name] = centsToAmount(c.Cents)
	}
	return resp, nil
}

// chartsPeriod restricts charts to the current-* windows. Anything
// else, last-month included, renders the current month.
func chartsPeriod(token string) string {
	switch token {
	case period.CurrentWeek, period.CurrentMonth, period.CurrentYear:
		return token
	default:
		return period.CurrentMonth
	}
}

// GetCharts returns the chart series for the named period. The daily
// trend is sorted by date; the breakdowns keep first-seen order.
func (s *DashboardService) GetCharts(ctx context.Context, ownerID uuid.UUID, periodToken string) (ChartsResponse, error) {
	if ownerID == uuid.Nil {
		return ChartsResponse{}, fmt.Errorf("owner id is required: %w", core.ErrInvalidArgument)
	}

	w := period.Resolve(chartsPeriod(periodToken), s.now())

	expenses, err := s.expenses.ListExpensesInRange(ctx, ownerID, w.Start, w.End)
	if err != nil {
		return ChartsResponse{}, fmt.Errorf("load chart data: %w", err)
	}

	agg := Aggregate(expenses)

	resp := ChartsResponse{
		DailyTrend:             make([]DayAmountDTO, 0, len(agg.ByDay)),
		CategoryBreakdown:      toCategoryDTOs(agg.ByCategory),
		PaymentMethodBreakdown: make([]MethodAmountDTO, 0, len(agg.ByMethod)),
	}
	for _, d := range agg.ByDay {
		resp.DailyTrend = append(resp.DailyTrend, DayAmountDTO{Date: d.Date, Amount: centsToAmount(d.Cents)})
	}
	// ISO dates sort lexicographically
	sort.Slice(resp.DailyTrend, func(i, j int) bool {
		return resp.DailyTrend[i].Date < resp.DailyTrend[j].Date
	})
	for _, m := range agg.ByMethod {
		resp.PaymentMethodBreakdown = append(resp.PaymentMethodBreakdown, MethodAmountDTO{Method: string(m.Method), Amount: centsToAmount(m.Cents)})
	}
	return resp, nil
}

// GetInsights compares the current calendar month against the previous
// one and runs the insight rule chain. The period is fixed by
// contract; there is no token parameter.
func (s *DashboardService) GetInsights(ctx context.Context, ownerID uuid.UUID) (InsightsResponse, error) {
	if ownerID == uuid.Nil {
		return InsightsResponse{}, fmt.Errorf("owner id is required: %w", core.ErrInvalidArgument)
	}

	now := s.now()
	curWindow := period.Resolve(period.CurrentMonth, now)
	lastWindow := period.Resolve(period.LastMonth, now)

	var (
		currentExpenses []core.Expense
		lastExpenses    []core.Expense
		user            core.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		currentExpenses, err = s.expenses.ListExpensesInRange(gctx, ownerID, curWindow.Start, curWindow.End)
		return err
	})
	g.Go(func() error {
		var err error
		lastExpenses, err = s.expenses.ListExpensesInRange(gctx, ownerID, lastWindow.Start, lastWindow.End)
		return err
	})
	g.Go(func() error {
		var err error
		user, err = s.users.GetUser(gctx, ownerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return InsightsResponse{}, fmt.Errorf("load insight data: %w", err)
	}

	curAgg := Aggregate(currentExpenses)
	lastAgg := Aggregate(lastExpenses)

	insights, err := GenerateInsights(user.MonthlyBudget, curAgg, lastAgg)
	if err != nil {
		return InsightsResponse{}, err
	}

	return InsightsResponse{
		CurrentMonthTotal: centsToAmount(curAgg.TotalCents),
		LastMonthTotal:    centsToAmount(lastAgg.TotalCents),
		PercentageChange:  PercentageChange(curAgg.TotalCents, lastAgg.TotalCents),
		Insights:          insights,
	}, nil
}

func centsToAmount(cents int64) float64 {
	return float64(cents) / 100.0
}

func toCategoryDTOs(in []core.CategoryAmount) []CategoryAmountDTO {
	out := make([]CategoryAmountDTO, 0, len(in))
	for _, c := range in {
		out = append(out, CategoryAmountDTO{Name: c.Name, Amount: centsToAmount(c.Cents)})
	}
	return out
}

func toExpenseDTOs(in []core.Expense) []ExpenseDTO {
	out := make([]ExpenseDTO, 0, len(in))
	for _, e := range in {
		out = append(out, ExpenseDTO{
			ID:     e.ID,
			Title:  e.Title,
			Amount: e.Amount.Amount(),
			Category: CategoryRefDTO{
				Name:  e.Category.Name,
				Icon:  e.Category.Icon,
				Color: e.Category.Color,
			},
			Date:          e.Date,
			PaymentMethod: string(e.PaymentMethod),
			Tags:          e.Tags,
		})
	}
	return out
}
