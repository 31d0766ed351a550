package services

import (
	"sort"
	"time"

	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/core"
)

const topCategoryLimit = 5

// dayKey truncates an expense timestamp to its UTC calendar day.
func dayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// orderedSums accumulates cents under string keys while preserving the
// order keys were first seen. Keys never observed stay absent, so an
// empty window produces empty maps rather than zero-valued ones.
type orderedSums struct {
	keys  []string
	index map[string]int
	cents []int64
	count []int
}

func newOrderedSums() *orderedSums {
	return &orderedSums{index: make(map[string]int)}
}

func (o *orderedSums) add(key string, cents int64) {
	i, ok := o.index[key]
	if !ok {
		i = len(o.keys)
		o.index[key] = i
		o.keys = append(o.keys, key)
		o.cents = append(o.cents, 0)
		o.count = append(o.count, 0)
	}
	o.cents[i] += cents
	o.count[i]++
}

// Aggregate reduces one owner's expenses for a window into totals,
// per-category sums and counts, per-day sums and per-payment-method
// sums. The input order defines first-seen order for the breakdown
// slices; totals are independent of it.
func Aggregate(expenses []core.Expense) core.AggregateResult {
	byCategory := newOrderedSums()
	byDay := newOrderedSums()
	byMethod := newOrderedSums()

	var total int64
	for _, e := range expenses {
		total += e.Amount.Cents
		byCategory.add(e.Category.Name, e.Amount.Cents)
		byDay.add(dayKey(e.Date), e.Amount.Cents)
		byMethod.add(string(e.PaymentMethod), e.Amount.Cents)
	}

	result := core.AggregateResult{
		TotalCents:    total,
		ExpenseCount:  len(expenses),
		CategoryCount: make(map[string]int, len(byCategory.keys)),
	}
	for i, name := range byCategory.keys {
		result.ByCategory = append(result.ByCategory, core.CategoryAmount{Name: name, Cents: byCategory.cents[i]})
		result.CategoryCount[name] = byCategory.count[i]
	}
	for i, day := range byDay.keys {
		result.ByDay = append(result.ByDay, core.DayAmount{Date: day, Cents: byDay.cents[i]})
	}
	for i, method := range byMethod.keys {
		result.ByMethod = append(result.ByMethod, core.MethodAmount{Method: core.PaymentMethod(method), Cents: byMethod.cents[i]})
	}
	result.TopCategories = topCategories(result.ByCategory, topCategoryLimit)

	return result
}

// topCategories ranks category totals descending. The sort is stable
// so equal amounts keep their first-seen order.
func topCategories(byCategory []core.CategoryAmount, limit int) []core.CategoryAmount {
	ranked := make([]core.CategoryAmount, len(byCategory))
	copy(ranked, byCategory)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Cents > ranked[j].Cents
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

// highestSpendingDay returns the day with the largest total. Ties go
// to the earliest date. ok is false when the aggregate has no days.
func highestSpendingDay(agg core.AggregateResult) (core.DayAmount, bool) {
	if len(agg.ByDay) == 0 {
		return core.DayAmount{}, false
	}
	best := agg.ByDay[0]
	for _, d := range agg.ByDay[1:] {
		if d.Cents > best.Cents || (d.Cents == best.Cents && d.Date < best.Date) {
			best = d
		}
	}
	return best, true
}
