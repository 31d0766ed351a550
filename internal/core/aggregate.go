package core

// CategoryAmount is an amount aggregated under a category name.
type CategoryAmount struct {
	Name  string
	Cents int64
}

// MethodAmount is an amount aggregated under a payment method.
type MethodAmount struct {
	Method PaymentMethod
	Cents  int64
}

// DayAmount is an amount aggregated under a UTC calendar day
// (YYYY-MM-DD).
type DayAmount struct {
	Date  string
	Cents int64
}

// AggregateResult is the reduction of one owner's expenses over a
// window. The slices preserve first-seen order of their keys; a
// category or method with no expenses in the window is absent rather
// than present with zero.
type AggregateResult struct {
	TotalCents    int64
	ExpenseCount  int
	ByCategory    []CategoryAmount
	CategoryCount map[string]int
	ByDay         []DayAmount
	ByMethod      []MethodAmount
	TopCategories []CategoryAmount
}

// CategoryTotal returns the aggregated cents for a category name, or
// zero when the category did not occur in the window.
func (a AggregateResult) CategoryTotal(name string) int64 {
	for _, c := range a.ByCategory {
		if c.Name == name {
			return c.Cents
		}
	}
	return 0
}

// InsightSeverity classifies an insight for presentation.
type InsightSeverity string

const (
	SeverityInfo    InsightSeverity = "info"
	SeverityWarning InsightSeverity = "warning"
	SeveritySuccess InsightSeverity = "success"
)

// InsightEvent is a derived, human-readable observation about spending
// behavior. Events are ordered; callers display them in generation
// order.
type InsightEvent struct {
	Severity InsightSeverity `json:"type"`
	Title    string          `json:"title"`
	Message  string          `json:"message"`
}
