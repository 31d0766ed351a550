package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/core"
)

// Narrow store interfaces consumed by the services. The SQLite
// repository satisfies all of them; tests substitute in-memory fakes.

// ExpenseFilter selects expenses for listing. Zero fields are ignored.
type ExpenseFilter struct {
	OwnerID       uuid.UUID
	CategoryID    uuid.UUID
	StartDate     time.Time
	EndDate       time.Time
	PaymentMethod core.PaymentMethod
	MinCents      int64
	MaxCents      int64
	Page          int
	PerPage       int
}

// RecurringTemplate is a recurring expense joined with the instant it
// last produced an instance.
type RecurringTemplate struct {
	Expense          core.Expense
	LastMaterialized time.Time
}

type ExpenseReader interface {
	// ListExpensesInRange returns the owner's expenses with date in
	// [start, end], each joined with its category name, icon and color.
	ListExpensesInRange(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]core.Expense, error)

	// ListRecentExpenses returns the owner's most recent expenses
	// across all time, date descending, id descending on equal dates.
	ListRecentExpenses(ctx context.Context, ownerID uuid.UUID, limit int) ([]core.Expense, error)
}

type ExpenseWriter interface {
	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	SoftDeleteExpense(ctx context.Context, ownerID, id uuid.UUID) error
}

type ExpenseLister interface {
	GetExpense(ctx context.Context, ownerID, id uuid.UUID) (core.Expense, error)
	ListExpenses(ctx context.Context, filter ExpenseFilter) ([]core.Expense, int, error)
}

type RecurringStore interface {
	ListRecurringTemplates(ctx context.Context) ([]RecurringTemplate, error)
	UpdateLastMaterialized(ctx context.Context, id uuid.UUID, at time.Time) error
}

type CategoryStore interface {
	GetCategory(ctx context.Context, ownerID, id uuid.UUID) (core.Category, error)
	ListCategories(ctx context.Context, ownerID uuid.UUID, activeOnly bool) ([]core.Category, error)
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	UpdateCategory(ctx context.Context, c core.Category) (core.Category, error)
	DeactivateCategory(ctx context.Context, ownerID, id uuid.UUID) error
}

type UserReader interface {
	GetUser(ctx context.Context, id uuid.UUID) (core.User, error)
}

// EventPublisher publishes expense lifecycle events for downstream
// consumers. A nil publisher disables events.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, action string, ownerID, expenseID uuid.UUID) error
}
