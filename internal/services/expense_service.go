package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/core"
)

// Event actions published on expense writes.
const (
	EventExpenseCreated = "created"
	EventExpenseUpdated = "updated"
	EventExpenseDeleted = "deleted"
)

// ExpenseService owns the expense write path: validation, category
// ownership checks, persistence and event publishing. Events are best
// effort; a publish failure never fails the request that caused it.
type ExpenseService struct {
	expenses   ExpenseWriter
	categories CategoryStore
	publisher  EventPublisher
}

func NewExpenseService(expenses ExpenseWriter, categories CategoryStore, publisher EventPublisher) *ExpenseService {
	return &ExpenseService{
		expenses:   expenses,
		categories: categories,
		publisher:  publisher,
	}
}

// CreateExpense validates and persists a new expense. The referenced
// category must exist and be visible to the owner (their own or a
// shared default).
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("%w: %w", core.ErrInvalidArgument, err)
	}

	if _, err := s.categories.GetCategory(ctx, e.OwnerID, e.CategoryID); err != nil {
		return core.Expense{}, fmt.Errorf("verify category: %w", err)
	}

	created, err := s.expenses.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense created",
		"expense_id", created.ID,
		"owner_id", created.OwnerID,
		"amount_cents", created.Amount.Cents,
		"category", created.Category.Name)

	s.publish(ctx, EventExpenseCreated, created.OwnerID, created.ID)
	return created, nil
}

// UpdateExpense validates and persists changes to an existing expense.
func (s *ExpenseService) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("%w: %w", core.ErrInvalidArgument, err)
	}

	if _, err := s.categories.GetCategory(ctx, e.OwnerID, e.CategoryID); err != nil {
		return core.Expense{}, fmt.Errorf("verify category: %w", err)
	}

	updated, err := s.expenses.UpdateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}

	s.publish(ctx, EventExpenseUpdated, updated.OwnerID, updated.ID)
	return updated, nil
}

// DeleteExpense soft deletes an expense owned by ownerID.
func (s *ExpenseService) DeleteExpense(ctx context.Context, ownerID, id uuid.UUID) error {
	if err := s.expenses.SoftDeleteExpense(ctx, ownerID, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	s.publish(ctx, EventExpenseDeleted, ownerID, id)
	return nil
}

func (s *ExpenseService) publish(ctx context.Context, action string, ownerID, expenseID uuid.UUID) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishExpenseEvent(ctx, action, ownerID, expenseID); err != nil {
		// Expense state is already persisted; the event stream is
		// advisory only.
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"action", action,
			"expense_id", expenseID,
			"error", err)
	}
}
