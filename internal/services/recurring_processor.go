package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/core"
)

// RecurringProcessor materializes due recurring expense templates into
// concrete expenses. Materialized instances go through the expense
// service, so they validate, publish events and hit the same write
// path as manual entries.
type RecurringProcessor struct {
	store          RecurringStore
	expenseService *ExpenseService
}

func NewRecurringProcessor(store RecurringStore, expenseService *ExpenseService) *RecurringProcessor {
	return &RecurringProcessor{
		store:          store,
		expenseService: expenseService,
	}
}

// ProcessDue materializes every template that is due at now and
// records the materialization time. One failing template does not stop
// the others; the count of created expenses is returned.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil || p.expenseService == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	templates, err := p.store.ListRecurringTemplates(ctx)
	if err != nil {
		return 0, fmt.Errorf("list recurring templates: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring expenses",
		"total_templates", len(templates),
		"processing_date", now.Format("2006-01-02"))

	processed := 0
	for _, tpl := range templates {
		checker, err := GetDuenessChecker(tpl.Expense.RecurringType)
		if err != nil {
			slog.ErrorContext(ctx, "Skipping template with unknown frequency",
				"expense_id", tpl.Expense.ID,
				"frequency", string(tpl.Expense.RecurringType))
			continue
		}

		if !checker.IsDue(tpl.LastMaterialized, now, tpl.Expense.Date) {
			continue
		}

		instance := core.Expense{
			ID:            uuid.New(),
			OwnerID:       tpl.Expense.OwnerID,
			Title:         tpl.Expense.Title,
			Amount:        tpl.Expense.Amount,
			CategoryID:    tpl.Expense.CategoryID,
			Category:      tpl.Expense.Category,
			Date:          now,
			PaymentMethod: tpl.Expense.PaymentMethod,
			Tags:          tpl.Expense.Tags,
			Location:      tpl.Expense.Location,
			Notes:         tpl.Expense.Notes,
		}

		if _, err := p.expenseService.CreateExpense(ctx, instance); err != nil {
			slog.ErrorContext(ctx, "Failed to materialize recurring expense",
				"template_id", tpl.Expense.ID,
				"title", tpl.Expense.Title,
				"error", err)
			continue
		}

		if err := p.store.UpdateLastMaterialized(ctx, tpl.Expense.ID, now); err != nil {
			// The instance exists; worst case the next run re-checks
			// dueness against a stale timestamp.
			slog.ErrorContext(ctx, "Failed to record materialization time",
				"template_id", tpl.Expense.ID,
				"error", err)
		}

		processed++
		slog.InfoContext(ctx, "Materialized recurring expense",
			"template_id", tpl.Expense.ID,
			"title", tpl.Expense.Title,
			"amount_cents", tpl.Expense.Amount.Cents,
			"frequency", string(tpl.Expense.RecurringType))
	}

	slog.InfoContext(ctx, "Recurring expense processing complete",
		"processed", processed,
		"total_checked", len(templates))

	return processed, nil
}
