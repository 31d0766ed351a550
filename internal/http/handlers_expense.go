package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/auth"
	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/core"
	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/services"
)

type expenseRequest struct {
	Title         string   `json:"title"`
	Amount        string   `json:"amount"`
	CategoryID    string   `json:"categoryId"`
	Date          string   `json:"date"`
	PaymentMethod string   `json:"paymentMethod"`
	Tags          []string `json:"tags"`
	Location      string   `json:"location"`
	Notes         string   `json:"notes"`
	IsRecurring   bool     `json:"isRecurring"`
	RecurringType string   `json:"recurringType"`
}

type expenseResponse struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Amount        float64        `json:"amount"`
	CategoryID    string         `json:"categoryId"`
	Category      categoryRefDTO `json:"category"`
	Date          time.Time      `json:"date"`
	PaymentMethod string         `json:"paymentMethod"`
	Tags          []string       `json:"tags,omitempty"`
	Location      string         `json:"location,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	IsRecurring   bool           `json:"isRecurring"`
	RecurringType string         `json:"recurringType,omitempty"`
}

type categoryRefDTO struct {
	Name  string `json:"name"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

type expenseListResponse struct {
	Expenses []expenseResponse `json:"expenses"`
	Total    int               `json:"total"`
	Page     int               `json:"page"`
	PerPage  int               `json:"perPage"`
}

func toExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:         e.ID.String(),
		Title:      e.Title,
		Amount:     e.Amount.Amount(),
		CategoryID: e.CategoryID.String(),
		Category: categoryRefDTO{
			Name:  e.Category.Name,
			Icon:  e.Category.Icon,
			Color: e.Category.Color,
		},
		Date:          e.Date,
		PaymentMethod: string(e.PaymentMethod),
		Tags:          e.Tags,
		Location:      e.Location,
		Notes:         e.Notes,
		IsRecurring:   e.IsRecurring,
		RecurringType: string(e.RecurringType),
	}
}

// expenseFromRequest builds a domain expense from the request body.
// Amounts arrive as decimal strings so clients never send float money.
func expenseFromRequest(ownerID uuid.UUID, req expenseRequest) (core.Expense, error) {
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Expense{}, fmt.Errorf("invalid amount %q: %w", req.Amount, core.ErrInvalidArgument)
	}

	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("invalid category id: %w", core.ErrInvalidArgument)
	}

	date, err := parseDate(req.Date)
	if err != nil {
		return core.Expense{}, err
	}

	method := core.PaymentMethod(req.PaymentMethod)
	if req.PaymentMethod == "" {
		method = core.PaymentCash
	}

	tags := make([]string, 0, len(req.Tags))
	for _, tag := range req.Tags {
		if t := sanitizeInput(tag); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) == 0 {
		tags = nil
	}

	return core.Expense{
		OwnerID:       ownerID,
		Title:         sanitizeInput(req.Title),
		Amount:        core.Money{Cents: cents},
		CategoryID:    categoryID,
		Date:          date,
		PaymentMethod: method,
		Tags:          tags,
		Location:      sanitizeInput(req.Location),
		Notes:         sanitizeInput(req.Notes),
		IsRecurring:   req.IsRecurring,
		RecurringType: core.RecurringType(req.RecurringType),
	}, nil
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	expense, err := expenseFromRequest(userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	created, err := s.expenseSvc.CreateExpense(r.Context(), expense)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboards(userID)
	writeJSON(w, http.StatusCreated, toExpenseResponse(created))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, fmt.Errorf("invalid expense id: %w", core.ErrInvalidArgument))
		return
	}

	expense, err := s.lister.GetExpense(r.Context(), userID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(expense))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, fmt.Errorf("invalid expense id: %w", core.ErrInvalidArgument))
		return
	}

	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	expense, err := expenseFromRequest(userID, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	expense.ID = id

	updated, err := s.expenseSvc.UpdateExpense(r.Context(), expense)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboards(userID)
	writeJSON(w, http.StatusOK, toExpenseResponse(updated))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, fmt.Errorf("invalid expense id: %w", core.ErrInvalidArgument))
		return
	}

	if err := s.expenseSvc.DeleteExpense(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboards(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	filter, err := filterFromQuery(userID, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	expenses, total, err := s.lister.ListExpenses(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := expenseListResponse{
		Expenses: make([]expenseResponse, 0, len(expenses)),
		Total:    total,
		Page:     filter.Page,
		PerPage:  filter.PerPage,
	}
	for _, e := range expenses {
		out.Expenses = append(out.Expenses, toExpenseResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func filterFromQuery(ownerID uuid.UUID, r *http.Request) (services.ExpenseFilter, error) {
	q := r.URL.Query()
	filter := services.ExpenseFilter{
		OwnerID: ownerID,
		Page:    1,
		PerPage: 20,
	}

	if v := q.Get("categoryId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, fmt.Errorf("invalid category id filter: %w", core.ErrInvalidArgument)
		}
		filter.CategoryID = id
	}
	if v := q.Get("startDate"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return filter, err
		}
		filter.StartDate = t
	}
	if v := q.Get("endDate"); v != "" {
		t, err := parseDate(v)
		if err != nil {
			return filter, err
		}
		// Inclusive end of day.
		filter.EndDate = t.Add(24*time.Hour - time.Millisecond)
	}
	if v := q.Get("paymentMethod"); v != "" {
		method := core.PaymentMethod(v)
		if !method.Valid() {
			return filter, fmt.Errorf("invalid payment method filter: %w", core.ErrInvalidArgument)
		}
		filter.PaymentMethod = method
	}
	if v := q.Get("minAmount"); v != "" {
		cents, err := core.ParseDecimalToCents(v)
		if err != nil {
			return filter, fmt.Errorf("invalid minAmount: %w", core.ErrInvalidArgument)
		}
		filter.MinCents = cents
	}
	if v := q.Get("maxAmount"); v != "" {
		cents, err := core.ParseDecimalToCents(v)
		if err != nil {
			return filter, fmt.Errorf("invalid maxAmount: %w", core.ErrInvalidArgument)
		}
		filter.MaxCents = cents
	}
	if v := q.Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil && page > 0 {
			filter.Page = page
		}
	}
	if v := q.Get("perPage"); v != "" {
		if perPage, err := strconv.Atoi(v); err == nil && perPage > 0 && perPage <= 100 {
			filter.PerPage = perPage
		}
	}

	return filter, nil
}
