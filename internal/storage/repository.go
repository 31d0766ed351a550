package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/core"
	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/services"

	_ "modernc.org/sqlite"
)

// SQLiteRepository persists users, categories and expenses in a single
// SQLite database. It satisfies every store interface the services
// consume.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// Timestamps are stored as RFC3339 UTC strings, so lexicographic
// range comparisons in SQL match chronological order.
// timeDBLayout is fixed width so stored strings sort lexicographically
// in chronological order. RFC3339Nano would drop trailing zeros and
// break TEXT comparison in range queries and ORDER BY.
const timeDBLayout = "2006-01-02T15:04:05.000000000Z"

func timeToDB(t time.Time) string {
	return t.UTC().Format(timeDBLayout)
}

func timeFromDB(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func tagsToDB(tags []string) (string, error) {
	if len(tags) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func tagsFromDB(raw string) []string {
	if raw == "" || raw == "[]" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil
	}
	return tags
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// --- users ---

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, currency, monthly_budget_cents, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID.String(), u.Name, u.Email, u.PasswordHash, u.Currency, u.MonthlyBudget.Cents, timeToDB(u.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, fmt.Errorf("email already registered: %w", core.ErrConflict)
		}
		return core.User{}, fmt.Errorf("insert user: %w: %w", core.ErrStorage, err)
	}

	slog.InfoContext(ctx, "User created", "user_id", u.ID, "email", u.Email)
	return u, nil
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id uuid.UUID) (core.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, currency, monthly_budget_cents, created_at
		FROM users WHERE id = ?`, id.String())
	return scanUser(row)
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, password_hash, currency, monthly_budget_cents, created_at
		FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *SQLiteRepository) UpdateUserBudget(ctx context.Context, id uuid.UUID, budget core.Money) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET monthly_budget_cents = ? WHERE id = ?`, budget.Cents, id.String())
	if err != nil {
		return fmt.Errorf("update user budget: %w: %w", core.ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user budget: %w: %w", core.ErrStorage, err)
	}
	if n == 0 {
		return fmt.Errorf("user %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func scanUser(row *sql.Row) (core.User, error) {
	var (
		u           core.User
		id, created string
	)
	err := row.Scan(&id, &u.Name, &u.Email, &u.PasswordHash, &u.Currency, &u.MonthlyBudget.Cents, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("user: %w", core.ErrNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("scan user: %w: %w", core.ErrStorage, err)
	}
	u.ID, err = uuid.Parse(id)
	if err != nil {
		return core.User{}, fmt.Errorf("parse user id: %w", err)
	}
	u.CreatedAt = timeFromDB(created)
	return u, nil
}

// --- categories ---

const categoryColumns = `id, owner_id, name, icon, color, description, budget_cents, is_default, is_active, created_at`

// GetCategory returns a category visible to ownerID: either owned by
// them or a shared default.
func (r *SQLiteRepository) GetCategory(ctx context.Context, ownerID, id uuid.UUID) (core.Category, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+categoryColumns+`
		FROM categories
		WHERE id = ? AND (owner_id = ? OR owner_id IS NULL)`,
		id.String(), ownerID.String())
	c, err := scanCategory(row)
	if err != nil {
		return core.Category{}, err
	}
	return c, nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, ownerID uuid.UUID, activeOnly bool) ([]core.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE (owner_id = ? OR owner_id IS NULL)`
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY is_default DESC, name ASC`

	rows, err := r.db.QueryContext(ctx, query, ownerID.String())
	if err != nil {
		return nil, fmt.Errorf("list categories: %w: %w", core.ErrStorage, err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list categories: %w: %w", core.ErrStorage, err)
	}
	return categories, nil
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	var owner any
	if c.OwnerID.Valid {
		owner = c.OwnerID.UUID.String()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO categories (id, owner_id, name, icon, color, description, budget_cents, is_default, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID.String(), owner, c.Name, c.Icon, c.Color, c.Description,
		c.Budget.Cents, c.IsDefault, c.IsActive, timeToDB(c.CreatedAt))
	if err != nil {
		return core.Category{}, fmt.Errorf("insert category: %w: %w", core.ErrStorage, err)
	}
	return c, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if !c.OwnerID.Valid {
		return core.Category{}, fmt.Errorf("default categories are read only: %w", core.ErrInvalidArgument)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE categories
		SET name = ?, icon = ?, color = ?, description = ?, budget_cents = ?, is_active = ?
		WHERE id = ? AND owner_id = ?`,
		c.Name, c.Icon, c.Color, c.Description, c.Budget.Cents, c.IsActive,
		c.ID.String(), c.OwnerID.UUID.String())
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w: %w", core.ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w: %w", core.ErrStorage, err)
	}
	if n == 0 {
		return core.Category{}, fmt.Errorf("category %s: %w", c.ID, core.ErrNotFound)
	}
	return c, nil
}

// DeactivateCategory hides an owned category. Expenses already in the
// category keep referencing it.
func (r *SQLiteRepository) DeactivateCategory(ctx context.Context, ownerID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE categories SET is_active = 0
		WHERE id = ? AND owner_id = ?`,
		id.String(), ownerID.String())
	if err != nil {
		return fmt.Errorf("deactivate category: %w: %w", core.ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate category: %w: %w", core.ErrStorage, err)
	}
	if n == 0 {
		return fmt.Errorf("category %s: %w", id, core.ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (core.Category, error) {
	var (
		c           core.Category
		id, created string
		owner       sql.NullString
	)
	err := row.Scan(&id, &owner, &c.Name, &c.Icon, &c.Color, &c.Description,
		&c.Budget.Cents, &c.IsDefault, &c.IsActive, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Category{}, fmt.Errorf("category: %w", core.ErrNotFound)
	}
	if err != nil {
		return core.Category{}, fmt.Errorf("scan category: %w: %w", core.ErrStorage, err)
	}
	c.ID, err = uuid.Parse(id)
	if err != nil {
		return core.Category{}, fmt.Errorf("parse category id: %w", err)
	}
	if owner.Valid {
		ownerID, err := uuid.Parse(owner.String)
		if err != nil {
			return core.Category{}, fmt.Errorf("parse category owner id: %w", err)
		}
		c.OwnerID = uuid.NullUUID{UUID: ownerID, Valid: true}
	}
	c.CreatedAt = timeFromDB(created)
	return c, nil
}

// --- expenses ---

const expenseColumns = `
	e.id, e.owner_id, e.title, e.amount_cents, e.category_id,
	c.name, c.icon, c.color,
	e.date, e.payment_method, e.tags, e.location, e.notes,
	e.is_recurring, e.recurring_type, e.created_at`

const expenseJoin = `
	FROM expenses e
	JOIN categories c ON c.id = e.category_id`

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	tags, err := tagsToDB(e.Tags)
	if err != nil {
		return core.Expense{}, err
	}

	var recurringType any
	if e.IsRecurring {
		recurringType = string(e.RecurringType)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO expenses (id, owner_id, title, amount_cents, category_id, date,
			payment_method, tags, location, notes, is_recurring, recurring_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.OwnerID.String(), e.Title, e.Amount.Cents, e.CategoryID.String(),
		timeToDB(e.Date), string(e.PaymentMethod), tags, e.Location, e.Notes,
		e.IsRecurring, recurringType, timeToDB(e.CreatedAt))
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w: %w", core.ErrStorage, err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"expense_id", e.ID,
		"owner_id", e.OwnerID,
		"amount_cents", e.Amount.Cents)

	return r.GetExpense(ctx, e.OwnerID, e.ID)
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	tags, err := tagsToDB(e.Tags)
	if err != nil {
		return core.Expense{}, err
	}

	var recurringType any
	if e.IsRecurring {
		recurringType = string(e.RecurringType)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses
		SET title = ?, amount_cents = ?, category_id = ?, date = ?,
			payment_method = ?, tags = ?, location = ?, notes = ?,
			is_recurring = ?, recurring_type = ?
		WHERE id = ? AND owner_id = ? AND deleted_at IS NULL`,
		e.Title, e.Amount.Cents, e.CategoryID.String(), timeToDB(e.Date),
		string(e.PaymentMethod), tags, e.Location, e.Notes,
		e.IsRecurring, recurringType,
		e.ID.String(), e.OwnerID.String())
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w: %w", core.ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w: %w", core.ErrStorage, err)
	}
	if n == 0 {
		return core.Expense{}, fmt.Errorf("expense %s: %w", e.ID, core.ErrNotFound)
	}

	return r.GetExpense(ctx, e.OwnerID, e.ID)
}

// SoftDeleteExpense marks an expense deleted. Deleted rows stay in the
// table but are excluded from every read.
func (r *SQLiteRepository) SoftDeleteExpense(ctx context.Context, ownerID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses SET deleted_at = ?
		WHERE id = ? AND owner_id = ? AND deleted_at IS NULL`,
		timeToDB(time.Now()), id.String(), ownerID.String())
	if err != nil {
		return fmt.Errorf("delete expense: %w: %w", core.ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense: %w: %w", core.ErrStorage, err)
	}
	if n == 0 {
		return fmt.Errorf("expense %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, ownerID, id uuid.UUID) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+expenseColumns+expenseJoin+`
		WHERE e.id = ? AND e.owner_id = ? AND e.deleted_at IS NULL`,
		id.String(), ownerID.String())
	return scanExpense(row)
}

// ListExpensesInRange returns the owner's expenses with date in
// [start, end], joined with category name, icon and color.
func (r *SQLiteRepository) ListExpensesInRange(ctx context.Context, ownerID uuid.UUID, start, end time.Time) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+expenseColumns+expenseJoin+`
		WHERE e.owner_id = ? AND e.deleted_at IS NULL
			AND e.date >= ? AND e.date <= ?
		ORDER BY e.date ASC, e.id ASC`,
		ownerID.String(), timeToDB(start), timeToDB(end))
	if err != nil {
		return nil, fmt.Errorf("list expenses in range: %w: %w", core.ErrStorage, err)
	}
	defer rows.Close()
	return collectExpenses(rows)
}

// ListRecentExpenses returns the owner's latest expenses across all
// time, newest first.
func (r *SQLiteRepository) ListRecentExpenses(ctx context.Context, ownerID uuid.UUID, limit int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+expenseColumns+expenseJoin+`
		WHERE e.owner_id = ? AND e.deleted_at IS NULL
		ORDER BY e.date DESC, e.id DESC
		LIMIT ?`,
		ownerID.String(), limit)
	if err != nil {
		return nil, fmt.Errorf("list recent expenses: %w: %w", core.ErrStorage, err)
	}
	defer rows.Close()
	return collectExpenses(rows)
}

// ListExpenses returns a filtered, paginated page of the owner's
// expenses plus the total match count before pagination.
func (r *SQLiteRepository) ListExpenses(ctx context.Context, filter services.ExpenseFilter) ([]core.Expense, int, error) {
	where := []string{"e.owner_id = ?", "e.deleted_at IS NULL"}
	args := []any{filter.OwnerID.String()}

	if filter.CategoryID != uuid.Nil {
		where = append(where, "e.category_id = ?")
		args = append(args, filter.CategoryID.String())
	}
	if !filter.StartDate.IsZero() {
		where = append(where, "e.date >= ?")
		args = append(args, timeToDB(filter.StartDate))
	}
	if !filter.EndDate.IsZero() {
		where = append(where, "e.date <= ?")
		args = append(args, timeToDB(filter.EndDate))
	}
	if filter.PaymentMethod != "" {
		where = append(where, "e.payment_method = ?")
		args = append(args, string(filter.PaymentMethod))
	}
	if filter.MinCents > 0 {
		where = append(where, "e.amount_cents >= ?")
		args = append(args, filter.MinCents)
	}
	if filter.MaxCents > 0 {
		where = append(where, "e.amount_cents <= ?")
		args = append(args, filter.MaxCents)
	}

	clause := strings.Join(where, " AND ")

	var total int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) `+expenseJoin+` WHERE `+clause, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w: %w", core.ErrStorage, err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = 20
	}
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+expenseColumns+expenseJoin+`
		WHERE `+clause+`
		ORDER BY e.date DESC, e.id DESC
		LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list expenses: %w: %w", core.ErrStorage, err)
	}
	defer rows.Close()

	expenses, err := collectExpenses(rows)
	if err != nil {
		return nil, 0, err
	}
	return expenses, total, nil
}

// --- recurring templates ---

func (r *SQLiteRepository) ListRecurringTemplates(ctx context.Context) ([]services.RecurringTemplate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+expenseColumns+`, e.last_materialized_at`+expenseJoin+`
		WHERE e.is_recurring = 1 AND e.deleted_at IS NULL
		ORDER BY e.created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list recurring templates: %w: %w", core.ErrStorage, err)
	}
	defer rows.Close()

	var templates []services.RecurringTemplate
	for rows.Next() {
		var (
			e                core.Expense
			id, owner        string
			categoryID       string
			date, created    string
			method           string
			tags             string
			recurringType    sql.NullString
			lastMaterialized sql.NullString
		)
		err := rows.Scan(&id, &owner, &e.Title, &e.Amount.Cents, &categoryID,
			&e.Category.Name, &e.Category.Icon, &e.Category.Color,
			&date, &method, &tags, &e.Location, &e.Notes,
			&e.IsRecurring, &recurringType, &created, &lastMaterialized)
		if err != nil {
			return nil, fmt.Errorf("scan recurring template: %w: %w", core.ErrStorage, err)
		}
		if err := fillExpenseIDs(&e, id, owner, categoryID); err != nil {
			return nil, err
		}
		e.Date = timeFromDB(date)
		e.CreatedAt = timeFromDB(created)
		e.PaymentMethod = core.PaymentMethod(method)
		e.Tags = tagsFromDB(tags)
		if recurringType.Valid {
			e.RecurringType = core.RecurringType(recurringType.String)
		}

		tpl := services.RecurringTemplate{Expense: e}
		if lastMaterialized.Valid {
			tpl.LastMaterialized = timeFromDB(lastMaterialized.String)
		}
		templates = append(templates, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recurring templates: %w: %w", core.ErrStorage, err)
	}
	return templates, nil
}

func (r *SQLiteRepository) UpdateLastMaterialized(ctx context.Context, id uuid.UUID, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses SET last_materialized_at = ?
		WHERE id = ? AND is_recurring = 1 AND deleted_at IS NULL`,
		timeToDB(at), id.String())
	if err != nil {
		return fmt.Errorf("update last materialized: %w: %w", core.ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update last materialized: %w: %w", core.ErrStorage, err)
	}
	if n == 0 {
		return fmt.Errorf("recurring expense %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e             core.Expense
		id, owner     string
		categoryID    string
		date, created string
		method        string
		tags          string
		recurringType sql.NullString
	)
	err := row.Scan(&id, &owner, &e.Title, &e.Amount.Cents, &categoryID,
		&e.Category.Name, &e.Category.Icon, &e.Category.Color,
		&date, &method, &tags, &e.Location, &e.Notes,
		&e.IsRecurring, &recurringType, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("expense: %w", core.ErrNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("scan expense: %w: %w", core.ErrStorage, err)
	}
	if err := fillExpenseIDs(&e, id, owner, categoryID); err != nil {
		return core.Expense{}, err
	}
	e.Date = timeFromDB(date)
	e.CreatedAt = timeFromDB(created)
	e.PaymentMethod = core.PaymentMethod(method)
	e.Tags = tagsFromDB(tags)
	if recurringType.Valid {
		e.RecurringType = core.RecurringType(recurringType.String)
	}
	return e, nil
}

func fillExpenseIDs(e *core.Expense, id, owner, categoryID string) error {
	var err error
	if e.ID, err = uuid.Parse(id); err != nil {
		return fmt.Errorf("parse expense id: %w", err)
	}
	if e.OwnerID, err = uuid.Parse(owner); err != nil {
		return fmt.Errorf("parse expense owner id: %w", err)
	}
	if e.CategoryID, err = uuid.Parse(categoryID); err != nil {
		return fmt.Errorf("parse expense category id: %w", err)
	}
	return nil
}

func collectExpenses(rows *sql.Rows) ([]core.Expense, error) {
	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w: %w", core.ErrStorage, err)
	}
	return expenses, nil
}
