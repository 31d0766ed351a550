package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/auth"
	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/config"
	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/core"
	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/services"
)

// memStore is an in-memory stand-in for the SQLite repository.
type memStore struct {
	mu         sync.Mutex
	users      map[uuid.UUID]core.User
	categories map[uuid.UUID]core.Category
	expenses   map[uuid.UUID]core.Expense
	pingErr    error
}

func newMemStore() *memStore {
	return &memStore{
		users:      make(map[uuid.UUID]core.User),
		categories: make(map[uuid.UUID]core.Category),
		expenses:   make(map[uuid.UUID]core.Expense),
	}
}

func (m *memStore) Ping(context.Context) error { return m.pingErr }

func (m *memStore) CreateUser(_ context.Context, u core.User) (core.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return core.User{}, core.ErrConflict
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	m.users[u.ID] = u
	return u, nil
}

func (m *memStore) GetUser(_ context.Context, id uuid.UUID) (core.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return core.User{}, core.ErrNotFound
	}
	return u, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return core.User{}, core.ErrNotFound
}

func (m *memStore) UpdateUserBudget(_ context.Context, id uuid.UUID, budget core.Money) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return core.ErrNotFound
	}
	u.MonthlyBudget = budget
	m.users[id] = u
	return nil
}

func (m *memStore) GetCategory(_ context.Context, ownerID, id uuid.UUID) (core.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok {
		return core.Category{}, core.ErrNotFound
	}
	if c.OwnerID.Valid && c.OwnerID.UUID != ownerID {
		return core.Category{}, core.ErrNotFound
	}
	return c, nil
}

func (m *memStore) ListCategories(_ context.Context, ownerID uuid.UUID, activeOnly bool) ([]core.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Category
	for _, c := range m.categories {
		if c.OwnerID.Valid && c.OwnerID.UUID != ownerID {
			continue
		}
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) CreateCategory(_ context.Context, c core.Category) (core.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	m.categories[c.ID] = c
	return c, nil
}

func (m *memStore) UpdateCategory(_ context.Context, c core.Category) (core.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.categories[c.ID]; !ok {
		return core.Category{}, core.ErrNotFound
	}
	m.categories[c.ID] = c
	return c, nil
}

func (m *memStore) DeactivateCategory(_ context.Context, ownerID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.categories[id]
	if !ok || !c.OwnerID.Valid || c.OwnerID.UUID != ownerID {
		return core.ErrNotFound
	}
	c.IsActive = false
	m.categories[id] = c
	return nil
}

// joinCategory mirrors the SQL join: the category fields on a read
// expense reflect the category's current state. Callers hold mu.
func (m *memStore) joinCategory(e core.Expense) core.Expense {
	if c, ok := m.categories[e.CategoryID]; ok {
		e.Category = core.CategoryRef{Name: c.Name, Icon: c.Icon, Color: c.Color}
	}
	return e
}

func (m *memStore) CreateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	m.expenses[e.ID] = e
	return m.joinCategory(e), nil
}

func (m *memStore) UpdateExpense(_ context.Context, e core.Expense) (core.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	old, ok := m.expenses[e.ID]
	if !ok || old.OwnerID != e.OwnerID {
		return core.Expense{}, core.ErrNotFound
	}
	m.expenses[e.ID] = e
	return m.joinCategory(e), nil
}

func (m *memStore) SoftDeleteExpense(_ context.Context, ownerID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.expenses[id]
	if !ok || e.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(m.expenses, id)
	return nil
}

func (m *memStore) GetExpense(_ context.Context, ownerID, id uuid.UUID) (core.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.expenses[id]
	if !ok || e.OwnerID != ownerID {
		return core.Expense{}, core.ErrNotFound
	}
	return m.joinCategory(e), nil
}

func (m *memStore) ListExpenses(_ context.Context, filter services.ExpenseFilter) ([]core.Expense, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []core.Expense
	for _, e := range m.expenses {
		if e.OwnerID != filter.OwnerID {
			continue
		}
		if filter.CategoryID != uuid.Nil && e.CategoryID != filter.CategoryID {
			continue
		}
		all = append(all, m.joinCategory(e))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Date.After(all[j].Date) })
	return all, len(all), nil
}

func (m *memStore) ListExpensesInRange(_ context.Context, ownerID uuid.UUID, start, end time.Time) ([]core.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Expense
	for _, e := range m.expenses {
		if e.OwnerID != ownerID || e.Date.Before(start) || e.Date.After(end) {
			continue
		}
		out = append(out, m.joinCategory(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *memStore) ListRecentExpenses(_ context.Context, ownerID uuid.UUID, limit int) ([]core.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Expense
	for _, e := range m.expenses {
		if e.OwnerID == ownerID {
			out = append(out, m.joinCategory(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type testEnv struct {
	server *Server
	store  *memStore
	auth   *auth.Manager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := newMemStore()
	authManager := auth.NewManager("test-secret-at-least-16", time.Hour)

	cfg := &config.Config{
		Port:               "8080",
		DashboardCacheTTL:  time.Minute,
		DashboardCacheSize: 50,
	}

	server := NewServer(cfg, Deps{
		Users:      store,
		Categories: store,
		Expenses:   services.NewExpenseService(store, store, nil),
		Lister:     store,
		Dashboard:  services.NewDashboardService(store, store),
		Auth:       authManager,
		Health:     store,
	})
	t.Cleanup(func() { server.Shutdown(context.Background()) })

	return &testEnv{server: server, store: store, auth: authManager}
}

func (env *testEnv) registerUser(t *testing.T, email string) (uuid.UUID, string) {
	t.Helper()
	u, err := env.store.CreateUser(context.Background(), core.User{
		Name:          "Test User",
		Email:         email,
		PasswordHash:  mustHash(t, "secret-password"),
		Currency:      "USD",
		MonthlyBudget: core.Money{Cents: 100000},
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	token, err := env.auth.IssueToken(u.ID)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	return u.ID, token
}

func (env *testEnv) seedCategory(t *testing.T, ownerID uuid.UUID, name string) core.Category {
	t.Helper()
	c, err := env.store.CreateCategory(context.Background(), core.Category{
		OwnerID:  uuid.NullUUID{UUID: ownerID, Valid: true},
		Name:     name,
		IsActive: true,
	})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	return c
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return hash
}

func (env *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestServer_Health(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("readyz status = %d, want 200", rec.Code)
	}

	env.store.pingErr = core.ErrStorage
	rec = env.do(t, http.MethodGet, "/readyz", "", nil)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz with down storage = %d, want 503", rec.Code)
	}
}

func TestServer_RegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", registerRequest{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "secret-password",
		Budget:   1000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[authResponse](t, rec)
	if created.Token == "" {
		t.Error("register should return a token")
	}
	if created.User.MonthlyBudget != 1000 {
		t.Errorf("MonthlyBudget = %v, want 1000", created.User.MonthlyBudget)
	}

	rec = env.do(t, http.MethodPost, "/api/auth/login", "", loginRequest{
		Email:    "alice@example.com",
		Password: "secret-password",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	logged := decodeBody[authResponse](t, rec)

	rec = env.do(t, http.MethodGet, "/api/auth/me", logged.Token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me status = %d", rec.Code)
	}
	me := decodeBody[userResponse](t, rec)
	if me.Email != "alice@example.com" {
		t.Errorf("me.Email = %q, want alice@example.com", me.Email)
	}
}

func TestServer_LoginRejectsBadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "bob@example.com")

	rec := env.do(t, http.MethodPost, "/api/auth/login", "", loginRequest{
		Email:    "bob@example.com",
		Password: "wrong password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/api/auth/login", "", loginRequest{
		Email:    "nobody@example.com",
		Password: "whatever",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unknown email status = %d, want 401", rec.Code)
	}
}

func TestServer_RegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "carol@example.com")

	rec := env.do(t, http.MethodPost, "/api/auth/register", "", registerRequest{
		Name:     "Carol Again",
		Email:    "carol@example.com",
		Password: "secret-password",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestServer_RequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/expenses/", "/api/categories/", "/api/dashboard/summary"} {
		rec := env.do(t, http.MethodGet, path, "", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without token = %d, want 401", path, rec.Code)
		}
	}
}

func TestServer_ExpenseCRUD(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.registerUser(t, "dave@example.com")
	category := env.seedCategory(t, userID, "Food")

	rec := env.do(t, http.MethodPost, "/api/expenses/", token, expenseRequest{
		Title:      "Groceries",
		Amount:     "25.50",
		CategoryID: category.ID.String(),
		Date:       "2025-03-10",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[expenseResponse](t, rec)
	if created.Amount != 25.5 {
		t.Errorf("Amount = %v, want 25.5", created.Amount)
	}
	if created.PaymentMethod != "Cash" {
		t.Errorf("PaymentMethod = %q, want default Cash", created.PaymentMethod)
	}
	if created.Category.Name != "Food" {
		t.Errorf("Category.Name = %q, want Food", created.Category.Name)
	}

	rec = env.do(t, http.MethodGet, "/api/expenses/"+created.ID, token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	rec = env.do(t, http.MethodPut, "/api/expenses/"+created.ID, token, expenseRequest{
		Title:         "Weekly groceries",
		Amount:        "30.00",
		CategoryID:    category.ID.String(),
		Date:          "2025-03-10",
		PaymentMethod: "Credit Card",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rec.Code, rec.Body.String())
	}
	updated := decodeBody[expenseResponse](t, rec)
	if updated.Title != "Weekly groceries" || updated.Amount != 30 {
		t.Errorf("updated = %+v, want new title and amount", updated)
	}

	rec = env.do(t, http.MethodGet, "/api/expenses/", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	list := decodeBody[expenseListResponse](t, rec)
	if list.Total != 1 || len(list.Expenses) != 1 {
		t.Errorf("list = total %d len %d, want 1 and 1", list.Total, len(list.Expenses))
	}

	rec = env.do(t, http.MethodDelete, "/api/expenses/"+created.ID, token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/expenses/"+created.ID, token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete = %d, want 404", rec.Code)
	}
}

func TestServer_ExpenseValidation(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.registerUser(t, "erin@example.com")
	category := env.seedCategory(t, userID, "Food")

	tests := []struct {
		name string
		req  expenseRequest
		want int
	}{
		{
			name: "bad amount",
			req:  expenseRequest{Title: "x", Amount: "nope", CategoryID: category.ID.String(), Date: "2025-03-10"},
			want: http.StatusBadRequest,
		},
		{
			name: "zero amount",
			req:  expenseRequest{Title: "x", Amount: "0", CategoryID: category.ID.String(), Date: "2025-03-10"},
			want: http.StatusBadRequest,
		},
		{
			name: "bad date",
			req:  expenseRequest{Title: "x", Amount: "5.00", CategoryID: category.ID.String(), Date: "March 10"},
			want: http.StatusBadRequest,
		},
		{
			name: "unknown category",
			req:  expenseRequest{Title: "x", Amount: "5.00", CategoryID: uuid.NewString(), Date: "2025-03-10"},
			want: http.StatusNotFound,
		},
		{
			name: "empty title",
			req:  expenseRequest{Title: "  ", Amount: "5.00", CategoryID: category.ID.String(), Date: "2025-03-10"},
			want: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/expenses/", token, tt.req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestServer_OwnersAreIsolated(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.registerUser(t, "frank@example.com")
	_, otherToken := env.registerUser(t, "grace@example.com")
	category := env.seedCategory(t, userID, "Food")

	rec := env.do(t, http.MethodPost, "/api/expenses/", token, expenseRequest{
		Title: "Lunch", Amount: "12.00", CategoryID: category.ID.String(), Date: "2025-03-10",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	created := decodeBody[expenseResponse](t, rec)

	rec = env.do(t, http.MethodGet, "/api/expenses/"+created.ID, otherToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign get = %d, want 404", rec.Code)
	}
	rec = env.do(t, http.MethodDelete, "/api/expenses/"+created.ID, otherToken, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign delete = %d, want 404", rec.Code)
	}
}

func TestServer_CategoryCRUD(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.registerUser(t, "heidi@example.com")

	rec := env.do(t, http.MethodPost, "/api/categories/", token, categoryRequest{
		Name:  "Pets",
		Icon:  "paw",
		Color: "#AB47BC",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[categoryResponse](t, rec)

	rec = env.do(t, http.MethodPost, "/api/categories/", token, categoryRequest{
		Name:  "Bad",
		Color: "not-a-color",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid color status = %d, want 400", rec.Code)
	}

	rec = env.do(t, http.MethodPut, "/api/categories/"+created.ID, token, categoryRequest{
		Name: "Pet Care",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d", rec.Code)
	}

	rec = env.do(t, http.MethodDelete, "/api/categories/"+created.ID, token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/categories/", token, nil)
	list := decodeBody[[]categoryResponse](t, rec)
	for _, c := range list {
		if c.ID == created.ID {
			t.Error("deactivated category still listed")
		}
	}
}

func TestServer_DashboardSummary(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.registerUser(t, "ivan@example.com")
	category := env.seedCategory(t, userID, "Food")

	date := time.Now().UTC().Format("2006-01-02")
	rec := env.do(t, http.MethodPost, "/api/expenses/", token, expenseRequest{
		Title: "Groceries", Amount: "250.00", CategoryID: category.ID.String(), Date: date,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	rec = env.do(t, http.MethodGet, "/api/dashboard/summary", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d, body %s", rec.Code, rec.Body.String())
	}
	summary := decodeBody[services.SummaryResponse](t, rec)
	if summary.Summary.TotalAmount != 250 {
		t.Errorf("TotalAmount = %v, want 250", summary.Summary.TotalAmount)
	}
	if summary.Summary.BudgetUtilization != 25 {
		t.Errorf("BudgetUtilization = %v, want 25", summary.Summary.BudgetUtilization)
	}
	if summary.CategoryBreakdown["Food"] != 250 {
		t.Errorf("CategoryBreakdown[Food] = %v, want 250", summary.CategoryBreakdown["Food"])
	}
}

func TestServer_DashboardCacheInvalidation(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.registerUser(t, "judy@example.com")
	category := env.seedCategory(t, userID, "Food")

	date := time.Now().UTC().Format("2006-01-02")
	env.do(t, http.MethodPost, "/api/expenses/", token, expenseRequest{
		Title: "First", Amount: "100.00", CategoryID: category.ID.String(), Date: date,
	})

	rec := env.do(t, http.MethodGet, "/api/dashboard/summary", token, nil)
	first := decodeBody[services.SummaryResponse](t, rec)
	if first.Summary.TotalAmount != 100 {
		t.Fatalf("TotalAmount = %v, want 100", first.Summary.TotalAmount)
	}

	// A second read must come from cache and agree.
	rec = env.do(t, http.MethodGet, "/api/dashboard/summary", token, nil)
	cached := decodeBody[services.SummaryResponse](t, rec)
	if cached.Summary.TotalAmount != 100 {
		t.Fatalf("cached TotalAmount = %v, want 100", cached.Summary.TotalAmount)
	}

	// A write invalidates; the next read reflects it.
	env.do(t, http.MethodPost, "/api/expenses/", token, expenseRequest{
		Title: "Second", Amount: "50.00", CategoryID: category.ID.String(), Date: date,
	})
	rec = env.do(t, http.MethodGet, "/api/dashboard/summary", token, nil)
	after := decodeBody[services.SummaryResponse](t, rec)
	if after.Summary.TotalAmount != 150 {
		t.Errorf("TotalAmount after write = %v, want 150", after.Summary.TotalAmount)
	}
}

func TestServer_CategoryRenameInvalidatesDashboards(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.registerUser(t, "mia@example.com")
	category := env.seedCategory(t, userID, "Food")

	date := time.Now().UTC().Format("2006-01-02")
	env.do(t, http.MethodPost, "/api/expenses/", token, expenseRequest{
		Title: "Lunch", Amount: "20.00", CategoryID: category.ID.String(), Date: date,
	})

	// Prime the cache under the old category name.
	rec := env.do(t, http.MethodGet, "/api/dashboard/summary", token, nil)
	before := decodeBody[services.SummaryResponse](t, rec)
	if _, ok := before.CategoryBreakdown["Food"]; !ok {
		t.Fatalf("CategoryBreakdown = %v, want Food entry", before.CategoryBreakdown)
	}

	rec = env.do(t, http.MethodPut, "/api/categories/"+category.ID.String(), token, categoryRequest{
		Name: "Dining",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("rename status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = env.do(t, http.MethodGet, "/api/dashboard/summary", token, nil)
	after := decodeBody[services.SummaryResponse](t, rec)
	if _, stale := after.CategoryBreakdown["Food"]; stale {
		t.Error("summary still served from cache under the old category name")
	}
	if after.CategoryBreakdown["Dining"] != 20 {
		t.Errorf("CategoryBreakdown[Dining] = %v, want 20", after.CategoryBreakdown["Dining"])
	}
}

func TestServer_ChartsLastMonthRendersCurrentMonth(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.registerUser(t, "nina@example.com")
	category := env.seedCategory(t, userID, "Food")

	date := time.Now().UTC().Format("2006-01-02")
	env.do(t, http.MethodPost, "/api/expenses/", token, expenseRequest{
		Title: "Groceries", Amount: "40.00", CategoryID: category.ID.String(), Date: date,
	})

	rec := env.do(t, http.MethodGet, "/api/dashboard/charts?period=last-month", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("charts status = %d, body %s", rec.Code, rec.Body.String())
	}
	charts := decodeBody[services.ChartsResponse](t, rec)
	if len(charts.DailyTrend) != 1 || charts.DailyTrend[0].Amount != 40 {
		t.Errorf("DailyTrend = %+v, want this month's expense", charts.DailyTrend)
	}
}

func TestServer_DashboardPeriodFallback(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.registerUser(t, "kate@example.com")

	rec := env.do(t, http.MethodGet, "/api/dashboard/summary?period=bogus", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	summary := decodeBody[services.SummaryResponse](t, rec)
	if summary.Period.Type != "current-month" {
		t.Errorf("Period.Type = %q, want current-month fallback", summary.Period.Type)
	}
}

func TestServer_DashboardInsights(t *testing.T) {
	env := newTestEnv(t)
	userID, token := env.registerUser(t, "leo@example.com")
	category := env.seedCategory(t, userID, "Food")

	date := time.Now().UTC().Format("2006-01-02")
	env.do(t, http.MethodPost, "/api/expenses/", token, expenseRequest{
		Title: "Big spend", Amount: "950.00", CategoryID: category.ID.String(), Date: date,
	})

	rec := env.do(t, http.MethodGet, "/api/dashboard/insights", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("insights status = %d, body %s", rec.Code, rec.Body.String())
	}
	insights := decodeBody[services.InsightsResponse](t, rec)
	if insights.CurrentMonthTotal != 950 {
		t.Errorf("CurrentMonthTotal = %v, want 950", insights.CurrentMonthTotal)
	}

	var foundAlert bool
	for _, in := range insights.Insights {
		if in.Title == "Budget Alert" {
			foundAlert = true
		}
	}
	if !foundAlert {
		t.Errorf("expected Budget Alert insight at 95%% utilization, got %+v", insights.Insights)
	}
}

func TestServer_RateLimitHeadersPresent(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", "", nil)
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", got)
	}
}
