package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/auth"
	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/cache"
	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/config"
	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/core"
	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/middleware/ratelimit"
	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/middleware/security"
	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/middleware/trace"
	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/services"
)

// UserStore is the user persistence surface the API needs.
type UserStore interface {
	CreateUser(ctx context.Context, u core.User) (core.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (core.User, error)
	GetUserByEmail(ctx context.Context, email string) (core.User, error)
	UpdateUserBudget(ctx context.Context, id uuid.UUID, budget core.Money) error
}

// Pinger reports storage health for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps carries everything the server serves from.
type Deps struct {
	Users      UserStore
	Categories services.CategoryStore
	Expenses   *services.ExpenseService
	Lister     services.ExpenseLister
	Dashboard  *services.DashboardService
	Auth       *auth.Manager
	Health     Pinger
}

// Server is the HTTP front of the expense tracker. Dashboard reads go
// through per-owner LRU caches that expense writes invalidate.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux

	users      UserStore
	categories services.CategoryStore
	expenseSvc *services.ExpenseService
	lister     services.ExpenseLister
	dashboard  *services.DashboardService
	auth       *auth.Manager
	health     Pinger

	limiter *ratelimit.Limiter

	summaryCache  *cache.LRUCache[services.SummaryResponse]
	chartsCache   *cache.LRUCache[services.ChartsResponse]
	insightsCache *cache.LRUCache[services.InsightsResponse]
	cacheManager  *cache.Manager
}

func NewServer(cfg *config.Config, deps Deps) *Server {
	s := &Server{
		users:      deps.Users,
		categories: deps.Categories,
		expenseSvc: deps.Expenses,
		lister:     deps.Lister,
		dashboard:  deps.Dashboard,
		auth:       deps.Auth,
		health:     deps.Health,

		limiter: ratelimit.NewLimiter(ratelimit.DefaultConfig()),

		summaryCache:  cache.NewLRUCache[services.SummaryResponse](cfg.DashboardCacheSize, cfg.DashboardCacheTTL),
		chartsCache:   cache.NewLRUCache[services.ChartsResponse](cfg.DashboardCacheSize, cfg.DashboardCacheTTL),
		insightsCache: cache.NewLRUCache[services.InsightsResponse](cfg.DashboardCacheSize, cfg.DashboardCacheTTL),
		cacheManager:  cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.Register(s.chartsCache)
	s.cacheManager.Register(s.insightsCache)
	s.cacheManager.StartCleanup(time.Minute)

	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) buildRouter() *chi.Mux {
	r := chi.NewRouter()

	traceMW := trace.NewMiddleware(extractClientIP)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	r.Use(middleware.Recoverer)
	r.Use(traceMW.Middleware)
	r.Use(headers.Middleware)
	r.Use(s.limiter.Middleware(extractClientIP))

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.With(s.auth.Middleware).Get("/me", s.handleMe)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.auth.Middleware)

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", s.handleListCategories)
				r.Post("/", s.handleCreateCategory)
				r.Put("/{id}", s.handleUpdateCategory)
				r.Delete("/{id}", s.handleDeleteCategory)
			})

			r.Route("/expenses", func(r chi.Router) {
				r.Get("/", s.handleListExpenses)
				r.Post("/", s.handleCreateExpense)
				r.Get("/{id}", s.handleGetExpense)
				r.Put("/{id}", s.handleUpdateExpense)
				r.Delete("/{id}", s.handleDeleteExpense)
			})

			r.Route("/dashboard", func(r chi.Router) {
				r.Get("/summary", s.handleDashboardSummary)
				r.Get("/charts", s.handleDashboardCharts)
				r.Get("/insights", s.handleDashboardInsights)
			})
		})
	})

	return r
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen and serve: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	s.cacheManager.Stop()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// invalidateDashboards drops every cached dashboard view for an owner.
// Called after each expense write.
func (s *Server) invalidateDashboards(ownerID uuid.UUID) {
	prefix := ownerID.String() + ":"
	s.summaryCache.DeletePrefix(prefix)
	s.chartsCache.DeletePrefix(prefix)
	s.insightsCache.DeletePrefix(prefix)
}

func dashboardCacheKey(ownerID uuid.UUID, period string) string {
	return ownerID.String() + ":" + period
}
