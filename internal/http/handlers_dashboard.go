package http

import (
	"net/http"

	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/auth"
	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/period"
)

// Dashboard reads are cached per owner and period token. Expense
// writes invalidate all of an owner's entries, so a hit is never
// staler than the cache TTL or the owner's last write.

func (s *Server) handleDashboardSummary(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	periodToken := r.URL.Query().Get("period")
	if periodToken == "" {
		periodToken = period.CurrentMonth
	}

	key := dashboardCacheKey(userID, periodToken)
	if cached, ok := s.summaryCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	summary, err := s.dashboard.GetSummary(r.Context(), userID, periodToken)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.summaryCache.Set(key, summary)
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleDashboardCharts(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	periodToken := r.URL.Query().Get("period")
	if periodToken == "" {
		periodToken = period.CurrentMonth
	}

	key := dashboardCacheKey(userID, periodToken)
	if cached, ok := s.chartsCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	charts, err := s.dashboard.GetCharts(r.Context(), userID, periodToken)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.chartsCache.Set(key, charts)
	writeJSON(w, http.StatusOK, charts)
}

func (s *Server) handleDashboardInsights(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Insights always compare current month against last month.
	key := dashboardCacheKey(userID, "insights")
	if cached, ok := s.insightsCache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	insights, err := s.dashboard.GetInsights(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.insightsCache.Set(key, insights)
	writeJSON(w, http.StatusOK, insights)
}
