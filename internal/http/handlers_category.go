package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/auth"
	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/core"
)

type categoryRequest struct {
	Name        string  `json:"name"`
	Icon        string  `json:"icon"`
	Color       string  `json:"color"`
	Description string  `json:"description"`
	Budget      float64 `json:"budget"`
}

type categoryResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Icon        string  `json:"icon"`
	Color       string  `json:"color"`
	Description string  `json:"description"`
	Budget      float64 `json:"budget"`
	IsDefault   bool    `json:"isDefault"`
	IsActive    bool    `json:"isActive"`
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{
		ID:          c.ID.String(),
		Name:        c.Name,
		Icon:        c.Icon,
		Color:       c.Color,
		Description: c.Description,
		Budget:      c.Budget.Amount(),
		IsDefault:   c.IsDefault,
		IsActive:    c.IsActive,
	}
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	activeOnly := r.URL.Query().Get("includeInactive") != "true"
	categories, err := s.categories.ListCategories(r.Context(), userID, activeOnly)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	category := core.Category{
		OwnerID:     uuid.NullUUID{UUID: userID, Valid: true},
		Name:        sanitizeInput(req.Name),
		Icon:        sanitizeInput(req.Icon),
		Color:       req.Color,
		Description: sanitizeInput(req.Description),
		Budget:      core.Money{Cents: toCents(req.Budget)},
		IsActive:    true,
	}
	if err := category.Validate(); err != nil {
		writeError(w, r, fmt.Errorf("%w: %w", core.ErrInvalidArgument, err))
		return
	}

	created, err := s.categories.CreateCategory(r.Context(), category)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(created))
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, fmt.Errorf("invalid category id: %w", core.ErrInvalidArgument))
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	category := core.Category{
		ID:          id,
		OwnerID:     uuid.NullUUID{UUID: userID, Valid: true},
		Name:        sanitizeInput(req.Name),
		Icon:        sanitizeInput(req.Icon),
		Color:       req.Color,
		Description: sanitizeInput(req.Description),
		Budget:      core.Money{Cents: toCents(req.Budget)},
		IsActive:    true,
	}
	if err := category.Validate(); err != nil {
		writeError(w, r, fmt.Errorf("%w: %w", core.ErrInvalidArgument, err))
		return
	}

	updated, err := s.categories.UpdateCategory(r.Context(), category)
	if err != nil {
		writeError(w, r, err)
		return
	}

	// Cached dashboard payloads embed the category name.
	s.invalidateDashboards(userID)
	writeJSON(w, http.StatusOK, toCategoryResponse(updated))
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, fmt.Errorf("invalid category id: %w", core.ErrInvalidArgument))
		return
	}

	if err := s.categories.DeactivateCategory(r.Context(), userID, id); err != nil {
		writeError(w, r, err)
		return
	}

	s.invalidateDashboards(userID)
	w.WriteHeader(http.StatusNoContent)
}
