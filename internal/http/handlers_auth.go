package http

import (
	"fmt"
	"net/http"

	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/auth"
	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/core"
)

type registerRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Currency string  `json:"currency"`
	Budget   float64 `json:"monthlyBudget"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Currency      string  `json:"currency"`
	MonthlyBudget float64 `json:"monthlyBudget"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func toUserResponse(u core.User) userResponse {
	return userResponse{
		ID:            u.ID.String(),
		Name:          u.Name,
		Email:         u.Email,
		Currency:      u.Currency,
		MonthlyBudget: u.MonthlyBudget.Amount(),
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	if req.Currency == "" {
		req.Currency = "USD"
	}
	if req.Budget < 0 {
		writeError(w, r, fmt.Errorf("monthly budget cannot be negative: %w", core.ErrInvalidArgument))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user := core.User{
		Name:          sanitizeInput(req.Name),
		Email:         sanitizeInput(req.Email),
		PasswordHash:  hash,
		Currency:      req.Currency,
		MonthlyBudget: core.Money{Cents: toCents(req.Budget)},
	}
	if err := user.Validate(); err != nil {
		writeError(w, r, fmt.Errorf("%w: %w", core.ErrInvalidArgument, err))
		return
	}

	created, err := s.users.CreateUser(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}

	token, err := s.auth.IssueToken(created.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: toUserResponse(created)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.users.GetUserByEmail(r.Context(), sanitizeInput(req.Email))
	if err != nil {
		// Same response for unknown email and bad password.
		writeError(w, r, fmt.Errorf("invalid credentials: %w", core.ErrUnauthorized))
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		writeError(w, r, err)
		return
	}

	token, err := s.auth.IssueToken(user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{Token: token, User: toUserResponse(user)})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, err := auth.UserIDFromContext(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := s.users.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}
