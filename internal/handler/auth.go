package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/moodart/internal/auth"
	"github.com/sakif/moodart/internal/model"
	"github.com/sakif/moodart/internal/service"
)

// AccountService is the part of *service.AuthService the handlers use.
type AccountService interface {
	Signup(ctx context.Context, in service.SignupInput) (*service.AuthResult, error)
	Login(ctx context.Context, in service.LoginInput) (*service.AuthResult, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// AuthHandler serves signup, login and the current user.
type AuthHandler struct {
	accounts AccountService
	logger   *slog.Logger
}

func NewAuthHandler(accounts AccountService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, logger: logger}
}

// HandleSignup handles POST /api/auth/signup.
//
// Request:  {"email": "a@b.com", "password": "secret1", "mood": "Happy"}
// Response: 201 {"token": "...", "avatar": "happy_avatar", "user": {...}}
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var in service.SignupInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.accounts.Signup(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

// HandleLogin handles POST /api/auth/login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.accounts.Login(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// HandleMe handles GET /api/auth/me.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	user, err := h.accounts.GetUserByID(r.Context(), id.UserID)
	if err != nil {
		h.logger.Warn("token subject has no user", slog.String("userID", id.UserID))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
