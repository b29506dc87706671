package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kislikjeka/duetrack/internal/platform/user"
	"github.com/kislikjeka/duetrack/internal/transport/httpapi/middleware"
)

// AuthHandler handles registration and login requests
type AuthHandler struct {
	users *user.Service
	jwt   *middleware.JWTService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *user.Service, jwt *middleware.JWTService) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
	Email string `json:"email"`
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrUserAlreadyExists):
			respondError(w, http.StatusConflict, err.Error())
		case errors.Is(err, user.ErrInvalidEmail), errors.Is(err, user.ErrPasswordTooShort):
			respondError(w, http.StatusBadRequest, err.Error())
		default:
			respondError(w, http.StatusInternalServerError, "failed to register user")
		}
		return
	}

	token, err := h.jwt.GenerateToken(u.ID, u.Email)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	respondJSON(w, http.StatusCreated, authResponse{Token: token, Email: u.Email})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, user.ErrInvalidPassword) {
			respondError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to log in")
		return
	}

	token, err := h.jwt.GenerateToken(u.ID, u.Email)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	respondJSON(w, http.StatusOK, authResponse{Token: token, Email: u.Email})
}
