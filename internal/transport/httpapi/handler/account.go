package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kislikjeka/duetrack/internal/account"
	"github.com/kislikjeka/duetrack/internal/transport/httpapi/middleware"
)

// AccountHandler handles bank account requests
type AccountHandler struct {
	service *account.Service
}

// NewAccountHandler creates a new bank account handler
func NewAccountHandler(service *account.Service) *AccountHandler {
	return &AccountHandler{service: service}
}

type createAccountRequest struct {
	Name           string `json:"name"`
	InitialBalance string `json:"initial_balance"`
}

type accountResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	InitialBalance string    `json:"initial_balance"`
}

type balanceResponse struct {
	AccountID      uuid.UUID `json:"account_id"`
	InitialBalance string    `json:"initial_balance"`
	CurrentBalance string    `json:"current_balance"`
	TotalMovements string    `json:"total_movements"`
}

// CreateAccount handles POST /accounts
func (h *AccountHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	initialBalance := decimal.Zero
	if req.InitialBalance != "" {
		parsed, err := decimal.NewFromString(req.InitialBalance)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid initial_balance")
			return
		}
		initialBalance = parsed
	}

	a, err := h.service.Create(r.Context(), userID, req.Name, initialBalance)
	if err != nil {
		if errors.Is(err, account.ErrEmptyName) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to create bank account")
		return
	}

	respondJSON(w, http.StatusCreated, accountResponse{
		ID:             a.ID,
		Name:           a.Name,
		InitialBalance: a.InitialBalance.String(),
	})
}

// GetAccounts handles GET /accounts
func (h *AccountHandler) GetAccounts(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	accounts, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list bank accounts")
		return
	}

	resp := make([]accountResponse, len(accounts))
	for i, a := range accounts {
		resp[i] = accountResponse{
			ID:             a.ID,
			Name:           a.Name,
			InitialBalance: a.InitialBalance.String(),
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetBalance handles GET /accounts/{id}/balance. The figures are derived
// from the settled transaction set on every call.
func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	a, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get bank account")
		return
	}

	if a.UserID != userID {
		respondError(w, http.StatusNotFound, account.ErrAccountNotFound.Error())
		return
	}

	balance, err := h.service.Balance(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to compute balance")
		return
	}

	respondJSON(w, http.StatusOK, balanceResponse{
		AccountID:      balance.AccountID,
		InitialBalance: balance.InitialBalance.String(),
		CurrentBalance: balance.Current.String(),
		TotalMovements: balance.TotalMovements.String(),
	})
}
