package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kislikjeka/duetrack/internal/card"
	"github.com/kislikjeka/duetrack/internal/transport/httpapi/middleware"
)

// CardHandler handles credit card requests
type CardHandler struct {
	repo card.Repository
}

// NewCardHandler creates a new card handler
func NewCardHandler(repo card.Repository) *CardHandler {
	return &CardHandler{repo: repo}
}

type createCardRequest struct {
	Name       string `json:"name"`
	ClosingDay int    `json:"closing_day"`
	DueDay     int    `json:"due_day"`
}

type cardResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	ClosingDay int       `json:"closing_day"`
	DueDay     int       `json:"due_day"`
}

func toCardResponse(c *card.Card) cardResponse {
	return cardResponse{
		ID:         c.ID,
		Name:       c.Name,
		ClosingDay: c.ClosingDay,
		DueDay:     c.DueDay,
	}
}

// CreateCard handles POST /cards
func (h *CardHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	now := time.Now().UTC()
	c := &card.Card{
		ID:         uuid.New(),
		UserID:     userID,
		Name:       req.Name,
		ClosingDay: req.ClosingDay,
		DueDay:     req.DueDay,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := c.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.repo.Create(r.Context(), c); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to create card")
		return
	}

	respondJSON(w, http.StatusCreated, toCardResponse(c))
}

// GetCards handles GET /cards
func (h *CardHandler) GetCards(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	cards, err := h.repo.ListByUser(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list cards")
		return
	}

	resp := make([]cardResponse, len(cards))
	for i, c := range cards {
		resp[i] = toCardResponse(c)
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetCard handles GET /cards/{id}
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid card id")
		return
	}

	c, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, card.ErrCardNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to get card")
		return
	}

	if c.UserID != userID {
		respondError(w, http.StatusNotFound, card.ErrCardNotFound.Error())
		return
	}

	respondJSON(w, http.StatusOK, toCardResponse(c))
}
