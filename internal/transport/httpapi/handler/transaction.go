package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "github.com/kislikjeka/duetrack/internal/shared/errors"
	"github.com/kislikjeka/duetrack/internal/transaction"
	"github.com/kislikjeka/duetrack/internal/transport/httpapi/middleware"
	"github.com/kislikjeka/duetrack/pkg/datemath"
)

// TransactionHandler handles transaction requests
type TransactionHandler struct {
	service *transaction.Service
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(service *transaction.Service) *TransactionHandler {
	return &TransactionHandler{service: service}
}

type createTransactionRequest struct {
	Description string `json:"description"`
	Kind        string `json:"kind"`
	Amount      string `json:"amount"`
	DueDate     string `json:"due_date"`

	Recurrence *struct {
		Type         string `json:"type"`
		Count        int    `json:"count"`
		IntervalDays int    `json:"interval_days,omitempty"`
		Weekday      int    `json:"weekday,omitempty"`
	} `json:"recurrence,omitempty"`
	Installments int `json:"installments,omitempty"`

	CategoryID    *uuid.UUID `json:"category_id,omitempty"`
	SubcategoryID *uuid.UUID `json:"subcategory_id,omitempty"`
	ContactID     *uuid.UUID `json:"contact_id,omitempty"`
	CostCenterID  *uuid.UUID `json:"cost_center_id,omitempty"`
}

type transactionResponse struct {
	ID                  uuid.UUID  `json:"id"`
	Description         string     `json:"description"`
	Kind                string     `json:"kind"`
	Amount              string     `json:"amount"`
	DueDate             string     `json:"due_date"`
	Status              string     `json:"status"`
	IsPaid              bool       `json:"is_paid"`
	PaymentDate         *string    `json:"payment_date,omitempty"`
	PaidAmount          *string    `json:"paid_amount,omitempty"`
	PaymentType         string     `json:"payment_type,omitempty"`
	BankAccountID       *uuid.UUID `json:"bank_account_id,omitempty"`
	CardID              *uuid.UUID `json:"card_id,omitempty"`
	InstallmentNumber   int        `json:"installment_number,omitempty"`
	TotalInstallments   int        `json:"total_installments,omitempty"`
	OriginTransactionID *uuid.UUID `json:"origin_transaction_id,omitempty"`
}

func toTransactionResponse(t *transaction.Transaction, today time.Time) transactionResponse {
	resp := transactionResponse{
		ID:                  t.ID,
		Description:         t.Description,
		Kind:                string(t.Kind),
		Amount:              t.Amount.String(),
		DueDate:             t.DueDate.Format(dateLayout),
		Status:              string(transaction.ClassifyTransaction(t, today)),
		IsPaid:              t.IsPaid,
		PaymentType:         string(t.PaymentType),
		BankAccountID:       t.BankAccountID,
		CardID:              t.CardID,
		InstallmentNumber:   t.InstallmentNumber,
		TotalInstallments:   t.TotalInstallments,
		OriginTransactionID: t.OriginTransactionID,
	}

	if t.PaymentDate != nil {
		d := t.PaymentDate.Format(dateLayout)
		resp.PaymentDate = &d
	}
	if t.IsPaid {
		a := t.PaidAmount.String()
		resp.PaidAmount = &a
	}

	return resp
}

// CreateTransaction handles POST /transactions: it expands the entry into
// its occurrence rows and returns all of them
func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid amount")
		return
	}

	dueDate, err := time.Parse(dateLayout, req.DueDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid due_date, expected YYYY-MM-DD")
		return
	}

	if req.Recurrence != nil && req.Installments > 0 {
		respondError(w, http.StatusBadRequest, transaction.ErrConflictingSchedule.Error())
		return
	}

	var schedule transaction.ExpansionMode = transaction.ScheduleOnce{}
	if req.Recurrence != nil {
		schedule = transaction.ScheduleRecurring{Rule: transaction.RecurrenceRule{
			Type:         transaction.RecurrenceType(req.Recurrence.Type),
			Count:        req.Recurrence.Count,
			IntervalDays: req.Recurrence.IntervalDays,
			Weekday:      time.Weekday(req.Recurrence.Weekday),
		}}
	} else if req.Installments > 0 {
		schedule = transaction.ScheduleInstallments{Count: req.Installments}
	}

	entry := transaction.Entry{
		UserID:        userID,
		Description:   req.Description,
		Kind:          transaction.Kind(req.Kind),
		Amount:        amount,
		DueDate:       dueDate,
		Schedule:      schedule,
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
		ContactID:     req.ContactID,
		CostCenterID:  req.CostCenterID,
	}

	txs, err := h.service.CreateFromEntry(r.Context(), entry)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	today := time.Now()
	resp := make([]transactionResponse, len(txs))
	for i, t := range txs {
		resp[i] = toTransactionResponse(t, today)
	}

	respondJSON(w, http.StatusCreated, resp)
}

// GetTransactions handles GET /transactions. The optional as_of query
// parameter supplies the reference date for status classification; it
// defaults to the server's current date.
func (h *TransactionHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	today := time.Now()
	if asOf := r.URL.Query().Get("as_of"); asOf != "" {
		parsed, err := time.Parse(dateLayout, asOf)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid as_of, expected YYYY-MM-DD")
			return
		}
		today = parsed
	}

	filters := transaction.Filters{}
	if v := r.URL.Query().Get("is_paid"); v != "" {
		isPaid := v == "true"
		filters.IsPaid = &isPaid
	}
	if v := r.URL.Query().Get("kind"); v != "" {
		kind := transaction.Kind(v)
		filters.Kind = &kind
	}

	txs, err := h.service.List(r.Context(), userID, filters)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	resp := make([]transactionResponse, len(txs))
	for i, t := range txs {
		resp[i] = toTransactionResponse(t, today)
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetTransaction handles GET /transactions/{id}
func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	respondJSON(w, http.StatusOK, toTransactionResponse(tx, time.Now()))
}

type payRequest struct {
	PaymentDate   string     `json:"payment_date"`
	PaidAmount    string     `json:"paid_amount"`
	PaymentType   string     `json:"payment_type"`
	BankAccountID *uuid.UUID `json:"bank_account_id,omitempty"`
	CardID        *uuid.UUID `json:"card_id,omitempty"`
}

func (req payRequest) toInput() (transaction.PaymentInput, error) {
	paymentDate, err := time.Parse(dateLayout, req.PaymentDate)
	if err != nil {
		return transaction.PaymentInput{}, errors.New("invalid payment_date, expected YYYY-MM-DD")
	}

	amount, err := decimal.NewFromString(req.PaidAmount)
	if err != nil {
		return transaction.PaymentInput{}, errors.New("invalid paid_amount")
	}

	return transaction.PaymentInput{
		PaymentDate:   datemath.Day(paymentDate),
		PaidAmount:    amount,
		PaymentType:   transaction.PaymentType(req.PaymentType),
		BankAccountID: req.BankAccountID,
		CardID:        req.CardID,
	}, nil
}

// Pay handles POST /transactions/{id}/pay
func (h *TransactionHandler) Pay(w http.ResponseWriter, r *http.Request) {
	tx, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	var req payRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	input, err := req.toInput()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.service.MarkAsPaid(r.Context(), tx.ID, input)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toTransactionResponse(updated, time.Now()))
}

// Reverse handles POST /transactions/{id}/reverse
func (h *TransactionHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	tx, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	updated, err := h.service.ReversePayment(r.Context(), tx.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, toTransactionResponse(updated, time.Now()))
}

type batchPayRequest struct {
	IDs []uuid.UUID `json:"ids"`
	payRequest
}

type batchReverseRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

type batchItemResponse struct {
	ID    uuid.UUID `json:"id"`
	OK    bool      `json:"ok"`
	Error string    `json:"error,omitempty"`
}

func toBatchResponse(results []transaction.BatchResult) []batchItemResponse {
	resp := make([]batchItemResponse, len(results))
	for i, res := range results {
		item := batchItemResponse{ID: res.ID, OK: res.Err == nil}
		if res.Err != nil {
			item.Error = res.Err.Error()
		}
		resp[i] = item
	}
	return resp
}

// PayBatch handles POST /transactions/pay. Items fail or succeed
// independently; the response carries one outcome per requested id.
func (h *TransactionHandler) PayBatch(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req batchPayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.IDs) == 0 {
		respondError(w, http.StatusBadRequest, "ids is required")
		return
	}

	input, err := req.toInput()
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	results := h.service.MarkAsPaidBatch(r.Context(), req.IDs, input)
	respondJSON(w, http.StatusMultiStatus, toBatchResponse(results))
}

// ReverseBatch handles POST /transactions/reverse
func (h *TransactionHandler) ReverseBatch(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.GetUserIDFromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req batchReverseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.IDs) == 0 {
		respondError(w, http.StatusBadRequest, "ids is required")
		return
	}

	results := h.service.ReversePaymentBatch(r.Context(), req.IDs)
	respondJSON(w, http.StatusMultiStatus, toBatchResponse(results))
}

// loadOwned parses the path id, loads the transaction, and enforces that it
// belongs to the authenticated user
func (h *TransactionHandler) loadOwned(w http.ResponseWriter, r *http.Request) (*transaction.Transaction, bool) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid transaction id")
		return nil, false
	}

	tx, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondDomainError(w, err)
		return nil, false
	}

	if tx.UserID != userID {
		respondError(w, http.StatusNotFound, transaction.ErrTransactionNotFound.Error())
		return nil, false
	}

	return tx, true
}

// respondDomainError maps a settlement error to its HTTP status and stable
// error code and writes the response
func respondDomainError(w http.ResponseWriter, err error) {
	status, code := classifyError(err)
	if status == http.StatusInternalServerError {
		// Do not leak internals on unexpected failures.
		respondAppError(w, status, apperrors.New(code, "internal error"))
		return
	}
	respondAppError(w, status, apperrors.New(code, err.Error()))
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, transaction.ErrTransactionNotFound),
		errors.Is(err, transaction.ErrCardNotFound),
		errors.Is(err, transaction.ErrBankAccountNotFound):
		return http.StatusNotFound, apperrors.ErrCodeNotFound
	case errors.Is(err, transaction.ErrAlreadyPaid):
		return http.StatusConflict, apperrors.ErrCodeAlreadyPaid
	case errors.Is(err, transaction.ErrNotPaid):
		return http.StatusConflict, apperrors.ErrCodeNotPaid
	case errors.Is(err, transaction.ErrMissingTargetReference),
		errors.Is(err, transaction.ErrInvalidPaidAmount),
		errors.Is(err, transaction.ErrInvalidRecurrence),
		errors.Is(err, transaction.ErrInvalidRecurrenceType),
		errors.Is(err, transaction.ErrInvalidInterval),
		errors.Is(err, transaction.ErrInvalidInstallments),
		errors.Is(err, transaction.ErrInvalidAmount),
		errors.Is(err, transaction.ErrInvalidKind),
		errors.Is(err, transaction.ErrInvalidDueDate),
		errors.Is(err, transaction.ErrConflictingSchedule),
		errors.Is(err, transaction.ErrEmptyDescription):
		return http.StatusBadRequest, apperrors.ErrCodeValidation
	default:
		return http.StatusInternalServerError, apperrors.ErrCodeInternal
	}
}
