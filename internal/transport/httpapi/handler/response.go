package handler

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/kislikjeka/duetrack/internal/shared/errors"
)

// dateLayout is the canonical wire form for calendar dates. The API never
// exchanges times of day for due or payment dates.
const dateLayout = "2006-01-02"

// ErrorResponse represents an error response. Code is a stable machine
// readable identifier; clients branch on it, not on the message text.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, statusCode int, message string) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondAppError sends an error response carrying the AppError's code
func respondAppError(w http.ResponseWriter, statusCode int, appErr *apperrors.AppError) {
	respondJSON(w, statusCode, ErrorResponse{Error: appErr.Message, Code: appErr.Code})
}
