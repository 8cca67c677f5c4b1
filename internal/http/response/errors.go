package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/diagnosis/luxstay/internal/domain"
	"github.com/diagnosis/luxstay/pkg/logger"
)

// ErrorResponse represents a structured JSON error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	Details string `json:"details,omitempty"`
}

const (
	CodeInvalidInput  = "INVALID_INPUT"
	CodeTransition    = "INVALID_TRANSITION"
	CodePaymentFailed = "PAYMENT_FAILED"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeNotFound      = "NOT_FOUND"
	CodeRejected      = "REJECTED"
	CodeNotConfirmed  = "NOT_CONFIRMED"
	CodeUpstream      = "UPSTREAM_UNAVAILABLE"
	CodeRateLimit     = "RATE_LIMIT_EXCEEDED"
	CodeInternalError = "INTERNAL_ERROR"
)

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}

// WriteError writes a structured JSON error response
func WriteError(w http.ResponseWriter, r *http.Request, statusCode int, message, code string) {
	WriteJSON(w, r, statusCode, ErrorResponse{Error: message, Code: code})
}

// FromError maps err to a status and code by its kind and writes it. Every
// failed operation ends up here exactly once.
func FromError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)

	resp := ErrorResponse{Error: err.Error(), Code: code}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		resp.Error = verr.Reason
		resp.Field = verr.Field
	}
	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Operation failed", "kind", domain.Kind(err), "error", err)
	} else {
		logger.InfoContext(r.Context(), "Operation rejected", "kind", domain.Kind(err), "error", err)
	}

	WriteJSON(w, r, status, resp)
}

func classify(err error) (int, string) {
	switch domain.Kind(err) {
	case "validation":
		return http.StatusBadRequest, CodeInvalidInput
	case "transition":
		return http.StatusConflict, CodeTransition
	case "payment":
		return http.StatusPaymentRequired, CodePaymentFailed
	case "auth":
		return http.StatusUnauthorized, CodeUnauthorized
	case "not_found":
		return http.StatusNotFound, CodeNotFound
	case "rejected":
		return http.StatusUnprocessableEntity, CodeRejected
	case "not_confirmed":
		return http.StatusPreconditionRequired, CodeNotConfirmed
	case "network":
		return http.StatusBadGateway, CodeUpstream
	default:
		return http.StatusInternalServerError, CodeInternalError
	}
}

func BadRequest(w http.ResponseWriter, r *http.Request, message string) {
	WriteError(w, r, http.StatusBadRequest, message, CodeInvalidInput)
}

func Unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	WriteError(w, r, http.StatusUnauthorized, message, CodeUnauthorized)
}

func RateLimit(w http.ResponseWriter, r *http.Request, message string) {
	WriteError(w, r, http.StatusTooManyRequests, message, CodeRateLimit)
}
