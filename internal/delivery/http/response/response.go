package response

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/Pesokrava/product_catalog/internal/domain"
	"github.com/Pesokrava/product_catalog/internal/pkg/logger"
	"github.com/Pesokrava/product_catalog/internal/pkg/pagination"
)

// Error codes returned in the error body
const (
	CodeNotFound        = "NOT_FOUND"
	CodeValidation      = "VALIDATION_ERROR"
	CodeConflict        = "CONFLICT"
	CodeAlreadyExists   = "ALREADY_EXISTS"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeInternal        = "INTERNAL_ERROR"
)

// Envelope wraps every successful response
type Envelope struct {
	Message    string           `json:"message"`
	Data       any              `json:"data"`
	Pagination *pagination.Meta `json:"pagination,omitempty"`
}

// ErrorDetail is the body of the error field
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorBody wraps every error response
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// JSON writes a JSON response
func JSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// Error writes an error response
func Error(w http.ResponseWriter, statusCode int, code, message string) {
	JSON(w, statusCode, ErrorBody{Error: ErrorDetail{Code: code, Message: message}})
}

// Success writes a success response with data
func Success(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusOK, Envelope{Message: message, Data: data})
}

// Created writes a created response
func Created(w http.ResponseWriter, message string, data any) {
	JSON(w, http.StatusCreated, Envelope{Message: message, Data: data})
}

// Paginated writes one page of items with its pagination block
func Paginated[T any](w http.ResponseWriter, message string, page *pagination.Page[T]) {
	meta := page.Pagination
	JSON(w, http.StatusOK, Envelope{Message: message, Data: page.Items, Pagination: &meta})
}

// NoContent writes a no content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// FromError maps a service error to its status and code. Messages of
// domain.Error values are shown as-is; anything unclassified is logged and
// reported as a generic internal error.
func FromError(w http.ResponseWriter, err error, log *logger.Logger) {
	status, code, message := classify(err)
	if status == http.StatusInternalServerError {
		log.Error("Internal error", err)
		Error(w, status, code, message)
		return
	}

	var domainErr *domain.Error
	if errors.As(err, &domainErr) {
		message = domainErr.Message
	}

	Error(w, status, code, message)
}

func classify(err error) (int, string, string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, CodeNotFound, "Resource not found"
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, CodeValidation, "Invalid input"
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, CodeAlreadyExists, "Resource already exists"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, CodeConflict, "Conflict"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, CodeUnauthorized, "Unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, CodeForbidden, "Forbidden"
	default:
		return http.StatusInternalServerError, CodeInternal, "Internal server error"
	}
}
