// Package errors provides the error taxonomy shared by every engine component.
// Service-layer code returns *AppError values so callers can branch on a stable
// code instead of matching error strings.
package errors

import (
	"errors"
	"net/http"
)

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Validationf is shorthand for a validation error with a specific message.
func Validationf(message string) *AppError {
	return WithMessage(ErrValidation, message)
}

// Code returns the AppError code carried by err, or "" when err is not an AppError.
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// IsCode reports whether err carries the same code as sentinel.
func IsCode(err error, sentinel *AppError) bool {
	return err != nil && Code(err) == sentinel.Code
}

// IsNotFound reports whether err belongs to the NOT_FOUND family.
func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.StatusCode == http.StatusNotFound
}

// IsConflict reports whether err is a creation conflict.
func IsConflict(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.StatusCode == http.StatusConflict
}

// IsWarning reports whether err is a non-fatal warning the caller may ignore.
func IsWarning(err error) bool {
	return IsCode(err, ErrPersistenceWarning)
}

// General errors.
var (
	ErrValidation          = &AppError{Code: "VALIDATION_ERROR", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound            = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrConflict            = &AppError{Code: "CONFLICT", Message: "Resource already exists", StatusCode: http.StatusConflict}
	ErrUpstreamUnavailable = &AppError{Code: "UPSTREAM_UNAVAILABLE", Message: "Upstream service unavailable", StatusCode: http.StatusServiceUnavailable}
	ErrInternal            = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Plan errors.
var (
	ErrPlanNotFound       = &AppError{Code: "PLAN_NOT_FOUND", Message: "Plan not found", StatusCode: http.StatusNotFound}
	ErrDuplicateItemID    = &AppError{Code: "DUPLICATE_ITEM_ID", Message: "Item identifiers must be unique within a plan", StatusCode: http.StatusBadRequest}
	ErrNoActivePlan       = &AppError{Code: "NO_ACTIVE_PLAN", Message: "No active plan selected", StatusCode: http.StatusNotFound}
	ErrPersistenceWarning = &AppError{Code: "PERSISTENCE_WARNING", Message: "Active plan changed but could not be saved", StatusCode: http.StatusOK}
)

// Period errors.
var (
	ErrPeriodNotFound       = &AppError{Code: "PERIOD_NOT_FOUND", Message: "Budget period not found", StatusCode: http.StatusNotFound}
	ErrSourcePeriodNotFound = &AppError{Code: "SOURCE_PERIOD_NOT_FOUND", Message: "Source budget period not found", StatusCode: http.StatusNotFound}
	ErrPeriodItemNotFound   = &AppError{Code: "PERIOD_ITEM_NOT_FOUND", Message: "Budget period item not found", StatusCode: http.StatusNotFound}
	ErrPeriodConflict       = &AppError{Code: "PERIOD_CONFLICT", Message: "A budget period already exists for this month", StatusCode: http.StatusConflict}
	ErrInvalidMonth         = &AppError{Code: "INVALID_MONTH", Message: "Month must be between 1 and 12", StatusCode: http.StatusBadRequest}
	ErrNegativeAmount       = &AppError{Code: "NEGATIVE_AMOUNT", Message: "Amounts must not be negative", StatusCode: http.StatusBadRequest}
	ErrFormulaNotEditable   = &AppError{Code: "FORMULA_NOT_EDITABLE", Message: "Formula-derived values cannot be edited", StatusCode: http.StatusBadRequest}
)

// Grid errors.
var (
	ErrCellNotEditable = &AppError{Code: "CELL_NOT_EDITABLE", Message: "Grid cell is read-only", StatusCode: http.StatusBadRequest}
	ErrCellNotFound    = &AppError{Code: "CELL_NOT_FOUND", Message: "Grid cell not found", StatusCode: http.StatusNotFound}
)
