// Package apperror defines the error type every layer returns upward.
// Services wrap domain failures in *AppError; the HTTP error middleware
// renders it as the JSON body, so codes and messages here are API surface.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Machine-readable error codes.
const (
	// Infrastructure (5xx)
	CodeInternal = "INTERNAL_ERROR"

	// Input validation (400)
	CodeValidation = "VALIDATION_ERROR"

	// Lifecycle violations (422)
	CodeInvoiceFinalized = "INVOICE_ALREADY_FINALIZED"
	CodeMissingArtifact  = "DOCUMENT_ARTIFACT_MISSING"

	// Authentication and authorization (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Missing rows, including cross-owner reads (404)
	CodeNotFound = "NOT_FOUND"

	// Conflicts (409)
	CodeConflict               = "CONFLICT"
	CodeDuplicate              = "DUPLICATE_ENTRY"
	CodeSeriesInUse            = "SERIES_IN_USE"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
)

// AppError carries a code, a human message, structured details and the
// HTTP status the error middleware should answer with.
type AppError struct {
	Code string `json:"code"`

	Message string `json:"message"`

	// Details holds structured context: field names, conflicting
	// numbers, entity ids.
	Details map[string]any `json:"details,omitempty"`

	HTTPStatus int `json:"-"`

	// Err is the wrapped cause, kept out of responses.
	Err error `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap supports errors.Is/As over the cause chain.
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail attaches one structured context entry.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause records the underlying error.
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// NewValidation reports invalid input (400).
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound reports a missing entity (404). Also used when a row exists
// but belongs to another owner, so ownership is never disclosed.
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInvoiceFinalized rejects any mutation of an invoice that already
// left the draft state (422).
func NewInvoiceFinalized(invoiceID any) *AppError {
	return &AppError{
		Code:       CodeInvoiceFinalized,
		Message:    "Invoice is finalized and can no longer be modified",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"invoice_id": invoiceID},
	}
}

// NewMissingArtifact rejects finalization before the rendered document
// exists (422).
func NewMissingArtifact(invoiceID any) *AppError {
	return &AppError{
		Code:       CodeMissingArtifact,
		Message:    "Invoice has no rendered document. Generate the document before finalizing.",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"invoice_id": invoiceID},
	}
}

// NewConcurrentModification reports a lost optimistic-locking or
// serialization race (409).
func NewConcurrentModification(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeConcurrentModification,
		Message:    "Record was modified by another user. Please refresh and try again.",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInternal hides the cause behind a generic 500.
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized reports a missing or invalid credential (401).
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden reports an authenticated but not permitted request (403).
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewSeriesInUse rejects deleting a series that has invoices, or changing
// the pattern of one with finalized numbers (409).
func NewSeriesInUse(seriesID any, reason string) *AppError {
	return &AppError{
		Code:       CodeSeriesInUse,
		Message:    reason,
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"series_id": seriesID},
	}
}

// NewConflict reports a state conflict (409).
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDuplicate reports a uniqueness violation (409).
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// IsAppError reports whether err has an *AppError in its chain.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError pulls the *AppError out of the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsNotFound matches CodeNotFound.
func IsNotFound(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeNotFound
	}
	return false
}

// IsConcurrentModification matches CodeConcurrentModification.
func IsConcurrentModification(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == CodeConcurrentModification
	}
	return false
}

// IsConflict matches the whole 409 family.
func IsConflict(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Code {
		case CodeConflict, CodeDuplicate, CodeSeriesInUse:
			return true
		}
	}
	return false
}