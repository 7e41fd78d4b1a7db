package errors

import (
	"fmt"
	"net/http"
)

// Error represents an application error
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error
func New(code int, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Wrap returns a copy of base carrying err as its cause. The shared
// sentinels below stay untouched so callers can compare against them
// with errors.Is.
func Wrap(base *Error, err error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Err:     err,
	}
}

// Is reports whether err matches the given sentinel by code and message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// Purchase pipeline error types
var (
	ErrNotFound           = New(http.StatusNotFound, "Not found", nil)
	ErrNotPurchasable     = New(http.StatusBadRequest, "Item is not purchasable", nil)
	ErrInvalidPriceFormat = New(http.StatusInternalServerError, "Invalid price format", nil)
	ErrInvalidSignature   = New(http.StatusForbidden, "Invalid signature", nil)
	ErrReceiptIDExhausted = New(http.StatusInternalServerError, "Receipt ID space exhausted", nil)
	ErrGatewayUnavailable = New(http.StatusServiceUnavailable, "Payment gateway unavailable", nil)
)

// Generic error types
var (
	ErrBadRequest     = New(http.StatusBadRequest, "Bad request", nil)
	ErrUnauthorized   = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrInternalServer = New(http.StatusInternalServerError, "Internal server error", nil)
)
