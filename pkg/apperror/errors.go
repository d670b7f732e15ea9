package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Ledger Business Logic (LGR) ----

func ErrInsufficientFunds() *AppError {
	return New("LGR_001", "Insufficient balance; your balance was not affected", http.StatusBadRequest)
}

func ErrRecipientNotFound() *AppError {
	return New("LGR_002", "Recipient not found", http.StatusNotFound)
}

func ErrSelfTransfer() *AppError {
	return New("LGR_003", "Cannot transfer to your own account", http.StatusBadRequest)
}

func ErrInvalidPair() *AppError {
	return New("LGR_004", "Unsupported or identical currency pair", http.StatusBadRequest)
}

func ErrAmountOutOfBounds(min, max string) *AppError {
	return New("LGR_005", fmt.Sprintf("Amount must be between %s and %s", min, max), http.StatusBadRequest)
}

func ErrInvalidAddress() *AppError {
	return New("LGR_006", "Destination address is not valid for the target network", http.StatusBadRequest)
}

func ErrAccountFrozen() *AppError {
	return New("LGR_007", "Account is not permitted to move funds", http.StatusForbidden)
}

func ErrRateUnavailable() *AppError {
	return New("LGR_008", "No exchange rate available for this pair", http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("LGR_009", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Validation (VAL) ----

// Validation returns a generic input validation error.
func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

func ErrInvalidAmount() *AppError {
	return New("VAL_001", "Amount must be greater than zero", http.StatusBadRequest)
}

// ---- Security & Authentication ----

func ErrInvalidSignature() *AppError {
	return New("SEC_001", "Invalid webhook signature", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error; your balance was not affected", http.StatusInternalServerError, err)
}

func ErrExternalService(service string, err error) *AppError {
	return Wrap("SYS_002", fmt.Sprintf("%s is unavailable", service), http.StatusServiceUnavailable, err)
}
