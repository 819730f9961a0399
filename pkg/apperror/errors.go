package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Retryable  bool   `json:"-"`
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

// Is matches any AppError carrying the same code, so callers can test
// errors.Is(err, apperror.ErrCheckpointConflict(nil)).
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
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

// ---- Accounts (ACC) ----

func ErrNotFound(entity string) *AppError {
	return New("ACC_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrAccountNotActive() *AppError {
	return New("ACC_002", "Account is not active", http.StatusConflict)
}

// ---- Ledger & checkpoints (LED) ----

// ErrUnsupportedTransaction is raised when a fold or posting switch meets a
// transaction type it does not handle. Never retried.
func ErrUnsupportedTransaction(txType string) *AppError {
	return New("LED_001", fmt.Sprintf("Unsupported transaction type %q", txType), http.StatusUnprocessableEntity)
}

// ErrCheckpointConflict signals an optimistic version mismatch on a
// checkpoint upsert. Retryable by re-running materialization.
func ErrCheckpointConflict(err error) *AppError {
	e := Wrap("LED_002", "Concurrent checkpoint update", http.StatusConflict, err)
	e.Retryable = true
	return e
}

func ErrInsufficientFunds() *AppError {
	return New("LED_003", "Insufficient available balance", http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New("LED_004", "Invalid amount", http.StatusBadRequest)
}

func ErrReleaseExceedsHold() *AppError {
	return New("LED_005", "Release amount exceeds held amount", http.StatusBadRequest)
}

// ---- Batch jobs (JOB) ----

// ErrJobAlreadyRunning is returned when another instance holds the job lock.
func ErrJobAlreadyRunning(job string) *AppError {
	return New("JOB_001", fmt.Sprintf("Job %s is already running", job), http.StatusConflict)
}

// ---- Idempotency (IDEM) ----

// ErrIdempotencyKeyInUse is returned while the first request carrying the
// same Idempotency-Key is still running.
func ErrIdempotencyKeyInUse() *AppError {
	return New("IDEM_001", "A request with this Idempotency-Key is in progress", http.StatusConflict)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_003", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a LED_004-style validation error.
func Validation(message string) *AppError {
	return New("LED_004", message, http.StatusBadRequest)
}

// IsRetryable reports whether err (or anything it wraps) is marked retryable.
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}
