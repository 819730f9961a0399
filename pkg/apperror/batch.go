package apperror

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// AccountFailure is one account that failed inside a batch run.
type AccountFailure struct {
	AccountID uuid.UUID
	Err       error
}

// BatchError is raised at the end of a batch run when at least one account
// failed. Results for the other accounts are already committed.
type BatchError struct {
	Job       string
	Processed int
	Failures  []AccountFailure
	cause     error
}

// NewBatchError returns nil when there are no failures.
func NewBatchError(job string, processed int, failures []AccountFailure) error {
	if len(failures) == 0 {
		return nil
	}
	var cause error
	for _, f := range failures {
		cause = multierr.Append(cause, fmt.Errorf("account %s: %w", f.AccountID, f.Err))
	}
	return &BatchError{
		Job:       job,
		Processed: processed,
		Failures:  failures,
		cause:     cause,
	}
}

func (e *BatchError) Error() string {
	ids := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		ids = append(ids, f.AccountID.String())
	}
	return fmt.Sprintf("[BATCH_001] %s: %d of %d accounts failed (%s)",
		e.Job, len(e.Failures), e.Processed, strings.Join(ids, ", "))
}

// Unwrap exposes every per-account cause to errors.Is / errors.As.
func (e *BatchError) Unwrap() []error {
	return multierr.Errors(e.cause)
}

// HTTPStatus lets the response layer render a batch failure.
func (e *BatchError) HTTPStatus() int {
	return http.StatusInternalServerError
}
