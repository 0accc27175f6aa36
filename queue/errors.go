package queue

import (
	"context"
	"errors"
	"fmt"

	"blobqueue/db"
	"blobqueue/suggestion"
)

var (
	// ErrIllegalTransition is returned when a command targets a suggestion in the wrong state.
	ErrIllegalTransition = suggestion.ErrIllegalTransition
	ErrNotFound          = errors.New("suggestion not found")
	ErrValidation        = errors.New("invalid request")
	ErrComparisonBusy    = errors.New("a comparison is already in progress")
	ErrForbidden         = errors.New("not allowed")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFound(idx int64) error {
	return fmt.Errorf("%w: #%d", ErrNotFound, idx)
}

// permanent reports errors that retrying the transaction cannot fix.
func permanent(err error) bool {
	return errors.Is(err, ErrIllegalTransition) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrForbidden) ||
		errors.Is(err, db.ErrStaleState) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
