package autopost

import (
	"errors"
	"fmt"

	"github.com/andes-erp/andes-erp/internal/accounting/shared"
)

// LedgerPostError indicates the business event was recorded but the derived
// journal entry could not be posted. It never rolls back the originating
// operation; the condition is surfaced to administrators instead.
type LedgerPostError struct {
	Err       error
	Retryable bool
	Message   string
}

func (e *LedgerPostError) Error() string {
	return e.Message
}

func (e *LedgerPostError) Unwrap() error {
	return e.Err
}

func wrapLedgerPostError(event string, err error) *LedgerPostError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, shared.ErrConfigIncomplete), errors.Is(err, shared.ErrAccountInactive), errors.Is(err, shared.ErrAccountNotFound):
		return &LedgerPostError{
			Err:       err,
			Retryable: true,
			Message:   fmt.Sprintf("accounting configuration problem for %s; event recorded, journal posting skipped", event),
		}
	case errors.Is(err, shared.ErrNoOpenPeriod), errors.Is(err, shared.ErrPeriodNotOpen), errors.Is(err, shared.ErrDateOutOfRange):
		return &LedgerPostError{
			Err:       err,
			Retryable: true,
			Message:   fmt.Sprintf("no posting period available for %s; event recorded, journal posting pending", event),
		}
	default:
		return &LedgerPostError{
			Err:       err,
			Retryable: false,
			Message:   fmt.Sprintf("failed to post %s to ledger; event recorded without journal entry (%s)", event, err.Error()),
		}
	}
}
