package shared

import (
	"errors"
	"net/http"
)

// HTTPStatus maps ledger errors to response codes. Validation errors are 422,
// state conflicts 409, lookups 404; anything unknown is a 500.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrAccountNotFound),
		errors.Is(err, ErrEntryNotFound),
		errors.Is(err, ErrPeriodNotFound),
		errors.Is(err, ErrConfigNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEntryAlreadyVoided),
		errors.Is(err, ErrInvalidStatus),
		errors.Is(err, ErrAccountHasChildren),
		errors.Is(err, ErrAccountInUse),
		errors.Is(err, ErrSystemAccount),
		errors.Is(err, ErrPeriodClosed),
		errors.Is(err, ErrDuplicateCode),
		errors.Is(err, ErrSourceAlreadyLinked):
		return http.StatusConflict
	case errors.Is(err, ErrUnbalanced),
		errors.Is(err, ErrTooFewLines),
		errors.Is(err, ErrZeroAmount),
		errors.Is(err, ErrInvalidCodeLength),
		errors.Is(err, ErrNonLeafAccount),
		errors.Is(err, ErrAccountInactive),
		errors.Is(err, ErrPeriodNotOpen),
		errors.Is(err, ErrNoOpenPeriod),
		errors.Is(err, ErrPeriodOverlap),
		errors.Is(err, ErrDateOutOfRange),
		errors.Is(err, ErrConfigIncomplete):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
