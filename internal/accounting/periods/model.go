package periods

import (
	"time"

	"github.com/google/uuid"

	"github.com/andes-erp/andes-erp/internal/accounting/shared"
)

// PeriodStatus enumerates valid period states.
type PeriodStatus string

const (
	// PeriodStatusOpen accepts postings.
	PeriodStatusOpen PeriodStatus = "OPEN"
	// PeriodStatusClosing blocks new postings while the closing sweep runs.
	PeriodStatusClosing PeriodStatus = "CLOSING"
	// PeriodStatusClosed is terminal.
	PeriodStatusClosed PeriodStatus = "CLOSED"
)

// Period represents a fiscal period window.
type Period struct {
	ID         int64
	TenantID   uuid.UUID
	Name       string
	StartDate  time.Time
	EndDate    time.Time
	Status     PeriodStatus
	ClosedAt   *time.Time
	ClosedByID *int64
	Notes      string
	EntryCount int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Contains reports whether the date falls inside the period range, inclusive.
func (p Period) Contains(date time.Time) bool {
	return !date.Before(p.StartDate) && !date.After(p.EndDate)
}

// ValidateTransition checks the OPEN -> CLOSING -> CLOSED lifecycle.
// CLOSED is terminal; reopening is an administrative override outside this core.
func ValidateTransition(current, target PeriodStatus) error {
	switch current {
	case PeriodStatusOpen:
		if target == PeriodStatusClosing {
			return nil
		}
	case PeriodStatusClosing:
		if target == PeriodStatusClosed {
			return nil
		}
	case PeriodStatusClosed:
		return shared.ErrPeriodClosed
	}
	return shared.ErrInvalidStatus
}
