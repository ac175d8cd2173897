package journals

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/andes-erp/andes-erp/internal/accounting/shared"
	internalShared "github.com/andes-erp/andes-erp/internal/shared"
)

// PostingLineInput describes a journal line for a posting request.
type PostingLineInput struct {
	AccountID    int64
	CostCenterID *int64
	Description  string
	Debit        float64
	Credit       float64
}

// PostingInput groups fields required to create a journal entry.
// PeriodID may be zero; the engine then resolves the tenant's open period
// covering Date.
type PostingInput struct {
	TenantID    uuid.UUID
	PeriodID    int64
	Date        time.Time
	Description string
	Source      EntrySource
	SourceRef   *uuid.UUID
	PostedByID  int64
	Lines       []PostingLineInput
}

// Validate ensures posting input meets the arithmetic invariants before any
// store round-trip. Amounts are compared at cent precision.
func (in PostingInput) Validate() error {
	if in.TenantID == uuid.Nil {
		return internalShared.ErrTenantMissing
	}
	if in.Date.IsZero() {
		return fmt.Errorf("journals: date required")
	}
	if in.Source == "" {
		return fmt.Errorf("journals: source required")
	}
	if len(in.Lines) < 2 {
		return shared.ErrTooFewLines
	}
	var debit, credit float64
	for idx, line := range in.Lines {
		if line.AccountID == 0 {
			return fmt.Errorf("journals: line %d missing account", idx)
		}
		if line.Debit < 0 || line.Credit < 0 {
			return fmt.Errorf("journals: line %d negative amount", idx)
		}
		if line.Debit > 0 && line.Credit > 0 {
			return fmt.Errorf("journals: line %d cannot be both debit and credit", idx)
		}
		if line.Debit == 0 && line.Credit == 0 {
			return fmt.Errorf("journals: line %d has no amount", idx)
		}
		debit += line.Debit
		credit += line.Credit
	}
	if fmt.Sprintf("%.2f", debit) != fmt.Sprintf("%.2f", credit) {
		return shared.ErrUnbalanced
	}
	if debit <= 0 {
		return shared.ErrZeroAmount
	}
	return nil
}

// Totals returns the summed debit and credit of the input lines.
func (in PostingInput) Totals() (debit, credit float64) {
	for _, line := range in.Lines {
		debit += line.Debit
		credit += line.Credit
	}
	return debit, credit
}

// VoidInput wraps parameters for voiding.
type VoidInput struct {
	TenantID uuid.UUID
	EntryID  int64
	ActorID  int64
	Reason   string
}

// ReverseInput wraps parameters for the explicit reversal operation.
type ReverseInput struct {
	TenantID    uuid.UUID
	EntryID     int64
	ActorID     int64
	Description string
	Date        *time.Time
}

// ListFilter narrows entry listings.
type ListFilter struct {
	TenantID uuid.UUID
	FromDate *time.Time
	ToDate   *time.Time
	Status   *EntryStatus
	Source   *EntrySource
	Page     int
	PerPage  int
}
