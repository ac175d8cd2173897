package journals

import (
	"time"

	"github.com/google/uuid"
)

// EntryStatus enumerates journal lifecycle values.
type EntryStatus string

const (
	EntryStatusDraft  EntryStatus = "DRAFT"
	EntryStatusPosted EntryStatus = "POSTED"
	EntryStatusVoided EntryStatus = "VOIDED"
)

// EntrySource identifies the business event that produced the entry.
type EntrySource string

const (
	SourceManual           EntrySource = "MANUAL"
	SourceInvoiceSale      EntrySource = "INVOICE_SALE"
	SourceInvoiceCancel    EntrySource = "INVOICE_CANCEL"
	SourcePaymentReceived  EntrySource = "PAYMENT_RECEIVED"
	SourcePurchaseReceived EntrySource = "PURCHASE_RECEIVED"
	SourceStockAdjustment  EntrySource = "STOCK_ADJUSTMENT"
	SourcePeriodClose      EntrySource = "PERIOD_CLOSE"
)

// JournalEntry captures posting metadata. Once POSTED an entry is immutable
// except for the transition to VOIDED.
type JournalEntry struct {
	ID          int64
	TenantID    uuid.UUID
	PeriodID    int64
	EntryNumber int64
	Date        time.Time
	Description string
	Source      EntrySource
	SourceRef   *uuid.UUID
	Status      EntryStatus
	TotalDebit  float64
	TotalCredit float64
	PostedByID  int64
	PostedAt    time.Time
	VoidReason  string
	VoidedAt    *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Lines       []JournalEntryLine
}

// JournalEntryLine stores a debit or credit amount for an account.
// Exactly one of Debit/Credit is non-zero.
type JournalEntryLine struct {
	ID           int64
	EntryID      int64
	AccountID    int64
	CostCenterID *int64
	Description  string
	Debit        float64
	Credit       float64
	CreatedAt    time.Time
}

// PostingAccount is the slice of account state the engine needs to validate a
// line: the account must belong to the tenant, be active, and be a leaf.
type PostingAccount struct {
	ID          int64
	Code        string
	IsActive    bool
	HasChildren bool
}
