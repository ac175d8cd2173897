package shared

import "errors"

// Validation errors: user-correctable, returned synchronously, never retried.
var (
	// ErrUnbalanced indicates sum(debit) != sum(credit).
	ErrUnbalanced = errors.New("accounting: journal lines must balance")
	// ErrTooFewLines indicates less than two lines.
	ErrTooFewLines = errors.New("accounting: journal requires at least two lines")
	// ErrZeroAmount indicates a balanced but empty entry.
	ErrZeroAmount = errors.New("accounting: journal total must be greater than zero")
	// ErrInvalidCodeLength indicates an account code that is not 1, 2, 4 or 6 digits.
	ErrInvalidCodeLength = errors.New("accounting: account code must be 1, 2, 4 or 6 digits")
	// ErrDuplicateCode indicates the account code already exists for the tenant.
	ErrDuplicateCode = errors.New("accounting: account code already exists")
	// ErrNonLeafAccount indicates a posting against a roll-up account.
	ErrNonLeafAccount = errors.New("accounting: cannot post to an account with children")
	// ErrAccountInactive indicates a posting against a deactivated account.
	ErrAccountInactive = errors.New("accounting: account is inactive")
	// ErrPeriodNotOpen indicates the resolved period does not accept postings.
	ErrPeriodNotOpen = errors.New("accounting: period is not open")
	// ErrNoOpenPeriod indicates no open period covers the entry date.
	ErrNoOpenPeriod = errors.New("accounting: no open period for date")
	// ErrPeriodOverlap indicates the new period intersects an existing range.
	ErrPeriodOverlap = errors.New("accounting: period overlaps existing range")
	// ErrDateOutOfRange indicates the entry date falls outside its period.
	ErrDateOutOfRange = errors.New("accounting: date outside period")
)

// State errors: the entity exists but refuses the transition.
var (
	// ErrEntryAlreadyVoided indicates a repeated void.
	ErrEntryAlreadyVoided = errors.New("accounting: entry already voided")
	// ErrInvalidStatus indicates a lifecycle transition that is not allowed.
	ErrInvalidStatus = errors.New("accounting: invalid status transition")
	// ErrAccountHasChildren blocks deactivating an account with active children.
	ErrAccountHasChildren = errors.New("accounting: account has active children")
	// ErrAccountInUse blocks deactivating an account with posted lines in an open period.
	ErrAccountInUse = errors.New("accounting: account has postings in an open period")
	// ErrSystemAccount protects bootstrap accounts from lifecycle changes.
	ErrSystemAccount = errors.New("accounting: system account cannot be modified")
	// ErrPeriodClosed indicates the period reached its terminal state.
	ErrPeriodClosed = errors.New("accounting: period already closed")
)

// Lookup and configuration errors.
var (
	// ErrAccountNotFound indicates a missing chart of accounts row.
	ErrAccountNotFound = errors.New("accounting: account not found")
	// ErrEntryNotFound indicates a missing journal entry.
	ErrEntryNotFound = errors.New("accounting: journal entry not found")
	// ErrPeriodNotFound indicates a missing accounting period.
	ErrPeriodNotFound = errors.New("accounting: period not found")
	// ErrConfigNotFound indicates the tenant has no accounting configuration row.
	ErrConfigNotFound = errors.New("accounting: configuration not found")
	// ErrConfigIncomplete indicates a required system role has no mapped account.
	ErrConfigIncomplete = errors.New("accounting: configuration incomplete")
	// ErrSourceAlreadyLinked indicates the business event is already posted.
	ErrSourceAlreadyLinked = errors.New("accounting: source already linked")
)

// ErrLedgerImbalance is the fatal integrity condition: a posted ledger whose
// debit and credit totals disagree. It can only arise from writes that
// bypassed the journal engine and must never be handled gracefully.
var ErrLedgerImbalance = errors.New("accounting: ledger debit/credit totals do not match")
