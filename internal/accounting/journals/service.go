package journals

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/andes-erp/andes-erp/internal/accounting/periods"
	"github.com/andes-erp/andes-erp/internal/accounting/shared"
	internalShared "github.com/andes-erp/andes-erp/internal/shared"
)

// AuditPort records ledger events for compliance.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// CacheBumper invalidates cached report payloads after the ledger changes.
type CacheBumper interface {
	Bump(ctx context.Context, tenantID uuid.UUID) error
}

// Service coordinates posting, voiding, and reversing journal entries.
type Service struct {
	repo  Repository
	audit AuditPort
	cache CacheBumper
	now   func() time.Time
}

// NewService constructs the journal engine.
func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithCache injects the report cache invalidator.
func (s *Service) WithCache(cache CacheBumper) {
	s.cache = cache
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Post validates and persists a new journal entry. Numbering, entry insert,
// line insert, and the period counter bump all commit in one transaction; a
// failure at any step leaves no trace of the entry.
func (s *Service) Post(ctx context.Context, input PostingInput) (JournalEntry, error) {
	if err := input.Validate(); err != nil {
		return JournalEntry{}, err
	}
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		period, err := s.resolvePeriod(ctx, tx, input)
		if err != nil {
			return err
		}
		if err := assertPostable(period, input); err != nil {
			return err
		}
		if err := s.validateAccounts(ctx, tx, input); err != nil {
			return err
		}
		number, err := tx.NextEntryNumber(ctx, input.TenantID)
		if err != nil {
			return err
		}
		debit, credit := input.Totals()
		inserted, err := tx.InsertEntry(ctx, JournalEntry{
			TenantID:    input.TenantID,
			PeriodID:    period.ID,
			EntryNumber: number,
			Date:        input.Date,
			Description: input.Description,
			Source:      input.Source,
			SourceRef:   input.SourceRef,
			TotalDebit:  debit,
			TotalCredit: credit,
			PostedByID:  input.PostedByID,
		})
		if err != nil {
			return err
		}
		if err := tx.InsertLines(ctx, inserted.ID, input.Lines); err != nil {
			return err
		}
		if err := tx.IncrementPeriodEntryCount(ctx, input.TenantID, period.ID, 1); err != nil {
			return err
		}
		inserted.Lines = toEntryLines(inserted.ID, input.Lines, s.now())
		entry = inserted
		return nil
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.bumpCache(ctx, input.TenantID)
	s.record(ctx, input.TenantID, input.PostedByID, "journal.post", entry.ID, map[string]any{
		"entry_number": entry.EntryNumber,
		"source":       string(entry.Source),
	})
	return entry, nil
}

// resolvePeriod loads the explicit period, or the open period covering the
// entry date. Either way the row comes back locked so the status recheck and
// the insert see the same state.
func (s *Service) resolvePeriod(ctx context.Context, tx TxRepository, input PostingInput) (periods.Period, error) {
	if input.PeriodID != 0 {
		return tx.GetPeriodForUpdate(ctx, input.TenantID, input.PeriodID)
	}
	return tx.FindOpenPeriodByDate(ctx, input.TenantID, input.Date)
}

// assertPostable re-validates period state inside the posting transaction.
// The closing sweep is the one entry kind allowed into a CLOSING period.
func assertPostable(period periods.Period, input PostingInput) error {
	switch period.Status {
	case periods.PeriodStatusOpen:
	case periods.PeriodStatusClosing:
		if input.Source != SourcePeriodClose {
			return shared.ErrPeriodNotOpen
		}
	default:
		return shared.ErrPeriodNotOpen
	}
	if !period.Contains(input.Date) {
		return shared.ErrDateOutOfRange
	}
	return nil
}

func (s *Service) validateAccounts(ctx context.Context, tx TxRepository, input PostingInput) error {
	ids := make([]int64, 0, len(input.Lines))
	seen := make(map[int64]struct{}, len(input.Lines))
	for _, line := range input.Lines {
		if _, ok := seen[line.AccountID]; ok {
			continue
		}
		seen[line.AccountID] = struct{}{}
		ids = append(ids, line.AccountID)
	}
	accounts, err := tx.LoadPostingAccounts(ctx, input.TenantID, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		acc, ok := accounts[id]
		if !ok {
			return fmt.Errorf("journals: account %d: %w", id, shared.ErrAccountNotFound)
		}
		if !acc.IsActive {
			return fmt.Errorf("journals: account %s: %w", acc.Code, shared.ErrAccountInactive)
		}
		if acc.HasChildren {
			return fmt.Errorf("journals: account %s: %w", acc.Code, shared.ErrNonLeafAccount)
		}
	}
	return nil
}

// Void marks a POSTED entry VOIDED. The original lines are untouched; report
// queries exclude the entry from aggregates while the audit trail survives.
// No reversal entry is generated; Reverse is a separate, explicit operation.
func (s *Service) Void(ctx context.Context, input VoidInput) (JournalEntry, error) {
	if input.EntryID == 0 {
		return JournalEntry{}, fmt.Errorf("journals: entry id required")
	}
	var entry JournalEntry
	var lines []JournalEntryLine
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, currLines, err := tx.GetEntryWithLines(ctx, input.TenantID, input.EntryID)
		if err != nil {
			return err
		}
		switch current.Status {
		case EntryStatusVoided:
			return shared.ErrEntryAlreadyVoided
		case EntryStatusPosted:
		default:
			return shared.ErrInvalidStatus
		}
		period, err := tx.GetPeriodForUpdate(ctx, input.TenantID, current.PeriodID)
		if err != nil {
			return err
		}
		if period.Status == periods.PeriodStatusClosed {
			return shared.ErrPeriodClosed
		}
		voidedAt := s.now()
		if err := tx.MarkVoided(ctx, input.TenantID, current.ID, input.Reason, voidedAt); err != nil {
			return err
		}
		entry = current
		entry.Status = EntryStatusVoided
		entry.VoidReason = input.Reason
		entry.VoidedAt = &voidedAt
		lines = currLines
		return nil
	})
	if err != nil {
		return JournalEntry{}, err
	}
	entry.Lines = lines
	s.bumpCache(ctx, input.TenantID)
	s.record(ctx, input.TenantID, input.ActorID, "journal.void", entry.ID, map[string]any{"reason": input.Reason})
	return entry, nil
}

// Reverse posts a new entry mirroring the original's lines. The caller asks
// for it explicitly; voiding never creates one implicitly.
func (s *Service) Reverse(ctx context.Context, input ReverseInput) (JournalEntry, error) {
	if input.EntryID == 0 {
		return JournalEntry{}, fmt.Errorf("journals: entry id required")
	}
	var original JournalEntry
	var originalLines []JournalEntryLine
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, lines, err := tx.GetEntryWithLines(ctx, input.TenantID, input.EntryID)
		if err != nil {
			return err
		}
		if current.Status != EntryStatusPosted {
			return shared.ErrInvalidStatus
		}
		original = current
		originalLines = lines
		return nil
	})
	if err != nil {
		return JournalEntry{}, err
	}
	date := original.Date
	if input.Date != nil {
		date = *input.Date
	}
	description := input.Description
	if description == "" {
		description = fmt.Sprintf("Reversal of entry %d", original.EntryNumber)
	}
	return s.Post(ctx, PostingInput{
		TenantID:    input.TenantID,
		Date:        date,
		Description: description,
		Source:      SourceManual,
		PostedByID:  input.ActorID,
		Lines:       reverseLines(originalLines),
	})
}

// List returns filtered entries with pagination metadata.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]JournalEntry, internalShared.Pagination, error) {
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, internalShared.Pagination{}, err
	}
	return entries, internalShared.NewPagination(filter.Page, filter.PerPage, total), nil
}

// Get loads an entry with its lines.
func (s *Service) Get(ctx context.Context, tenantID uuid.UUID, entryID int64) (JournalEntry, error) {
	entry, lines, err := s.repo.Get(ctx, tenantID, entryID)
	if err != nil {
		return JournalEntry{}, err
	}
	entry.Lines = lines
	return entry, nil
}

func reverseLines(lines []JournalEntryLine) []PostingLineInput {
	out := make([]PostingLineInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, PostingLineInput{
			AccountID:    line.AccountID,
			CostCenterID: line.CostCenterID,
			Description:  line.Description,
			Debit:        line.Credit,
			Credit:       line.Debit,
		})
	}
	return out
}

func toEntryLines(entryID int64, lines []PostingLineInput, ts time.Time) []JournalEntryLine {
	out := make([]JournalEntryLine, 0, len(lines))
	for _, line := range lines {
		out = append(out, JournalEntryLine{
			EntryID:      entryID,
			AccountID:    line.AccountID,
			CostCenterID: line.CostCenterID,
			Description:  line.Description,
			Debit:        line.Debit,
			Credit:       line.Credit,
			CreatedAt:    ts,
		})
	}
	return out
}

func (s *Service) bumpCache(ctx context.Context, tenantID uuid.UUID) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Bump(ctx, tenantID)
}

func (s *Service) record(ctx context.Context, tenantID uuid.UUID, actorID int64, action string, entryID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, internalShared.AuditLog{
		TenantID: tenantID,
		ActorID:  actorID,
		Action:   action,
		Entity:   "journal_entry",
		EntityID: fmt.Sprintf("%d", entryID),
		Meta:     meta,
		At:       s.now(),
	})
}
