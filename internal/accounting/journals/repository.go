package journals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andes-erp/andes-erp/internal/accounting/periods"
	"github.com/andes-erp/andes-erp/internal/accounting/shared"
)

// Repository abstracts transactional journal persistence.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	List(ctx context.Context, filter ListFilter) ([]JournalEntry, int, error)
	Get(ctx context.Context, tenantID uuid.UUID, entryID int64) (JournalEntry, []JournalEntryLine, error)
}

// TxRepository exposes the operations available inside a posting transaction.
type TxRepository interface {
	// NextEntryNumber reserves the tenant's next sequence value. The counter
	// row is locked by the upsert, so concurrent postings serialise here and
	// numbers never collide or skip.
	NextEntryNumber(ctx context.Context, tenantID uuid.UUID) (int64, error)
	GetPeriodForUpdate(ctx context.Context, tenantID uuid.UUID, periodID int64) (periods.Period, error)
	FindOpenPeriodByDate(ctx context.Context, tenantID uuid.UUID, date time.Time) (periods.Period, error)
	LoadPostingAccounts(ctx context.Context, tenantID uuid.UUID, ids []int64) (map[int64]PostingAccount, error)
	InsertEntry(ctx context.Context, entry JournalEntry) (JournalEntry, error)
	InsertLines(ctx context.Context, entryID int64, lines []PostingLineInput) error
	IncrementPeriodEntryCount(ctx context.Context, tenantID uuid.UUID, periodID int64, delta int) error
	GetEntryWithLines(ctx context.Context, tenantID uuid.UUID, entryID int64) (JournalEntry, []JournalEntryLine, error)
	MarkVoided(ctx context.Context, tenantID uuid.UUID, entryID int64, reason string, at time.Time) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed journal repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

type txRepository struct {
	tx pgx.Tx
}

const serializationRetries = 3

// WithTx executes fn within a repeatable-read transaction. Concurrent posts
// for one tenant contend on the entry counter row, which at repeatable read
// surfaces as SQLSTATE 40001 on the loser; those attempts rerun fn on a
// fresh snapshot so both posts land with distinct sequential numbers.
func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil || r.pool == nil {
		return errors.New("journals: repository not initialised")
	}
	return withSerializationRetry(func() error {
		tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
		if err != nil {
			return err
		}
		if err := fn(ctx, &txRepository{tx: tx}); err != nil {
			_ = tx.Rollback(ctx)
			return err
		}
		return tx.Commit(ctx)
	})
}

// withSerializationRetry reruns fn on serialization failures, up to the
// retry budget. Any other error returns immediately.
func withSerializationRetry(fn func() error) error {
	var err error
	for attempt := 0; attempt < serializationRetries; attempt++ {
		err = fn()
		if !isSerializationFailure(err) {
			return err
		}
	}
	return err
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

const entryColumns = `id, tenant_id, period_id, entry_number, date, description, source, source_ref, status, total_debit, total_credit, posted_by, posted_at, void_reason, voided_at, created_at, updated_at`

func scanEntry(row pgx.Row) (JournalEntry, error) {
	var e JournalEntry
	err := row.Scan(&e.ID, &e.TenantID, &e.PeriodID, &e.EntryNumber, &e.Date, &e.Description, &e.Source, &e.SourceRef, &e.Status,
		&e.TotalDebit, &e.TotalCredit, &e.PostedByID, &e.PostedAt, &e.VoidReason, &e.VoidedAt, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

func (r *txRepository) NextEntryNumber(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var number int64
	err := r.tx.QueryRow(ctx, `INSERT INTO entry_counters (tenant_id, value) VALUES ($1, 1)
ON CONFLICT (tenant_id) DO UPDATE SET value = entry_counters.value + 1
RETURNING value`, tenantID).Scan(&number)
	return number, err
}

func (r *txRepository) GetPeriodForUpdate(ctx context.Context, tenantID uuid.UUID, periodID int64) (periods.Period, error) {
	var p periods.Period
	err := r.tx.QueryRow(ctx, `SELECT id, tenant_id, name, start_date, end_date, status, closed_at, closed_by, notes, entry_count, created_at, updated_at
FROM accounting_periods WHERE tenant_id=$1 AND id=$2 FOR UPDATE`, tenantID, periodID).
		Scan(&p.ID, &p.TenantID, &p.Name, &p.StartDate, &p.EndDate, &p.Status, &p.ClosedAt, &p.ClosedByID, &p.Notes, &p.EntryCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return periods.Period{}, shared.ErrPeriodNotFound
		}
		return periods.Period{}, err
	}
	return p, nil
}

func (r *txRepository) FindOpenPeriodByDate(ctx context.Context, tenantID uuid.UUID, date time.Time) (periods.Period, error) {
	var p periods.Period
	err := r.tx.QueryRow(ctx, `SELECT id, tenant_id, name, start_date, end_date, status, closed_at, closed_by, notes, entry_count, created_at, updated_at
FROM accounting_periods WHERE tenant_id=$1 AND status='OPEN' AND $2 BETWEEN start_date AND end_date ORDER BY start_date LIMIT 1 FOR UPDATE`, tenantID, date).
		Scan(&p.ID, &p.TenantID, &p.Name, &p.StartDate, &p.EndDate, &p.Status, &p.ClosedAt, &p.ClosedByID, &p.Notes, &p.EntryCount, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return periods.Period{}, shared.ErrNoOpenPeriod
		}
		return periods.Period{}, err
	}
	return p, nil
}

func (r *txRepository) LoadPostingAccounts(ctx context.Context, tenantID uuid.UUID, ids []int64) (map[int64]PostingAccount, error) {
	rows, err := r.tx.Query(ctx, `SELECT a.id, a.code, a.is_active,
EXISTS (SELECT 1 FROM accounts c WHERE c.parent_id = a.id) AS has_children
FROM accounts a WHERE a.tenant_id=$1 AND a.id = ANY($2)`, tenantID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int64]PostingAccount, len(ids))
	for rows.Next() {
		var a PostingAccount
		if err := rows.Scan(&a.ID, &a.Code, &a.IsActive, &a.HasChildren); err != nil {
			return nil, err
		}
		out[a.ID] = a
	}
	return out, rows.Err()
}

func (r *txRepository) InsertEntry(ctx context.Context, entry JournalEntry) (JournalEntry, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO journal_entries (tenant_id, period_id, entry_number, date, description, source, source_ref, status, total_debit, total_credit, posted_by, posted_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,'POSTED',$8,$9,$10,NOW()) RETURNING `+entryColumns,
		entry.TenantID, entry.PeriodID, entry.EntryNumber, entry.Date, entry.Description, entry.Source, entry.SourceRef,
		toNumeric(entry.TotalDebit), toNumeric(entry.TotalCredit), entry.PostedByID)
	inserted, err := scanEntry(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "uq_journal_entries_source" {
			return JournalEntry{}, shared.ErrSourceAlreadyLinked
		}
		return JournalEntry{}, err
	}
	return inserted, nil
}

func (r *txRepository) InsertLines(ctx context.Context, entryID int64, lines []PostingLineInput) error {
	for _, line := range lines {
		if _, err := r.tx.Exec(ctx, `INSERT INTO journal_lines (entry_id, account_id, cost_center_id, description, debit, credit)
VALUES ($1,$2,$3,$4,$5,$6)`, entryID, line.AccountID, line.CostCenterID, line.Description, toNumeric(line.Debit), toNumeric(line.Credit)); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepository) IncrementPeriodEntryCount(ctx context.Context, tenantID uuid.UUID, periodID int64, delta int) error {
	_, err := r.tx.Exec(ctx, `UPDATE accounting_periods SET entry_count = entry_count + $3, updated_at=NOW() WHERE tenant_id=$1 AND id=$2`, tenantID, periodID, delta)
	return err
}

func (r *txRepository) GetEntryWithLines(ctx context.Context, tenantID uuid.UUID, entryID int64) (JournalEntry, []JournalEntryLine, error) {
	entry, err := scanEntry(r.tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE tenant_id=$1 AND id=$2`, tenantID, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, nil, shared.ErrEntryNotFound
		}
		return JournalEntry{}, nil, err
	}
	lines, err := queryLines(ctx, r.tx, entryID)
	if err != nil {
		return JournalEntry{}, nil, err
	}
	return entry, lines, nil
}

func (r *txRepository) MarkVoided(ctx context.Context, tenantID uuid.UUID, entryID int64, reason string, at time.Time) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE journal_entries SET status='VOIDED', void_reason=$3, voided_at=$4, updated_at=NOW()
WHERE tenant_id=$1 AND id=$2 AND status='POSTED'`, tenantID, entryID, reason, at)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrEntryNotFound
	}
	return nil
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func queryLines(ctx context.Context, q queryer, entryID int64) ([]JournalEntryLine, error) {
	rows, err := q.Query(ctx, `SELECT id, entry_id, account_id, cost_center_id, description, debit, credit, created_at
FROM journal_lines WHERE entry_id=$1 ORDER BY id ASC`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []JournalEntryLine
	for rows.Next() {
		var line JournalEntryLine
		if err := rows.Scan(&line.ID, &line.EntryID, &line.AccountID, &line.CostCenterID, &line.Description, &line.Debit, &line.Credit, &line.CreatedAt); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// List returns filtered entries plus the unpaginated total.
func (r *repository) List(ctx context.Context, filter ListFilter) ([]JournalEntry, int, error) {
	where := `WHERE tenant_id=$1`
	args := []any{filter.TenantID}
	idx := 2
	if filter.FromDate != nil {
		where += fmt.Sprintf(` AND date >= $%d`, idx)
		args = append(args, *filter.FromDate)
		idx++
	}
	if filter.ToDate != nil {
		where += fmt.Sprintf(` AND date <= $%d`, idx)
		args = append(args, *filter.ToDate)
		idx++
	}
	if filter.Status != nil {
		where += fmt.Sprintf(` AND status = $%d`, idx)
		args = append(args, *filter.Status)
		idx++
	}
	if filter.Source != nil {
		where += fmt.Sprintf(` AND source = $%d`, idx)
		args = append(args, *filter.Source)
		idx++
	}
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM journal_entries `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	query := fmt.Sprintf(`SELECT `+entryColumns+` FROM journal_entries %s ORDER BY entry_number DESC LIMIT $%d OFFSET $%d`, where, idx, idx+1)
	args = append(args, perPage, (page-1)*perPage)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var entries []JournalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

// Get loads an entry with its lines outside a transaction.
func (r *repository) Get(ctx context.Context, tenantID uuid.UUID, entryID int64) (JournalEntry, []JournalEntryLine, error) {
	entry, err := scanEntry(r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE tenant_id=$1 AND id=$2`, tenantID, entryID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, nil, shared.ErrEntryNotFound
		}
		return JournalEntry{}, nil, err
	}
	lines, err := queryLines(ctx, r.pool, entryID)
	if err != nil {
		return JournalEntry{}, nil, err
	}
	return entry, lines, nil
}

func toNumeric(v float64) any {
	return fmt.Sprintf("%.2f", v)
}
