package periods

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andes-erp/andes-erp/internal/accounting/shared"
)

// Repository persists accounting periods.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository using the provided pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx executes fn inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	if r == nil || r.pool == nil {
		return fmt.Errorf("periods: repository not initialised")
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	if err := fn(ctx, tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

const periodColumns = `id, tenant_id, name, start_date, end_date, status, closed_at, closed_by, notes, entry_count, created_at, updated_at`

func scanPeriod(row pgx.Row) (Period, error) {
	var p Period
	err := row.Scan(&p.ID, &p.TenantID, &p.Name, &p.StartDate, &p.EndDate, &p.Status, &p.ClosedAt, &p.ClosedByID, &p.Notes, &p.EntryCount, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// List returns the tenant's periods, newest range first.
func (r *Repository) List(ctx context.Context, tenantID uuid.UUID) ([]Period, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+periodColumns+` FROM accounting_periods WHERE tenant_id=$1 ORDER BY start_date DESC`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var periods []Period
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

// Get fetches a single period.
func (r *Repository) Get(ctx context.Context, tenantID uuid.UUID, id int64) (Period, error) {
	p, err := scanPeriod(r.pool.QueryRow(ctx, `SELECT `+periodColumns+` FROM accounting_periods WHERE tenant_id=$1 AND id=$2`, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Period{}, shared.ErrPeriodNotFound
		}
		return Period{}, err
	}
	return p, nil
}

// LockTenantPeriods serialises period creation per tenant for the rest of
// the transaction. The overlap check is check-then-act; without the lock two
// concurrent opens with intersecting ranges would both pass it.
func (r *Repository) LockTenantPeriods(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, tenantID.String())
	return err
}

// RangeConflict reports whether any existing tenant period intersects [start, end].
func (r *Repository) RangeConflict(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, start, end time.Time) (bool, error) {
	var conflict bool
	err := tx.QueryRow(ctx, `SELECT EXISTS (
SELECT 1 FROM accounting_periods WHERE tenant_id=$1 AND start_date <= $3 AND end_date >= $2)`, tenantID, start, end).Scan(&conflict)
	return conflict, err
}

// Insert creates a new OPEN period.
func (r *Repository) Insert(ctx context.Context, tx pgx.Tx, p Period) (Period, error) {
	row := tx.QueryRow(ctx, `INSERT INTO accounting_periods (tenant_id, name, start_date, end_date, status, notes)
VALUES ($1,$2,$3,$4,'OPEN',$5) RETURNING `+periodColumns, p.TenantID, p.Name, p.StartDate, p.EndDate, p.Notes)
	return scanPeriod(row)
}

// LoadForUpdate locks the period row for the duration of the transaction.
// Period transitions and journal postings both take this lock so a posting
// in flight when closing begins either commits first or fails the recheck.
func (r *Repository) LoadForUpdate(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, id int64) (Period, error) {
	p, err := scanPeriod(tx.QueryRow(ctx, `SELECT `+periodColumns+` FROM accounting_periods WHERE tenant_id=$1 AND id=$2 FOR UPDATE`, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Period{}, shared.ErrPeriodNotFound
		}
		return Period{}, err
	}
	return p, nil
}

// UpdateStatus transitions the period row.
func (r *Repository) UpdateStatus(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, id int64, status PeriodStatus, closedBy *int64, closedAt *time.Time) error {
	cmd, err := tx.Exec(ctx, `UPDATE accounting_periods SET status=$3, closed_by=$4, closed_at=$5, updated_at=NOW() WHERE tenant_id=$1 AND id=$2`,
		tenantID, id, status, closedBy, closedAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrPeriodNotFound
	}
	return nil
}

// FindOpenByDate returns the open period covering the supplied date.
func (r *Repository) FindOpenByDate(ctx context.Context, tenantID uuid.UUID, date time.Time) (Period, error) {
	p, err := scanPeriod(r.pool.QueryRow(ctx, `SELECT `+periodColumns+` FROM accounting_periods
WHERE tenant_id=$1 AND status='OPEN' AND $2 BETWEEN start_date AND end_date ORDER BY start_date LIMIT 1`, tenantID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Period{}, shared.ErrNoOpenPeriod
		}
		return Period{}, err
	}
	return p, nil
}
