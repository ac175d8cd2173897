package accounts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andes-erp/andes-erp/internal/accounting/shared"
)

// Repository persists chart of accounts rows.
type Repository interface {
	List(ctx context.Context, tenantID uuid.UUID) ([]Account, error)
	Get(ctx context.Context, tenantID uuid.UUID, id int64) (Account, error)
	Insert(ctx context.Context, acc Account) (Account, error)
	Update(ctx context.Context, acc Account) (Account, error)
	SetActive(ctx context.Context, tenantID uuid.UUID, id int64, active bool) error
	HasActiveChildren(ctx context.Context, tenantID uuid.UUID, id int64) (bool, error)
	HasPostedLinesInOpenPeriod(ctx context.Context, tenantID uuid.UUID, id int64) (bool, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const accountColumns = `id, tenant_id, code, name, description, type, nature, parent_id, level, is_active, is_system_account, is_bank_account, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.TenantID, &a.Code, &a.Name, &a.Description, &a.Type, &a.Nature, &a.ParentID, &a.Level, &a.IsActive, &a.IsSystemAccount, &a.IsBankAccount, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *repository) List(ctx context.Context, tenantID uuid.UUID) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE tenant_id=$1 ORDER BY code`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *repository) Get(ctx context.Context, tenantID uuid.UUID, id int64) (Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE tenant_id=$1 AND id=$2`, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func (r *repository) Insert(ctx context.Context, acc Account) (Account, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO accounts (tenant_id, code, name, description, type, nature, parent_id, level, is_active, is_system_account, is_bank_account)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,TRUE,$9,$10) RETURNING `+accountColumns,
		acc.TenantID, acc.Code, acc.Name, acc.Description, acc.Type, acc.Nature, acc.ParentID, acc.Level, acc.IsSystemAccount, acc.IsBankAccount)
	inserted, err := scanAccount(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Account{}, shared.ErrDuplicateCode
		}
		return Account{}, err
	}
	return inserted, nil
}

func (r *repository) Update(ctx context.Context, acc Account) (Account, error) {
	row := r.db.QueryRow(ctx, `UPDATE accounts SET name=$3, description=$4, is_bank_account=$5, updated_at=NOW()
WHERE tenant_id=$1 AND id=$2 RETURNING `+accountColumns, acc.TenantID, acc.ID, acc.Name, acc.Description, acc.IsBankAccount)
	updated, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return updated, nil
}

func (r *repository) SetActive(ctx context.Context, tenantID uuid.UUID, id int64, active bool) error {
	cmd, err := r.db.Exec(ctx, `UPDATE accounts SET is_active=$3, updated_at=NOW() WHERE tenant_id=$1 AND id=$2`, tenantID, id, active)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrAccountNotFound
	}
	return nil
}

func (r *repository) HasActiveChildren(ctx context.Context, tenantID uuid.UUID, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE tenant_id=$1 AND parent_id=$2 AND is_active)`, tenantID, id).Scan(&exists)
	return exists, err
}

func (r *repository) HasPostedLinesInOpenPeriod(ctx context.Context, tenantID uuid.UUID, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (
SELECT 1 FROM journal_lines l
JOIN journal_entries e ON e.id = l.entry_id
JOIN accounting_periods p ON p.id = e.period_id
WHERE e.tenant_id=$1 AND l.account_id=$2 AND e.status='POSTED' AND p.status='OPEN')`, tenantID, id).Scan(&exists)
	return exists, err
}
