package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andes-erp/andes-erp/internal/accounting/reports"
)

// BalanceRow is the raw per-account aggregation scanned from the store.
// OpeningNet is debit minus credit before the range; the service converts it
// to the account's natural sign.
type BalanceRow struct {
	AccountID  int64
	Code       string
	Name       string
	Type       string
	Nature     string
	IsBank     bool
	OpeningNet float64
	Debit      float64
	Credit     float64
}

// MovementRow is one posted line with its entry header fields.
type MovementRow struct {
	AccountID   int64
	Date        time.Time
	EntryNumber int64
	Description string
	Debit       float64
	Credit      float64
}

// AgingRow buckets one counterparty's outstanding balance by days overdue.
type AgingRow struct {
	PartyID     uuid.UUID `json:"partyId"`
	PartyName   string    `json:"partyName"`
	Current     float64   `json:"current"`
	Days1to30   float64   `json:"days1to30"`
	Days31to60  float64   `json:"days31to60"`
	Days61to90  float64   `json:"days61to90"`
	Days90plus  float64   `json:"days90plus"`
	TotalAmount float64   `json:"totalBalance"`
}

// TaxRow is the raw per-rate tax aggregation.
type TaxRow struct {
	Rate        float64
	TaxableBase float64
	TaxAmount   float64
}

// Repository reads posted ledger state for report generation. Every method
// runs its statements inside one repeatable-read snapshot so a report never
// sees half of a multi-line entry.
type Repository interface {
	AccountBalances(ctx context.Context, tenantID uuid.UUID, from *time.Time, to time.Time) ([]BalanceRow, error)
	AccountMovements(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]BalanceRow, []MovementRow, error)
	CashAccountBalances(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]BalanceRow, error)
	AgingAR(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]AgingRow, error)
	AgingAP(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]AgingRow, error)
	TaxSummary(ctx context.Context, tenantID uuid.UUID, kind string, from, to time.Time) ([]TaxRow, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs the pgx-backed report repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const balanceQuery = `SELECT a.id, a.code, a.name, a.type, a.nature, a.is_bank_account,
COALESCE(SUM(CASE WHEN e.date < $2 THEN l.debit - l.credit ELSE 0 END), 0) AS opening_net,
COALESCE(SUM(CASE WHEN e.date >= $2 AND e.date <= $3 THEN l.debit ELSE 0 END), 0) AS debit,
COALESCE(SUM(CASE WHEN e.date >= $2 AND e.date <= $3 THEN l.credit ELSE 0 END), 0) AS credit
FROM accounts a
LEFT JOIN journal_lines l ON l.account_id = a.id
LEFT JOIN journal_entries e ON e.id = l.entry_id AND e.status = 'POSTED' AND e.date <= $3
WHERE a.tenant_id = $1
GROUP BY a.id, a.code, a.name, a.type, a.nature, a.is_bank_account
ORDER BY a.code`

func scanBalanceRows(rows pgx.Rows) ([]BalanceRow, error) {
	defer rows.Close()
	var out []BalanceRow
	for rows.Next() {
		var r BalanceRow
		if err := rows.Scan(&r.AccountID, &r.Code, &r.Name, &r.Type, &r.Nature, &r.IsBank, &r.OpeningNet, &r.Debit, &r.Credit); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (r *repository) AccountBalances(ctx context.Context, tenantID uuid.UUID, from *time.Time, to time.Time) ([]BalanceRow, error) {
	start := time.Time{}
	if from != nil {
		start = *from
	}
	rows, err := r.pool.Query(ctx, balanceQuery, tenantID, start, to)
	if err != nil {
		return nil, err
	}
	return scanBalanceRows(rows)
}

func (r *repository) AccountMovements(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]BalanceRow, []MovementRow, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	balanceRows, err := tx.Query(ctx, balanceQuery, tenantID, from, to)
	if err != nil {
		return nil, nil, err
	}
	balances, err := scanBalanceRows(balanceRows)
	if err != nil {
		return nil, nil, err
	}

	movementRows, err := tx.Query(ctx, movementQuery, tenantID, from, to)
	if err != nil {
		return nil, nil, err
	}
	defer movementRows.Close()
	var movements []MovementRow
	for movementRows.Next() {
		var m MovementRow
		if err := movementRows.Scan(&m.AccountID, &m.Date, &m.EntryNumber, &m.Description, &m.Debit, &m.Credit); err != nil {
			return nil, nil, err
		}
		movements = append(movements, m)
	}
	if err := movementRows.Err(); err != nil {
		return nil, nil, err
	}
	return balances, movements, tx.Commit(ctx)
}

const movementQuery = `SELECT l.account_id, e.date, e.entry_number, COALESCE(NULLIF(l.description, ''), e.description), l.debit, l.credit
FROM journal_lines l
JOIN journal_entries e ON e.id = l.entry_id
WHERE e.tenant_id = $1 AND e.status = 'POSTED' AND e.date >= $2 AND e.date <= $3
ORDER BY l.account_id, e.date, e.entry_number, l.id`

const cashBalanceQuery = `SELECT a.id, a.code, a.name, a.type, a.nature, a.is_bank_account,
COALESCE(SUM(CASE WHEN e.date < $2 THEN l.debit - l.credit ELSE 0 END), 0) AS opening_net,
COALESCE(SUM(CASE WHEN e.date >= $2 AND e.date <= $3 THEN l.debit ELSE 0 END), 0) AS debit,
COALESCE(SUM(CASE WHEN e.date >= $2 AND e.date <= $3 THEN l.credit ELSE 0 END), 0) AS credit
FROM accounts a
LEFT JOIN journal_lines l ON l.account_id = a.id
LEFT JOIN journal_entries e ON e.id = l.entry_id AND e.status = 'POSTED' AND e.date <= $3
WHERE a.tenant_id = $1
AND (a.is_bank_account OR a.id IN (SELECT account_id FROM accounting_config_roles WHERE tenant_id = $1 AND role = 'CASH'))
GROUP BY a.id, a.code, a.name, a.type, a.nature, a.is_bank_account
ORDER BY a.code`

func (r *repository) CashAccountBalances(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]BalanceRow, error) {
	rows, err := r.pool.Query(ctx, cashBalanceQuery, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	return scanBalanceRows(rows)
}

const agingQuery = `SELECT party_id, party_name,
COALESCE(SUM(CASE WHEN due_date >= $2 THEN balance ELSE 0 END), 0) AS current,
COALESCE(SUM(CASE WHEN due_date < $2 AND due_date >= $2 - INTERVAL '30 days' THEN balance ELSE 0 END), 0) AS d1_30,
COALESCE(SUM(CASE WHEN due_date < $2 - INTERVAL '30 days' AND due_date >= $2 - INTERVAL '60 days' THEN balance ELSE 0 END), 0) AS d31_60,
COALESCE(SUM(CASE WHEN due_date < $2 - INTERVAL '60 days' AND due_date >= $2 - INTERVAL '90 days' THEN balance ELSE 0 END), 0) AS d61_90,
COALESCE(SUM(CASE WHEN due_date < $2 - INTERVAL '90 days' THEN balance ELSE 0 END), 0) AS d90_plus,
COALESCE(SUM(balance), 0) AS total
FROM (
  SELECT party_id, party_name, due_date, total - paid_amount AS balance
  FROM open_documents
  WHERE tenant_id = $1 AND doc_type = $3 AND total > paid_amount AND issue_date <= $2
) docs
GROUP BY party_id, party_name
ORDER BY total DESC`

func (r *repository) agingRows(ctx context.Context, tenantID uuid.UUID, asOf time.Time, docType string) ([]AgingRow, error) {
	rows, err := r.pool.Query(ctx, agingQuery, tenantID, asOf, docType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AgingRow
	for rows.Next() {
		var a AgingRow
		if err := rows.Scan(&a.PartyID, &a.PartyName, &a.Current, &a.Days1to30, &a.Days31to60, &a.Days61to90, &a.Days90plus, &a.TotalAmount); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *repository) AgingAR(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]AgingRow, error) {
	return r.agingRows(ctx, tenantID, asOf, "AR_INVOICE")
}

func (r *repository) AgingAP(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]AgingRow, error) {
	return r.agingRows(ctx, tenantID, asOf, "AP_INVOICE")
}

func (r *repository) TaxSummary(ctx context.Context, tenantID uuid.UUID, kind string, from, to time.Time) ([]TaxRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT rate, COALESCE(SUM(taxable_base), 0), COALESCE(SUM(tax_amount), 0)
FROM tax_movements
WHERE tenant_id = $1 AND kind = $2 AND date >= $3 AND date <= $4
GROUP BY rate
ORDER BY rate`, tenantID, kind, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []TaxRow
	for rows.Next() {
		var t TaxRow
		if err := rows.Scan(&t.Rate, &t.TaxableBase, &t.TaxAmount); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// toAccountBalances converts raw rows to the report builder input, flipping
// the opening net into the account's natural sign.
func toAccountBalances(rows []BalanceRow) []reports.AccountBalance {
	out := make([]reports.AccountBalance, 0, len(rows))
	for _, r := range rows {
		opening := r.OpeningNet
		if r.Nature == "CREDIT" {
			opening = -opening
		}
		out = append(out, reports.AccountBalance{
			Code:    r.Code,
			Name:    r.Name,
			Type:    r.Type,
			Nature:  r.Nature,
			Opening: opening,
			Debit:   r.Debit,
			Credit:  r.Credit,
		})
	}
	return out
}
