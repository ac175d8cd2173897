package autopost

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ResultBalance is the net movement of a result (revenue/expense/COGS)
// account inside a period, used by the closing sweep.
type ResultBalance struct {
	AccountID int64
	Type      string
	Net       float64 // debit - credit
}

// BalanceSource reads the balances the closing sweep zeroes out.
type BalanceSource interface {
	PeriodResultBalances(ctx context.Context, tenantID uuid.UUID, periodID int64) ([]ResultBalance, error)
}

type balanceSource struct {
	db *pgxpool.Pool
}

// NewBalanceSource constructs the pgx-backed balance reader.
func NewBalanceSource(db *pgxpool.Pool) BalanceSource {
	return &balanceSource{db: db}
}

func (r *balanceSource) PeriodResultBalances(ctx context.Context, tenantID uuid.UUID, periodID int64) ([]ResultBalance, error) {
	rows, err := r.db.Query(ctx, `SELECT a.id, a.type, COALESCE(SUM(l.debit - l.credit), 0)
FROM journal_lines l
JOIN journal_entries e ON e.id = l.entry_id
JOIN accounts a ON a.id = l.account_id
WHERE e.tenant_id=$1 AND e.period_id=$2 AND e.status='POSTED' AND a.type IN ('REVENUE','EXPENSE','COGS')
GROUP BY a.id, a.type
HAVING SUM(l.debit - l.credit) <> 0`, tenantID, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var balances []ResultBalance
	for rows.Next() {
		var b ResultBalance
		if err := rows.Scan(&b.AccountID, &b.Type, &b.Net); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}
