package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

// IntegrityScanner validates that posted ledger state still balances. It
// only reports; a broken ledger is never repaired from a background job.
type IntegrityScanner struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewIntegrityScanner constructs the scanner.
func NewIntegrityScanner(pool *pgxpool.Pool, logger *slog.Logger) *IntegrityScanner {
	return &IntegrityScanner{pool: pool, logger: logger}
}

// HandleTask processes TaskTypeLedgerIntegrity tasks.
func (s *IntegrityScanner) HandleTask(ctx context.Context, t *asynq.Task) error {
	var payload LedgerIntegrityPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.TenantID != nil {
		return s.ScanTenant(ctx, *payload.TenantID)
	}
	return s.ScanAll(ctx)
}

// ScanAll runs the integrity scan for every tenant with posted entries.
func (s *IntegrityScanner) ScanAll(ctx context.Context) error {
	rows, err := s.pool.Query(ctx, `SELECT DISTINCT tenant_id FROM journal_entries WHERE status = 'POSTED'`)
	if err != nil {
		return err
	}
	defer rows.Close()
	var tenants []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return err
		}
		tenants = append(tenants, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, tenantID := range tenants {
		g.Go(func() error {
			return s.ScanTenant(ctx, tenantID)
		})
	}
	return g.Wait()
}

// ScanTenant checks one tenant's ledger at two levels: every posted entry
// must have matching line totals, and grand total debits must equal grand
// total credits. Violations are logged at error level.
func (s *IntegrityScanner) ScanTenant(ctx context.Context, tenantID uuid.UUID) error {
	var broken int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM (
  SELECT e.id
  FROM journal_entries e
  JOIN journal_lines l ON l.entry_id = e.id
  WHERE e.tenant_id = $1 AND e.status = 'POSTED'
  GROUP BY e.id
  HAVING ROUND(SUM(l.debit)::numeric, 2) <> ROUND(SUM(l.credit)::numeric, 2)
) x`, tenantID).Scan(&broken)
	if err != nil {
		return err
	}
	if broken > 0 {
		s.logger.Error("unbalanced posted entries detected",
			slog.String("tenant_id", tenantID.String()),
			slog.Int("entries", broken))
	}

	var totalDebit, totalCredit float64
	err = s.pool.QueryRow(ctx, `SELECT COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
FROM journal_lines l
JOIN journal_entries e ON e.id = l.entry_id
WHERE e.tenant_id = $1 AND e.status = 'POSTED'`, tenantID).Scan(&totalDebit, &totalCredit)
	if err != nil {
		return err
	}
	if !equalCents(totalDebit, totalCredit) {
		s.logger.Error("ledger grand totals out of balance",
			slog.String("tenant_id", tenantID.String()),
			slog.Float64("total_debit", totalDebit),
			slog.Float64("total_credit", totalCredit))
	}
	return nil
}

func equalCents(a, b float64) bool {
	return fmt.Sprintf("%.2f", a) == fmt.Sprintf("%.2f", b)
}
