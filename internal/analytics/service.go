package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/andes-erp/andes-erp/internal/accounting/reports"
)

// GeneralLedger is the full per-account movement report for a range.
type GeneralLedger struct {
	From     time.Time                      `json:"from"`
	To       time.Time                      `json:"to"`
	Accounts []reports.GeneralLedgerAccount `json:"accounts"`
}

// AgingReport is the bucketed receivable or payable snapshot.
type AgingReport struct {
	AsOf  time.Time  `json:"asOf"`
	Rows  []AgingRow `json:"rows"`
	Total float64    `json:"total"`
}

// Service builds financial reports from posted ledger state. Results are
// cached per tenant and version; concurrent identical requests collapse into
// a single store round trip via singleflight.
type Service struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
	group  singleflight.Group
}

// NewService wires the report service.
func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

func day(t time.Time) string {
	return t.Format("2006-01-02")
}

// load runs the loader through the cache and singleflight under one key. The
// flight carries the raw JSON payload so every caller sharing it, not just
// the one that executed the loader, unmarshals the same result into its own
// destination.
func (s *Service) load(ctx context.Context, tenantID uuid.UUID, dest interface{}, loader func(context.Context) (interface{}, error), parts ...string) error {
	key, err := s.cache.BuildKey(ctx, tenantID, parts...)
	if err != nil {
		return err
	}
	ch := s.group.DoChan(key, func() (interface{}, error) {
		var payload json.RawMessage
		if err := s.cache.FetchJSON(ctx, key, &payload, loader); err != nil {
			return nil, err
		}
		return payload, nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.(json.RawMessage), dest)
	}
}

// TrialBalance produces the grouped trial balance for a range. An unbalanced
// result is returned as-is and logged as a ledger integrity failure.
func (s *Service) TrialBalance(ctx context.Context, tenantID uuid.UUID, from *time.Time, to time.Time) (reports.TrialBalance, error) {
	parts := []string{"tb", "", day(to)}
	if from != nil {
		parts[1] = day(*from)
	}
	var out reports.TrialBalance
	err := s.load(ctx, tenantID, &out, func(ctx context.Context) (interface{}, error) {
		rows, err := s.repo.AccountBalances(ctx, tenantID, from, to)
		if err != nil {
			return nil, err
		}
		tb := reports.BuildTrialBalance(toAccountBalances(rows))
		if !tb.Balanced {
			s.logger.Error("trial balance out of balance",
				slog.String("tenant_id", tenantID.String()),
				slog.Float64("imbalance", tb.Imbalance))
		}
		return tb, nil
	}, parts...)
	return out, err
}

// GeneralLedger produces per-account movement detail with running balances.
func (s *Service) GeneralLedger(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (GeneralLedger, error) {
	var out GeneralLedger
	err := s.load(ctx, tenantID, &out, func(ctx context.Context) (interface{}, error) {
		balances, movements, err := s.repo.AccountMovements(ctx, tenantID, from, to)
		if err != nil {
			return nil, err
		}
		byAccount := make(map[int64][]reports.Movement, len(balances))
		for _, m := range movements {
			byAccount[m.AccountID] = append(byAccount[m.AccountID], reports.Movement{
				Date:        m.Date,
				EntryNumber: m.EntryNumber,
				Description: m.Description,
				Debit:       m.Debit,
				Credit:      m.Credit,
			})
		}
		ledger := GeneralLedger{From: from, To: to}
		for _, row := range balances {
			opening := row.OpeningNet
			if row.Nature == "CREDIT" {
				opening = -opening
			}
			movs := byAccount[row.AccountID]
			if len(movs) == 0 && opening == 0 {
				continue
			}
			ledger.Accounts = append(ledger.Accounts,
				reports.BuildLedgerAccount(row.Code, row.Name, row.Nature, opening, movs))
		}
		return ledger, nil
	}, "gl", day(from), day(to))
	return out, err
}

// BalanceSheet produces the point-in-time balance sheet. An unbalanced sheet
// means an unbalanced entry reached the store; it is logged and surfaced,
// never corrected.
func (s *Service) BalanceSheet(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (reports.BalanceSheet, error) {
	var out reports.BalanceSheet
	err := s.load(ctx, tenantID, &out, func(ctx context.Context) (interface{}, error) {
		rows, err := s.repo.AccountBalances(ctx, tenantID, nil, asOf)
		if err != nil {
			return nil, err
		}
		bs := reports.BuildBalanceSheet(toAccountBalances(rows))
		if !bs.Balanced {
			s.logger.Error("balance sheet equation violated",
				slog.String("tenant_id", tenantID.String()),
				slog.Float64("total_assets", bs.TotalAssets),
				slog.Float64("total_liabilities_equity", bs.TotalLiabilitiesAndEquity))
		}
		return bs, nil
	}, "bs", day(asOf))
	return out, err
}

// IncomeStatement produces the profit and loss report for a range.
func (s *Service) IncomeStatement(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (reports.IncomeStatement, error) {
	var out reports.IncomeStatement
	err := s.load(ctx, tenantID, &out, func(ctx context.Context) (interface{}, error) {
		rows, err := s.repo.AccountBalances(ctx, tenantID, &from, to)
		if err != nil {
			return nil, err
		}
		return reports.BuildIncomeStatement(toAccountBalances(rows)), nil
	}, "pl", day(from), day(to))
	return out, err
}

// Cashflow summarises movement over cash and bank accounts for a range.
func (s *Service) Cashflow(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (CashflowReport, error) {
	var out CashflowReport
	err := s.load(ctx, tenantID, &out, func(ctx context.Context) (interface{}, error) {
		rows, err := s.repo.CashAccountBalances(ctx, tenantID, from, to)
		if err != nil {
			return nil, err
		}
		return BuildCashflow(from, to, rows), nil
	}, "cf", day(from), day(to))
	return out, err
}

func (s *Service) aging(ctx context.Context, tenantID uuid.UUID, asOf time.Time, kind string,
	fetch func(context.Context, uuid.UUID, time.Time) ([]AgingRow, error)) (AgingReport, error) {
	var out AgingReport
	err := s.load(ctx, tenantID, &out, func(ctx context.Context) (interface{}, error) {
		rows, err := fetch(ctx, tenantID, asOf)
		if err != nil {
			return nil, err
		}
		report := AgingReport{AsOf: asOf, Rows: rows}
		for _, r := range rows {
			report.Total += r.TotalAmount
		}
		return report, nil
	}, "aging", kind, day(asOf))
	return out, err
}

// ARAging buckets outstanding customer balances by days overdue.
func (s *Service) ARAging(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (AgingReport, error) {
	return s.aging(ctx, tenantID, asOf, "ar", s.repo.AgingAR)
}

// APAging buckets outstanding supplier balances by days overdue.
func (s *Service) APAging(ctx context.Context, tenantID uuid.UUID, asOf time.Time) (AgingReport, error) {
	return s.aging(ctx, tenantID, asOf, "ap", s.repo.AgingAP)
}

// TaxSummary groups taxed transactions by rate for the given tax kind.
func (s *Service) TaxSummary(ctx context.Context, tenantID uuid.UUID, kind string, from, to time.Time) (TaxReport, error) {
	if kind != TaxKindIVA && kind != TaxKindWithholding {
		return TaxReport{}, fmt.Errorf("analytics: unknown tax kind %q", kind)
	}
	var out TaxReport
	err := s.load(ctx, tenantID, &out, func(ctx context.Context) (interface{}, error) {
		rows, err := s.repo.TaxSummary(ctx, tenantID, kind, from, to)
		if err != nil {
			return nil, err
		}
		return BuildTaxReport(kind, from, to, rows), nil
	}, "tax", kind, day(from), day(to))
	return out, err
}
