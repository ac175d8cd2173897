package analytics

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/andes-erp/andes-erp/internal/accounting/reports"
)

type stubRepo struct {
	balances  []BalanceRow
	movements []MovementRow
	cash      []BalanceRow
	ar        []AgingRow
	ap        []AgingRow
	tax       []TaxRow
}

func (r *stubRepo) AccountBalances(ctx context.Context, tenantID uuid.UUID, from *time.Time, to time.Time) ([]BalanceRow, error) {
	return r.balances, nil
}

func (r *stubRepo) AccountMovements(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]BalanceRow, []MovementRow, error) {
	return r.balances, r.movements, nil
}

func (r *stubRepo) CashAccountBalances(ctx context.Context, tenantID uuid.UUID, from, to time.Time) ([]BalanceRow, error) {
	return r.cash, nil
}

func (r *stubRepo) AgingAR(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]AgingRow, error) {
	return r.ar, nil
}

func (r *stubRepo) AgingAP(ctx context.Context, tenantID uuid.UUID, asOf time.Time) ([]AgingRow, error) {
	return r.ap, nil
}

func (r *stubRepo) TaxSummary(ctx context.Context, tenantID uuid.UUID, kind string, from, to time.Time) ([]TaxRow, error) {
	return r.tax, nil
}

func testService(repo Repository) *Service {
	return NewService(repo, NewCache(nil, time.Minute), slog.Default())
}

func reportRange() (time.Time, time.Time) {
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
}

func TestTrialBalanceFromRows(t *testing.T) {
	repo := &stubRepo{balances: []BalanceRow{
		{AccountID: 1, Code: "110505", Name: "Caja general", Type: "ASSET", Nature: "DEBIT", Debit: 1190, Credit: 0},
		{AccountID: 2, Code: "240801", Name: "IVA generado", Type: "LIABILITY", Nature: "CREDIT", Debit: 0, Credit: 190},
		{AccountID: 3, Code: "413505", Name: "Ventas", Type: "REVENUE", Nature: "CREDIT", Debit: 0, Credit: 1000},
	}}
	svc := testService(repo)
	from, to := reportRange()

	tb, err := svc.TrialBalance(context.Background(), uuid.New(), &from, to)
	require.NoError(t, err)
	require.True(t, tb.Balanced)
	require.InDelta(t, 1190, tb.TotalDebit, 0.001)
	require.InDelta(t, 1190, tb.TotalCredit, 0.001)
}

func TestGeneralLedgerFlipsCreditOpening(t *testing.T) {
	from, to := reportRange()
	repo := &stubRepo{
		balances: []BalanceRow{
			{AccountID: 1, Code: "110505", Name: "Caja general", Nature: "DEBIT", OpeningNet: 250},
			{AccountID: 2, Code: "413505", Name: "Ventas", Nature: "CREDIT", OpeningNet: -400},
			{AccountID: 3, Code: "220505", Name: "Proveedores", Nature: "CREDIT", OpeningNet: 0},
		},
		movements: []MovementRow{
			{AccountID: 1, Date: from, EntryNumber: 7, Description: "Venta de contado", Debit: 119},
			{AccountID: 2, Date: from, EntryNumber: 7, Description: "Venta de contado", Credit: 100},
		},
	}
	svc := testService(repo)

	gl, err := svc.GeneralLedger(context.Background(), uuid.New(), from, to)
	require.NoError(t, err)
	// Account 3 has no opening and no movement and is dropped.
	require.Len(t, gl.Accounts, 2)

	caja := gl.Accounts[0]
	require.Equal(t, "110505", caja.Code)
	require.InDelta(t, 250, caja.Opening, 0.001)
	require.InDelta(t, 369, caja.Closing, 0.001)

	// Credit-nature opening arrives as debit minus credit and flips sign.
	ventas := gl.Accounts[1]
	require.Equal(t, "413505", ventas.Code)
	require.InDelta(t, 400, ventas.Opening, 0.001)
	require.InDelta(t, 500, ventas.Closing, 0.001)
}

// blockingRepo holds AccountBalances open until released so concurrent
// requests pile onto the same flight.
type blockingRepo struct {
	stubRepo
	release chan struct{}
	calls   int32
}

func (r *blockingRepo) AccountBalances(ctx context.Context, tenantID uuid.UUID, from *time.Time, to time.Time) ([]BalanceRow, error) {
	atomic.AddInt32(&r.calls, 1)
	<-r.release
	return r.balances, nil
}

func TestTrialBalanceConcurrentRequestsShareResult(t *testing.T) {
	repo := &blockingRepo{
		stubRepo: stubRepo{balances: []BalanceRow{
			{AccountID: 1, Code: "110505", Name: "Caja general", Type: "ASSET", Nature: "DEBIT", Debit: 100},
			{AccountID: 2, Code: "413505", Name: "Ventas", Type: "REVENUE", Nature: "CREDIT", Credit: 100},
		}},
		release: make(chan struct{}),
	}
	svc := testService(repo)
	from, to := reportRange()
	tenant := uuid.New()

	results := make([]reports.TrialBalance, 2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.TrialBalance(context.Background(), tenant, &from, to)
		}(i)
	}
	// Let both requests join the flight before the store answers.
	time.Sleep(100 * time.Millisecond)
	close(repo.release)
	wg.Wait()

	for i := 0; i < 2; i++ {
		require.NoError(t, errs[i])
		require.InDelta(t, 100, results[i].TotalDebit, 0.001)
		require.InDelta(t, 100, results[i].TotalCredit, 0.001)
	}
	require.Equal(t, int32(1), atomic.LoadInt32(&repo.calls))
}

func TestBuildKeyScopedByTenantWithoutRedis(t *testing.T) {
	cache := NewCache(nil, time.Minute)
	ctx := context.Background()

	a, err := cache.BuildKey(ctx, uuid.New(), "tb", "2026-03-31")
	require.NoError(t, err)
	b, err := cache.BuildKey(ctx, uuid.New(), "tb", "2026-03-31")
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestAgingTotals(t *testing.T) {
	repo := &stubRepo{ar: []AgingRow{
		{PartyName: "Cliente A", Current: 100, Days31to60: 50, TotalAmount: 150},
		{PartyName: "Cliente B", Days90plus: 300, TotalAmount: 300},
	}}
	svc := testService(repo)
	_, asOf := reportRange()

	report, err := svc.ARAging(context.Background(), uuid.New(), asOf)
	require.NoError(t, err)
	require.Len(t, report.Rows, 2)
	require.InDelta(t, 450, report.Total, 0.001)
}

func TestTaxSummaryRejectsUnknownKind(t *testing.T) {
	svc := testService(&stubRepo{})
	from, to := reportRange()

	_, err := svc.TaxSummary(context.Background(), uuid.New(), "PAYROLL", from, to)
	require.Error(t, err)

	_, err = svc.TaxSummary(context.Background(), uuid.New(), TaxKindIVA, from, to)
	require.NoError(t, err)
}
