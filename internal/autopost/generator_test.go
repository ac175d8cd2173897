package autopost

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/andes-erp/andes-erp/internal/accounting/journals"
	"github.com/andes-erp/andes-erp/internal/accounting/mappings"
	"github.com/andes-erp/andes-erp/internal/accounting/shared"
)

const (
	cashAcc = int64(iota + 1)
	bankAcc
	receivableAcc
	inventoryAcc
	payableAcc
	ivaPayableAcc
	ivaDeductibleAcc
	revenueAcc
	cogsAcc
	adjustmentAcc
	whReceivedAcc
	whPayableAcc
	retainedAcc
)

type stubConfig struct {
	cfg mappings.Config
	err error
}

func (s *stubConfig) Get(ctx context.Context, tenantID uuid.UUID) (mappings.Config, error) {
	if s.err != nil {
		return mappings.Config{}, s.err
	}
	return s.cfg, nil
}

type stubPoster struct {
	posted []journals.PostingInput
	err    error
}

func (s *stubPoster) Post(ctx context.Context, input journals.PostingInput) (journals.JournalEntry, error) {
	if s.err != nil {
		return journals.JournalEntry{}, s.err
	}
	s.posted = append(s.posted, input)
	debit, credit := input.Totals()
	return journals.JournalEntry{
		ID:          int64(len(s.posted)),
		TenantID:    input.TenantID,
		Date:        input.Date,
		Source:      input.Source,
		Status:      journals.EntryStatusPosted,
		TotalDebit:  debit,
		TotalCredit: credit,
	}, nil
}

type stubBalances struct {
	rows []ResultBalance
	err  error
}

func (s *stubBalances) PeriodResultBalances(ctx context.Context, tenantID uuid.UUID, periodID int64) ([]ResultBalance, error) {
	return s.rows, s.err
}

type recordingAlerts struct {
	events []string
}

func (r *recordingAlerts) NotifyConfigIssue(ctx context.Context, tenantID uuid.UUID, event string, cause error) {
	r.events = append(r.events, event)
}

func configuredTenant() mappings.Config {
	return mappings.Config{
		AutoGenerateEntries: true,
		Accounts: map[mappings.SystemRole]int64{
			mappings.RoleCash:                cashAcc,
			mappings.RoleBank:                bankAcc,
			mappings.RoleAccountsReceivable:  receivableAcc,
			mappings.RoleInventory:           inventoryAcc,
			mappings.RoleAccountsPayable:     payableAcc,
			mappings.RoleIVAPayable:          ivaPayableAcc,
			mappings.RoleIVADeductible:       ivaDeductibleAcc,
			mappings.RoleRevenue:             revenueAcc,
			mappings.RoleCOGS:                cogsAcc,
			mappings.RoleInventoryAdjustment: adjustmentAcc,
			mappings.RoleWithholdingReceived: whReceivedAcc,
			mappings.RoleWithholdingPayable:  whPayableAcc,
			mappings.RoleRetainedEarnings:    retainedAcc,
		},
	}
}

func saleEvent() SaleEvent {
	return SaleEvent{
		TenantID:  uuid.New(),
		InvoiceID: uuid.New(),
		Date:      time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
		Subtotal:  1000,
		IVAAmount: 190,
	}
}

func lineFor(t *testing.T, lines []journals.PostingLineInput, accountID int64) journals.PostingLineInput {
	t.Helper()
	for _, line := range lines {
		if line.AccountID == accountID {
			return line
		}
	}
	t.Fatalf("no line for account %d", accountID)
	return journals.PostingLineInput{}
}

func TestOnSalePostsReceivableRevenueAndIVA(t *testing.T) {
	poster := &stubPoster{}
	gen := NewGenerator(&stubConfig{cfg: configuredTenant()}, poster, &stubBalances{}, nil)

	entry, lpe := gen.OnSale(context.Background(), saleEvent())
	require.Nil(t, lpe)
	require.NotNil(t, entry)
	require.Len(t, poster.posted, 1)

	input := poster.posted[0]
	require.Equal(t, journals.SourceInvoiceSale, input.Source)
	require.NotNil(t, input.SourceRef)
	require.Equal(t, float64(1190), lineFor(t, input.Lines, receivableAcc).Debit)
	require.Equal(t, float64(1000), lineFor(t, input.Lines, revenueAcc).Credit)
	require.Equal(t, float64(190), lineFor(t, input.Lines, ivaPayableAcc).Credit)
}

func TestOnSaleCashAndCancelVariants(t *testing.T) {
	poster := &stubPoster{}
	gen := NewGenerator(&stubConfig{cfg: configuredTenant()}, poster, &stubBalances{}, nil)

	cash := saleEvent()
	cash.PaidOnIssue = true
	_, lpe := gen.OnSale(context.Background(), cash)
	require.Nil(t, lpe)
	require.Equal(t, float64(1190), lineFor(t, poster.posted[0].Lines, cashAcc).Debit)

	cancel := saleEvent()
	cancel.Cancel = true
	_, lpe = gen.OnSale(context.Background(), cancel)
	require.Nil(t, lpe)
	input := poster.posted[1]
	require.Equal(t, journals.SourceInvoiceCancel, input.Source)
	require.Equal(t, float64(1190), lineFor(t, input.Lines, receivableAcc).Credit)
	require.Equal(t, float64(1000), lineFor(t, input.Lines, revenueAcc).Debit)
}

func TestGenerateSkipsSilentlyWhenNotReady(t *testing.T) {
	// Automation disabled.
	disabled := configuredTenant()
	disabled.AutoGenerateEntries = false
	poster := &stubPoster{}
	alerts := &recordingAlerts{}
	gen := NewGenerator(&stubConfig{cfg: disabled}, poster, &stubBalances{}, nil)
	gen.WithAlerts(alerts)

	entry, lpe := gen.OnSale(context.Background(), saleEvent())
	require.Nil(t, entry)
	require.Nil(t, lpe)
	require.Empty(t, poster.posted)
	require.Empty(t, alerts.events)

	// Configuration incomplete.
	partial := configuredTenant()
	delete(partial.Accounts, mappings.RoleRevenue)
	gen = NewGenerator(&stubConfig{cfg: partial}, poster, &stubBalances{}, nil)
	gen.WithAlerts(alerts)

	entry, lpe = gen.OnSale(context.Background(), saleEvent())
	require.Nil(t, entry)
	require.Nil(t, lpe)
	require.Empty(t, poster.posted)
	require.Empty(t, alerts.events)
}

func TestGenerateAlertsOnPostFailure(t *testing.T) {
	poster := &stubPoster{err: shared.ErrPeriodNotOpen}
	alerts := &recordingAlerts{}
	gen := NewGenerator(&stubConfig{cfg: configuredTenant()}, poster, &stubBalances{}, nil)
	gen.WithAlerts(alerts)

	entry, lpe := gen.OnSale(context.Background(), saleEvent())
	require.Nil(t, entry)
	require.NotNil(t, lpe)
	require.True(t, errors.Is(lpe, shared.ErrPeriodNotOpen))
	require.Equal(t, []string{"invoice sale"}, alerts.events)
}

func TestOnPurchaseReceivedLines(t *testing.T) {
	poster := &stubPoster{}
	gen := NewGenerator(&stubConfig{cfg: configuredTenant()}, poster, &stubBalances{}, nil)

	_, lpe := gen.OnPurchaseReceived(context.Background(), PurchaseEvent{
		TenantID:  uuid.New(),
		ReceiptID: uuid.New(),
		Date:      time.Date(2026, time.March, 12, 0, 0, 0, 0, time.UTC),
		Subtotal:  500,
		IVAAmount: 95,
	})
	require.Nil(t, lpe)

	input := poster.posted[0]
	require.Equal(t, journals.SourcePurchaseReceived, input.Source)
	require.Equal(t, float64(500), lineFor(t, input.Lines, inventoryAcc).Debit)
	require.Equal(t, float64(95), lineFor(t, input.Lines, ivaDeductibleAcc).Debit)
	require.Equal(t, float64(595), lineFor(t, input.Lines, payableAcc).Credit)
}

func TestOnPaymentAndStockAdjustment(t *testing.T) {
	poster := &stubPoster{}
	gen := NewGenerator(&stubConfig{cfg: configuredTenant()}, poster, &stubBalances{}, nil)

	_, lpe := gen.OnPaymentReceived(context.Background(), PaymentEvent{
		TenantID: uuid.New(), PaymentID: uuid.New(),
		Date: time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC), Amount: 1190, ToBank: true,
	})
	require.Nil(t, lpe)
	payment := poster.posted[0]
	require.Equal(t, float64(1190), lineFor(t, payment.Lines, bankAcc).Debit)
	require.Equal(t, float64(1190), lineFor(t, payment.Lines, receivableAcc).Credit)

	_, lpe = gen.OnStockAdjustment(context.Background(), StockAdjustmentEvent{
		TenantID: uuid.New(), MovementID: uuid.New(),
		Date: time.Date(2026, time.March, 14, 0, 0, 0, 0, time.UTC), Amount: 80,
	})
	require.Nil(t, lpe)
	adj := poster.posted[1]
	require.Equal(t, float64(80), lineFor(t, adj.Lines, adjustmentAcc).Debit)
	require.Equal(t, float64(80), lineFor(t, adj.Lines, inventoryAcc).Credit)
}

func TestSweepPeriodMovesResultToRetainedEarnings(t *testing.T) {
	poster := &stubPoster{}
	balances := &stubBalances{rows: []ResultBalance{
		{AccountID: revenueAcc, Type: "REVENUE", Net: -1300},
		{AccountID: cogsAcc, Type: "COGS", Net: 150},
		{AccountID: 99, Type: "EXPENSE", Net: 50},
	}}
	gen := NewGenerator(&stubConfig{cfg: configuredTenant()}, poster, balances, nil)

	err := gen.SweepPeriod(context.Background(), uuid.New(), 1, time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC), 7)
	require.NoError(t, err)
	require.Len(t, poster.posted, 1)

	input := poster.posted[0]
	require.Equal(t, journals.SourcePeriodClose, input.Source)
	require.Equal(t, int64(1), input.PeriodID)
	require.Equal(t, float64(1300), lineFor(t, input.Lines, revenueAcc).Debit)
	require.Equal(t, float64(150), lineFor(t, input.Lines, cogsAcc).Credit)
	require.Equal(t, float64(50), lineFor(t, input.Lines, 99).Credit)
	require.Equal(t, float64(1100), lineFor(t, input.Lines, retainedAcc).Credit)

	debit, credit := input.Totals()
	require.Equal(t, debit, credit)
}

func TestSweepPeriodFailuresPropagate(t *testing.T) {
	// An unconfigured tenant fails the close instead of skipping.
	partial := configuredTenant()
	delete(partial.Accounts, mappings.RoleRetainedEarnings)
	gen := NewGenerator(&stubConfig{cfg: partial}, &stubPoster{}, &stubBalances{}, nil)
	err := gen.SweepPeriod(context.Background(), uuid.New(), 1, time.Now(), 1)
	require.ErrorIs(t, err, shared.ErrConfigIncomplete)

	// A posting failure propagates.
	gen = NewGenerator(&stubConfig{cfg: configuredTenant()}, &stubPoster{err: shared.ErrDateOutOfRange},
		&stubBalances{rows: []ResultBalance{{AccountID: revenueAcc, Net: 100}}}, nil)
	err = gen.SweepPeriod(context.Background(), uuid.New(), 1, time.Now(), 1)
	require.ErrorIs(t, err, shared.ErrDateOutOfRange)

	// Nothing to sweep is a successful no-op.
	poster := &stubPoster{}
	gen = NewGenerator(&stubConfig{cfg: configuredTenant()}, poster, &stubBalances{}, nil)
	require.NoError(t, gen.SweepPeriod(context.Background(), uuid.New(), 1, time.Now(), 1))
	require.Empty(t, poster.posted)
}
