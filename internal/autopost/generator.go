package autopost

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/andes-erp/andes-erp/internal/accounting/journals"
	"github.com/andes-erp/andes-erp/internal/accounting/mappings"
	"github.com/andes-erp/andes-erp/internal/accounting/shared"
)

// ConfigSource loads the tenant accounting configuration.
type ConfigSource interface {
	Get(ctx context.Context, tenantID uuid.UUID) (mappings.Config, error)
}

// Poster posts journal entries. Implemented by the journal engine.
type Poster interface {
	Post(ctx context.Context, input journals.PostingInput) (journals.JournalEntry, error)
}

// AlertNotifier surfaces configuration problems to administrators. Failures
// here never block the business event, only the notification.
type AlertNotifier interface {
	NotifyConfigIssue(ctx context.Context, tenantID uuid.UUID, event string, cause error)
}

// Generator derives balanced journal entries from upstream business events.
// It is additive by contract: when the tenant has automation disabled, the
// configuration is incomplete, or the posting fails, the originating
// business operation proceeds untouched.
type Generator struct {
	config   ConfigSource
	poster   Poster
	balances BalanceSource
	alerts   AlertNotifier
	logger   *slog.Logger
}

// NewGenerator constructs the auto-entry generator.
func NewGenerator(config ConfigSource, poster Poster, balances BalanceSource, logger *slog.Logger) *Generator {
	return &Generator{config: config, poster: poster, balances: balances, logger: logger}
}

// WithAlerts injects the administrator notifier.
func (g *Generator) WithAlerts(alerts AlertNotifier) {
	g.alerts = alerts
}

// OnSale posts AR (or cash) against revenue and IVA payable for a posted
// invoice; with Cancel set the lines are mirrored.
func (g *Generator) OnSale(ctx context.Context, event SaleEvent) (*journals.JournalEntry, *LedgerPostError) {
	eventName := "invoice sale"
	source := journals.SourceInvoiceSale
	if event.Cancel {
		eventName = "invoice cancel"
		source = journals.SourceInvoiceCancel
	}
	return g.generate(ctx, event.TenantID, eventName, func(cfg mappings.Config) (journals.PostingInput, error) {
		receivableRole := mappings.RoleAccountsReceivable
		if event.PaidOnIssue {
			receivableRole = mappings.RoleCash
		}
		total := event.Subtotal + event.IVAAmount
		lines := []journals.PostingLineInput{
			{AccountID: cfg.AccountFor(receivableRole), Debit: total},
			{AccountID: cfg.AccountFor(mappings.RoleRevenue), Credit: event.Subtotal},
		}
		if event.IVAAmount > 0 {
			lines = append(lines, journals.PostingLineInput{AccountID: cfg.AccountFor(mappings.RoleIVAPayable), Credit: event.IVAAmount})
		}
		if event.Cancel {
			lines = mirror(lines)
		}
		ref := event.InvoiceID
		return journals.PostingInput{
			TenantID:    event.TenantID,
			Date:        event.Date,
			Description: fmt.Sprintf("%s %s", describe(source), event.InvoiceID),
			Source:      source,
			SourceRef:   &ref,
			PostedByID:  event.ActorID,
			Lines:       lines,
		}, nil
	})
}

// OnPaymentReceived moves the receivable into cash or bank.
func (g *Generator) OnPaymentReceived(ctx context.Context, event PaymentEvent) (*journals.JournalEntry, *LedgerPostError) {
	return g.generate(ctx, event.TenantID, "payment received", func(cfg mappings.Config) (journals.PostingInput, error) {
		cashRole := mappings.RoleCash
		if event.ToBank {
			cashRole = mappings.RoleBank
		}
		ref := event.PaymentID
		return journals.PostingInput{
			TenantID:    event.TenantID,
			Date:        event.Date,
			Description: fmt.Sprintf("Payment received %s", event.PaymentID),
			Source:      journals.SourcePaymentReceived,
			SourceRef:   &ref,
			PostedByID:  event.ActorID,
			Lines: []journals.PostingLineInput{
				{AccountID: cfg.AccountFor(cashRole), Debit: event.Amount},
				{AccountID: cfg.AccountFor(mappings.RoleAccountsReceivable), Credit: event.Amount},
			},
		}, nil
	})
}

// OnPurchaseReceived books inventory and deductible IVA against payables.
func (g *Generator) OnPurchaseReceived(ctx context.Context, event PurchaseEvent) (*journals.JournalEntry, *LedgerPostError) {
	return g.generate(ctx, event.TenantID, "purchase received", func(cfg mappings.Config) (journals.PostingInput, error) {
		lines := []journals.PostingLineInput{
			{AccountID: cfg.AccountFor(mappings.RoleInventory), Debit: event.Subtotal},
		}
		if event.IVAAmount > 0 {
			lines = append(lines, journals.PostingLineInput{AccountID: cfg.AccountFor(mappings.RoleIVADeductible), Debit: event.IVAAmount})
		}
		lines = append(lines, journals.PostingLineInput{AccountID: cfg.AccountFor(mappings.RoleAccountsPayable), Credit: event.Subtotal + event.IVAAmount})
		ref := event.ReceiptID
		return journals.PostingInput{
			TenantID:    event.TenantID,
			Date:        event.Date,
			Description: fmt.Sprintf("Purchase received %s", event.ReceiptID),
			Source:      journals.SourcePurchaseReceived,
			SourceRef:   &ref,
			PostedByID:  event.ActorID,
			Lines:       lines,
		}, nil
	})
}

// OnStockAdjustment expenses shrinkage against inventory.
func (g *Generator) OnStockAdjustment(ctx context.Context, event StockAdjustmentEvent) (*journals.JournalEntry, *LedgerPostError) {
	return g.generate(ctx, event.TenantID, "stock adjustment", func(cfg mappings.Config) (journals.PostingInput, error) {
		ref := event.MovementID
		return journals.PostingInput{
			TenantID:    event.TenantID,
			Date:        event.Date,
			Description: fmt.Sprintf("Stock adjustment %s", event.MovementID),
			Source:      journals.SourceStockAdjustment,
			SourceRef:   &ref,
			PostedByID:  event.ActorID,
			Lines: []journals.PostingLineInput{
				{AccountID: cfg.AccountFor(mappings.RoleInventoryAdjustment), Debit: event.Amount},
				{AccountID: cfg.AccountFor(mappings.RoleInventory), Credit: event.Amount},
			},
		}, nil
	})
}

// SweepPeriod zeroes revenue, COGS, and expense balances into retained
// earnings. It runs during CLOSING and, unlike event postings, a failure
// here fails the close: a period must not close with an incomplete sweep.
func (g *Generator) SweepPeriod(ctx context.Context, tenantID uuid.UUID, periodID int64, endDate time.Time, actorID int64) error {
	cfg, err := g.config.Get(ctx, tenantID)
	if err != nil {
		return err
	}
	if !cfg.IsConfigured() {
		return shared.ErrConfigIncomplete
	}
	balances, err := g.balances.PeriodResultBalances(ctx, tenantID, periodID)
	if err != nil {
		return err
	}
	if len(balances) == 0 {
		return nil
	}
	var net float64 // credit-positive result
	lines := make([]journals.PostingLineInput, 0, len(balances)+1)
	for _, b := range balances {
		if b.Net > 0 {
			lines = append(lines, journals.PostingLineInput{AccountID: b.AccountID, Credit: b.Net})
			net -= b.Net
		} else {
			lines = append(lines, journals.PostingLineInput{AccountID: b.AccountID, Debit: -b.Net})
			net += -b.Net
		}
	}
	retained := journals.PostingLineInput{AccountID: cfg.AccountFor(mappings.RoleRetainedEarnings)}
	if net > 0 {
		retained.Credit = net
	} else {
		retained.Debit = -net
	}
	lines = append(lines, retained)
	_, err = g.poster.Post(ctx, journals.PostingInput{
		TenantID:    tenantID,
		PeriodID:    periodID,
		Date:        endDate,
		Description: "Period close: result sweep to retained earnings",
		Source:      journals.SourcePeriodClose,
		PostedByID:  actorID,
		Lines:       lines,
	})
	return err
}

// generate runs the shared skip/post/alert flow around a line builder.
func (g *Generator) generate(ctx context.Context, tenantID uuid.UUID, event string, build func(mappings.Config) (journals.PostingInput, error)) (*journals.JournalEntry, *LedgerPostError) {
	cfg, err := g.config.Get(ctx, tenantID)
	if err != nil {
		g.alert(ctx, tenantID, event, err)
		return nil, wrapLedgerPostError(event, err)
	}
	if !cfg.AutoGenerateEntries || !cfg.IsConfigured() {
		// Automation off or half-configured: skip silently, never block.
		if g.logger != nil {
			g.logger.Debug("auto posting skipped",
				slog.String("event", event),
				slog.Bool("enabled", cfg.AutoGenerateEntries),
				slog.Bool("configured", cfg.IsConfigured()))
		}
		return nil, nil
	}
	input, err := build(cfg)
	if err != nil {
		g.alert(ctx, tenantID, event, err)
		return nil, wrapLedgerPostError(event, err)
	}
	entry, err := g.poster.Post(ctx, input)
	if err != nil {
		g.alert(ctx, tenantID, event, err)
		return nil, wrapLedgerPostError(event, err)
	}
	return &entry, nil
}

func (g *Generator) alert(ctx context.Context, tenantID uuid.UUID, event string, cause error) {
	if g.logger != nil {
		g.logger.Error("auto posting failed",
			slog.String("event", event),
			slog.String("tenant", tenantID.String()),
			slog.Any("error", cause))
	}
	if g.alerts != nil {
		g.alerts.NotifyConfigIssue(ctx, tenantID, event, cause)
	}
}

func mirror(lines []journals.PostingLineInput) []journals.PostingLineInput {
	out := make([]journals.PostingLineInput, 0, len(lines))
	for _, line := range lines {
		out = append(out, journals.PostingLineInput{
			AccountID:    line.AccountID,
			CostCenterID: line.CostCenterID,
			Description:  line.Description,
			Debit:        line.Credit,
			Credit:       line.Debit,
		})
	}
	return out
}

func describe(source journals.EntrySource) string {
	switch source {
	case journals.SourceInvoiceSale:
		return "Invoice"
	case journals.SourceInvoiceCancel:
		return "Invoice cancellation"
	default:
		return string(source)
	}
}
