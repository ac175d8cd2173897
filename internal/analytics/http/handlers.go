package http

import (
	"log/slog"
	"net/http"
	"time"

	acctshared "github.com/andes-erp/andes-erp/internal/accounting/shared"
	"github.com/andes-erp/andes-erp/internal/analytics"
	"github.com/andes-erp/andes-erp/internal/shared"
)

// Handler serves the read-only report endpoints.
type Handler struct {
	logger  *slog.Logger
	service *analytics.Service
	now     func() time.Time
}

// NewHandler constructs the report handler.
func NewHandler(logger *slog.Logger, service *analytics.Service) *Handler {
	return &Handler{logger: logger, service: service, now: time.Now}
}

// parseDay reads a YYYY-MM-DD query parameter, falling back when absent.
func parseDay(r *http.Request, name string, fallback time.Time) (time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// rangeParams resolves from/to, defaulting to the current month to date.
func (h *Handler) rangeParams(r *http.Request) (time.Time, time.Time, bool) {
	today := h.now().UTC().Truncate(24 * time.Hour)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	from, ok := parseDay(r, "from", monthStart)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	to, ok := parseDay(r, "to", today)
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func (h *Handler) respondErr(w http.ResponseWriter, op string, err error) {
	status := acctshared.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(op, slog.Any("error", err))
		shared.RespondError(w, status, http.StatusText(status))
		return
	}
	shared.RespondError(w, status, err.Error())
}

func (h *Handler) TrialBalance(w http.ResponseWriter, r *http.Request) {
	tenantID := shared.TenantFromContext(r.Context())
	to, ok := parseDay(r, "to", h.now().UTC().Truncate(24*time.Hour))
	if !ok {
		shared.RespondError(w, http.StatusUnprocessableEntity, "invalid to date")
		return
	}
	var from *time.Time
	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			shared.RespondError(w, http.StatusUnprocessableEntity, "invalid from date")
			return
		}
		from = &parsed
	}
	report, err := h.service.TrialBalance(r.Context(), tenantID, from, to)
	if err != nil {
		h.respondErr(w, "trial balance report", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, report)
}

func (h *Handler) GeneralLedger(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.rangeParams(r)
	if !ok {
		shared.RespondError(w, http.StatusUnprocessableEntity, "invalid date range")
		return
	}
	report, err := h.service.GeneralLedger(r.Context(), shared.TenantFromContext(r.Context()), from, to)
	if err != nil {
		h.respondErr(w, "general ledger report", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, report)
}

func (h *Handler) BalanceSheet(w http.ResponseWriter, r *http.Request) {
	asOf, ok := parseDay(r, "asOf", h.now().UTC().Truncate(24*time.Hour))
	if !ok {
		shared.RespondError(w, http.StatusUnprocessableEntity, "invalid asOf date")
		return
	}
	report, err := h.service.BalanceSheet(r.Context(), shared.TenantFromContext(r.Context()), asOf)
	if err != nil {
		h.respondErr(w, "balance sheet report", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, report)
}

func (h *Handler) IncomeStatement(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.rangeParams(r)
	if !ok {
		shared.RespondError(w, http.StatusUnprocessableEntity, "invalid date range")
		return
	}
	report, err := h.service.IncomeStatement(r.Context(), shared.TenantFromContext(r.Context()), from, to)
	if err != nil {
		h.respondErr(w, "income statement report", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, report)
}

func (h *Handler) Cashflow(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.rangeParams(r)
	if !ok {
		shared.RespondError(w, http.StatusUnprocessableEntity, "invalid date range")
		return
	}
	report, err := h.service.Cashflow(r.Context(), shared.TenantFromContext(r.Context()), from, to)
	if err != nil {
		h.respondErr(w, "cash flow report", err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, report)
}

func (h *Handler) aging(w http.ResponseWriter, r *http.Request,
	fetch func(*http.Request, time.Time) (analytics.AgingReport, error), op string) {
	asOf, ok := parseDay(r, "asOf", h.now().UTC().Truncate(24*time.Hour))
	if !ok {
		shared.RespondError(w, http.StatusUnprocessableEntity, "invalid asOf date")
		return
	}
	report, err := fetch(r, asOf)
	if err != nil {
		h.respondErr(w, op, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, report)
}

func (h *Handler) ARAging(w http.ResponseWriter, r *http.Request) {
	h.aging(w, r, func(r *http.Request, asOf time.Time) (analytics.AgingReport, error) {
		return h.service.ARAging(r.Context(), shared.TenantFromContext(r.Context()), asOf)
	}, "ar aging report")
}

func (h *Handler) APAging(w http.ResponseWriter, r *http.Request) {
	h.aging(w, r, func(r *http.Request, asOf time.Time) (analytics.AgingReport, error) {
		return h.service.APAging(r.Context(), shared.TenantFromContext(r.Context()), asOf)
	}, "ap aging report")
}

func (h *Handler) tax(w http.ResponseWriter, r *http.Request, kind, op string) {
	from, to, ok := h.rangeParams(r)
	if !ok {
		shared.RespondError(w, http.StatusUnprocessableEntity, "invalid date range")
		return
	}
	report, err := h.service.TaxSummary(r.Context(), shared.TenantFromContext(r.Context()), kind, from, to)
	if err != nil {
		h.respondErr(w, op, err)
		return
	}
	shared.RespondJSON(w, http.StatusOK, report)
}

func (h *Handler) IVA(w http.ResponseWriter, r *http.Request) {
	h.tax(w, r, analytics.TaxKindIVA, "iva report")
}

func (h *Handler) Withholdings(w http.ResponseWriter, r *http.Request) {
	h.tax(w, r, analytics.TaxKindWithholding, "withholding report")
}
