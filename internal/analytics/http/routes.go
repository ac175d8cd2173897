package http

import "github.com/go-chi/chi/v5"

// MountRoutes attaches the report endpoints under the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/trial-balance", h.TrialBalance)
	r.Get("/general-ledger", h.GeneralLedger)
	r.Get("/balance-sheet", h.BalanceSheet)
	r.Get("/income-statement", h.IncomeStatement)
	r.Get("/cash-flow", h.Cashflow)
	r.Get("/ar-aging", h.ARAging)
	r.Get("/ap-aging", h.APAging)
	r.Get("/iva", h.IVA)
	r.Get("/withholdings", h.Withholdings)
}
