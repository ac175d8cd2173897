package analytics

import "time"

// CashflowAccount is one cash or bank account's activity in the range.
type CashflowAccount struct {
	Code    string  `json:"code"`
	Name    string  `json:"name"`
	Opening float64 `json:"opening"`
	Inflow  float64 `json:"inflow"`
	Outflow float64 `json:"outflow"`
	Closing float64 `json:"closing"`
}

// CashflowReport aggregates movement over cash and bank accounts. Cash
// accounts carry debit nature, so debits are inflows and credits outflows.
type CashflowReport struct {
	From     time.Time         `json:"from"`
	To       time.Time         `json:"to"`
	Opening  float64           `json:"opening"`
	Inflow   float64           `json:"inflow"`
	Outflow  float64           `json:"outflow"`
	Closing  float64           `json:"closing"`
	Accounts []CashflowAccount `json:"accounts"`
}

// BuildCashflow folds per-account cash balances into the report.
func BuildCashflow(from, to time.Time, rows []BalanceRow) CashflowReport {
	report := CashflowReport{From: from, To: to, Accounts: make([]CashflowAccount, 0, len(rows))}
	for _, row := range rows {
		acc := CashflowAccount{
			Code:    row.Code,
			Name:    row.Name,
			Opening: row.OpeningNet,
			Inflow:  row.Debit,
			Outflow: row.Credit,
		}
		acc.Closing = acc.Opening + acc.Inflow - acc.Outflow
		report.Accounts = append(report.Accounts, acc)
		report.Opening += acc.Opening
		report.Inflow += acc.Inflow
		report.Outflow += acc.Outflow
	}
	report.Closing = report.Opening + report.Inflow - report.Outflow
	return report
}
