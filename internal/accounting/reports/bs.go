package reports

import "sort"

// BalanceSheetRow summarises an account for assets, liabilities, or equity.
type BalanceSheetRow struct {
	Code    string  `json:"code"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

// BalanceSheetSection contains the accounts and total for a classification.
type BalanceSheetSection struct {
	Label    string            `json:"label"`
	Accounts []BalanceSheetRow `json:"accounts"`
	Total    float64           `json:"total"`
}

// BalanceSheet is the structured response for the balance sheet report.
// Balanced false means an unbalanced entry bypassed the journal engine,
// a fatal integrity condition surfaced to the caller, never hidden.
type BalanceSheet struct {
	Assets                    BalanceSheetSection `json:"assets"`
	Liabilities               BalanceSheetSection `json:"liabilities"`
	Equity                    BalanceSheetSection `json:"equity"`
	NetIncome                 float64             `json:"netIncome"`
	TotalAssets               float64             `json:"totalAssets"`
	TotalLiabilitiesAndEquity float64             `json:"totalLiabilitiesAndEquity"`
	Balanced                  bool                `json:"balanced"`
}

// BuildBalanceSheet aggregates closing balances into the balance sheet at a
// point in time. Result-period net income (revenue - cogs - expenses not yet
// swept by a period close) is folded into equity so the equation holds
// mid-period.
func BuildBalanceSheet(accounts []AccountBalance) BalanceSheet {
	assets := BalanceSheetSection{Label: "Assets"}
	liabilities := BalanceSheetSection{Label: "Liabilities"}
	equity := BalanceSheetSection{Label: "Equity"}
	var netIncome float64

	for _, acc := range accounts {
		balance := acc.Closing()
		row := BalanceSheetRow{Code: acc.Code, Name: acc.Name, Balance: balance}
		switch acc.Type {
		case "ASSET":
			if balance == 0 {
				continue
			}
			assets.Accounts = append(assets.Accounts, row)
			assets.Total += balance
		case "LIABILITY":
			if balance == 0 {
				continue
			}
			liabilities.Accounts = append(liabilities.Accounts, row)
			liabilities.Total += balance
		case "EQUITY":
			if balance == 0 {
				continue
			}
			equity.Accounts = append(equity.Accounts, row)
			equity.Total += balance
		case "REVENUE":
			netIncome += balance
		case "EXPENSE", "COGS":
			netIncome -= balance
		}
	}

	sortRows := func(rows []BalanceSheetRow) {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Code < rows[j].Code })
	}
	sortRows(assets.Accounts)
	sortRows(liabilities.Accounts)
	sortRows(equity.Accounts)

	totalLE := liabilities.Total + equity.Total + netIncome
	return BalanceSheet{
		Assets:                    assets,
		Liabilities:               liabilities,
		Equity:                    equity,
		NetIncome:                 netIncome,
		TotalAssets:               assets.Total,
		TotalLiabilitiesAndEquity: totalLE,
		Balanced:                  EqualCents(assets.Total, totalLE),
	}
}
