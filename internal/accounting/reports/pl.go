package reports

import "sort"

// IncomeStatementRow represents a revenue, COGS, or expense account summary.
type IncomeStatementRow struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// IncomeStatementSection groups accounts by nature.
type IncomeStatementSection struct {
	Label    string               `json:"label"`
	Accounts []IncomeStatementRow `json:"accounts"`
	Total    float64              `json:"total"`
}

// IncomeStatement contains the structured output for the report:
// revenue - cogs = gross profit; gross profit - expenses = net income.
type IncomeStatement struct {
	Revenue     IncomeStatementSection `json:"revenue"`
	COGS        IncomeStatementSection `json:"cogs"`
	Expenses    IncomeStatementSection `json:"expenses"`
	GrossProfit float64                `json:"grossProfit"`
	NetIncome   float64                `json:"netIncome"`
}

// BuildIncomeStatement aggregates range movement into the income statement.
// Only movement inside the range counts; openings are ignored.
func BuildIncomeStatement(accounts []AccountBalance) IncomeStatement {
	revenue := IncomeStatementSection{Label: "Revenue"}
	cogs := IncomeStatementSection{Label: "Cost of Goods Sold"}
	expenses := IncomeStatementSection{Label: "Expenses"}

	for _, acc := range accounts {
		switch acc.Type {
		case "REVENUE":
			amount := acc.Credit - acc.Debit
			if amount == 0 {
				continue
			}
			revenue.Accounts = append(revenue.Accounts, IncomeStatementRow{Code: acc.Code, Name: acc.Name, Amount: amount})
			revenue.Total += amount
		case "COGS":
			amount := acc.Debit - acc.Credit
			if amount == 0 {
				continue
			}
			cogs.Accounts = append(cogs.Accounts, IncomeStatementRow{Code: acc.Code, Name: acc.Name, Amount: amount})
			cogs.Total += amount
		case "EXPENSE":
			amount := acc.Debit - acc.Credit
			if amount == 0 {
				continue
			}
			expenses.Accounts = append(expenses.Accounts, IncomeStatementRow{Code: acc.Code, Name: acc.Name, Amount: amount})
			expenses.Total += amount
		}
	}

	sortRows := func(rows []IncomeStatementRow) {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Code < rows[j].Code })
	}
	sortRows(revenue.Accounts)
	sortRows(cogs.Accounts)
	sortRows(expenses.Accounts)

	grossProfit := revenue.Total - cogs.Total
	return IncomeStatement{
		Revenue:     revenue,
		COGS:        cogs,
		Expenses:    expenses,
		GrossProfit: grossProfit,
		NetIncome:   grossProfit - expenses.Total,
	}
}
