package reports

import "time"

// Movement is one posted journal line affecting an account.
type Movement struct {
	Date        time.Time `json:"date"`
	EntryNumber int64     `json:"entryNumber"`
	Description string    `json:"description"`
	Debit       float64   `json:"debit"`
	Credit      float64   `json:"credit"`
}

// LedgerMovement is a movement with its running balance.
type LedgerMovement struct {
	Movement
	Balance float64 `json:"balance"`
}

// GeneralLedgerAccount is the per-account section of the general ledger.
type GeneralLedgerAccount struct {
	Code      string           `json:"code"`
	Name      string           `json:"name"`
	Nature    string           `json:"nature"`
	Opening   float64          `json:"opening"`
	Movements []LedgerMovement `json:"movements"`
	Closing   float64          `json:"closing"`
}

// BuildLedgerAccount threads a running balance through chronologically
// ordered movements, seeded from the opening balance (all movement strictly
// before the report range).
func BuildLedgerAccount(code, name, nature string, opening float64, movements []Movement) GeneralLedgerAccount {
	out := GeneralLedgerAccount{
		Code:      code,
		Name:      name,
		Nature:    nature,
		Opening:   opening,
		Movements: make([]LedgerMovement, 0, len(movements)),
	}
	balance := opening
	for _, mov := range movements {
		if nature == "CREDIT" {
			balance += mov.Credit - mov.Debit
		} else {
			balance += mov.Debit - mov.Credit
		}
		out.Movements = append(out.Movements, LedgerMovement{Movement: mov, Balance: balance})
	}
	out.Closing = balance
	return out
}
