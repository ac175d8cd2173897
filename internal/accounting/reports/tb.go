package reports

import (
	"fmt"
	"sort"
)

// AccountBalance models a ledger account with aggregated POSTED movement.
// Opening is the net balance strictly before the report range; Debit and
// Credit are the movement totals inside the range.
type AccountBalance struct {
	Code    string
	Name    string
	Type    string
	Nature  string
	Opening float64
	Debit   float64
	Credit  float64
}

// Closing computes the closing balance in the account's natural sign.
func (a AccountBalance) Closing() float64 {
	if a.Nature == "CREDIT" {
		return a.Opening + a.Credit - a.Debit
	}
	return a.Opening + a.Debit - a.Credit
}

// GroupKey returns the class digit used for grouping trial balance rows.
func (a AccountBalance) GroupKey() string {
	if len(a.Code) == 0 {
		return a.Code
	}
	return a.Code[:1]
}

// TrialBalanceRow represents one account inside a trial balance group.
type TrialBalanceRow struct {
	Code    string  `json:"code"`
	Name    string  `json:"name"`
	Opening float64 `json:"opening"`
	Debit   float64 `json:"debit"`
	Credit  float64 `json:"credit"`
	Closing float64 `json:"closing"`
}

// TrialBalanceGroup aggregates accounts under one class.
type TrialBalanceGroup struct {
	Key      string            `json:"key"`
	Accounts []TrialBalanceRow `json:"accounts"`
	Debit    float64           `json:"debit"`
	Credit   float64           `json:"credit"`
}

// TrialBalance is the structured report payload. When the grand totals
// disagree Balanced is false and Imbalance carries the difference; callers
// treat that as a data-integrity alarm, not a rendering detail.
type TrialBalance struct {
	Groups      []TrialBalanceGroup `json:"groups"`
	TotalDebit  float64             `json:"totalDebit"`
	TotalCredit float64             `json:"totalCredit"`
	Balanced    bool                `json:"balanced"`
	Imbalance   float64             `json:"imbalance"`
}

// BuildTrialBalance converts account balances into the grouped trial balance.
func BuildTrialBalance(accounts []AccountBalance) TrialBalance {
	groups := make(map[string]*TrialBalanceGroup)
	keys := make([]string, 0)
	for _, acc := range accounts {
		if acc.Debit == 0 && acc.Credit == 0 && acc.Opening == 0 {
			continue
		}
		key := acc.GroupKey()
		grp, ok := groups[key]
		if !ok {
			grp = &TrialBalanceGroup{Key: key}
			groups[key] = grp
			keys = append(keys, key)
		}
		row := TrialBalanceRow{
			Code:    acc.Code,
			Name:    acc.Name,
			Opening: acc.Opening,
			Debit:   acc.Debit,
			Credit:  acc.Credit,
			Closing: acc.Closing(),
		}
		grp.Accounts = append(grp.Accounts, row)
		grp.Debit += row.Debit
		grp.Credit += row.Credit
	}

	sort.Strings(keys)
	result := TrialBalance{}
	for _, key := range keys {
		grp := groups[key]
		sort.Slice(grp.Accounts, func(i, j int) bool {
			return grp.Accounts[i].Code < grp.Accounts[j].Code
		})
		result.Groups = append(result.Groups, *grp)
		result.TotalDebit += grp.Debit
		result.TotalCredit += grp.Credit
	}
	result.Balanced = EqualCents(result.TotalDebit, result.TotalCredit)
	if !result.Balanced {
		result.Imbalance = result.TotalDebit - result.TotalCredit
	}
	return result
}

// EqualCents compares two amounts at cent precision.
func EqualCents(a, b float64) bool {
	return fmt.Sprintf("%.2f", a) == fmt.Sprintf("%.2f", b)
}
