package accounts

import (
	"time"

	"github.com/google/uuid"

	"github.com/andes-erp/andes-erp/internal/accounting/shared"
)

// AccountType enumerates CoA categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
	AccountTypeCOGS      AccountType = "COGS"
)

// AccountNature indicates which side increases the account balance.
type AccountNature string

const (
	NatureDebit  AccountNature = "DEBIT"
	NatureCredit AccountNature = "CREDIT"
)

// Account models a chart of accounts node. Level is always derived from the
// code length, never stored independently of it.
type Account struct {
	ID              int64
	TenantID        uuid.UUID
	Code            string
	Name            string
	Description     string
	Type            AccountType
	Nature          AccountNature
	ParentID        *int64
	Level           int
	IsActive        bool
	IsSystemAccount bool
	IsBankAccount   bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LevelForCode maps PUC code lengths to hierarchy levels:
// 1 digit = class, 2 = group, 4 = account, 6 = subaccount.
func LevelForCode(code string) (int, error) {
	for _, r := range code {
		if r < '0' || r > '9' {
			return 0, shared.ErrInvalidCodeLength
		}
	}
	switch len(code) {
	case 1:
		return 1, nil
	case 2:
		return 2, nil
	case 4:
		return 3, nil
	case 6:
		return 4, nil
	default:
		return 0, shared.ErrInvalidCodeLength
	}
}
