package mappings

import (
	"time"

	"github.com/google/uuid"
)

// SystemRole names a ledger account slot the automation depends on.
type SystemRole string

const (
	RoleCash                SystemRole = "CASH"
	RoleBank                SystemRole = "BANK"
	RoleAccountsReceivable  SystemRole = "ACCOUNTS_RECEIVABLE"
	RoleInventory           SystemRole = "INVENTORY"
	RoleAccountsPayable     SystemRole = "ACCOUNTS_PAYABLE"
	RoleIVAPayable          SystemRole = "IVA_PAYABLE"
	RoleIVADeductible       SystemRole = "IVA_DEDUCTIBLE"
	RoleRevenue             SystemRole = "REVENUE"
	RoleCOGS                SystemRole = "COGS"
	RoleInventoryAdjustment SystemRole = "INVENTORY_ADJUSTMENT"
	RoleWithholdingReceived SystemRole = "WITHHOLDING_RECEIVED"
	RoleWithholdingPayable  SystemRole = "WITHHOLDING_PAYABLE"
	RoleRetainedEarnings    SystemRole = "RETAINED_EARNINGS"
)

// RequiredRoles are the slots that must all be mapped before the generator
// considers the tenant configured.
var RequiredRoles = []SystemRole{
	RoleCash,
	RoleBank,
	RoleAccountsReceivable,
	RoleInventory,
	RoleAccountsPayable,
	RoleIVAPayable,
	RoleIVADeductible,
	RoleRevenue,
	RoleCOGS,
	RoleInventoryAdjustment,
	RoleWithholdingReceived,
	RoleWithholdingPayable,
	RoleRetainedEarnings,
}

// Config is the per-tenant mapping of system roles to ledger accounts.
type Config struct {
	TenantID            uuid.UUID
	Accounts            map[SystemRole]int64
	AutoGenerateEntries bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsConfigured reports whether every required role has a mapped account.
// Derived, never stored.
func (c Config) IsConfigured() bool {
	for _, role := range RequiredRoles {
		if c.Accounts[role] == 0 {
			return false
		}
	}
	return true
}

// AccountFor returns the mapped account id for a role, zero when unmapped.
func (c Config) AccountFor(role SystemRole) int64 {
	return c.Accounts[role]
}
