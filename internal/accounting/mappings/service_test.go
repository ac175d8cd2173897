package mappings

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/andes-erp/andes-erp/internal/accounting/accounts"
	"github.com/andes-erp/andes-erp/internal/accounting/shared"
)

type stubConfigRepo struct {
	stored map[uuid.UUID]Config
}

func (r *stubConfigRepo) Get(ctx context.Context, tenantID uuid.UUID) (Config, error) {
	cfg, ok := r.stored[tenantID]
	if !ok {
		return Config{}, shared.ErrConfigNotFound
	}
	return cfg, nil
}

func (r *stubConfigRepo) Upsert(ctx context.Context, cfg Config) (Config, error) {
	if r.stored == nil {
		r.stored = make(map[uuid.UUID]Config)
	}
	r.stored[cfg.TenantID] = cfg
	return cfg, nil
}

type stubLookup struct {
	accounts map[int64]accounts.Account
	children map[int64]bool
}

func (l *stubLookup) Get(ctx context.Context, tenantID uuid.UUID, id int64) (accounts.Account, error) {
	acc, ok := l.accounts[id]
	if !ok {
		return accounts.Account{}, shared.ErrAccountNotFound
	}
	return acc, nil
}

func (l *stubLookup) HasActiveChildren(ctx context.Context, tenantID uuid.UUID, id int64) (bool, error) {
	return l.children[id], nil
}

func fullMapping() map[SystemRole]int64 {
	out := make(map[SystemRole]int64, len(RequiredRoles))
	for i, role := range RequiredRoles {
		out[role] = int64(i + 1)
	}
	return out
}

func TestIsConfigured(t *testing.T) {
	cfg := Config{Accounts: fullMapping()}
	require.True(t, cfg.IsConfigured())

	delete(cfg.Accounts, RoleRetainedEarnings)
	require.False(t, cfg.IsConfigured())

	require.False(t, Config{}.IsConfigured())
}

func TestGetReturnsEmptyConfigForNewTenant(t *testing.T) {
	svc := NewService(&stubConfigRepo{}, &stubLookup{})
	tenant := uuid.New()

	cfg, err := svc.Get(context.Background(), tenant)
	require.NoError(t, err)
	require.Equal(t, tenant, cfg.TenantID)
	require.False(t, cfg.IsConfigured())
	require.False(t, cfg.AutoGenerateEntries)
}

func TestUpdateValidatesAccounts(t *testing.T) {
	lookup := &stubLookup{accounts: map[int64]accounts.Account{}}
	for i := range RequiredRoles {
		id := int64(i + 1)
		lookup.accounts[id] = accounts.Account{ID: id, IsActive: true}
	}
	repo := &stubConfigRepo{}
	svc := NewService(repo, lookup)
	tenant := uuid.New()

	cfg, err := svc.Update(context.Background(), Config{
		TenantID:            tenant,
		Accounts:            fullMapping(),
		AutoGenerateEntries: true,
	})
	require.NoError(t, err)
	require.True(t, cfg.IsConfigured())

	missing := fullMapping()
	missing[RoleCash] = 999
	_, err = svc.Update(context.Background(), Config{TenantID: tenant, Accounts: missing})
	require.ErrorIs(t, err, shared.ErrAccountNotFound)

	inactive := fullMapping()
	lookup.accounts[42] = accounts.Account{ID: 42, IsActive: false}
	inactive[RoleBank] = 42
	_, err = svc.Update(context.Background(), Config{TenantID: tenant, Accounts: inactive})
	require.ErrorIs(t, err, shared.ErrAccountInactive)
}

func TestUpdateRejectsRollupAccounts(t *testing.T) {
	lookup := &stubLookup{accounts: map[int64]accounts.Account{}, children: map[int64]bool{}}
	for i := range RequiredRoles {
		id := int64(i + 1)
		lookup.accounts[id] = accounts.Account{ID: id, IsActive: true}
	}
	// Code 11 is a group account with children; mapping it would make every
	// generated entry fail with a non-leaf error later.
	lookup.accounts[50] = accounts.Account{ID: 50, Code: "11", IsActive: true}
	lookup.children[50] = true

	svc := NewService(&stubConfigRepo{}, lookup)
	rollup := fullMapping()
	rollup[RoleRevenue] = 50
	_, err := svc.Update(context.Background(), Config{TenantID: uuid.New(), Accounts: rollup})
	require.ErrorIs(t, err, shared.ErrNonLeafAccount)
}
