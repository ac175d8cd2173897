package accounts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/andes-erp/andes-erp/internal/accounting/shared"
)

type stubRepo struct {
	accounts map[int64]Account
	nextID   int64
	codes    map[string]bool
	children map[int64]bool
	inUse    map[int64]bool
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		accounts: make(map[int64]Account),
		codes:    make(map[string]bool),
		children: make(map[int64]bool),
		inUse:    make(map[int64]bool),
	}
}

func (r *stubRepo) List(ctx context.Context, tenantID uuid.UUID) ([]Account, error) {
	var out []Account
	for _, a := range r.accounts {
		out = append(out, a)
	}
	return out, nil
}

func (r *stubRepo) Get(ctx context.Context, tenantID uuid.UUID, id int64) (Account, error) {
	a, ok := r.accounts[id]
	if !ok {
		return Account{}, shared.ErrAccountNotFound
	}
	return a, nil
}

func (r *stubRepo) Insert(ctx context.Context, acc Account) (Account, error) {
	if r.codes[acc.Code] {
		return Account{}, shared.ErrDuplicateCode
	}
	r.nextID++
	acc.ID = r.nextID
	acc.IsActive = true
	r.accounts[acc.ID] = acc
	r.codes[acc.Code] = true
	return acc, nil
}

func (r *stubRepo) Update(ctx context.Context, acc Account) (Account, error) {
	if _, ok := r.accounts[acc.ID]; !ok {
		return Account{}, shared.ErrAccountNotFound
	}
	r.accounts[acc.ID] = acc
	return acc, nil
}

func (r *stubRepo) SetActive(ctx context.Context, tenantID uuid.UUID, id int64, active bool) error {
	a, ok := r.accounts[id]
	if !ok {
		return shared.ErrAccountNotFound
	}
	a.IsActive = active
	r.accounts[id] = a
	return nil
}

func (r *stubRepo) HasActiveChildren(ctx context.Context, tenantID uuid.UUID, id int64) (bool, error) {
	return r.children[id], nil
}

func (r *stubRepo) HasPostedLinesInOpenPeriod(ctx context.Context, tenantID uuid.UUID, id int64) (bool, error) {
	return r.inUse[id], nil
}

func TestLevelForCode(t *testing.T) {
	cases := []struct {
		code  string
		level int
		ok    bool
	}{
		{"1", 1, true},
		{"4", 1, true},
		{"11", 2, true},
		{"1105", 3, true},
		{"110505", 4, true},
		{"", 0, false},
		{"110", 0, false},
		{"11050", 0, false},
		{"1105051", 0, false},
		{"11a0", 0, false},
	}
	for _, tc := range cases {
		level, err := LevelForCode(tc.code)
		if !tc.ok {
			require.ErrorIs(t, err, shared.ErrInvalidCodeLength, "code %q", tc.code)
			continue
		}
		require.NoError(t, err, "code %q", tc.code)
		require.Equal(t, tc.level, level, "code %q", tc.code)
	}
}

func TestCreateDerivesLevelAndChecksParent(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil)
	tenant := uuid.New()

	class, err := svc.Create(context.Background(), CreateInput{
		TenantID: tenant,
		Code:     "1",
		Name:     "Activo",
		Type:     AccountTypeAsset,
		Nature:   NatureDebit,
	})
	require.NoError(t, err)
	require.Equal(t, 1, class.Level)

	group, err := svc.Create(context.Background(), CreateInput{
		TenantID: tenant,
		Code:     "11",
		Name:     "Disponible",
		Type:     AccountTypeAsset,
		Nature:   NatureDebit,
		ParentID: &class.ID,
	})
	require.NoError(t, err)
	require.Equal(t, 2, group.Level)

	// A parent must sit above its child in the hierarchy.
	_, err = svc.Create(context.Background(), CreateInput{
		TenantID: tenant,
		Code:     "12",
		Name:     "Inversiones",
		Type:     AccountTypeAsset,
		Nature:   NatureDebit,
		ParentID: &group.ID,
	})
	require.ErrorIs(t, err, shared.ErrInvalidStatus)
}

func TestCreateDuplicateCode(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil)
	tenant := uuid.New()

	_, err := svc.Create(context.Background(), CreateInput{
		TenantID: tenant, Code: "1105", Name: "Caja", Type: AccountTypeAsset, Nature: NatureDebit,
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInput{
		TenantID: tenant, Code: "1105", Name: "Caja dos", Type: AccountTypeAsset, Nature: NatureDebit,
	})
	require.ErrorIs(t, err, shared.ErrDuplicateCode)
}

func TestUpdateRefusesSystemAccount(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil)
	tenant := uuid.New()

	acc, err := repo.Insert(context.Background(), Account{
		TenantID: tenant, Code: "110505", Name: "Caja general",
		Type: AccountTypeAsset, Nature: NatureDebit, Level: 4, IsSystemAccount: true,
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), UpdateInput{TenantID: tenant, ID: acc.ID, Name: "Renamed"})
	require.ErrorIs(t, err, shared.ErrSystemAccount)
}

func TestDeactivateGuards(t *testing.T) {
	repo := newStubRepo()
	svc := NewService(repo, nil)
	tenant := uuid.New()

	parent, err := repo.Insert(context.Background(), Account{
		TenantID: tenant, Code: "11", Name: "Disponible", Type: AccountTypeAsset, Nature: NatureDebit, Level: 2,
	})
	require.NoError(t, err)
	used, err := repo.Insert(context.Background(), Account{
		TenantID: tenant, Code: "1110", Name: "Bancos", Type: AccountTypeAsset, Nature: NatureDebit, Level: 3,
	})
	require.NoError(t, err)
	system, err := repo.Insert(context.Background(), Account{
		TenantID: tenant, Code: "240805", Name: "IVA generado",
		Type: AccountTypeLiability, Nature: NatureCredit, Level: 4, IsSystemAccount: true,
	})
	require.NoError(t, err)
	idle, err := repo.Insert(context.Background(), Account{
		TenantID: tenant, Code: "510506", Name: "Sueldos", Type: AccountTypeExpense, Nature: NatureDebit, Level: 4,
	})
	require.NoError(t, err)

	repo.children[parent.ID] = true
	repo.inUse[used.ID] = true

	require.ErrorIs(t, svc.Deactivate(context.Background(), tenant, parent.ID, 1), shared.ErrAccountHasChildren)
	require.ErrorIs(t, svc.Deactivate(context.Background(), tenant, used.ID, 1), shared.ErrAccountInUse)
	require.ErrorIs(t, svc.Deactivate(context.Background(), tenant, system.ID, 1), shared.ErrSystemAccount)

	require.NoError(t, svc.Deactivate(context.Background(), tenant, idle.ID, 1))
	got, err := repo.Get(context.Background(), tenant, idle.ID)
	require.NoError(t, err)
	require.False(t, got.IsActive)
}

func TestBuildTree(t *testing.T) {
	tenant := uuid.New()
	one := int64(1)
	two := int64(2)
	flat := []Account{
		{ID: 2, TenantID: tenant, Code: "11", Name: "Disponible", ParentID: &one},
		{ID: 1, TenantID: tenant, Code: "1", Name: "Activo"},
		{ID: 4, TenantID: tenant, Code: "2", Name: "Pasivo"},
		{ID: 3, TenantID: tenant, Code: "1105", Name: "Caja", ParentID: &two},
	}

	tree := BuildTree(flat)
	require.Len(t, tree, 2)
	require.Equal(t, "1", tree[0].Code)
	require.Equal(t, "2", tree[1].Code)
	require.Len(t, tree[0].Children, 1)
	require.Equal(t, "11", tree[0].Children[0].Code)
	require.Len(t, tree[0].Children[0].Children, 1)
	require.Equal(t, "1105", tree[0].Children[0].Children[0].Code)
}
