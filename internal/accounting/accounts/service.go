package accounts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/andes-erp/andes-erp/internal/accounting/shared"
	internalShared "github.com/andes-erp/andes-erp/internal/shared"
)

// AuditPort records account lifecycle events.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// Service manages the chart of accounts.
type Service struct {
	repo  Repository
	audit AuditPort
	now   func() time.Time
}

// NewService constructs the registry service.
func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreateInput carries the fields required to open a new account.
type CreateInput struct {
	TenantID      uuid.UUID
	Code          string
	Name          string
	Description   string
	Type          AccountType
	Nature        AccountNature
	ParentID      *int64
	IsBankAccount bool
	ActorID       int64
}

// Create validates and inserts a new chart of accounts node.
func (s *Service) Create(ctx context.Context, in CreateInput) (Account, error) {
	if in.TenantID == uuid.Nil {
		return Account{}, internalShared.ErrTenantMissing
	}
	if strings.TrimSpace(in.Name) == "" {
		return Account{}, fmt.Errorf("accounts: name required")
	}
	level, err := LevelForCode(in.Code)
	if err != nil {
		return Account{}, err
	}
	if in.ParentID != nil {
		parent, err := s.repo.Get(ctx, in.TenantID, *in.ParentID)
		if err != nil {
			return Account{}, err
		}
		if parent.Level >= level {
			return Account{}, fmt.Errorf("accounts: parent level %d must be lower than %d: %w", parent.Level, level, shared.ErrInvalidStatus)
		}
	}
	acc, err := s.repo.Insert(ctx, Account{
		TenantID:      in.TenantID,
		Code:          in.Code,
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		Type:          in.Type,
		Nature:        in.Nature,
		ParentID:      in.ParentID,
		Level:         level,
		IsBankAccount: in.IsBankAccount,
	})
	if err != nil {
		return Account{}, err
	}
	s.record(ctx, in.TenantID, in.ActorID, "account.create", acc.ID, map[string]any{"code": acc.Code})
	return acc, nil
}

// UpdateInput carries mutable account fields. Code, type, and nature are
// immutable once created; changing them would rewrite posted history.
type UpdateInput struct {
	TenantID      uuid.UUID
	ID            int64
	Name          string
	Description   string
	IsBankAccount bool
	ActorID       int64
}

// Update changes the mutable fields of an account.
func (s *Service) Update(ctx context.Context, in UpdateInput) (Account, error) {
	current, err := s.repo.Get(ctx, in.TenantID, in.ID)
	if err != nil {
		return Account{}, err
	}
	if current.IsSystemAccount {
		return Account{}, shared.ErrSystemAccount
	}
	if strings.TrimSpace(in.Name) == "" {
		return Account{}, fmt.Errorf("accounts: name required")
	}
	current.Name = strings.TrimSpace(in.Name)
	current.Description = in.Description
	current.IsBankAccount = in.IsBankAccount
	updated, err := s.repo.Update(ctx, current)
	if err != nil {
		return Account{}, err
	}
	s.record(ctx, in.TenantID, in.ActorID, "account.update", updated.ID, nil)
	return updated, nil
}

// Deactivate soft-deletes an account. Accounts referenced by posted lines are
// never hard-deleted; deactivation is refused while the account still has
// active children or postings inside an open period.
func (s *Service) Deactivate(ctx context.Context, tenantID uuid.UUID, id, actorID int64) error {
	acc, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if acc.IsSystemAccount {
		return shared.ErrSystemAccount
	}
	hasChildren, err := s.repo.HasActiveChildren(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if hasChildren {
		return shared.ErrAccountHasChildren
	}
	inUse, err := s.repo.HasPostedLinesInOpenPeriod(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if inUse {
		return shared.ErrAccountInUse
	}
	if err := s.repo.SetActive(ctx, tenantID, id, false); err != nil {
		return err
	}
	s.record(ctx, tenantID, actorID, "account.deactivate", id, map[string]any{"code": acc.Code})
	return nil
}

// List returns the flat tenant chart of accounts ordered by code.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]Account, error) {
	return s.repo.List(ctx, tenantID)
}

// Get loads one account.
func (s *Service) Get(ctx context.Context, tenantID uuid.UUID, id int64) (Account, error) {
	return s.repo.Get(ctx, tenantID, id)
}

// Tree returns the nested chart of accounts view.
func (s *Service) Tree(ctx context.Context, tenantID uuid.UUID) ([]TreeNode, error) {
	flat, err := s.repo.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return BuildTree(flat), nil
}

func (s *Service) record(ctx context.Context, tenantID uuid.UUID, actorID int64, action string, accountID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, internalShared.AuditLog{
		TenantID: tenantID,
		ActorID:  actorID,
		Action:   action,
		Entity:   "account",
		EntityID: fmt.Sprintf("%d", accountID),
		Meta:     meta,
		At:       s.now(),
	})
}
