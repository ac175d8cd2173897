package mappings

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/andes-erp/andes-erp/internal/accounting/accounts"
	"github.com/andes-erp/andes-erp/internal/accounting/shared"
)

// AccountLookup resolves account state for mapping validation.
type AccountLookup interface {
	Get(ctx context.Context, tenantID uuid.UUID, id int64) (accounts.Account, error)
	HasActiveChildren(ctx context.Context, tenantID uuid.UUID, id int64) (bool, error)
}

// Service manages the tenant accounting configuration.
type Service struct {
	repo     Repository
	accounts AccountLookup
}

// NewService constructs the configuration service.
func NewService(repo Repository, lookup AccountLookup) *Service {
	return &Service{repo: repo, accounts: lookup}
}

// Get loads the tenant configuration. A tenant without a row gets an empty,
// unconfigured Config rather than an error so the UI can render the form.
func (s *Service) Get(ctx context.Context, tenantID uuid.UUID) (Config, error) {
	cfg, err := s.repo.Get(ctx, tenantID)
	if err != nil {
		if errors.Is(err, shared.ErrConfigNotFound) {
			return Config{TenantID: tenantID, Accounts: make(map[SystemRole]int64)}, nil
		}
		return Config{}, err
	}
	return cfg, nil
}

// Update validates and stores the role mapping. Every mapped account must
// exist, be active, and be a leaf of the tenant's chart.
func (s *Service) Update(ctx context.Context, cfg Config) (Config, error) {
	if cfg.TenantID == uuid.Nil {
		return Config{}, fmt.Errorf("mappings: tenant required")
	}
	for role, accountID := range cfg.Accounts {
		if accountID == 0 {
			continue
		}
		acc, err := s.accounts.Get(ctx, cfg.TenantID, accountID)
		if err != nil {
			return Config{}, fmt.Errorf("mappings: role %s: %w", role, err)
		}
		if !acc.IsActive {
			return Config{}, fmt.Errorf("mappings: role %s: %w", role, shared.ErrAccountInactive)
		}
		hasChildren, err := s.accounts.HasActiveChildren(ctx, cfg.TenantID, accountID)
		if err != nil {
			return Config{}, fmt.Errorf("mappings: role %s: %w", role, err)
		}
		if hasChildren {
			// A roll-up account would make every generated entry fail at
			// posting time; reject it while the operator is looking.
			return Config{}, fmt.Errorf("mappings: role %s: %w", role, shared.ErrNonLeafAccount)
		}
	}
	return s.repo.Upsert(ctx, cfg)
}
