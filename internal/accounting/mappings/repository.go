package mappings

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andes-erp/andes-erp/internal/accounting/shared"
)

// Repository persists tenant accounting configuration.
type Repository interface {
	Get(ctx context.Context, tenantID uuid.UUID) (Config, error)
	Upsert(ctx context.Context, cfg Config) (Config, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

// Get loads the tenant configuration row and its role mappings.
func (r *repository) Get(ctx context.Context, tenantID uuid.UUID) (Config, error) {
	cfg := Config{TenantID: tenantID, Accounts: make(map[SystemRole]int64)}
	err := r.db.QueryRow(ctx, `SELECT auto_generate_entries, created_at, updated_at FROM accounting_configs WHERE tenant_id=$1`, tenantID).
		Scan(&cfg.AutoGenerateEntries, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Config{}, shared.ErrConfigNotFound
		}
		return Config{}, err
	}
	rows, err := r.db.Query(ctx, `SELECT role, account_id FROM accounting_config_roles WHERE tenant_id=$1`, tenantID)
	if err != nil {
		return Config{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var role SystemRole
		var accountID int64
		if err := rows.Scan(&role, &accountID); err != nil {
			return Config{}, err
		}
		cfg.Accounts[role] = accountID
	}
	return cfg, rows.Err()
}

// Upsert replaces the tenant configuration atomically.
func (r *repository) Upsert(ctx context.Context, cfg Config) (Config, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return Config{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()
	err = tx.QueryRow(ctx, `INSERT INTO accounting_configs (tenant_id, auto_generate_entries)
VALUES ($1,$2)
ON CONFLICT (tenant_id) DO UPDATE SET auto_generate_entries=$2, updated_at=NOW()
RETURNING created_at, updated_at`, cfg.TenantID, cfg.AutoGenerateEntries).Scan(&cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		return Config{}, err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM accounting_config_roles WHERE tenant_id=$1`, cfg.TenantID); err != nil {
		return Config{}, err
	}
	for role, accountID := range cfg.Accounts {
		if accountID == 0 {
			continue
		}
		if _, err := tx.Exec(ctx, `INSERT INTO accounting_config_roles (tenant_id, role, account_id) VALUES ($1,$2,$3)`,
			cfg.TenantID, role, accountID); err != nil {
			return Config{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
