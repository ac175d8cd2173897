package periods

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/andes-erp/andes-erp/internal/accounting/shared"
	internalShared "github.com/andes-erp/andes-erp/internal/shared"
)

// AuditPort records period lifecycle events.
type AuditPort interface {
	Record(ctx context.Context, log internalShared.AuditLog) error
}

// CloseSweeper generates the period-close sweep entry (revenue and expense
// balances moved to retained earnings) while the period is CLOSING.
type CloseSweeper interface {
	SweepPeriod(ctx context.Context, tenantID uuid.UUID, periodID int64, endDate time.Time, actorID int64) error
}

// Store abstracts period persistence for the lifecycle service.
type Store interface {
	WithTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
	LockTenantPeriods(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID) error
	RangeConflict(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, start, end time.Time) (bool, error)
	Insert(ctx context.Context, tx pgx.Tx, p Period) (Period, error)
	LoadForUpdate(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, id int64) (Period, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, id int64, status PeriodStatus, closedBy *int64, closedAt *time.Time) error
	List(ctx context.Context, tenantID uuid.UUID) ([]Period, error)
	Get(ctx context.Context, tenantID uuid.UUID, id int64) (Period, error)
	FindOpenByDate(ctx context.Context, tenantID uuid.UUID, date time.Time) (Period, error)
}

// Service drives the period lifecycle.
type Service struct {
	repo    Store
	audit   AuditPort
	sweeper CloseSweeper
	now     func() time.Time
}

// NewService constructs a Service instance.
func NewService(repo Store, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit, now: time.Now}
}

// WithSweeper injects the closing-entry generator.
func (s *Service) WithSweeper(sweeper CloseSweeper) {
	s.sweeper = sweeper
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// OpenInput captures validation rules for new periods.
type OpenInput struct {
	TenantID  uuid.UUID
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Notes     string
	ActorID   int64
}

// Validate ensures the open input is coherent.
func (in OpenInput) Validate() error {
	if in.TenantID == uuid.Nil {
		return internalShared.ErrTenantMissing
	}
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("periods: name required")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return errors.New("periods: start and end date required")
	}
	if in.StartDate.After(in.EndDate) {
		return errors.New("periods: start date cannot be after end date")
	}
	return nil
}

// Open creates a new OPEN period after checking range overlap. Contiguity is
// a convention, overlap is not: intersecting an existing range is always an
// error. The tenant lock, the conflict check, and the insert share one
// transaction so two concurrent opens cannot both pass the check.
func (s *Service) Open(ctx context.Context, in OpenInput) (Period, error) {
	if err := in.Validate(); err != nil {
		return Period{}, err
	}
	var period Period
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if err := s.repo.LockTenantPeriods(ctx, tx, in.TenantID); err != nil {
			return err
		}
		conflict, err := s.repo.RangeConflict(ctx, tx, in.TenantID, in.StartDate, in.EndDate)
		if err != nil {
			return err
		}
		if conflict {
			return shared.ErrPeriodOverlap
		}
		period, err = s.repo.Insert(ctx, tx, Period{
			TenantID:  in.TenantID,
			Name:      strings.TrimSpace(in.Name),
			StartDate: in.StartDate,
			EndDate:   in.EndDate,
			Notes:     in.Notes,
		})
		return err
	})
	if err != nil {
		return Period{}, err
	}
	s.record(ctx, in.TenantID, in.ActorID, "period.open", period.ID, map[string]any{"name": period.Name})
	return period, nil
}

// BeginClosing transitions OPEN -> CLOSING and, when a sweeper is configured,
// generates the closing sweep entry. New postings are blocked while CLOSING;
// only PERIOD_CLOSE entries may still land in the period.
//
// The sweep runs after the transition commits, so a sweep failure leaves the
// period in CLOSING. Calling BeginClosing again on a CLOSING period retries
// the sweep rather than failing the transition; an already-swept period
// yields an empty balance set and the retry is a no-op.
func (s *Service) BeginClosing(ctx context.Context, tenantID uuid.UUID, periodID, actorID int64) (Period, error) {
	var period Period
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		current, err := s.repo.LoadForUpdate(ctx, tx, tenantID, periodID)
		if err != nil {
			return err
		}
		if current.Status != PeriodStatusClosing {
			if err := ValidateTransition(current.Status, PeriodStatusClosing); err != nil {
				return err
			}
			if err := s.repo.UpdateStatus(ctx, tx, tenantID, periodID, PeriodStatusClosing, nil, nil); err != nil {
				return err
			}
		}
		period = current
		period.Status = PeriodStatusClosing
		return nil
	})
	if err != nil {
		return Period{}, err
	}
	if s.sweeper != nil {
		if err := s.sweeper.SweepPeriod(ctx, tenantID, period.ID, period.EndDate, actorID); err != nil {
			return Period{}, fmt.Errorf("periods: closing sweep: %w", err)
		}
	}
	s.record(ctx, tenantID, actorID, "period.begin_closing", period.ID, nil)
	return period, nil
}

// Close transitions CLOSING -> CLOSED and stamps the close. CLOSED is
// terminal. The sweep reruns first so a period whose sweep failed during
// BeginClosing cannot close with revenue and expense balances standing; a
// swept period has no remaining result balances and the rerun is a no-op.
func (s *Service) Close(ctx context.Context, tenantID uuid.UUID, periodID, actorID int64, notes string) (Period, error) {
	if s.sweeper != nil {
		current, err := s.repo.Get(ctx, tenantID, periodID)
		if err != nil {
			return Period{}, err
		}
		if current.Status == PeriodStatusClosing {
			if err := s.sweeper.SweepPeriod(ctx, tenantID, current.ID, current.EndDate, actorID); err != nil {
				return Period{}, fmt.Errorf("periods: closing sweep: %w", err)
			}
		}
	}
	var period Period
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		current, err := s.repo.LoadForUpdate(ctx, tx, tenantID, periodID)
		if err != nil {
			return err
		}
		if err := ValidateTransition(current.Status, PeriodStatusClosed); err != nil {
			return err
		}
		closedAt := s.now()
		var closedBy *int64
		if actorID != 0 {
			closedBy = &actorID
		}
		if err := s.repo.UpdateStatus(ctx, tx, tenantID, periodID, PeriodStatusClosed, closedBy, &closedAt); err != nil {
			return err
		}
		period = current
		period.Status = PeriodStatusClosed
		period.ClosedAt = &closedAt
		period.ClosedByID = closedBy
		return nil
	})
	if err != nil {
		return Period{}, err
	}
	s.record(ctx, tenantID, actorID, "period.close", period.ID, map[string]any{"notes": notes})
	return period, nil
}

// List returns the tenant's periods.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]Period, error) {
	return s.repo.List(ctx, tenantID)
}

// Get loads one period.
func (s *Service) Get(ctx context.Context, tenantID uuid.UUID, id int64) (Period, error) {
	return s.repo.Get(ctx, tenantID, id)
}

// FindOpenByDate resolves the open period covering a date.
func (s *Service) FindOpenByDate(ctx context.Context, tenantID uuid.UUID, date time.Time) (Period, error) {
	return s.repo.FindOpenByDate(ctx, tenantID, date)
}

func (s *Service) record(ctx context.Context, tenantID uuid.UUID, actorID int64, action string, periodID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, internalShared.AuditLog{
		TenantID: tenantID,
		ActorID:  actorID,
		Action:   action,
		Entity:   "accounting_period",
		EntityID: fmt.Sprintf("%d", periodID),
		Meta:     meta,
		At:       s.now(),
	})
}
