package periods

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/andes-erp/andes-erp/internal/accounting/shared"
)

type fakeStore struct {
	periods           map[int64]Period
	nextID            int64
	locked            bool
	lockedBeforeCheck bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{periods: make(map[int64]Period)}
}

func (s *fakeStore) WithTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	defer func() { s.locked = false }()
	return fn(ctx, nil)
}

func (s *fakeStore) LockTenantPeriods(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID) error {
	s.locked = true
	return nil
}

func (s *fakeStore) RangeConflict(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, start, end time.Time) (bool, error) {
	s.lockedBeforeCheck = s.locked
	for _, p := range s.periods {
		if !p.StartDate.After(end) && !p.EndDate.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) Insert(ctx context.Context, tx pgx.Tx, p Period) (Period, error) {
	s.nextID++
	p.ID = s.nextID
	p.Status = PeriodStatusOpen
	s.periods[p.ID] = p
	return p, nil
}

func (s *fakeStore) LoadForUpdate(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, id int64) (Period, error) {
	p, ok := s.periods[id]
	if !ok {
		return Period{}, shared.ErrPeriodNotFound
	}
	return p, nil
}

func (s *fakeStore) UpdateStatus(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, id int64, status PeriodStatus, closedBy *int64, closedAt *time.Time) error {
	p, ok := s.periods[id]
	if !ok {
		return shared.ErrPeriodNotFound
	}
	p.Status = status
	p.ClosedByID = closedBy
	p.ClosedAt = closedAt
	s.periods[id] = p
	return nil
}

func (s *fakeStore) List(ctx context.Context, tenantID uuid.UUID) ([]Period, error) {
	var out []Period
	for _, p := range s.periods {
		out = append(out, p)
	}
	return out, nil
}

func (s *fakeStore) Get(ctx context.Context, tenantID uuid.UUID, id int64) (Period, error) {
	return s.LoadForUpdate(ctx, nil, tenantID, id)
}

func (s *fakeStore) FindOpenByDate(ctx context.Context, tenantID uuid.UUID, date time.Time) (Period, error) {
	for _, p := range s.periods {
		if p.Status == PeriodStatusOpen && p.Contains(date) {
			return p, nil
		}
	}
	return Period{}, shared.ErrNoOpenPeriod
}

type flakySweeper struct {
	calls    int
	failures int
}

func (s *flakySweeper) SweepPeriod(ctx context.Context, tenantID uuid.UUID, periodID int64, endDate time.Time, actorID int64) error {
	s.calls++
	if s.calls <= s.failures {
		return errors.New("retained earnings account missing")
	}
	return nil
}

func marchInput(tenant uuid.UUID) OpenInput {
	return OpenInput{
		TenantID:  tenant,
		Name:      "Marzo 2026",
		StartDate: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestOpenChecksOverlapUnderLock(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	tenant := uuid.New()

	period, err := svc.Open(context.Background(), marchInput(tenant))
	require.NoError(t, err)
	require.Equal(t, PeriodStatusOpen, period.Status)
	require.True(t, store.lockedBeforeCheck)

	overlapping := marchInput(tenant)
	overlapping.Name = "Marzo bis"
	overlapping.StartDate = time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)
	overlapping.EndDate = time.Date(2026, time.April, 19, 0, 0, 0, 0, time.UTC)
	_, err = svc.Open(context.Background(), overlapping)
	require.ErrorIs(t, err, shared.ErrPeriodOverlap)
	require.Len(t, store.periods, 1)
}

func TestBeginClosingRetriesSweepWhileClosing(t *testing.T) {
	store := newFakeStore()
	sweeper := &flakySweeper{failures: 1}
	svc := NewService(store, nil)
	svc.WithSweeper(sweeper)
	tenant := uuid.New()

	period, err := svc.Open(context.Background(), marchInput(tenant))
	require.NoError(t, err)

	// First attempt: transition commits, sweep fails, period stays CLOSING.
	_, err = svc.BeginClosing(context.Background(), tenant, period.ID, 1)
	require.Error(t, err)
	require.Equal(t, PeriodStatusClosing, store.periods[period.ID].Status)

	// Retry on the CLOSING period reruns the sweep instead of rejecting the
	// transition.
	retried, err := svc.BeginClosing(context.Background(), tenant, period.ID, 1)
	require.NoError(t, err)
	require.Equal(t, PeriodStatusClosing, retried.Status)
	require.Equal(t, 2, sweeper.calls)
}

func TestCloseBlockedByFailedSweep(t *testing.T) {
	store := newFakeStore()
	sweeper := &flakySweeper{failures: 2}
	svc := NewService(store, nil)
	svc.WithSweeper(sweeper)
	tenant := uuid.New()

	period, err := svc.Open(context.Background(), marchInput(tenant))
	require.NoError(t, err)

	_, err = svc.BeginClosing(context.Background(), tenant, period.ID, 1)
	require.Error(t, err)

	// Close reruns the sweep; while it keeps failing the period cannot reach
	// CLOSED with result balances standing.
	_, err = svc.Close(context.Background(), tenant, period.ID, 1, "")
	require.Error(t, err)
	require.Equal(t, PeriodStatusClosing, store.periods[period.ID].Status)

	// Once the sweep succeeds the close goes through.
	closed, err := svc.Close(context.Background(), tenant, period.ID, 1, "")
	require.NoError(t, err)
	require.Equal(t, PeriodStatusClosed, closed.Status)
}

func TestCloseLifecycle(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, nil)
	svc.WithSweeper(&flakySweeper{})
	tenant := uuid.New()

	period, err := svc.Open(context.Background(), marchInput(tenant))
	require.NoError(t, err)

	// OPEN periods cannot close directly.
	_, err = svc.Close(context.Background(), tenant, period.ID, 1, "")
	require.ErrorIs(t, err, shared.ErrInvalidStatus)

	_, err = svc.BeginClosing(context.Background(), tenant, period.ID, 1)
	require.NoError(t, err)

	closed, err := svc.Close(context.Background(), tenant, period.ID, 1, "cierre normal")
	require.NoError(t, err)
	require.Equal(t, PeriodStatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)

	// CLOSED is terminal.
	_, err = svc.BeginClosing(context.Background(), tenant, period.ID, 1)
	require.ErrorIs(t, err, shared.ErrPeriodClosed)
}
