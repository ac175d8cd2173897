package periods

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/andes-erp/andes-erp/internal/accounting/shared"
)

func TestValidateTransition(t *testing.T) {
	require.NoError(t, ValidateTransition(PeriodStatusOpen, PeriodStatusClosing))
	require.NoError(t, ValidateTransition(PeriodStatusClosing, PeriodStatusClosed))

	require.ErrorIs(t, ValidateTransition(PeriodStatusOpen, PeriodStatusClosed), shared.ErrInvalidStatus)
	require.ErrorIs(t, ValidateTransition(PeriodStatusClosing, PeriodStatusOpen), shared.ErrInvalidStatus)

	// CLOSED is terminal.
	require.ErrorIs(t, ValidateTransition(PeriodStatusClosed, PeriodStatusOpen), shared.ErrPeriodClosed)
	require.ErrorIs(t, ValidateTransition(PeriodStatusClosed, PeriodStatusClosing), shared.ErrPeriodClosed)
}

func TestPeriodContains(t *testing.T) {
	p := Period{
		StartDate: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC),
	}
	require.True(t, p.Contains(p.StartDate))
	require.True(t, p.Contains(p.EndDate))
	require.True(t, p.Contains(time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)))
	require.False(t, p.Contains(p.StartDate.AddDate(0, 0, -1)))
	require.False(t, p.Contains(p.EndDate.AddDate(0, 0, 1)))
}

func TestOpenInputValidate(t *testing.T) {
	valid := OpenInput{
		TenantID:  uuid.New(),
		Name:      "2026-03",
		StartDate: time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, time.March, 31, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, valid.Validate())

	noTenant := valid
	noTenant.TenantID = uuid.Nil
	require.Error(t, noTenant.Validate())

	noName := valid
	noName.Name = "  "
	require.Error(t, noName.Validate())

	inverted := valid
	inverted.StartDate, inverted.EndDate = inverted.EndDate, inverted.StartDate
	require.Error(t, inverted.Validate())
}
