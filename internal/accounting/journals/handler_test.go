package journals

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/andes-erp/andes-erp/internal/accounting/periods"
	"github.com/andes-erp/andes-erp/internal/shared"
)

func postEntry(t *testing.T, handler *Handler, tenant uuid.UUID, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/journals", strings.NewReader(body))
	req = req.WithContext(shared.ContextWithTenant(context.Background(), tenant))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)
	return rec
}

func TestCreateRejectsPeriodCloseSource(t *testing.T) {
	repo := setupRepo(periods.PeriodStatusClosing)
	handler := NewHandler(slog.Default(), NewService(repo, nil))
	tenant := uuid.New()

	body := `{"date":"2026-03-15","description":"cierre manual","source":"PERIOD_CLOSE",
"lines":[{"accountId":10,"debit":119},{"accountId":20,"credit":119}]}`
	rec := postEntry(t, handler, tenant, body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Empty(t, repo.entries)
}

func TestCreateAcceptsManualEntry(t *testing.T) {
	repo := setupRepo(periods.PeriodStatusOpen)
	handler := NewHandler(slog.Default(), NewService(repo, nil))
	tenant := uuid.New()

	body := `{"date":"2026-03-15","description":"Venta de contado",
"lines":[{"accountId":10,"debit":119},{"accountId":20,"credit":119}]}`
	rec := postEntry(t, handler, tenant, body)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, repo.entries, 1)
}
