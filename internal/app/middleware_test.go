package app

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/andes-erp/andes-erp/internal/shared"
)

func TestTenantMiddleware(t *testing.T) {
	var gotTenant uuid.UUID
	var gotActor int64
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTenant = shared.TenantFromContext(r.Context())
		gotActor = shared.ActorFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := TenantMiddleware(slog.Default())(inner)

	t.Run("missing header rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/accounts", nil))
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed tenant rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
		req.Header.Set(HeaderTenantID, "not-a-uuid")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("tenant and actor resolved", func(t *testing.T) {
		tenant := uuid.New()
		req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
		req.Header.Set(HeaderTenantID, tenant.String())
		req.Header.Set(HeaderActorID, "42")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, tenant, gotTenant)
		require.Equal(t, int64(42), gotActor)
	})

	t.Run("bad actor ignored", func(t *testing.T) {
		tenant := uuid.New()
		req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
		req.Header.Set(HeaderTenantID, tenant.String())
		req.Header.Set(HeaderActorID, "root")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Zero(t, gotActor)
	})
}
