package shared

import (
	"context"

	"github.com/google/uuid"
)

type tenantContextKey struct{}

type actorContextKey struct{}

// ContextWithTenant stores the tenant id in context.
func ContextWithTenant(ctx context.Context, tenantID uuid.UUID) context.Context {
	return context.WithValue(ctx, tenantContextKey{}, tenantID)
}

// TenantFromContext extracts the tenant id from context. The zero UUID means
// the request carried no tenant and must be rejected before reaching a service.
func TenantFromContext(ctx context.Context) uuid.UUID {
	tenantID, _ := ctx.Value(tenantContextKey{}).(uuid.UUID)
	return tenantID
}

// ContextWithActor stores the acting user id in context. Authentication is an
// upstream concern; the gateway forwards the resolved user id per request.
func ContextWithActor(ctx context.Context, actorID int64) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actorID)
}

// ActorFromContext extracts the acting user id, zero when absent.
func ActorFromContext(ctx context.Context) int64 {
	actorID, _ := ctx.Value(actorContextKey{}).(int64)
	return actorID
}
