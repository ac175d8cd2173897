package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrTenantMissing indicates a request without tenant scope.
	ErrTenantMissing = errors.New("tenant id missing")
)
