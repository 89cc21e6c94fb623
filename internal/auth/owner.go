package auth

import "context"

type contextKey string

const ownerKey contextKey = "owner_handle"

// WithOwner returns a context carrying the authenticated account handle.
func WithOwner(ctx context.Context, handle string) context.Context {
	return context.WithValue(ctx, ownerKey, handle)
}

// OwnerFromContext returns the authenticated handle, if any.
func OwnerFromContext(ctx context.Context) (string, bool) {
	handle, ok := ctx.Value(ownerKey).(string)
	return handle, ok && handle != ""
}

// IsOwner reports whether ctx is authenticated as handle.
func IsOwner(ctx context.Context, handle string) bool {
	owner, ok := OwnerFromContext(ctx)
	return ok && owner == handle
}
