package auth

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	Subject uuid.UUID
	Claims  Claims
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// IdentityFromContext returns the caller identity set by the authentication middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}
