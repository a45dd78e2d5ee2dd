package auth

import "context"

// Principal identifies the authenticated account of a request. Every
// domain call takes one explicitly.
type Principal struct {
	AccountID int64
	Username  string
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored by the auth middleware.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok && p.AccountID > 0
}
