package reporter

import "context"

type ownerKey struct{}

// WithOwner returns a context carrying the identity that owns the
// timer session being reported.
func WithOwner(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ownerKey{}, userID)
}

// ContextIdentity resolves the owner from the request context. It
// returns the empty id for anonymous sessions.
type ContextIdentity struct{}

func (ContextIdentity) CurrentUserID(ctx context.Context) string {
	userID, _ := ctx.Value(ownerKey{}).(string)
	return userID
}
