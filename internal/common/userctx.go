package common

import "context"

// UserContext holds per-request user scoping injected via the X-Flowlens-User-ID
// header. When absent the request operates against the default user's data.
type UserContext struct {
	UserID string `json:"user_id"`
}

// DefaultUserID is used when a request carries no user header.
const DefaultUserID = "default"

// HeaderUserID is the request header carrying the caller's user id.
const HeaderUserID = "X-Flowlens-User-ID"

type contextKey int

const (
	userContextKey contextKey = iota
)

// WithUserContext returns a new context with the user context attached
func WithUserContext(ctx context.Context, uc *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, uc)
}

// UserContextFromContext extracts the user context, if present
func UserContextFromContext(ctx context.Context) (*UserContext, bool) {
	uc, ok := ctx.Value(userContextKey).(*UserContext)
	return uc, ok && uc != nil
}

// ResolveUserID returns the user id from the context, or DefaultUserID when
// no user context is attached or the id is empty.
func ResolveUserID(ctx context.Context) string {
	if uc, ok := UserContextFromContext(ctx); ok && uc.UserID != "" {
		return uc.UserID
	}
	return DefaultUserID
}
