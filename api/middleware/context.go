package middleware

import "context"

type contextKey string

const (
	ctxUserID    contextKey = "user_id"
	ctxEmail     contextKey = "email"
	ctxIsAdmin   contextKey = "is_admin"
	ctxSessionID contextKey = "session_id"
)

// Identity is the authenticated caller attached by Auth.
type Identity struct {
	UserID    int64
	Email     string
	IsAdmin   bool
	SessionID string
}

func UserIDFromContext(ctx context.Context) int64 {
	if ctx == nil {
		return 0
	}
	if v, ok := ctx.Value(ctxUserID).(int64); ok {
		return v
	}
	return 0
}

func EmailFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxEmail).(string); ok {
		return v
	}
	return ""
}

func IsAdminFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	v, _ := ctx.Value(ctxIsAdmin).(bool)
	return v
}

// SessionIDFromContext returns the jti of the token that authenticated the request.
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

// WithIdentity injects the caller into the context for downstream handlers.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxUserID, id.UserID)
	ctx = context.WithValue(ctx, ctxEmail, id.Email)
	ctx = context.WithValue(ctx, ctxIsAdmin, id.IsAdmin)
	return context.WithValue(ctx, ctxSessionID, id.SessionID)
}
