package interceptors

import "context"

type contextKey struct{ name string }

var (
	sessionTokenKey = contextKey{"session_token"}
	clientIPKey     = contextKey{"client_ip"}
)

// WithSessionToken returns a context carrying the caller's raw session token.
func WithSessionToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, sessionTokenKey, token)
}

// GetSessionToken returns the session token from context and true if set; otherwise "", false.
func GetSessionToken(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionTokenKey).(string)
	return v, ok
}

// WithClientIP records the caller's address. ClientIPUnary and the HTTP facade set it once per request.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}
