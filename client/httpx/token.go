package httpx

import "context"

// TokenSource yields the bearer token to attach to outgoing requests.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, bool)
}

type tokenCtxKey struct{}

// WithToken stores a per-request bearer token in ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenCtxKey{}, token)
}

func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenCtxKey{}).(string)
	return token, ok && token != ""
}

// ContextTokens reads the bearer token from the request context. Used by
// the gateway, where each inbound request carries its own session.
type ContextTokens struct{}

func (ContextTokens) AccessToken(ctx context.Context) (string, bool) {
	return TokenFromContext(ctx)
}
