// Package auth provides token sources for the gateway API.
//
// Every outbound API call carries a token query parameter. The API client
// asks its TokenSource for the current token on each call and never caches
// the result; session lifetime is entirely the token source's concern.
package auth

import "context"

// TokenSource supplies the current auth token for outbound API calls.
type TokenSource interface {
	// Token returns the token to attach to the next request.
	Token(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to the TokenSource interface.
type TokenSourceFunc func(ctx context.Context) (string, error)

func (f TokenSourceFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// StaticTokenSource returns a TokenSource that always yields the given
// pre-issued token.
func StaticTokenSource(token string) TokenSource {
	return TokenSourceFunc(func(context.Context) (string, error) {
		return token, nil
	})
}
