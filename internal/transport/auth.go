package transport

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

// ErrUnauthorized indicates invalid or missing credentials.
var ErrUnauthorized = errors.New("unauthorized")

type operatorKey struct{}

// OperatorResolver resolves the operator a bearer token belongs to.
type OperatorResolver interface {
	ResolveOperator(ctx context.Context, token string) (string, error)
}

// StaticTokens maps bearer tokens to operator names.
type StaticTokens map[string]string

// ResolveOperator implements OperatorResolver.
func (s StaticTokens) ResolveOperator(_ context.Context, token string) (string, error) {
	for known, operator := range s {
		if subtle.ConstantTimeCompare([]byte(known), []byte(token)) == 1 {
			return operator, nil
		}
	}
	return "", ErrUnauthorized
}

// OperatorFromContext returns the operator from context, if present.
func OperatorFromContext(ctx context.Context) (string, bool) {
	operator, ok := ctx.Value(operatorKey{}).(string)
	return operator, ok
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// SetBearer sets the Authorization header on an outgoing request. An empty
// token leaves the request untouched.
func SetBearer(req *http.Request, token string) {
	if token == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

// AuthMiddleware enforces bearer token authentication.
func AuthMiddleware(resolver OperatorResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r.Header.Get("Authorization"))
			if token == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			operator, err := resolver.ResolveOperator(r.Context(), token)
			if err != nil || operator == "" {
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), operatorKey{}, operator)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
