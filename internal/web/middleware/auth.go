package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/JonMunkholm/leaddist/internal/core"
	"github.com/JonMunkholm/leaddist/internal/logging"
)

// APIKeyAuth authenticates requests by their X-API-Key header and stores
// the matching principal in the request context for core.PrincipalFromContext.
// When required is false every request passes and is attributed to
// core.AnonymousPrincipal; a key that is sent anyway is still resolved.
func APIKeyAuth(keys map[string]string, required bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get("X-API-Key")

			principal, ok := lookupPrincipal(apiKey, keys)
			if ok {
				reportPrincipal(r.Context(), principal)
				next.ServeHTTP(w, r.WithContext(core.ContextWithPrincipal(r.Context(), principal)))
				return
			}

			if !required {
				next.ServeHTTP(w, r)
				return
			}

			logger := logging.FromContext(r.Context()).With(
				"path", r.URL.Path,
				"method", r.Method,
				"remote_addr", r.RemoteAddr,
			)

			w.Header().Set("Content-Type", "application/json")
			if apiKey == "" {
				logger.Warn("auth: missing API key")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"success":false,"error":"missing API key","code":"AUTH001"}`))
				return
			}

			logger.Warn("auth: invalid API key")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"success":false,"error":"invalid API key","code":"AUTH002"}`))
		})
	}
}

// lookupPrincipal compares key against every configured key in constant
// time, so the response time does not reveal which key matched.
func lookupPrincipal(key string, keys map[string]string) (string, bool) {
	if key == "" {
		return "", false
	}

	var principal string
	found := 0
	for candidate, p := range keys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(candidate)) == 1 {
			principal = p
			found = 1
		}
	}
	return principal, found == 1
}

type principalSinkKey struct{}

// withPrincipalSink lets an outer middleware observe the principal that
// APIKeyAuth resolves further down the chain.
func withPrincipalSink(ctx context.Context, sink *string) context.Context {
	return context.WithValue(ctx, principalSinkKey{}, sink)
}

func reportPrincipal(ctx context.Context, principal string) {
	if sink, ok := ctx.Value(principalSinkKey{}).(*string); ok {
		*sink = principal
	}
}
