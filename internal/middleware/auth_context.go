package middleware

import (
	"context"
	"net/http"
	"strings"

	"project-share-manager/internal/ports/auth"
)

type ctxKey string

const (
	claimsKey   ctxKey = "claims"
	shareKeyKey ctxKey = "share_key"
)

const (
	HeaderDebugUserID    = "X-Debug-User-ID"
	HeaderDebugUserEmail = "X-Debug-User-Email"
	HeaderShareKey       = "X-Share-Key"
)

// AuthContext:
//   - Si verifier != nil y viene Bearer token => intenta Verify() y setea claims.
//   - Si verifier == nil => modo dev: X-Debug-User-ID / X-Debug-User-Email setean claims.
//   - X-Share-Key (o ?share_key=) se guarda aparte: un invitado por link no tiene claims.
//   - Si no hay claims, el request sigue igual; los handlers deciden 401/403.
func AuthContext(verifier auth.AuthVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if key := shareKeyFrom(r); key != "" {
				ctx = context.WithValue(ctx, shareKeyKey, key)
			}

			if verifier == nil {
				uid := strings.TrimSpace(r.Header.Get(HeaderDebugUserID))
				email := strings.TrimSpace(r.Header.Get(HeaderDebugUserEmail))
				if uid != "" || email != "" {
					ctx = context.WithValue(ctx, claimsKey, auth.Claims{UserID: uid, Email: email})
				}
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			claims, err := verifier.Verify(ctx, token)
			if err != nil {
				// No cortamos aquí. El handler decide 401/403.
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			ctx = context.WithValue(ctx, claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	v := ctx.Value(claimsKey)
	if v == nil {
		return auth.Claims{}, false
	}
	c, ok := v.(auth.Claims)
	return c, ok
}

// GetShareKey devuelve la share key presentada en el request, si hay.
func GetShareKey(ctx context.Context) string {
	v, _ := ctx.Value(shareKeyKey).(string)
	return v
}

// WithClaims se usa en tests de handlers.
func WithClaims(ctx context.Context, c auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

func shareKeyFrom(r *http.Request) string {
	if k := strings.TrimSpace(r.Header.Get(HeaderShareKey)); k != "" {
		return k
	}
	return strings.TrimSpace(r.URL.Query().Get("share_key"))
}

func bearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
