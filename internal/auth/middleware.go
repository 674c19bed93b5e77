package auth

import (
	"net/http"
	"strings"

	"github.com/mind-engage/mindengage-adaptive/internal/apierr"
	"github.com/mind-engage/mindengage-adaptive/internal/rbac"
)

// JWTMiddleware requires a bearer token and puts the principal and its role
// in the request context.
func JWTMiddleware(t *Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				apierr.Write(w, apierr.Unauthorized("missing bearer token"))
				return
			}
			p, err := t.Parse(strings.TrimSpace(strings.TrimPrefix(h, "Bearer ")))
			if err != nil {
				apierr.Write(w, apierr.Unauthorized("invalid or expired token"))
				return
			}
			ctx := WithPrincipal(r.Context(), p)
			ctx = rbac.WithRole(ctx, string(p.Kind))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
