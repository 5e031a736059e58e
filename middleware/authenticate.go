package middleware

import (
	"context"
	"net/http"
	"strings"

	tenauth "github.com/tenauth/tenauth"
)

type identityContextKey struct{}

// IdentityFromContext returns the identity injected by [Authenticate], if any.
func IdentityFromContext(ctx context.Context) (*tenauth.Identity, bool) {
	id, ok := ctx.Value(identityContextKey{}).(*tenauth.Identity)
	return id, ok
}

// Authenticate returns middleware that verifies the request's access token
// and injects the decoded identity into the request context. The token is
// read from the Authorization bearer header first, falling back to the
// accessToken cookie. Every failure is a plain 401: malformed, expired,
// bad-signature, and wrong-issuer tokens are indistinguishable to the caller.
func Authenticate(engine *tenauth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := accessTokenFromRequest(r)
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			identity, err := engine.VerifyAccess(token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole returns middleware that rejects authenticated requests whose
// identity role is not in the allow list. Must run after [Authenticate]; a
// request with no identity in context is a 401, a wrong role is a 403.
func RequireRole(engine *tenauth.Engine, roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			if _, ok := allowed[identity.Role]; !ok {
				if engine != nil && engine.Metrics() != nil {
					engine.Metrics().Inc(tenauth.MetricRoleDenied)
				}
				http.Error(w, tenauth.ErrForbidden.Error(), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func accessTokenFromRequest(r *http.Request) (string, bool) {
	if token, ok := bearerToken(r.Header.Get("Authorization")); ok {
		return token, true
	}

	cookie, err := r.Cookie(tenauth.CookieAccessToken)
	if err != nil || cookie.Value == "" {
		return "", false
	}

	return cookie.Value, true
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
