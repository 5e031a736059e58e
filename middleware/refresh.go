package middleware

import (
	"context"
	"net/http"

	tenauth "github.com/tenauth/tenauth"
)

type refreshContextKey struct{}

// RefreshSession is what the refresh middlewares leave in the request
// context: the decoded identity, the record id the token points at, and the
// raw token string so handlers can hand it back to Engine.Refresh or
// Engine.Logout.
type RefreshSession struct {
	Identity *tenauth.Identity
	RecordID int64
	Token    string
}

// RefreshFromContext returns the session injected by [ParseRefresh] or
// [ValidateRefresh], if any.
func RefreshFromContext(ctx context.Context) (*RefreshSession, bool) {
	s, ok := ctx.Value(refreshContextKey{}).(*RefreshSession)
	return s, ok
}

// ParseRefresh returns middleware that decodes the refreshToken cookie
// without consulting the store. The signature and expiry are verified,
// liveness is not: a revoked token still passes. Handlers that go on to call
// Engine.Refresh get the liveness check there, which is why the rotation
// endpoint wants this cheaper variant.
func ParseRefresh(engine *tenauth.Engine) func(http.Handler) http.Handler {
	return refreshMiddleware(engine, func(ctx context.Context, e *tenauth.Engine, token string) (*tenauth.Identity, int64, error) {
		return e.ParseRefresh(token)
	})
}

// ValidateRefresh returns middleware that decodes the refreshToken cookie
// and confirms a live record still backs it. A valid signature over a
// deleted record is a 401, same as a garbage token.
func ValidateRefresh(engine *tenauth.Engine) func(http.Handler) http.Handler {
	return refreshMiddleware(engine, func(ctx context.Context, e *tenauth.Engine, token string) (*tenauth.Identity, int64, error) {
		return e.CheckLive(ctx, token)
	})
}

func refreshMiddleware(
	engine *tenauth.Engine,
	check func(context.Context, *tenauth.Engine, string) (*tenauth.Identity, int64, error),
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			cookie, err := r.Cookie(tenauth.CookieRefreshToken)
			if err != nil || cookie.Value == "" {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			identity, recordID, err := check(r.Context(), engine, cookie.Value)
			if err != nil {
				http.Error(w, "unauthorized", tenauth.StatusForError(err))
				return
			}

			session := &RefreshSession{
				Identity: identity,
				RecordID: recordID,
				Token:    cookie.Value,
			}
			ctx := context.WithValue(r.Context(), refreshContextKey{}, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
