package tenauth

import (
	"net/http"
	"time"
)

// Cookie names used by the HTTP helpers and the middleware package. Both are
// httpOnly: browser scripts never see token material.
const (
	CookieAccessToken  = "accessToken"
	CookieRefreshToken = "refreshToken"
)

// SetAuthCookies writes the pair as httpOnly cookies on w. Max-ages follow
// the token lifetimes from cfg so cookie and token expire together.
func SetAuthCookies(w http.ResponseWriter, cfg Config, pair TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieAccessToken,
		Value:    pair.AccessToken,
		Path:     "/",
		Domain:   cfg.Cookie.Domain,
		MaxAge:   int(cfg.JWT.AccessTTL / time.Second),
		Secure:   cfg.Cookie.Secure,
		HttpOnly: true,
		SameSite: cfg.Cookie.SameSite,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     CookieRefreshToken,
		Value:    pair.RefreshToken,
		Path:     "/",
		Domain:   cfg.Cookie.Domain,
		MaxAge:   int(cfg.JWT.RefreshTTL / time.Second),
		Secure:   cfg.Cookie.Secure,
		HttpOnly: true,
		SameSite: cfg.Cookie.SameSite,
	})
}

// ClearAuthCookies expires both auth cookies. Pair with a Logout call: the
// refresh record is what actually kills the session, the cookies are only
// the browser-side cleanup.
func ClearAuthCookies(w http.ResponseWriter, cfg Config) {
	for _, name := range []string{CookieAccessToken, CookieRefreshToken} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Domain:   cfg.Cookie.Domain,
			MaxAge:   -1,
			Secure:   cfg.Cookie.Secure,
			HttpOnly: true,
			SameSite: cfg.Cookie.SameSite,
		})
	}
}
