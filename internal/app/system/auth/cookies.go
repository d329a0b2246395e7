// internal/app/system/auth/cookies.go
package auth

import (
	"net/http"
	"time"
)

// Cookie names the frontend relies on.
const (
	AccessCookie  = "accessToken"
	RefreshCookie = "refreshToken"
)

// SetAuthCookies writes both auth cookies. With secure=true the cookies are
// Secure + SameSite=None so the browser sends them from a frontend on a
// different origin; local dev over http uses Lax instead, since browsers
// refuse SameSite=None without Secure.
func SetAuthCookies(w http.ResponseWriter, pair Pair, secure bool) {
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}

	http.SetCookie(w, &http.Cookie{
		Name:     AccessCookie,
		Value:    pair.Access,
		Path:     "/",
		Expires:  time.Now().Add(AccessTokenTTL),
		MaxAge:   int(AccessTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshCookie,
		Value:    pair.Refresh,
		Path:     "/",
		Expires:  time.Now().Add(RefreshTokenTTL),
		MaxAge:   int(RefreshTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
	})
}

// ClearAuthCookies expires both auth cookies. Used by logout.
func ClearAuthCookies(w http.ResponseWriter, secure bool) {
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode
	}

	for _, name := range []string{AccessCookie, RefreshCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   secure,
			SameSite: sameSite,
		})
	}
}
