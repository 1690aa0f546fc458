package handler

import (
	"net/http"
	"strings"
	"time"

	"storefront/config"
)

// sessionCookie builds the HTTP-only cookie that carries the session token.
type sessionCookie struct {
	name     string
	secure   bool
	sameSite http.SameSite
}

func newSessionCookie(cfg config.AuthConfig) sessionCookie {
	sameSite := http.SameSiteLaxMode
	switch strings.ToLower(cfg.CookieSameSite) {
	case "strict":
		sameSite = http.SameSiteStrictMode
	case "none":
		sameSite = http.SameSiteNoneMode
	}

	return sessionCookie{
		name: cfg.CookieName,
		// Browsers drop SameSite=None cookies that are not Secure.
		secure:   cfg.CookieSecure || sameSite == http.SameSiteNoneMode,
		sameSite: sameSite,
	}
}

func (s sessionCookie) issue(token string, expiresAt time.Time, now time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     s.name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(expiresAt.Sub(now).Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: s.sameSite,
	}
}

func (s sessionCookie) clear() *http.Cookie {
	return &http.Cookie{
		Name:     s.name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: s.sameSite,
	}
}
