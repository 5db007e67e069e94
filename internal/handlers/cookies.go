package handlers

import (
	"net/http"
	"time"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/models"
)

// CookiePolicy controls the attributes of the token cookies.
type CookiePolicy struct {
	Secure   bool
	SameSite http.SameSite
}

func (p CookiePolicy) sameSite() http.SameSite {
	if p.SameSite == 0 {
		return http.SameSiteLaxMode
	}
	return p.SameSite
}

func setTokenCookies(w http.ResponseWriter, policy CookiePolicy, tokens models.SessionTokens) {
	setCookie(w, policy, auth.AccessTokenCookie, tokens.AccessToken, tokens.AccessExpiresAt)
	setCookie(w, policy, auth.RefreshTokenCookie, tokens.RefreshToken, tokens.RefreshExpiresAt)
}

func clearTokenCookies(w http.ResponseWriter, policy CookiePolicy) {
	for _, name := range []string{auth.AccessTokenCookie, auth.RefreshTokenCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0).UTC(),
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   policy.Secure,
			SameSite: policy.sameSite(),
		})
	}
}

func setCookie(w http.ResponseWriter, policy CookiePolicy, name, value string, expires time.Time) {
	if value == "" {
		return
	}
	maxAge := int(time.Until(expires).Seconds())
	if maxAge < 0 {
		maxAge = 0
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires.UTC(),
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   policy.Secure,
		SameSite: policy.sameSite(),
	})
}
