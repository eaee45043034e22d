package handlers

import (
	"net/http"
	"strings"

	"github.com/akulikov/streamtube/internal/models"
)

const (
	accessCookieName  = "accessToken"
	refreshCookieName = "refreshToken"
)

// SetTokenPair puts both tokens into httpOnly secure cookies.
// The same values also go into the JSON body, clients pick what suits them.
func SetTokenPair(w http.ResponseWriter, pair models.TokenPair) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessCookieName,
		Value:    pair.Access.Value,
		Path:     "/",
		Expires:  pair.Access.ExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    pair.Refresh.Value,
		Path:     "/",
		Expires:  pair.Refresh.ExpiresAt,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func ClearTokenPair(w http.ResponseWriter) {
	for _, name := range []string{accessCookieName, refreshCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}

// AccessFromRequest reads the access token from the Authorization
// header or, failing that, the cookie. Empty string if neither is set
func AccessFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}

	if cookie, err := r.Cookie(accessCookieName); err == nil {
		return cookie.Value
	}

	return ""
}

// RefreshFromRequest reads the refresh token from the cookie.
// The handler may also accept it from the request body
func RefreshFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(refreshCookieName); err == nil {
		return cookie.Value
	}
	return ""
}
