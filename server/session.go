package server

import (
	"net/http"
	"strconv"
	"time"

	"sono/core/spotify"
)

// Session cookie names. The server is stateless; these three cookies are the
// whole session.
const (
	cookieAccess  = "sp_access"
	cookieExpires = "sp_expires"
	cookieRefresh = "sp_refresh"
	cookieState   = "sp_state"
)

const refreshCookieMaxAge = 30 * 24 * 60 * 60 // seconds

func sessionCookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, sessionCookie(name, "", -1))
}

func nowUnix() int64 {
	return time.Now().Unix()
}

// sessionFromRequest reads the session credentials off the request cookies.
func sessionFromRequest(r *http.Request) spotify.SessionCredentials {
	var creds spotify.SessionCredentials
	if c, err := r.Cookie(cookieAccess); err == nil {
		creds.AccessToken = c.Value
	}
	if c, err := r.Cookie(cookieExpires); err == nil {
		creds.AccessExpiry, _ = strconv.ParseInt(c.Value, 10, 64)
	}
	if c, err := r.Cookie(cookieRefresh); err == nil {
		creds.RefreshToken = c.Value
	}
	return creds
}

// applySessionUpdate rewrites the session cookies after a token resolution.
// No-op once response headers are committed; the refreshed token still
// serves the current request and the client re-refreshes next turn.
func applySessionUpdate(w http.ResponseWriter, update *spotify.TokenUpdate) {
	if update == nil {
		return
	}

	if update.Cleared {
		clearCookie(w, cookieAccess)
		clearCookie(w, cookieExpires)
		clearCookie(w, cookieRefresh)
		return
	}

	http.SetCookie(w, sessionCookie(cookieAccess, update.AccessToken, update.ExpiresIn))
	http.SetCookie(w, sessionCookie(cookieExpires, strconv.FormatInt(update.AccessExpiry, 10), update.ExpiresIn))
}
