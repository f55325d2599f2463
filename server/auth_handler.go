package server

import (
	"net/http"
	"net/url"
	"strconv"

	"sono/config"
	"sono/core/spotify"
	"sono/logger"

	"github.com/google/uuid"
)

// AuthHandler implements the Spotify OAuth cookie flow. The only CSRF
// protection is the state nonce; anything stronger is out of scope.
type AuthHandler struct {
	spotify *spotify.Client
	cfg     *config.Config
}

const stateCookieMaxAge = 10 * 60 // seconds

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(spotifyClient *spotify.Client, cfg *config.Config) *AuthHandler {
	return &AuthHandler{spotify: spotifyClient, cfg: cfg}
}

// LoginHandler redirects the browser to the Spotify authorize page.
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, sessionCookie(cookieState, state, stateCookieMaxAge))

	params := url.Values{
		"client_id":     {h.cfg.SpotifyClientID},
		"response_type": {"code"},
		"redirect_uri":  {h.cfg.SpotifyRedirectURI},
		"scope":         {h.cfg.SpotifyScopes},
		"state":         {state},
	}
	http.Redirect(w, r, h.cfg.SpotifyAccountsURL+"/authorize?"+params.Encode(), http.StatusFound)
}

// CallbackHandler exchanges the authorization code and sets the session
// cookies.
func (h *AuthHandler) CallbackHandler(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")

	stateCookie, err := r.Cookie(cookieState)
	if code == "" || err != nil || state != stateCookie.Value {
		http.Error(w, "Invalid auth state", http.StatusBadRequest)
		return
	}
	clearCookie(w, cookieState)

	grant, err := h.spotify.ExchangeCode(r.Context(), code)
	if err != nil {
		logger.Error("auth code exchange failed", logger.ErrorField(err))
		http.Error(w, "Auth failed", http.StatusBadRequest)
		return
	}

	expiresIn := grant.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 3600
	}

	http.SetCookie(w, sessionCookie(cookieAccess, grant.AccessToken, expiresIn))
	http.SetCookie(w, sessionCookie(cookieExpires, strconv.FormatInt(nowUnix()+int64(expiresIn), 10), expiresIn))
	if grant.RefreshToken != "" {
		http.SetCookie(w, sessionCookie(cookieRefresh, grant.RefreshToken, refreshCookieMaxAge))
	}

	http.Redirect(w, r, h.cfg.AppOrigin+"/sono/#/chatbot", http.StatusFound)
}

// LogoutHandler clears the session cookies.
func (h *AuthHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	clearCookie(w, cookieAccess)
	clearCookie(w, cookieExpires)
	clearCookie(w, cookieRefresh)
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// StatusHandler reports whether the session is connected, with the profile
// slice the frontend shows.
func (h *AuthHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	token, update := h.spotify.ResolveSession(r.Context(), sessionFromRequest(r))
	applySessionUpdate(w, update)

	if token == "" {
		writeJSON(w, http.StatusOK, map[string]interface{}{"connected": false})
		return
	}

	me, err := h.spotify.Me(r.Context(), token)
	if err != nil {
		logger.Warn("status profile lookup failed", logger.ErrorField(err))
		writeJSON(w, http.StatusOK, map[string]interface{}{"connected": false})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"connected": true,
		"profile": map[string]string{
			"id":           me.ID,
			"display_name": me.DisplayName,
			"country":      me.Country,
		},
	})
}
