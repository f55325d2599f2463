package server

import (
	"net/http"

	"sono/core/spotify"
	"sono/logger"
	"sono/model"
)

// SearchHandler proxies track searches for a connected session.
type SearchHandler struct {
	spotify *spotify.Client
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(spotifyClient *spotify.Client) *SearchHandler {
	return &SearchHandler{spotify: spotifyClient}
}

// SearchTracksHandler handles GET /api/spotify/search?q=...
func (h *SearchHandler) SearchTracksHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing search query"})
		return
	}

	token, update := h.spotify.ResolveSession(r.Context(), sessionFromRequest(r))
	applySessionUpdate(w, update)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not connected to Spotify"})
		return
	}

	tracks, err := h.spotify.SearchTracks(r.Context(), token, query, 50)
	if err != nil {
		logger.Error("spotify search failed",
			logger.String("query", query),
			logger.ErrorField(err))
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "Spotify search failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string][]model.SearchTrack{"tracks": tracks})
}
