package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"sono/core/agent"
	"sono/core/spotify"
	"sono/core/trailer"
	"sono/logger"
	"sono/model"
)

// ChatHandler runs the streaming chat pipeline: model stream, mood
// extraction, recommendation lookup, trailer.
type ChatHandler struct {
	agent   *agent.MoodAgent
	spotify *spotify.Client
}

// pipelineTimeout bounds the whole request: model stream, extraction and
// every catalog call.
const pipelineTimeout = 2 * time.Minute

// topArtistLimit is how many of the user's top artists may seed a query.
const topArtistLimit = 3

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(moodAgent *agent.MoodAgent, spotifyClient *spotify.Client) *ChatHandler {
	return &ChatHandler{
		agent:   moodAgent,
		spotify: spotifyClient,
	}
}

// StreamChatHandler streams the conversational reply as plain text and
// appends one structured trailer block. Once the first token is written,
// headers are committed: every later failure surfaces as an inline
// diagnostic or as degraded trailer data, never as an HTTP error.
func (h *ChatHandler) StreamChatHandler(w http.ResponseWriter, r *http.Request) {
	var req model.ChatStreamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Messages) == 0 {
		http.Error(w, "Messages required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), pipelineTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, _ := w.(http.Flusher)
	writeChunk := func(b []byte) error {
		if _, err := w.Write(b); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	}

	fullText, err := h.agent.ChatStream(ctx, req.Messages, func(chunk string) error {
		return writeChunk([]byte(chunk))
	})
	if err != nil {
		// Either the upstream stream broke or the client went away. The
		// diagnostic write is best-effort; a dead connection drops it.
		logger.Error("chat stream failed", logger.ErrorField(err))
		writeChunk(trailer.ErrorLine(err.Error()))
		return
	}

	// Extraction phase. Nothing is written while this runs.
	userToken, update := h.spotify.ResolveSession(ctx, sessionFromRequest(r))
	applySessionUpdate(w, update)

	var market string
	var topArtists []string
	if userToken != "" {
		if me, err := h.spotify.Me(ctx, userToken); err != nil {
			logger.Warn("user profile lookup failed", logger.ErrorField(err))
		} else {
			market = me.Country
		}
		if ids, err := h.spotify.TopArtistIDs(ctx, userToken, topArtistLimit); err != nil {
			logger.Warn("top artists lookup failed", logger.ErrorField(err))
		} else {
			topArtists = ids
		}
	}

	conversation := make([]model.ConversationMessage, 0, len(req.Messages)+1)
	conversation = append(conversation, req.Messages...)
	conversation = append(conversation, model.ConversationMessage{Role: "assistant", Content: fullText})

	profile := h.agent.ExtractMoodProfile(ctx, conversation)

	seeds := h.spotify.GenreSeeds(ctx)
	genres := spotify.CleanGenres(profile.Genres, spotify.SeedSet(seeds))
	if genres == nil {
		genres = []string{}
	}

	features := profile.Features
	if len(features) == 0 {
		features = agent.MoodToFeatures(profile.Mood)
	}

	query := spotify.BuildRecommendationQuery(genres, topArtists, market, features)
	tracks, err := h.spotify.Recommendations(ctx, query)
	if err != nil {
		logger.Warn("recommendation lookup failed", logger.ErrorField(err))
		tracks = nil
	}
	if tracks == nil {
		tracks = []model.Track{}
	}

	block, err := trailer.Encode(model.TrailerPayload{
		Mood:     profile.Mood,
		Genres:   genres,
		Features: features,
		Tracks:   tracks,
	})
	if err != nil {
		logger.Error("trailer encode failed", logger.ErrorField(err))
		writeChunk(trailer.ErrorLine("failed to encode recommendations"))
		return
	}

	if err := writeChunk(block); err != nil {
		logger.Warn("client disconnected before trailer", logger.ErrorField(err))
		return
	}

	logger.Info("chat turn completed",
		logger.Int("responseLength", len(fullText)),
		logger.String("mood", profile.Mood),
		logger.Int("genres", len(genres)),
		logger.Int("tracks", len(tracks)))
}
