package spotify

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"sono/model"
)

// maxSeeds is the catalog's hard limit on seed_artists + seed_genres.
const maxSeeds = 5

// recommendationLimit is the fixed track count requested per query.
const recommendationLimit = 20

// featureWhitelist is the only set of audio feature keys forwarded upstream.
// Anything else the extractor invents is dropped silently.
var featureWhitelist = []string{
	"target_valence",
	"target_energy",
	"target_danceability",
	"target_acousticness",
	"target_instrumentalness",
	"min_popularity",
}

// RecommendationQuery is one bounded query against the recommendation
// endpoint. Invariant: len(SeedArtists)+len(SeedGenres) <= maxSeeds.
type RecommendationQuery struct {
	SeedArtists []string
	SeedGenres  []string
	Market      string
	Features    map[string]float64
	Limit       int
}

// BuildRecommendationQuery fuses cleaned genres, the user's top artists and
// market into a single query. Artists take seed priority; genres fill the
// remaining budget. Without artists, genres alone seed the query, defaulting
// to pop when empty.
func BuildRecommendationQuery(genres, topArtists []string, market string, features map[string]float64) RecommendationQuery {
	q := RecommendationQuery{
		Market:   market,
		Features: features,
		Limit:    recommendationLimit,
	}

	if len(topArtists) > 0 {
		if len(topArtists) > maxSeeds {
			topArtists = topArtists[:maxSeeds]
		}
		q.SeedArtists = topArtists

		budget := maxSeeds - len(topArtists)
		if len(genres) > budget {
			genres = genres[:budget]
		}
		q.SeedGenres = genres
		return q
	}

	if len(genres) == 0 {
		genres = []string{"pop"}
	}
	if len(genres) > maxSeeds {
		genres = genres[:maxSeeds]
	}
	q.SeedGenres = genres
	return q
}

// Values encodes the query as recommendation endpoint parameters. Only
// whitelisted, finite numeric features are stringified.
func (q RecommendationQuery) Values() url.Values {
	v := url.Values{}
	v.Set("limit", strconv.Itoa(q.Limit))

	if len(q.SeedArtists) > 0 {
		v.Set("seed_artists", strings.Join(q.SeedArtists, ","))
	}
	if len(q.SeedGenres) > 0 {
		v.Set("seed_genres", strings.Join(q.SeedGenres, ","))
	}
	if q.Market != "" {
		v.Set("market", q.Market)
	}

	for _, key := range featureWhitelist {
		val, ok := q.Features[key]
		if !ok || math.IsNaN(val) || math.IsInf(val, 0) {
			continue
		}
		v.Set(key, strconv.FormatFloat(val, 'f', -1, 64))
	}

	return v
}

// recommendationsResponse is the recommendation endpoint's wire shape.
type recommendationsResponse struct {
	Tracks []struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		Artists []struct {
			Name string `json:"name"`
		} `json:"artists"`
		ExternalURLs struct {
			Spotify string `json:"spotify"`
		} `json:"external_urls"`
		PreviewURL string `json:"preview_url"`
		Album      struct {
			Images []struct {
				URL string `json:"url"`
			} `json:"images"`
		} `json:"album"`
	} `json:"tracks"`
}

// Recommendations issues one recommendation request with the app token and
// shapes the result. Recommendation reads use service-level auth regardless
// of whose artists seeded the query.
func (c *Client) Recommendations(ctx context.Context, q RecommendationQuery) ([]model.Track, error) {
	token, err := c.AppToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve app token for recommendations: %w", err)
	}

	var body recommendationsResponse
	if err := c.getJSON(ctx, c.apiURL+"/v1/recommendations?"+q.Values().Encode(), token, &body); err != nil {
		return nil, err
	}

	tracks := make([]model.Track, 0, len(body.Tracks))
	for _, t := range body.Tracks {
		names := make([]string, 0, len(t.Artists))
		for _, a := range t.Artists {
			names = append(names, a.Name)
		}

		// Prefer the mid-size artwork when the album carries several.
		var image string
		if len(t.Album.Images) > 1 {
			image = t.Album.Images[1].URL
		} else if len(t.Album.Images) == 1 {
			image = t.Album.Images[0].URL
		}

		tracks = append(tracks, model.Track{
			ID:         t.ID,
			Name:       t.Name,
			Artists:    strings.Join(names, ", "),
			URL:        t.ExternalURLs.Spotify,
			PreviewURL: t.PreviewURL,
			Image:      image,
		})
	}
	return tracks, nil
}
