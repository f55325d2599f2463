package spotify

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRecommendationQuerySeedBudget(t *testing.T) {
	genres := []string{"pop", "rock", "jazz", "blues", "soul"}
	artists := []string{"a1", "a2", "a3"}

	for nArtists := 0; nArtists <= len(artists); nArtists++ {
		for nGenres := 0; nGenres <= len(genres); nGenres++ {
			q := BuildRecommendationQuery(genres[:nGenres], artists[:nArtists], "", nil)

			total := len(q.SeedArtists) + len(q.SeedGenres)
			assert.LessOrEqual(t, total, maxSeeds,
				"artists=%d genres=%d", nArtists, nGenres)
			assert.Positive(t, total,
				"artists=%d genres=%d", nArtists, nGenres)
		}
	}
}

func TestBuildRecommendationQueryArtistPriority(t *testing.T) {
	q := BuildRecommendationQuery([]string{"pop", "rock", "jazz"}, []string{"a1", "a2", "a3"}, "US", nil)
	assert.Equal(t, []string{"a1", "a2", "a3"}, q.SeedArtists)
	// Three artists leave budget for two genres.
	assert.Equal(t, []string{"pop", "rock"}, q.SeedGenres)
	assert.Equal(t, "US", q.Market)
	assert.Equal(t, recommendationLimit, q.Limit)
}

func TestBuildRecommendationQueryDefaultsToPop(t *testing.T) {
	q := BuildRecommendationQuery(nil, nil, "", nil)
	assert.Empty(t, q.SeedArtists)
	assert.Equal(t, []string{"pop"}, q.SeedGenres)
}

func TestRecommendationQueryValues(t *testing.T) {
	q := RecommendationQuery{
		SeedArtists: []string{"a1", "a2"},
		SeedGenres:  []string{"pop", "rock"},
		Market:      "DE",
		Limit:       20,
		Features: map[string]float64{
			"target_valence": 0.85,
			"min_popularity": 40,
			"target_tempo":   120,         // not whitelisted
			"target_energy":  math.NaN(),  // not finite
			"target_liked":   math.Inf(1), // not whitelisted nor finite
		},
	}

	v := q.Values()
	assert.Equal(t, "20", v.Get("limit"))
	assert.Equal(t, "a1,a2", v.Get("seed_artists"))
	assert.Equal(t, "pop,rock", v.Get("seed_genres"))
	assert.Equal(t, "DE", v.Get("market"))
	assert.Equal(t, "0.85", v.Get("target_valence"))
	assert.Equal(t, "40", v.Get("min_popularity"))
	assert.False(t, v.Has("target_tempo"))
	assert.False(t, v.Has("target_energy"))
	assert.False(t, v.Has("target_liked"))
}

func TestRecommendationQueryValuesOmitsEmpty(t *testing.T) {
	v := RecommendationQuery{SeedGenres: []string{"pop"}, Limit: 20}.Values()
	assert.False(t, v.Has("seed_artists"))
	assert.False(t, v.Has("market"))
}

func TestRecommendationsShapesTracks(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/token":
			json.NewEncoder(w).Encode(TokenGrant{AccessToken: "app-token", ExpiresIn: 3600})
		case "/v1/recommendations":
			gotQuery = r.URL.Query()
			json.NewEncoder(w).Encode(map[string]interface{}{
				"tracks": []map[string]interface{}{
					{
						"id":   "t1",
						"name": "First",
						"artists": []map[string]string{
							{"name": "Alpha"}, {"name": "Beta"},
						},
						"external_urls": map[string]string{"spotify": "https://open.spotify.com/track/t1"},
						"preview_url":   "https://p.scdn.co/t1",
						"album": map[string]interface{}{
							"images": []map[string]string{
								{"url": "large.jpg"}, {"url": "medium.jpg"}, {"url": "small.jpg"},
							},
						},
					},
					{
						"id":   "t2",
						"name": "Second",
						"artists": []map[string]string{
							{"name": "Gamma"},
						},
						"album": map[string]interface{}{
							"images": []map[string]string{{"url": "only.jpg"}},
						},
					},
					{
						"id":    "t3",
						"name":  "Bare",
						"album": map[string]interface{}{},
					},
				},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	clock := time.Now()
	c := newTestClient(srv.URL, &clock)

	q := BuildRecommendationQuery([]string{"pop"}, nil, "US", map[string]float64{"target_valence": 0.85})
	tracks, err := c.Recommendations(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, "pop", gotQuery.Get("seed_genres"))
	assert.Equal(t, "US", gotQuery.Get("market"))
	assert.Equal(t, "0.85", gotQuery.Get("target_valence"))

	require.Len(t, tracks, 3)
	assert.Equal(t, "t1", tracks[0].ID)
	assert.Equal(t, "Alpha, Beta", tracks[0].Artists)
	assert.Equal(t, "medium.jpg", tracks[0].Image)
	assert.Equal(t, "https://open.spotify.com/track/t1", tracks[0].URL)
	assert.Equal(t, "only.jpg", tracks[1].Image)
	assert.Empty(t, tracks[2].Image)
}

func TestRecommendationsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/token":
			json.NewEncoder(w).Encode(TokenGrant{AccessToken: "app-token", ExpiresIn: 3600})
		default:
			http.Error(w, `{"error":{"status":404}}`, http.StatusNotFound)
		}
	}))
	defer srv.Close()

	clock := time.Now()
	c := newTestClient(srv.URL, &clock)

	_, err := c.Recommendations(context.Background(), BuildRecommendationQuery(nil, nil, "", nil))
	assert.ErrorIs(t, err, ErrUpstreamData)
}
