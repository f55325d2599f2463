package spotify

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"sono/cache"
	"sono/logger"
)

// seedCacheTTL is the freshness window of the genre seed vocabulary. The
// fallback list is cached under the same window so a failing upstream is not
// hammered once per request.
const seedCacheTTL = 24 * time.Hour

// fallbackGenreSeeds is served when the seed listing cannot be fetched.
var fallbackGenreSeeds = []string{
	"acoustic", "afrobeat", "alt-rock", "alternative", "ambient", "blues", "chill", "classical",
	"country", "dance", "disco", "edm", "electronic", "folk", "funk", "gospel", "grunge", "guitar",
	"happy", "hip-hop", "house", "indie", "indie-pop", "jazz", "k-pop", "latin", "metal", "pop",
	"punk", "r-n-b", "reggae", "rock", "sad", "soul", "study", "techno", "trance",
}

// defaultGenres substitutes when no extracted genre survives seed filtering.
var defaultGenres = []string{"pop", "indie", "alternative"}

// maxGenres bounds how many genre slugs a profile contributes.
const maxGenres = 3

// GenreSeeds returns the catalog's valid genre vocabulary. Served from the
// process cache inside the freshness window, then from the Redis mirror,
// then fetched; any fetch failure serves and caches the fallback list.
func (c *Client) GenreSeeds(ctx context.Context) []string {
	c.seedMu.Lock()
	defer c.seedMu.Unlock()

	if c.seeds != nil && c.now().Sub(c.seedsFetchedAt) < seedCacheTTL {
		return c.seeds
	}

	if seeds, err := cache.GetGenreSeeds(ctx); err == nil && len(seeds) > 0 {
		c.seeds = seeds
		c.seedsFetchedAt = c.now()
		return c.seeds
	}

	seeds, err := c.fetchGenreSeeds(ctx)
	if err != nil {
		logger.Warn("genre seed fetch failed, using fallback list",
			logger.ErrorField(err))
		c.seeds = fallbackGenreSeeds
		c.seedsFetchedAt = c.now()
		return c.seeds
	}

	c.seeds = seeds
	c.seedsFetchedAt = c.now()

	// Best-effort mirror; only real upstream data is shared across processes.
	if err := cache.SetGenreSeeds(ctx, seeds, seedCacheTTL); err != nil {
		logger.Warn("failed to mirror genre seeds", logger.ErrorField(err))
	}

	return c.seeds
}

func (c *Client) fetchGenreSeeds(ctx context.Context) ([]string, error) {
	token, err := c.AppToken(ctx)
	if err != nil {
		return nil, err
	}

	var body struct {
		Genres []string `json:"genres"`
	}
	if err := c.getJSON(ctx, c.apiURL+"/v1/recommendations/available-genre-seeds", token, &body); err != nil {
		return nil, err
	}
	if len(body.Genres) == 0 {
		return nil, fmt.Errorf("%w: seed listing was empty", ErrUpstreamData)
	}
	return body.Genres, nil
}

var (
	nonGenreChars   = regexp.MustCompile(`[^\w\s-]`)
	innerWhitespace = regexp.MustCompile(`\s+`)
)

// NormalizeGenre lowercases a raw genre, strips everything outside word
// characters, whitespace and hyphens, and collapses inner whitespace to
// hyphens, yielding the catalog's kebab-case slug form.
func NormalizeGenre(s string) string {
	s = strings.ToLower(s)
	s = nonGenreChars.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	return innerWhitespace.ReplaceAllString(s, "-")
}

// SeedSet builds a membership set of normalized seed slugs.
func SeedSet(seeds []string) map[string]struct{} {
	set := make(map[string]struct{}, len(seeds))
	for _, s := range seeds {
		set[NormalizeGenre(s)] = struct{}{}
	}
	return set
}

// CleanGenres normalizes and de-duplicates raw genres preserving first-seen
// order, keeps only members of the seed set, and caps the result at
// maxGenres. Zero survivors substitute the default list, filtered the same
// way.
func CleanGenres(raw []string, seedSet map[string]struct{}) []string {
	seen := make(map[string]struct{}, len(raw))
	filtered := make([]string, 0, maxGenres)

	for _, g := range raw {
		n := NormalizeGenre(g)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		if _, ok := seedSet[n]; ok {
			filtered = append(filtered, n)
		}
	}

	if len(filtered) == 0 {
		for _, g := range defaultGenres {
			if _, ok := seedSet[g]; ok {
				filtered = append(filtered, g)
			}
		}
	}

	if len(filtered) > maxGenres {
		filtered = filtered[:maxGenres]
	}
	return filtered
}
