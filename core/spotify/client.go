// Package spotify implements the catalog-service client: app and user token
// handling, the genre seed vocabulary, recommendation queries and track
// search. Every call is single-attempt; failures degrade at the call site,
// there are no retry loops.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"sono/config"
)

var (
	// ErrMissingCredentials means the Spotify client id/secret are unset.
	// Fatal at first use; not a per-request condition.
	ErrMissingCredentials = errors.New("missing SPOTIFY_CLIENT_ID or SPOTIFY_CLIENT_SECRET")

	// ErrUpstreamAuth means a credential or refresh exchange was rejected.
	ErrUpstreamAuth = errors.New("spotify auth exchange rejected")

	// ErrUpstreamData means a read endpoint returned a non-2xx status or a
	// malformed body. Callers degrade to empty or default data.
	ErrUpstreamData = errors.New("spotify data request failed")
)

// Client is the Spotify Web API client. It owns the two process-wide caches:
// the app-credential token and the genre seed vocabulary.
type Client struct {
	clientID     string
	clientSecret string
	redirectURI  string
	accountsURL  string
	apiURL       string

	httpClient *http.Client
	now        func() time.Time

	tokenMu        sync.Mutex
	appToken       string
	appTokenExpiry time.Time

	seedMu         sync.Mutex
	seeds          []string
	seedsFetchedAt time.Time
}

// NewClient creates a Spotify client from the application configuration.
func NewClient(cfg *config.Config) *Client {
	return &Client{
		clientID:     cfg.SpotifyClientID,
		clientSecret: cfg.SpotifyClientSecret,
		redirectURI:  cfg.SpotifyRedirectURI,
		accountsURL:  strings.TrimSuffix(cfg.SpotifyAccountsURL, "/"),
		apiURL:       strings.TrimSuffix(cfg.SpotifyAPIURL, "/"),
		httpClient:   &http.Client{Timeout: 15 * time.Second},
		now:          time.Now,
	}
}

// getJSON issues a bearer-authenticated GET and decodes the JSON body into v.
func (c *Client) getJSON(ctx context.Context, rawURL, token string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamData, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s returned %d: %s", ErrUpstreamData, req.URL.Path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamData, err)
	}
	return nil
}

// postForm issues a form-encoded POST against the accounts service.
// basicAuth selects the client-credential header style; the token grants for
// code exchange and refresh carry the credentials in the form body instead.
func (c *Client) postForm(ctx context.Context, rawURL string, form url.Values, basicAuth bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if basicAuth {
		req.SetBasicAuth(c.clientID, c.clientSecret)
	}
	return c.httpClient.Do(req)
}
