package spotify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient builds a client pointing both base URLs at the given fake
// server, with a fixed clock the tests can advance.
func newTestClient(srvURL string, clock *time.Time) *Client {
	return &Client{
		clientID:     "id",
		clientSecret: "secret",
		redirectURI:  "http://localhost/callback",
		accountsURL:  srvURL,
		apiURL:       srvURL,
		httpClient:   &http.Client{Timeout: 5 * time.Second},
		now:          func() time.Time { return *clock },
	}
}

func newGrantServer(t *testing.T, grants *int, expiresIn int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/token", r.URL.Path)
		*grants++
		json.NewEncoder(w).Encode(TokenGrant{
			AccessToken: "app-token",
			TokenType:   "Bearer",
			ExpiresIn:   expiresIn,
		})
	}))
}

func TestAppTokenMissingCredentials(t *testing.T) {
	clock := time.Now()
	c := newTestClient("http://unused", &clock)
	c.clientID = ""

	_, err := c.AppToken(context.Background())
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestAppTokenCachedUntilSkewedExpiry(t *testing.T) {
	grants := 0
	srv := newGrantServer(t, &grants, 3600)
	defer srv.Close()

	clock := time.Now()
	c := newTestClient(srv.URL, &clock)

	token, err := c.AppToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "app-token", token)
	assert.Equal(t, 1, grants)

	// Well inside the 3600s lifetime: served from cache.
	clock = clock.Add(30 * time.Minute)
	_, err = c.AppToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, grants)

	// Inside the 60s skew window before nominal expiry: re-exchanged.
	clock = clock.Add(30*time.Minute - 30*time.Second)
	_, err = c.AppToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, grants)
}

func TestAppTokenRejectedGrant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	clock := time.Now()
	c := newTestClient(srv.URL, &clock)

	_, err := c.AppToken(context.Background())
	assert.ErrorIs(t, err, ErrUpstreamAuth)
}

func TestExchangeCodeCarriesCredentialsInForm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "the-code", r.PostForm.Get("code"))
		assert.Equal(t, "http://localhost/callback", r.PostForm.Get("redirect_uri"))
		assert.Equal(t, "id", r.PostForm.Get("client_id"))
		assert.Equal(t, "secret", r.PostForm.Get("client_secret"))
		assert.Empty(t, r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(TokenGrant{
			AccessToken:  "user-token",
			RefreshToken: "refresh-token",
			ExpiresIn:    3600,
		})
	}))
	defer srv.Close()

	clock := time.Now()
	c := newTestClient(srv.URL, &clock)

	grant, err := c.ExchangeCode(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "user-token", grant.AccessToken)
	assert.Equal(t, "refresh-token", grant.RefreshToken)
}

func TestTokenGrantEmptyAccessToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(TokenGrant{TokenType: "Bearer"})
	}))
	defer srv.Close()

	clock := time.Now()
	c := newTestClient(srv.URL, &clock)

	_, err := c.ExchangeCode(context.Background(), "the-code")
	assert.ErrorIs(t, err, ErrUpstreamAuth)
}
