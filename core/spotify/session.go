package spotify

import (
	"context"

	"sono/logger"
)

// SessionCredentials are the user tokens carried on the request; the server
// holds no session state of its own.
type SessionCredentials struct {
	AccessToken  string
	AccessExpiry int64 // unix seconds
	RefreshToken string
}

// TokenUpdate tells the HTTP layer how to rewrite the session cookies after
// a resolution. Cleared means the refresh grant was rejected and the session
// is no longer connected.
type TokenUpdate struct {
	AccessToken  string
	AccessExpiry int64 // unix seconds
	ExpiresIn    int   // seconds, for cookie max-age
	Cleared      bool
}

// refreshSkewSec refreshes tokens that are about to expire rather than
// racing the upstream clock.
const refreshSkewSec = 30

// ResolveSession returns a valid user bearer token for the carried
// credentials, or "" when the session is not (or no longer) connected.
// A single refresh attempt is made when the access token is missing or
// expiring; refresh failure is terminal, never retried.
func (c *Client) ResolveSession(ctx context.Context, creds SessionCredentials) (string, *TokenUpdate) {
	if creds.RefreshToken == "" {
		return "", nil
	}

	if creds.AccessToken != "" && c.now().Unix() < creds.AccessExpiry-refreshSkewSec {
		return creds.AccessToken, nil
	}

	data, err := c.refreshAccessToken(ctx, creds.RefreshToken)
	if err != nil {
		logger.Warn("spotify token refresh failed, clearing session",
			logger.ErrorField(err))
		return "", &TokenUpdate{Cleared: true}
	}

	expiresIn := data.ExpiresIn
	if expiresIn == 0 {
		expiresIn = 3600
	}

	return data.AccessToken, &TokenUpdate{
		AccessToken:  data.AccessToken,
		AccessExpiry: c.now().Unix() + int64(expiresIn),
		ExpiresIn:    expiresIn,
	}
}
