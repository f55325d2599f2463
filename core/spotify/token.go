package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"time"

	"sono/logger"
)

// TokenGrant is the accounts service's token grant body, shared by the
// client-credential, authorization-code and refresh grants.
type TokenGrant struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

// appTokenSkew keeps a token from being served close to its declared expiry.
const appTokenSkew = 60 * time.Second

// AppToken returns a service-level bearer token for catalog reads that need
// no user identity, exchanging client credentials on miss or expiry.
func (c *Client) AppToken(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	if c.appToken != "" && c.now().Before(c.appTokenExpiry) {
		token := c.appToken
		c.tokenMu.Unlock()
		return token, nil
	}
	c.tokenMu.Unlock()

	if c.clientID == "" || c.clientSecret == "" {
		return "", ErrMissingCredentials
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	resp, err := c.postForm(ctx, c.accountsURL+"/api/token", form, true)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: credential grant returned %d: %s", ErrUpstreamAuth, resp.StatusCode, string(body))
	}

	var data TokenGrant
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("%w: malformed grant response: %v", ErrUpstreamAuth, err)
	}
	if data.AccessToken == "" {
		return "", fmt.Errorf("%w: grant response carried no access token", ErrUpstreamAuth)
	}

	expiry := c.now().Add(time.Duration(data.ExpiresIn)*time.Second - appTokenSkew)

	c.tokenMu.Lock()
	c.appToken = data.AccessToken
	c.appTokenExpiry = expiry
	c.tokenMu.Unlock()

	logger.Debug("spotify app token obtained",
		logger.Int("expiresIn", data.ExpiresIn))

	return data.AccessToken, nil
}

// ExchangeCode trades an OAuth authorization code for user tokens.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenGrant, error) {
	form := url.Values{
		"grant_type":    {"authorization_code"},
		"code":          {code},
		"redirect_uri":  {c.redirectURI},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	}
	return c.tokenGrant(ctx, form)
}

// refreshAccessToken trades a refresh token for a new access token.
func (c *Client) refreshAccessToken(ctx context.Context, refreshToken string) (*TokenGrant, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
	}
	return c.tokenGrant(ctx, form)
}

func (c *Client) tokenGrant(ctx context.Context, form url.Values) (*TokenGrant, error) {
	resp, err := c.postForm(ctx, c.accountsURL+"/api/token", form, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: token grant returned %d", ErrUpstreamAuth, resp.StatusCode)
	}

	var data TokenGrant
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: malformed grant response: %v", ErrUpstreamAuth, err)
	}
	if data.AccessToken == "" {
		return nil, fmt.Errorf("%w: grant response carried no access token", ErrUpstreamAuth)
	}
	return &data, nil
}
