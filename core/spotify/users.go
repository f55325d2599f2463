package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// UserProfile is the slice of the Spotify profile this service cares about.
type UserProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Country     string `json:"country"`
}

// Me fetches the profile of the user behind the bearer token.
func (c *Client) Me(ctx context.Context, userToken string) (*UserProfile, error) {
	var profile UserProfile
	if err := c.getJSON(ctx, c.apiURL+"/v1/me", userToken, &profile); err != nil {
		return nil, fmt.Errorf("failed to fetch user profile: %w", err)
	}
	return &profile, nil
}

// TopArtistIDs fetches up to limit of the user's short-term top artist ids.
func (c *Client) TopArtistIDs(ctx context.Context, userToken string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 3
	}

	params := url.Values{
		"limit":      {strconv.Itoa(limit)},
		"time_range": {"short_term"},
	}

	var body struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	if err := c.getJSON(ctx, c.apiURL+"/v1/me/top/artists?"+params.Encode(), userToken, &body); err != nil {
		return nil, fmt.Errorf("failed to fetch top artists: %w", err)
	}

	ids := make([]string, 0, len(body.Items))
	for _, item := range body.Items {
		ids = append(ids, item.ID)
	}
	return ids, nil
}
