package spotify

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"sono/model"
)

// SearchTracks proxies a track search on behalf of a connected user.
func (c *Client) SearchTracks(ctx context.Context, userToken, query string, limit int) ([]model.SearchTrack, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	params := url.Values{
		"q":     {query},
		"type":  {"track"},
		"limit": {strconv.Itoa(limit)},
	}

	var body struct {
		Tracks struct {
			Items []struct {
				ID      string `json:"id"`
				Name    string `json:"name"`
				Artists []struct {
					Name string `json:"name"`
				} `json:"artists"`
				Album struct {
					Images []struct {
						URL string `json:"url"`
					} `json:"images"`
				} `json:"album"`
			} `json:"items"`
		} `json:"tracks"`
	}
	if err := c.getJSON(ctx, c.apiURL+"/v1/search?"+params.Encode(), userToken, &body); err != nil {
		return nil, err
	}

	tracks := make([]model.SearchTrack, 0, len(body.Tracks.Items))
	for _, item := range body.Tracks.Items {
		names := make([]string, 0, len(item.Artists))
		for _, a := range item.Artists {
			names = append(names, a.Name)
		}

		var image string
		if len(item.Album.Images) > 0 {
			image = item.Album.Images[0].URL
		}

		tracks = append(tracks, model.SearchTrack{
			Title:   item.Name,
			Artist:  strings.Join(names, ", "),
			Image:   image,
			TrackID: item.ID,
		})
	}
	return tracks, nil
}
