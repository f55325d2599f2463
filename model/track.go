package model

// Track is the compact client-facing shape of a recommended track.
type Track struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Artists    string `json:"artists"` // display names, comma-joined
	URL        string `json:"url"`
	PreviewURL string `json:"preview_url"`
	Image      string `json:"image"` // empty when the album has no artwork
}

// SearchTrack is the shape returned by the track search proxy.
type SearchTrack struct {
	Title   string `json:"title"`
	Artist  string `json:"artist"`
	Image   string `json:"image"`
	TrackID string `json:"track_id"`
}
