package model

// ConversationMessage is a single role-tagged message in a chat exchange.
type ConversationMessage struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// ChatStreamRequest is the body of the streaming chat endpoint.
type ChatStreamRequest struct {
	Messages []ConversationMessage `json:"messages"`
}

// MoodProfile is the structured result of mood extraction for one chat turn.
// It is ephemeral; nothing persists it.
type MoodProfile struct {
	Mood        string             `json:"mood"`
	Genres      []string           `json:"genres"`
	ArtistsHint []string           `json:"artists_hint"`
	Features    map[string]float64 `json:"features"`
	Reason      string             `json:"reason"`
}

// TrailerPayload is the structured block appended after the streamed prose.
type TrailerPayload struct {
	Mood     string             `json:"mood"`
	Genres   []string           `json:"genres"`
	Features map[string]float64 `json:"features"`
	Tracks   []Track            `json:"tracks"`
}
