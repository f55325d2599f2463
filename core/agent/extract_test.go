package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"sono/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackProfileKeywords(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{"I feel really happy today", "happy"},
		{"so excited for tonight", "happy"},
		{"been feeling down lately", "sad"},
		{"just want to relax", "chill"},
		{"I'm so mad right now", "angry"},
		{"tell me about jazz history", "mixed"},
	}

	for _, tt := range tests {
		profile := FallbackProfile([]model.ConversationMessage{{Role: "user", Content: tt.content}})
		assert.Equal(t, tt.want, profile.Mood, "content: %s", tt.content)
		assert.Equal(t, "Mood: "+tt.want, profile.Reason)
		assert.Empty(t, profile.Genres)
		assert.Empty(t, profile.Features)
	}
}

func TestFallbackProfileGroupOrder(t *testing.T) {
	// sad group is checked before happy; a message matching both yields sad.
	profile := FallbackProfile([]model.ConversationMessage{
		{Role: "user", Content: "I'm happy but a bit down"},
	})
	assert.Equal(t, "sad", profile.Mood)
}

func TestFallbackProfileUsesLastUserMessage(t *testing.T) {
	profile := FallbackProfile([]model.ConversationMessage{
		{Role: "user", Content: "I feel sad"},
		{Role: "assistant", Content: "Here is something happy to cheer you up"},
		{Role: "user", Content: "now I feel happy"},
		{Role: "assistant", Content: "glad to hear it"},
	})
	assert.Equal(t, "happy", profile.Mood)
}

func TestFallbackProfileNoUserMessage(t *testing.T) {
	profile := FallbackProfile([]model.ConversationMessage{
		{Role: "assistant", Content: "happy to help"},
	})
	assert.Equal(t, "mixed", profile.Mood)
}

// newCompletionServer fakes the non-streaming chat completion endpoint,
// returning content as the assistant message and capturing each request.
func newCompletionServer(t *testing.T, content string, gotMessages *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)

		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if gotMessages != nil {
			*gotMessages = len(req.Messages)
		}

		resp := map[string]interface{}{
			"id":      "cmpl-1",
			"object":  "chat.completion",
			"created": 0,
			"model":   "gpt-4o-mini",
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"message":       map[string]string{"role": "assistant", "content": content},
					"finish_reason": "stop",
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestExtractMoodProfileStructured(t *testing.T) {
	content := `{"mood":"chill","genres":["Lo-Fi","ambient"],"artists_hint":["Tycho"],"features":{"target_energy":0.3},"reason":"winding down"}`
	srv := newCompletionServer(t, content, nil)
	defer srv.Close()

	a := New(&Config{APIKey: "test", BaseURL: srv.URL + "/v1"})
	profile := a.ExtractMoodProfile(context.Background(), []model.ConversationMessage{
		{Role: "user", Content: "long day, want to wind down"},
	})

	assert.Equal(t, "chill", profile.Mood)
	assert.Equal(t, []string{"Lo-Fi", "ambient"}, profile.Genres)
	assert.Equal(t, map[string]float64{"target_energy": 0.3}, profile.Features)
	assert.Equal(t, "winding down", profile.Reason)
}

func TestExtractMoodProfileParseFailureFallsBack(t *testing.T) {
	srv := newCompletionServer(t, "sorry, no JSON here", nil)
	defer srv.Close()

	a := New(&Config{APIKey: "test", BaseURL: srv.URL + "/v1"})
	profile := a.ExtractMoodProfile(context.Background(), []model.ConversationMessage{
		{Role: "user", Content: "I feel really happy today"},
	})

	assert.Equal(t, "happy", profile.Mood)
	assert.Empty(t, profile.Genres)
	assert.Equal(t, "Mood: happy", profile.Reason)
}

func TestExtractMoodProfileTransportFailureFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := New(&Config{APIKey: "test", BaseURL: srv.URL + "/v1"})
	profile := a.ExtractMoodProfile(context.Background(), []model.ConversationMessage{
		{Role: "user", Content: "feeling calm tonight"},
	})

	assert.Equal(t, "chill", profile.Mood)
}

func TestExtractForwardsBoundedWindow(t *testing.T) {
	var gotMessages int
	srv := newCompletionServer(t, `{"mood":"mixed"}`, &gotMessages)
	defer srv.Close()

	var conversation []model.ConversationMessage
	for i := 0; i < 30; i++ {
		conversation = append(conversation, model.ConversationMessage{
			Role:    "user",
			Content: fmt.Sprintf("message %d", i),
		})
	}

	a := New(&Config{APIKey: "test", BaseURL: srv.URL + "/v1"})
	a.ExtractMoodProfile(context.Background(), conversation)

	// System instruction plus the last 12 conversation messages.
	assert.Equal(t, 13, gotMessages)
}
