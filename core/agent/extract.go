package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"sono/logger"
	"sono/model"

	openai "github.com/sashabaranov/go-openai"
)

// ErrExtractionParse means the structured completion response was not the
// single JSON object the system instruction demands.
var ErrExtractionParse = errors.New("extraction response is not valid JSON")

// System prompt for the structured extraction side-channel.
const extractSystemPrompt = `You are SONO's music mood expert.
Return ONLY JSON:
{"mood":"","genres":[],"artists_hint":[],"features":{"target_valence":0.0,"target_energy":0.0,"target_danceability":0.0},"reason":""}
- Genres must be Spotify seed genres (kebab-case).`

// moodKeywordGroups drives the keyword fallback over the last user message.
// Ordered; the first group with a matching keyword wins.
var moodKeywordGroups = []struct {
	mood     string
	keywords []string
}{
	{"sad", []string{"sad", "down", "blue"}},
	{"happy", []string{"happy", "excited", "joy"}},
	{"chill", []string{"chill", "calm", "relax"}},
	{"angry", []string{"angry", "mad", "frustrated"}},
}

// ExtractMoodProfile derives a mood profile from the full conversation,
// including the just-generated assistant reply. Structured extraction errors
// degrade to the keyword fallback; this never fails.
func (a *MoodAgent) ExtractMoodProfile(ctx context.Context, messages []model.ConversationMessage) model.MoodProfile {
	profile, err := a.extractStructured(ctx, messages)
	if err != nil {
		logger.Warn("structured mood extraction failed, using keyword fallback",
			logger.ErrorField(err))
		return FallbackProfile(messages)
	}
	return profile
}

// extractStructured asks the completion service for a single JSON object.
func (a *MoodAgent) extractStructured(ctx context.Context, messages []model.ConversationMessage) (model.MoodProfile, error) {
	req := openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: 0.2,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: buildMessages(extractSystemPrompt, messages),
	}

	resp, err := a.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return model.MoodProfile{}, fmt.Errorf("extraction request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return model.MoodProfile{}, fmt.Errorf("extraction returned no choices")
	}

	var profile model.MoodProfile
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &profile); err != nil {
		return model.MoodProfile{}, fmt.Errorf("%w: %v", ErrExtractionParse, err)
	}
	return profile, nil
}

// FallbackProfile classifies the last user message by keyword matching. The
// result carries no genres or features; the recommendation query builder
// fills those from its own defaults.
func FallbackProfile(messages []model.ConversationMessage) model.MoodProfile {
	var last string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			last = strings.ToLower(messages[i].Content)
			break
		}
	}

	mood := "mixed"
	for _, group := range moodKeywordGroups {
		if containsAny(last, group.keywords) {
			mood = group.mood
			break
		}
	}

	return model.MoodProfile{
		Mood:        mood,
		Genres:      []string{},
		ArtistsHint: []string{},
		Features:    map[string]float64{},
		Reason:      "Mood: " + mood,
	}
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
