package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"sono/logger"
	"sono/model"

	openai "github.com/sashabaranov/go-openai"
)

// Config contains configuration for the mood agent.
type Config struct {
	APIKey  string
	BaseURL string // empty uses the official endpoint
	Model   string
}

// MoodAgent talks to the OpenAI-compatible completion service: streaming
// conversational replies and structured mood extraction.
type MoodAgent struct {
	client *openai.Client
	model  string
}

// System prompt for the conversational stream.
const chatSystemPrompt = `You are SONO's friendly music guide. Be concise, empathetic, and conversational.`

// historyWindow bounds how many trailing messages are forwarded upstream,
// keeping token cost and latency flat as conversations grow.
const historyWindow = 12

// New creates a new mood agent.
func New(cfg *Config) *MoodAgent {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &MoodAgent{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}
}

// buildMessages constructs the upstream message array: the system instruction
// followed by the last historyWindow conversation messages.
func buildMessages(systemInstruction string, messages []model.ConversationMessage) []openai.ChatCompletionMessage {
	if len(messages) > historyWindow {
		messages = messages[len(messages)-historyWindow:]
	}

	out := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	out = append(out, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemInstruction,
	})
	for _, msg := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	return out
}

// StreamCallback is called for each content delta of the streaming response.
// Returning an error aborts the stream; the caller treats it as terminal.
type StreamCallback func(chunk string) error

// ChatStream streams a conversational reply, invoking callback per delta in
// arrival order, and returns the accumulated full text.
func (a *MoodAgent) ChatStream(ctx context.Context, messages []model.ConversationMessage, callback StreamCallback) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: 0.6,
		Stream:      true,
		Messages:    buildMessages(chatSystemPrompt, messages),
	}

	stream, err := a.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to open completion stream: %w", err)
	}
	defer stream.Close()

	var fullContent strings.Builder
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fullContent.String(), fmt.Errorf("failed to read completion stream: %w", err)
		}

		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}

		fullContent.WriteString(delta)
		if callback != nil {
			if err := callback(delta); err != nil {
				// The only callback failure is a dead client connection;
				// there is nobody left to stream to.
				return fullContent.String(), err
			}
		}
	}

	logger.Debug("chat stream completed",
		logger.Int("contentLength", fullContent.Len()))

	return fullContent.String(), nil
}
