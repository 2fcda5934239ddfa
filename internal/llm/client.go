// Package llm wraps chat completions against the hosted model endpoint.
package llm

import (
	"context"
	"errors"
	"log"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"codagent/internal/config"
	"codagent/internal/session"
)

// Client sends conversation turns to the configured provider. Both Gemini
// (through its OpenAI-compatible endpoint) and OpenRouter speak the chat
// completions protocol, so one client covers both.
type Client struct {
	api     openai.Client
	model   openai.ChatModel
	verbose bool
}

// New builds a client for the configured provider.
func New(cfg *config.Config) *Client {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &Client{
		api:     openai.NewClient(opts...),
		model:   cfg.Model,
		verbose: cfg.Verbose,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.model }

// buildMessages converts the session history into request parameters,
// prefixing the system prompt.
func buildMessages(systemPrompt string, history []session.Message) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+1)
	messages = append(messages, openai.SystemMessage(systemPrompt))
	for _, m := range history {
		switch m.Role {
		case session.RoleUser:
			messages = append(messages, openai.UserMessage(m.Content))
		case session.RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.SystemMessage(m.Content))
		}
	}
	return messages
}

// Complete requests one assistant reply over the given history. When stream
// is set, onDelta receives content chunks as they arrive; the full reply is
// returned either way.
func (c *Client) Complete(ctx context.Context, systemPrompt string, history []session.Message, stream bool, onDelta func(string)) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    c.model,
		Messages: buildMessages(systemPrompt, history),
	}

	if !stream {
		if c.verbose {
			log.Printf("[verbose] sending chat completion: model=%s messages=%d", c.model, len(params.Messages))
		}
		completion, err := c.api.Chat.Completions.New(ctx, params)
		if err != nil {
			return "", err
		}
		if len(completion.Choices) == 0 {
			return "", errors.New("empty completion choices")
		}
		return completion.Choices[0].Message.Content, nil
	}

	if c.verbose {
		log.Printf("[verbose] sending streaming chat completion: model=%s messages=%d", c.model, len(params.Messages))
	}
	streamResp := c.api.Chat.Completions.NewStreaming(ctx, params)
	defer streamResp.Close()

	acc := openai.ChatCompletionAccumulator{}
	for streamResp.Next() {
		chunk := streamResp.Current()
		if !acc.AddChunk(chunk) {
			return "", errors.New("failed to accumulate stream")
		}
		if len(chunk.Choices) > 0 && onDelta != nil {
			if delta := chunk.Choices[0].Delta.Content; delta != "" {
				onDelta(delta)
			}
		}
	}
	if err := streamResp.Err(); err != nil {
		return "", err
	}
	if len(acc.Choices) == 0 {
		return "", errors.New("empty streamed completion choices")
	}
	if c.verbose {
		log.Printf("[verbose] streaming completed: finish_reason=%s", acc.Choices[0].FinishReason)
	}
	return acc.Choices[0].Message.Content, nil
}
