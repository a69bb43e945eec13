package generator

import (
	"context"
	"fmt"

	"github.com/mrmailer/mrmailer/internal/config"
	openai "github.com/sashabaranov/go-openai"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterCompleter calls an OpenAI-compatible chat completions API
type OpenRouterCompleter struct {
	client *openai.Client
}

// NewOpenRouterCompleter creates a completer for cfg.BaseURL
func NewOpenRouterCompleter(cfg config.LLMConfig) *OpenRouterCompleter {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = defaultBaseURL
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenRouterCompleter{client: openai.NewClientWithConfig(clientCfg)}
}

// Complete sends the system and user messages and returns the first choice
func (c *OpenRouterCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
