package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"

	"tokenlens/internal/ai"
	"tokenlens/internal/configs"
)

// OpenAICompleter implements the Completer interface against any
// OpenAI-compatible endpoint (Groq, DeepSeek, OpenAI itself).
type OpenAICompleter struct {
	client *openai.Client
	model  string
	hasKey bool
}

func NewOpenAICompleter(apiKey, baseURL, model string) *OpenAICompleter {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = "llama-3.3-70b-versatile"
	}
	return &OpenAICompleter{
		client: openai.NewClientWithConfig(config),
		model:  model,
		hasKey: apiKey != "",
	}
}

// Complete implements the Completer interface. The underlying call streams;
// chunks are concatenated in order before returning.
func (c *OpenAICompleter) Complete(ctx context.Context, messages []ai.Message, opts ai.CompletionOptions) (string, error) {
	if !c.hasKey {
		return "", &configs.MissingKeyError{Key: "AI_API_KEY"}
	}

	request := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Stream:      true,
	}
	for _, m := range messages {
		request.Messages = append(request.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	stream, err := c.client.CreateChatCompletionStream(ctx, request)
	if err != nil {
		return "", fmt.Errorf("completion api error: %w", err)
	}
	defer stream.Close()

	var response strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("completion stream error: %w", err)
		}
		if len(chunk.Choices) > 0 {
			response.WriteString(chunk.Choices[0].Delta.Content)
		}
	}

	return response.String(), nil
}
