package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/recallhq/recall/internal/config"
)

const (
	maxRetries = 3
	retryDelay = 1 * time.Second

	titleSystemInstruction = "You are a helpful assistant that generates concise titles for conversations. " +
		"The title should be 3-8 words, descriptive, and capture the main topic. Only output the title, nothing else."
)

// Message is one chat turn. Role is "system", "user" or "assistant".
type Message struct {
	Role    string
	Content string
}

// Options control a single completion request.
type Options struct {
	Model       string
	Temperature float32
	MaxTokens   int
	JSONMode    bool
	// CustomAPIKey overrides the server key for this request only.
	CustomAPIKey string
}

type Client struct {
	client *openai.Client
	model  string
}

func NewClient() *Client {
	return &Client{
		client: openai.NewClient(config.AppConfig.OpenAIAPIKey),
		model:  config.AppConfig.OpenAIModel,
	}
}

// DefaultModel is the chat model used when Options.Model is empty.
func (c *Client) DefaultModel() string {
	return c.model
}

// clientFor returns the shared client, or a per-request one when the caller
// supplied their own API key.
func (c *Client) clientFor(customAPIKey string) *openai.Client {
	if customAPIKey != "" {
		return openai.NewClient(customAPIKey)
	}
	return c.client
}

// Complete runs a chat completion, retrying transient failures.
func (c *Client) Complete(ctx context.Context, messages []Message, opts Options) (string, error) {
	model := opts.Model
	if model == "" {
		model = c.model
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
	if opts.JSONMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}
	for _, msg := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	client := c.clientFor(opts.CustomAPIKey)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		resp, err := client.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", fmt.Errorf("no response choices from model %s", model)
			}
			return strings.TrimSpace(resp.Choices[0].Message.Content), nil
		}
		lastErr = err
		log.Printf("Chat completion attempt %d/%d failed (model %s): %v", attempt, maxRetries, model, err)
		if attempt < maxRetries {
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	return "", fmt.Errorf("chat completion failed after %d attempts: %w", maxRetries, lastErr)
}

// GetEmbedding returns the embedding vector for a piece of text.
func (c *Client) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.AdaEmbeddingV2,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("no embedding data received")
	}
	return resp.Data[0].Embedding, nil
}

// GenerateTitle produces a short title for a conversation opening.
func (c *Client) GenerateTitle(ctx context.Context, basisContent string) (string, error) {
	prompt := fmt.Sprintf("Generate a very concise title (3-8 words) for a conversation that starts with or is about: %q.", truncate(basisContent, 500))

	title, err := c.Complete(ctx, []Message{
		{Role: "system", Content: titleSystemInstruction},
		{Role: "user", Content: prompt},
	}, Options{Temperature: 0.3, MaxTokens: 20})
	if err != nil {
		return "", fmt.Errorf("title generation failed: %w", err)
	}

	title = CleanTitle(title)
	if title == "" {
		return "", fmt.Errorf("model generated an empty title")
	}
	return title, nil
}

// CleanTitle strips quotes, trailing punctuation and whitespace from a
// model-generated title.
func CleanTitle(title string) string {
	return strings.Trim(title, "\"'\n\r\t .")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
