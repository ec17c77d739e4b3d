package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// Generator turns a prompt into generated text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Provider builds a Generator authenticated with a caller-supplied key.
type Provider interface {
	Name() string
	Model() string
	New(ctx context.Context, apiKey string) (Generator, error)
}

// OpenAIProvider targets OpenAI-compatible servers (OpenAI, LM Studio, ...).
type OpenAIProvider struct {
	BaseURL   string
	ChatModel string
}

func (p *OpenAIProvider) Name() string  { return "openai" }
func (p *OpenAIProvider) Model() string { return p.ChatModel }

func (p *OpenAIProvider) New(_ context.Context, apiKey string) (Generator, error) {
	return NewLLMClient(p.BaseURL, apiKey, p.ChatModel), nil
}

// LLMClient is a chat-completion client for OpenAI-compatible models.
type LLMClient struct {
	client   *openai.Client
	chatName string
}

// NewLLMClient returns a client for chatModel; an empty baseURL targets
// the OpenAI API.
func NewLLMClient(baseURL, apiKey, chatModel string) *LLMClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &LLMClient{
		client:   openai.NewClientWithConfig(cfg),
		chatName: chatModel,
	}
}

// Generate sends the prompt as a single user message.
func (l *LLMClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := l.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: l.chatName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// statusCode extracts the HTTP status from provider errors, if any.
func statusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	// genai returns APIError by value.
	var genaiErr genai.APIError
	if errors.As(err, &genaiErr) {
		return genaiErr.Code
	}
	var genaiPtr *genai.APIError
	if errors.As(err, &genaiPtr) {
		return genaiPtr.Code
	}
	return 0
}
