package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiProvider builds Gemini clients through the Google GenAI SDK.
// BaseURL overrides the Gemini API endpoint; empty keeps the SDK default.
type GeminiProvider struct {
	ModelName string
	BaseURL   string
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Model() string {
	if p.ModelName == "" {
		return DefaultGeminiModel
	}
	return p.ModelName
}

func (p *GeminiProvider) New(ctx context.Context, apiKey string) (Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: p.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiClient{client: client, model: p.Model()}, nil
}

// GeminiClient generates notes with a single GenerateContent call.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.2),
	})
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("model returned an empty response")
	}
	return text, nil
}
