// Package ai builds prompts for the Gemini-backed features, sends them through a Generator
// and turns the model's free-text answers into typed records.
package ai

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

var (
	ErrMissingAPIKey     = errors.New("no Gemini API key configured")
	ErrUpstream          = errors.New("AI service request failed")
	ErrMalformedResponse = errors.New("AI response did not contain the expected JSON")
	ErrFeatureLocked     = errors.New("feature not available on this tier")
	ErrModelNotAllowed   = errors.New("model not available on this tier")
)

type Message struct {
	Role    string // "user" or "model"
	Content string
}

type Request struct {
	APIKey      string
	Model       string
	System      string
	History     []Message
	Prompt      string
	Temperature float32
}

// Generator produces a text completion for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeminiGenerator talks to the Gemini API. A client is built per call because the API key
// and model vary per user.
type GeminiGenerator struct{}

func NewGeminiGenerator() *GeminiGenerator {
	return &GeminiGenerator{}
}

func (g *GeminiGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if req.APIKey == "" {
		return "", ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  req.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("%w: create client: %v", ErrUpstream, err)
	}

	contents := buildContents(req)

	config := &genai.GenerateContentConfig{}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.Temperature > 0 {
		config.Temperature = genai.Ptr(req.Temperature)
	}

	resp, err := client.Models.GenerateContent(ctx, req.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrUpstream)
	}
	return text, nil
}

// buildContents turns the chat history plus the prompt into Gemini contents.
func buildContents(req Request) []*genai.Content {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, m := range req.History {
		var role genai.Role = genai.RoleUser
		if m.Role == "model" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(m.Content, role))
	}
	return append(contents, genai.NewContentFromText(req.Prompt, genai.RoleUser))
}
