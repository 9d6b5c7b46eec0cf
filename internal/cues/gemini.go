package cues

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/memora-app/memora/internal/identity"
)

const geminiModel = "gemini-2.5-flash"

// GeminiProvider generates cues with a Gemini model.
type GeminiProvider struct {
	client *genai.Client
}

// NewGeminiProvider creates a Gemini cue provider.
func NewGeminiProvider(ctx context.Context, apiKey string) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiProvider{client: client}, nil
}

func (p *GeminiProvider) Name() string {
	return geminiModel
}

func (p *GeminiProvider) GenerateCue(ctx context.Context, id *identity.Identity) (*Cue, error) {
	const maxRetries = 3

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: cuePrompt + "\n\n" + cueRequestText(id)},
			},
		},
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}

	var lastError error
	for range maxRetries {
		result, err := p.client.Models.GenerateContent(ctx, geminiModel, contents, config)
		if err != nil {
			return nil, fmt.Errorf("gemini API error: %w", err)
		}

		content := result.Text()
		if content == "" {
			return nil, errors.New("no response from Gemini")
		}

		var cue Cue
		if err := json.Unmarshal([]byte(content), &cue); err != nil {
			lastError = err
			contents = append(contents,
				&genai.Content{Role: "model", Parts: []*genai.Part{{Text: content}}},
				&genai.Content{Role: "user", Parts: []*genai.Part{
					{Text: fmt.Sprintf("JSON parse error: %v. Please fix the JSON and try again.", err)},
				}},
			)
			continue
		}
		return &cue, nil
	}

	return nil, fmt.Errorf("failed to parse cue JSON after %d attempts: %w", maxRetries, lastError)
}
