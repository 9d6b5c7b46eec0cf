package cues

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/memora-app/memora/internal/identity"
)

//go:embed prompts/cue.txt
var cuePrompt string

const chatModel = openai.ChatModelGPT4_1Mini

// OpenAIProvider generates cues with an OpenAI chat model.
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider creates an OpenAI cue provider.
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIProvider{client: &client}
}

func (p *OpenAIProvider) Name() string {
	return chatModel
}

func (p *OpenAIProvider) GenerateCue(ctx context.Context, id *identity.Identity) (*Cue, error) {
	const maxRetries = 3

	messages := []openai.ChatCompletionMessageParamUnion{
		{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(cuePrompt),
				},
			},
		},
		{
			OfUser: &openai.ChatCompletionUserMessageParam{
				Content: openai.ChatCompletionUserMessageParamContentUnion{
					OfString: openai.String(cueRequestText(id)),
				},
			},
		},
	}

	var lastError error
	for range maxRetries {
		resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:    chatModel,
			Messages: messages,
			ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
			},
			MaxTokens: openai.Int(300),
		})
		if err != nil {
			return nil, fmt.Errorf("OpenAI API error: %w", err)
		}
		if len(resp.Choices) == 0 {
			return nil, errors.New("no response from OpenAI")
		}

		content := resp.Choices[0].Message.Content
		var cue Cue
		if err := json.Unmarshal([]byte(content), &cue); err != nil {
			lastError = err
			messages = append(messages,
				openai.ChatCompletionMessageParamUnion{
					OfAssistant: &openai.ChatCompletionAssistantMessageParam{
						Content: openai.ChatCompletionAssistantMessageParamContentUnion{
							OfString: openai.String(content),
						},
					},
				},
				openai.ChatCompletionMessageParamUnion{
					OfUser: &openai.ChatCompletionUserMessageParam{
						Content: openai.ChatCompletionUserMessageParamContentUnion{
							OfString: openai.String(fmt.Sprintf("JSON parse error: %v. Please fix the JSON and try again.", err)),
						},
					},
				},
			)
			continue
		}
		return &cue, nil
	}

	return nil, fmt.Errorf("failed to parse cue JSON after %d attempts: %w", maxRetries, lastError)
}

// cueRequestText renders the identity for the model. Shared by both API
// providers.
func cueRequestText(id *identity.Identity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\n", id.Name)
	if id.Role != "" {
		fmt.Fprintf(&b, "Relationship: %s\n", id.Role)
	}
	if len(id.Traits) > 0 {
		fmt.Fprintf(&b, "Facial traits: %s\n", strings.Join(id.Traits, "; "))
	} else {
		b.WriteString("Facial traits: none recorded, keep the description generic\n")
	}
	return b.String()
}
