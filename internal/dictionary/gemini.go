package dictionary

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// implements Dictionary using Google Gemini
type GeminiDictionary struct {
	client  *genai.Client
	model   string
	options Options
}

func NewGeminiDictionary(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*GeminiDictionary, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiDictionary{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (d *GeminiDictionary) Lookup(
	ctx context.Context,
	word string,
) ([]Candidate, error) {
	prompt := BuildPrompt(d.options, word)

	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := d.client.Models.GenerateContent(ctx, d.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("lookup failed: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	var responseText string
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				responseText += part.Text
			}
		}
		if responseText != "" {
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text in Gemini response")
	}

	return parseResponseText(responseText)
}
