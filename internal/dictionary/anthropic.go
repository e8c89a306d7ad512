package dictionary

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// implements Dictionary using Anthropic Claude
type AnthropicDictionary struct {
	client  anthropic.Client
	model   anthropic.Model
	options Options
}

func NewAnthropicDictionary(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*AnthropicDictionary, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	model := anthropic.Model(opts.Model)
	if opts.Model == "" {
		model = anthropic.ModelClaudeHaiku4_5
	}

	return &AnthropicDictionary{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (d *AnthropicDictionary) Lookup(
	ctx context.Context,
	word string,
) ([]Candidate, error) {
	prompt := BuildPrompt(d.options, word)

	message, err := d.client.Messages.New(
		ctx,
		anthropic.MessageNewParams{
			Model:     d.model,
			MaxTokens: 2048,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(
					anthropic.NewTextBlock(prompt),
				),
			},
		},
	)
	if err != nil {
		return nil, fmt.Errorf("lookup failed: %w", err)
	}

	if message == nil || len(message.Content) == 0 {
		return nil, fmt.Errorf("empty response from Anthropic")
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText += block.Text
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text in Anthropic response")
	}

	return parseResponseText(responseText)
}
