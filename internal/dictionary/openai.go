package dictionary

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// implements Dictionary using OpenAI Chat Completions
type OpenAIDictionary struct {
	client  openai.Client
	model   string
	options Options
}

func NewOpenAIDictionary(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAIDictionary, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := opts.Model
	if model == "" {
		model = "gpt-5-mini"
	}

	return &OpenAIDictionary{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (d *OpenAIDictionary) Lookup(
	ctx context.Context,
	word string,
) ([]Candidate, error) {
	prompt := BuildPrompt(d.options, word)

	completion, err := d.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Model: d.model,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("lookup failed: %w", err)
	}

	if completion == nil || len(completion.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	responseText := completion.Choices[0].Message.Content
	if responseText == "" {
		return nil, fmt.Errorf("no text in OpenAI response")
	}

	return parseResponseText(responseText)
}
