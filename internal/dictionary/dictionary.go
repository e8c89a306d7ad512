package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// one candidate meaning for a word; everything beyond ID is opaque to the
// session core
type Candidate struct {
	ID           int64  `json:"id,omitempty"`
	Label        string `json:"label"`
	Definition   string `json:"definition"`
	PartOfSpeech string `json:"partOfSpeech,omitempty"`
}

// interface for word meaning lookup
type Dictionary interface {
	Lookup(ctx context.Context, word string) ([]Candidate, error)
}

// dictionary service provider
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

type Options struct {
	// language the subtitles are in, e.g. "japanese"
	SourceLanguage string
	// language definitions should be written in (default english)
	TargetLanguage string
	Model          string
	MaxCandidates  int // senses per lookup (default 10)
}

const DefaultMaxCandidates = 10

// creates a Dictionary based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Dictionary, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiDictionary(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAIDictionary(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicDictionary(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported dictionary provider: %s", provider)
	}
}

// BuildPrompt creates the sense-lookup prompt for LLM providers
func BuildPrompt(opts Options, word string) string {
	max := opts.MaxCandidates
	if max <= 0 {
		max = DefaultMaxCandidates
	}
	target := opts.TargetLanguage
	if target == "" {
		target = "English"
	}

	var sb strings.Builder

	if opts.SourceLanguage != "" {
		sb.WriteString(fmt.Sprintf(
			"List the dictionary senses of the %s word below, defined in %s.\n\n",
			opts.SourceLanguage,
			target,
		))
	} else {
		sb.WriteString(fmt.Sprintf(
			"List the dictionary senses of the word below, defined in %s.\n\n",
			target,
		))
	}

	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString("1. Return ONLY a JSON array of sense objects.\n")
	sb.WriteString(
		"2. Each object must have 'label' (short gloss), 'definition' and 'partOfSpeech' fields.\n",
	)
	sb.WriteString(fmt.Sprintf(
		"3. Order senses by frequency of use and return at most %d.\n",
		max,
	))
	sb.WriteString(
		"4. If the word is inflected, include the senses of its base form.\n",
	)
	sb.WriteString("5. Do not add any explanation or markdown formatting.\n\n")

	sb.WriteString(fmt.Sprintf("Word: %s\n\n", word))
	sb.WriteString("Output the JSON array only:")

	return sb.String()
}

func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)

	jsonBlockRegex := regexp.MustCompile("```(?:json)?\\s*")
	s = jsonBlockRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")

	return strings.TrimSpace(s)
}

func extractCandidates(text string) ([]Candidate, error) {
	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		decoder := json.NewDecoder(strings.NewReader(text[i:]))
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			continue
		}
		if candidates, ok := tryExtractCandidates(raw); ok && len(candidates) > 0 {
			return candidates, nil
		}
	}
	return nil, fmt.Errorf("no valid sense JSON found in response")
}

func tryExtractCandidates(raw json.RawMessage) ([]Candidate, bool) {
	var candidates []Candidate
	if err := json.Unmarshal(raw, &candidates); err == nil &&
		validateCandidates(candidates) {
		return candidates, true
	}

	wrapperKeys := []string{"senses", "meanings", "candidates", "results"}
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, false
	}

	for _, key := range wrapperKeys {
		if fieldRaw, exists := wrapper[key]; exists {
			var fieldCandidates []Candidate
			if err := json.Unmarshal(
				fieldRaw,
				&fieldCandidates,
			); err == nil && validateCandidates(fieldCandidates) {
				return fieldCandidates, true
			}
		}
	}

	return nil, false
}

func validateCandidates(candidates []Candidate) bool {
	for _, c := range candidates {
		if c.Definition != "" || c.Label != "" {
			return true
		}
	}
	return false
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// parses provider response text into candidates, shared by all providers
func parseResponseText(responseText string) ([]Candidate, error) {
	responseText = cleanJSONResponse(responseText)

	candidates, err := extractCandidates(responseText)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to parse JSON response: %w (response: %s)",
			err,
			truncateString(responseText, 200),
		)
	}
	return candidates, nil
}
