// file: internal/ai/openai_suggester.go
// version: 1.1.0
// guid: 13398928-4a22-435e-9f36-87665e3c45d8

package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

// SuggestedTerms represents structured medication terms extracted from
// noisy OCR text
type SuggestedTerms struct {
	Terms      []string `json:"terms"`
	Confidence string   `json:"confidence"` // high, medium, low
}

// OpenAISuggester cleans up raw OCR fragments from medication packaging
// into likely medication name terms using OpenAI
type OpenAISuggester struct {
	client     *openai.Client
	model      string
	maxRetries int
	enabled    bool
}

// NewOpenAISuggester creates a new OpenAI term suggester
func NewOpenAISuggester(apiKey string, enabled bool) *OpenAISuggester {
	if !enabled || apiKey == "" {
		return &OpenAISuggester{enabled: false}
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	return &OpenAISuggester{
		client:     &client,
		model:      "gpt-4o-mini", // Fast and cost-effective
		maxRetries: 2,
		enabled:    true,
	}
}

// IsEnabled returns whether the suggester is enabled
func (s *OpenAISuggester) IsEnabled() bool {
	return s.enabled
}

const suggestSystemPrompt = `You are an expert at reading text captured from medication packaging. The input is noisy OCR output: fragments of brand names, generic names, dosages, and unrelated packaging text (lot numbers, manufacturer slogans, regulatory notices).

Extract the terms that identify the medication itself.

Rules:
- Include brand names, generic/INN names, active ingredients, and dosages.
- Exclude lot numbers, expiry dates, barcodes, addresses, and slogans.
- Correct obvious OCR character confusions (0/O, 1/I/l, 5/S) when the intended medication name is unambiguous.
- Do NOT invent medications that are not suggested by the input.

Return ONLY valid JSON:
{
  "terms": ["term", ...],
  "confidence": "high|medium|low"
}

Set confidence based on how clearly the input names a medication.`

// SuggestTerms uses OpenAI to extract likely medication terms from raw
// OCR fragments. Uses prompt caching by keeping the system prompt fixed.
func (s *OpenAISuggester) SuggestTerms(ctx context.Context, fragments []string) (*SuggestedTerms, error) {
	if !s.enabled {
		return nil, fmt.Errorf("OpenAI suggester is not enabled")
	}
	if len(fragments) == 0 {
		return &SuggestedTerms{Terms: []string{}, Confidence: "low"}, nil
	}

	userPrompt := "Extract medication terms from these OCR fragments:\n\n" +
		strings.Join(fragments, "\n")

	jsonObjectFormat := shared.NewResponseFormatJSONObjectParam()

	completion, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(suggestSystemPrompt),
			openai.UserMessage(userPrompt),
		},
		Model:       shared.ChatModel(s.model),
		Temperature: param.NewOpt(0.1),
		MaxTokens:   param.NewOpt[int64](500),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &jsonObjectFormat,
		},
	})

	if err != nil {
		return nil, fmt.Errorf("OpenAI API call failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	return parseSuggestion(completion.Choices[0].Message.Content)
}

// parseSuggestion decodes and sanitizes the model's JSON response.
// Split out so response handling is testable without an API key.
func parseSuggestion(content string) (*SuggestedTerms, error) {
	var suggested SuggestedTerms
	if err := json.Unmarshal([]byte(content), &suggested); err != nil {
		return nil, fmt.Errorf("failed to parse OpenAI response: %w", err)
	}

	// Drop blank terms the model occasionally emits.
	terms := suggested.Terms[:0]
	for _, term := range suggested.Terms {
		if strings.TrimSpace(term) != "" {
			terms = append(terms, term)
		}
	}
	suggested.Terms = terms

	switch suggested.Confidence {
	case "high", "medium", "low":
	default:
		suggested.Confidence = "low"
	}
	return &suggested, nil
}

// TestConnection tests the OpenAI API connection
func (s *OpenAISuggester) TestConnection(ctx context.Context) error {
	if !s.enabled {
		return fmt.Errorf("OpenAI suggester is not enabled")
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := s.SuggestTerms(ctx, []string{"ASPIRIN 500mg"})
	return err
}
