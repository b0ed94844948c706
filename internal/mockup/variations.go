package mockup

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"chromadish/internal/llm"
)

const variationsInstruction = `You are a creative director for a food photoshoot. Based on the user's initial idea, use Google Search to find 3 current, distinct, and trendy food photography concepts to suggest as alternatives. Return ONLY a valid JSON object with a single key "variations" which is an array of 3 strings. Each string is a concise, actionable prompt for an AI image generator. Do not include any other text, markdown, or JSON formatting backticks.

Example:
- User's idea: "a burger on a wooden table"
- Your JSON output:
{
  "variations": [
    "A deconstructed, messy-chic version of the burger with ingredients artfully scattered around it on crumpled butcher paper.",
    "A shot with a 'hard flash' photography style, creating sharp shadows and a trendy, high-contrast look.",
    "A vibrant, colorful scene with the burger surrounded by fresh, brightly colored ingredients like heirloom tomatoes and microgreens."
  ]
}`

// Suggester asks a grounded text model for alternative creative directions.
type Suggester struct {
	client llm.Client
	model  string
	log    zerolog.Logger
}

// NewSuggester constructs a variation suggester.
func NewSuggester(client llm.Client, textModel string, logger zerolog.Logger) *Suggester {
	return &Suggester{client: client, model: textModel, log: logger}
}

// Suggest returns the model's alternative prompts for basePrompt.
func (s *Suggester) Suggest(ctx context.Context, basePrompt string) ([]string, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("%w: suggester unavailable", ErrVariationFetchFailed)
	}

	text, err := s.client.GenerateText(ctx, llm.TextRequest{
		Model:             s.model,
		SystemInstruction: variationsInstruction,
		Prompt:            fmt.Sprintf(`The user's initial idea is: "%s"`, basePrompt),
		Grounding:         true,
	})
	if err != nil {
		s.log.Error().Err(err).Msg("variation request failed")
		return nil, fmt.Errorf("%w: %v", ErrVariationFetchFailed, err)
	}

	variations, err := ParseVariations(text)
	if err != nil {
		s.log.Warn().Err(err).Int("response_chars", len(text)).Msg("variation response unusable")
		return nil, err
	}
	return variations, nil
}

// ParseVariations extracts {"variations": [...]} from free-form model text.
// The object is taken from the first '{' to the last '}'. A missing object,
// invalid JSON or an empty list all fail with ErrMalformedResponse.
func ParseVariations(text string) ([]string, error) {
	text = strings.TrimSpace(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return nil, ErrMalformedResponse
	}

	var parsed struct {
		Variations []string `json:"variations"`
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	out := make([]string, 0, len(parsed.Variations))
	for _, v := range parsed.Variations {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no variations", ErrMalformedResponse)
	}
	return out, nil
}
