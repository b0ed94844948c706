package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// safetyFinishReasons are candidate finish reasons that mean the output was withheld.
var safetyFinishReasons = map[string]struct{}{
	"SAFETY":                   {},
	"BLOCKLIST":                {},
	"PROHIBITED_CONTENT":       {},
	"SPII":                     {},
	"IMAGE_SAFETY":             {},
	"IMAGE_PROHIBITED_CONTENT": {},
}

// GeminiClient implements Client on the Gemini API.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient builds the SDK client once for the process.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini: missing API key")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiClient{client: client}, nil
}

// GenerateText sends one user turn and returns the joined text of the first candidate.
func (c *GeminiClient) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", fmt.Errorf("gemini: empty prompt")
	}

	config := &genai.GenerateContentConfig{}
	if req.SystemInstruction != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.SystemInstruction}},
		}
	}
	if req.Grounding {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	resp, err := c.client.Models.GenerateContent(ctx, normalizeModel(req.Model), genai.Text(req.Prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini: generate text: %w", err)
	}
	if err := blockedPrompt(resp); err != nil {
		return "", err
	}
	return textOf(resp)
}

// GenerateImage sends the reference image and instruction with image-only output.
func (c *GeminiClient) GenerateImage(ctx context.Context, req ImageRequest) (ImageResponse, error) {
	if len(req.Image) == 0 {
		return ImageResponse{}, fmt.Errorf("gemini: empty reference image")
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(req.Image, req.MIMEType),
		genai.NewPartFromText(req.Prompt),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := c.client.Models.GenerateContent(ctx, normalizeModel(req.Model), contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	})
	if err != nil {
		return ImageResponse{}, fmt.Errorf("gemini: generate image: %w", err)
	}
	return convertImageResponse(resp)
}

func convertImageResponse(resp *genai.GenerateContentResponse) (ImageResponse, error) {
	if err := blockedPrompt(resp); err != nil {
		return ImageResponse{}, err
	}

	var out ImageResponse
	for _, cand := range resp.Candidates {
		if cand == nil {
			continue
		}
		converted := Candidate{FinishReason: string(cand.FinishReason)}
		if cand.Content != nil {
			for _, p := range cand.Content.Parts {
				if p == nil {
					continue
				}
				part := Part{Text: p.Text}
				if p.InlineData != nil && len(p.InlineData.Data) > 0 {
					part.InlineData = &Blob{MIMEType: p.InlineData.MIMEType, Data: p.InlineData.Data}
				}
				converted.Parts = append(converted.Parts, part)
			}
		}
		out.Candidates = append(out.Candidates, converted)
	}

	if len(out.Candidates) > 0 {
		first := out.Candidates[0]
		if _, safety := safetyFinishReasons[first.FinishReason]; safety && !hasInlineData(first) {
			return ImageResponse{}, &BlockedError{Reason: first.FinishReason}
		}
	}
	return out, nil
}

func blockedPrompt(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return fmt.Errorf("gemini: empty response")
	}
	if fb := resp.PromptFeedback; fb != nil {
		reason := string(fb.BlockReason)
		if reason != "" && reason != "BLOCKED_REASON_UNSPECIFIED" {
			return &BlockedError{Reason: reason, Message: fb.BlockReasonMessage}
		}
	}
	return nil
}

func textOf(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini: returned no candidates")
	}
	first := resp.Candidates[0]

	var parts []string
	for _, part := range first.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		if trimmed := strings.TrimSpace(part.Text); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) == 0 {
		if _, safety := safetyFinishReasons[string(first.FinishReason)]; safety {
			return "", &BlockedError{Reason: string(first.FinishReason)}
		}
		return "", fmt.Errorf("gemini: candidate missing text")
	}
	return strings.Join(parts, "\n\n"), nil
}

func hasInlineData(c Candidate) bool {
	for _, p := range c.Parts {
		if p.InlineData != nil {
			return true
		}
	}
	return false
}

func normalizeModel(model string) string {
	return strings.TrimPrefix(strings.TrimSpace(model), "models/")
}
