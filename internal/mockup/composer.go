package mockup

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"chromadish/internal/llm"
)

const (
	strictGuidance   = "STRICT MODE: Focus ONLY on lighting, composition, and background. Do NOT invent or describe specific food items unless the user explicitly names them. Refer to the subject generically as 'the food product'."
	creativeGuidance = "CREATIVE MODE: You may enhance the description of the food to make it sound more appetizing, but ensure it aligns with the user's general intent."

	creativeDirectorTemplate = `You are an expert creative director for food photography. Your goal is to write a Style & Composition Prompt for an AI that will process a user's uploaded image.

CRITICAL RULE: You generally DO NOT KNOW what distinct food is in the image. Do not guess "burger" or "steak" unless the user's prompt mentions it. Instead, describe the *scene*, the *lighting*, the *surface*, and the *mood*.

Your Inputs:
1. User Prompt: (e.g., "rustic wood", "diner view")
2. Brand Kit: (e.g., "Dark & Moody")
3. Shot Recipe: (e.g., "Menu Hero")

Your Output:
A single, rich paragraph describing the visual style, lighting, surface, and background.
- If the user prompt is empty/vague, describe a professional studio setup suitable for *any* food.
- Use the Brand Kit and Shot Recipe to inform the mood.
- %s`

	userContextTemplate = `[USER PROMPT]: "%s"
[BRAND KIT]: "%s"
[SHOT RECIPE]: "%s"`

	finalPromptTemplate = `Task: Generate a professional food photography mockup using the provided image as the reference.

SUBJECT RULES:
%s

STYLE & ENVIRONMENT:
%s

Output: Photorealistic, high-resolution, commercial food photography.`
)

// strictGuidanceAbove is the strictness above which the style writer must not name food.
const strictGuidanceAbove = 75

// Composition is the assembled instruction and the pieces it was built from.
type Composition struct {
	Subject  string `json:"subject"`
	Style    string `json:"style"`
	Prompt   string `json:"prompt"`
	Fallback bool   `json:"style_fallback"`
}

// Composer writes the final image instruction for a config.
type Composer struct {
	client llm.Client
	model  string
	log    zerolog.Logger
}

// NewComposer constructs a composer that elevates style with the given text model.
func NewComposer(client llm.Client, textModel string, logger zerolog.Logger) *Composer {
	return &Composer{client: client, model: textModel, log: logger}
}

// DirectorInstruction is the persona sent with the style elevation call.
func DirectorInstruction(strictness int) string {
	guidance := creativeGuidance
	if strictness > strictGuidanceAbove {
		guidance = strictGuidance
	}
	return fmt.Sprintf(creativeDirectorTemplate, guidance)
}

// FallbackStyle is the local style text used when elevation is unavailable.
func FallbackStyle(cfg Config) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{cfg.BrandKitPrompt, cfg.ShotRecipePrompt, cfg.Prompt} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Elevate asks the text model for a scene description. It never fails: any
// remote error or empty answer yields FallbackStyle and fallback=true.
func (c *Composer) Elevate(ctx context.Context, cfg Config) (style string, fallback bool) {
	if c == nil || c.client == nil {
		return FallbackStyle(cfg), true
	}

	text, err := c.client.GenerateText(ctx, llm.TextRequest{
		Model:             c.model,
		SystemInstruction: DirectorInstruction(cfg.Strictness),
		Prompt:            fmt.Sprintf(userContextTemplate, cfg.Prompt, cfg.BrandKitPrompt, cfg.ShotRecipePrompt),
	})
	if err == nil {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return trimmed, false
		}
		err = fmt.Errorf("empty style description")
	}

	c.log.Warn().Err(err).Int("strictness", cfg.Strictness).Msg("style elevation failed, using local fallback")
	return FallbackStyle(cfg), true
}

// Compose builds the full instruction. The subject clause is always local.
func (c *Composer) Compose(ctx context.Context, cfg Config) Composition {
	subject := SubjectInstruction(cfg.Strictness)
	style, fallback := c.Elevate(ctx, cfg)
	return Composition{
		Subject:  subject,
		Style:    style,
		Prompt:   fmt.Sprintf(finalPromptTemplate, subject, style),
		Fallback: fallback,
	}
}
