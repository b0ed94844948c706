// Package mockup turns a product photo and studio selections into a
// generated food photography mockup.
//
// The final instruction has two layers. The subject rules come from a fixed,
// locally chosen template keyed on strictness and say what must not change.
// The style text is written by a remote text model and only describes how the
// scene should look; when that call fails a local fallback is used instead, so
// an outage costs aesthetic richness but never subject fidelity.
package mockup

import "fmt"

// Config is the immutable input for one generation.
type Config struct {
	// Prompt is the comma-joined list of selected descriptors.
	Prompt           string `json:"prompt"`
	BrandKitPrompt   string `json:"brand_kit_prompt,omitempty"`
	ShotRecipePrompt string `json:"shot_recipe_prompt,omitempty"`
	// Strictness is the 0-100 fidelity dial.
	Strictness int `json:"strictness"`
}

// Validate checks the strictness range.
func (c Config) Validate() error {
	if c.Strictness < 0 || c.Strictness > 100 {
		return fmt.Errorf("%w: %d", ErrInvalidStrictness, c.Strictness)
	}
	return nil
}
