package catalog

import (
	"fmt"
	"strings"

	"chromadish/internal/mockup"
)

// Selection is what a client picked for one generation. Ids refer to the
// catalogs above; zero values fall back to the studio defaults.
type Selection struct {
	Perspective  string `json:"perspective"`
	Setting      string `json:"setting"`
	Plating      string `json:"plating"`
	BrandKit     string `json:"brand_kit"`
	ShotRecipe   string `json:"shot_recipe"`
	Instructions string `json:"instructions"`
	Strictness   *int   `json:"strictness,omitempty"`
}

// Resolve turns the selection into the immutable config for one request.
func (s Selection) Resolve() (mockup.Config, error) {
	var cfg mockup.Config

	var recipe *ShotRecipe
	if id := strings.TrimSpace(s.ShotRecipe); id != "" {
		r, ok := ShotRecipeByID(id)
		if !ok {
			return mockup.Config{}, fmt.Errorf("%w: shot recipe %q", ErrUnknownOption, id)
		}
		recipe = &r
		cfg.ShotRecipePrompt = r.PromptFragment
	}

	if id := strings.TrimSpace(s.BrandKit); id != "" {
		k, ok := BrandKitByID(id)
		if !ok {
			return mockup.Config{}, fmt.Errorf("%w: brand kit %q", ErrUnknownOption, id)
		}
		cfg.BrandKitPrompt = k.PromptFragment
	}

	perspectiveID := strings.TrimSpace(s.Perspective)
	if perspectiveID == "" {
		perspectiveID = DefaultPerspective
		if recipe != nil {
			perspectiveID = recipe.DefaultPerspective
		}
	}
	perspective, ok := PerspectiveByID(perspectiveID)
	if !ok {
		return mockup.Config{}, fmt.Errorf("%w: perspective %q", ErrUnknownOption, perspectiveID)
	}

	settingID := strings.TrimSpace(s.Setting)
	if settingID == "" {
		settingID = DefaultSetting
		if recipe != nil {
			settingID = recipe.DefaultSetting
		}
	}
	setting, ok := SettingByID(settingID)
	if !ok {
		return mockup.Config{}, fmt.Errorf("%w: setting %q", ErrUnknownOption, settingID)
	}

	platingID := strings.TrimSpace(s.Plating)
	if platingID == "" {
		platingID = DefaultPlating
	}
	plating, ok := PlatingByID(platingID)
	if !ok {
		return mockup.Config{}, fmt.Errorf("%w: plating %q", ErrUnknownOption, platingID)
	}

	cfg.Prompt = joinDescriptors(perspective.Value, plating.Value, setting.Value, strings.TrimSpace(s.Instructions))

	cfg.Strictness = DefaultStrictness
	if s.Strictness != nil {
		cfg.Strictness = *s.Strictness
	}
	if err := cfg.Validate(); err != nil {
		return mockup.Config{}, err
	}

	return cfg, nil
}

func joinDescriptors(values ...string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			kept = append(kept, v)
		}
	}
	return strings.Join(kept, ", ")
}
