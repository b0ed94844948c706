// Package catalog holds the static studio presets a client picks from:
// brand kits, shot recipes, camera perspectives, surface settings and plating.
package catalog

import "errors"

// ErrUnknownOption is returned when a selection names an id that is not in a catalog.
var ErrUnknownOption = errors.New("catalog: unknown option")

// BrandKit is a named bundle of lighting and mood text applied to a generation.
type BrandKit struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	PromptFragment string `json:"prompt_fragment"`
	ColorAccent    string `json:"color_accent"`
}

// ShotRecipe is a named bundle of composition text. DefaultPerspective and
// DefaultSetting are ids in the perspective and setting catalogs.
type ShotRecipe struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description"`
	PromptFragment     string `json:"prompt_fragment"`
	DefaultPerspective string `json:"default_perspective"`
	DefaultSetting     string `json:"default_setting"`
}

// Option is a selectable descriptor whose Value goes into the base prompt.
type Option struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

// Catalog is the full preset listing served to clients.
type Catalog struct {
	BrandKits    []BrandKit   `json:"brand_kits"`
	ShotRecipes  []ShotRecipe `json:"shot_recipes"`
	Perspectives []Option     `json:"perspectives"`
	Settings     []Option     `json:"settings"`
	Platings     []Option     `json:"platings"`
}

const (
	DefaultPerspective = "hero"
	DefaultSetting     = "rustic-wood"
	DefaultPlating     = "on-plate"
	DefaultStrictness  = 50
)

var brandKits = []BrandKit{
	{
		ID:             "rustic",
		Name:           "Rustic Warm",
		Description:    "Natural textures, warm wood, and organic lighting.",
		PromptFragment: "warm natural lighting, rustic wooden textures, organic earth tones, soft shadows",
		ColorAccent:    "#D46E11",
	},
	{
		ID:             "minimal",
		Name:           "Clean Minimal",
		Description:    "Modern, bright, and distraction-free composition.",
		PromptFragment: "bright airy lighting, minimalist white background, clean lines, high key photography",
		ColorAccent:    "#4EC7B2",
	},
}

var shotRecipes = []ShotRecipe{
	{
		ID:                 "menu-hero",
		Name:               "Menu Hero",
		Description:        "Perfect for website headers and menu cards.",
		PromptFragment:     "centered hero composition, shallow depth of field, appetizing close-up",
		DefaultPerspective: "hero",
		DefaultSetting:     "marble-deck",
	},
	{
		ID:                 "social-vertical",
		Name:               "Social Vertical",
		Description:        "Optimized for Instagram and TikTok stories.",
		PromptFragment:     "vertical-first composition, dynamic angle, lifestyle elements in periphery",
		DefaultPerspective: "diners-view",
		DefaultSetting:     "minimalist",
	},
	{
		ID:                 "ecomm-white",
		Name:               "E-comm White",
		Description:        "Standard product shot for marketplaces.",
		PromptFragment:     "pure studio white background, even clinical lighting, no distractions",
		DefaultPerspective: "diners-view",
		DefaultSetting:     "minimalist",
	},
	{
		ID:                 "lifestyle",
		Name:               "Lifestyle Context",
		Description:        "Natural setting with props and environment.",
		PromptFragment:     "natural cafe environment, lifestyle props like napkins and utensils, authentic vibe",
		DefaultPerspective: "menu-standard",
		DefaultSetting:     "rustic-wood",
	},
}

var perspectives = []Option{
	{
		ID:          "menu-standard",
		Label:       "The Menu Standard",
		Value:       "Top-down flat lay photography, 90-degree angle directly overhead, centered composition, even soft lighting, no depth of field, sharp focus from edge to edge, isolated on surface.",
		Description: "Best for: Menu grids, printed menus, ingredients.",
	},
	{
		ID:          "hero",
		Label:       "The Hero Shot",
		Value:       "Straight-on eye-level view, 0-degree angle, camera placed at table height, showcasing vertical layers and height, shallow depth of field, blurry background (bokeh), heroic stature.",
		Description: "Best for: Burgers, sandwiches, stacked pancakes.",
	},
	{
		ID:          "diners-view",
		Label:       "The Diner's View",
		Value:       "45-degree isometric perspective, natural diner's point of view sitting at a table, medium depth of field, focus on the front face of the food, inviting and accessible composition.",
		Description: "Best for: General website headers, social media.",
	},
	{
		ID:          "crave-close-up",
		Label:       "The Crave Close-Up",
		Value:       "Macro close-up photography, 100mm lens style, tight framing on the most appetizing texture, extreme shallow depth of field, focus on details like droplets or steam, mouth-watering aesthetic.",
		Description: "Best for: Ads, highlighting texture, glaze, detail.",
	},
	{
		ID:          "lifestyle-spread",
		Label:       "The Lifestyle Spread",
		Value:       "Wide angle lifestyle table setting, food placed in context with blurred dining environment in background, napkins and cutlery visible, natural window lighting, candid dining atmosphere.",
		Description: `Best for: Brand storytelling, "About Us" sections.`,
	},
	{
		ID:          "packaging-pop",
		Label:       "The Packaging Pop",
		Value:       "Dynamic product shot, slightly low angle, high contrast commercial lighting, vibrant colors, food styling emphasizes packaging and portability, clean modern background, high energy.",
		Description: "Best for: Fast food promos, delivery apps.",
	},
}

var settings = []Option{
	{ID: "rustic-wood", Label: "Rustic Wood", Value: "on a rustic dark wooden bakery board"},
	{ID: "sand-beach", Label: "Sand Beach", Value: "on a tropical beach background with warm sand"},
	{ID: "marble-deck", Label: "Marble Deck", Value: "on a clean polished marble kitchen counter"},
	{ID: "minimalist", Label: "Minimalist", Value: "against a clean, minimalist solid cream backdrop"},
	{ID: "cafe-bokeh", Label: "Cafe Bokeh", Value: "in a bright, modern cafe with a soft blurred background"},
	{ID: "fine-dining", Label: "Fine Dining", Value: "on a white tablecloth in a dimly lit fine dining restaurant"},
}

var platings = []Option{
	{ID: "on-plate", Label: "On Plate", Value: "served on a clean professional ceramic plate"},
	{ID: "no-plate", Label: "No Plate", Value: "placed directly on the surface"},
}

// All returns copies of every catalog.
func All() Catalog {
	return Catalog{
		BrandKits:    append([]BrandKit(nil), brandKits...),
		ShotRecipes:  append([]ShotRecipe(nil), shotRecipes...),
		Perspectives: append([]Option(nil), perspectives...),
		Settings:     append([]Option(nil), settings...),
		Platings:     append([]Option(nil), platings...),
	}
}

// BrandKitByID looks up a brand kit.
func BrandKitByID(id string) (BrandKit, bool) {
	for _, k := range brandKits {
		if k.ID == id {
			return k, true
		}
	}
	return BrandKit{}, false
}

// ShotRecipeByID looks up a shot recipe.
func ShotRecipeByID(id string) (ShotRecipe, bool) {
	for _, r := range shotRecipes {
		if r.ID == id {
			return r, true
		}
	}
	return ShotRecipe{}, false
}

// PerspectiveByID looks up a camera perspective.
func PerspectiveByID(id string) (Option, bool) {
	return findOption(perspectives, id)
}

// SettingByID looks up a surface setting.
func SettingByID(id string) (Option, bool) {
	return findOption(settings, id)
}

// PlatingByID looks up a plating option.
func PlatingByID(id string) (Option, bool) {
	return findOption(platings, id)
}

func findOption(options []Option, id string) (Option, bool) {
	for _, o := range options {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}
