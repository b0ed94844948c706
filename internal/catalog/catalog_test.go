package catalog

import (
	"errors"
	"strings"
	"testing"

	"chromadish/internal/mockup"
)

func TestShotRecipeDefaultsExist(t *testing.T) {
	for _, r := range shotRecipes {
		if _, ok := PerspectiveByID(r.DefaultPerspective); !ok {
			t.Errorf("recipe %s: perspective %q not in catalog", r.ID, r.DefaultPerspective)
		}
		if _, ok := SettingByID(r.DefaultSetting); !ok {
			t.Errorf("recipe %s: setting %q not in catalog", r.ID, r.DefaultSetting)
		}
	}
}

func TestResolveDefaults(t *testing.T) {
	cfg, err := Selection{}.Resolve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	hero, _ := PerspectiveByID("hero")
	plate, _ := PlatingByID("on-plate")
	wood, _ := SettingByID("rustic-wood")
	want := hero.Value + ", " + plate.Value + ", " + wood.Value
	if cfg.Prompt != want {
		t.Fatalf("prompt = %q, want %q", cfg.Prompt, want)
	}
	if cfg.Strictness != DefaultStrictness {
		t.Errorf("strictness = %d", cfg.Strictness)
	}
	if cfg.BrandKitPrompt != "" || cfg.ShotRecipePrompt != "" {
		t.Errorf("expected no preset fragments, got %+v", cfg)
	}
}

func TestResolveRecipeNudgesPerspective(t *testing.T) {
	tests := []struct {
		recipe      string
		perspective string
	}{
		{"menu-hero", "hero"},
		{"social-vertical", "diners-view"},
		{"ecomm-white", "diners-view"},
		{"lifestyle", "menu-standard"},
	}
	for _, tt := range tests {
		t.Run(tt.recipe, func(t *testing.T) {
			cfg, err := Selection{ShotRecipe: tt.recipe}.Resolve()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			p, _ := PerspectiveByID(tt.perspective)
			if !strings.HasPrefix(cfg.Prompt, p.Value) {
				t.Fatalf("prompt %q does not start with %s perspective", cfg.Prompt, tt.perspective)
			}
			r, _ := ShotRecipeByID(tt.recipe)
			if cfg.ShotRecipePrompt != r.PromptFragment {
				t.Errorf("recipe fragment = %q", cfg.ShotRecipePrompt)
			}
		})
	}
}

func TestResolveExplicitPerspectiveWins(t *testing.T) {
	cfg, err := Selection{ShotRecipe: "lifestyle", Perspective: "crave-close-up"}.Resolve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p, _ := PerspectiveByID("crave-close-up")
	if !strings.HasPrefix(cfg.Prompt, p.Value) {
		t.Fatalf("prompt %q ignores explicit perspective", cfg.Prompt)
	}
}

func TestResolveInstructionsAndBrandKit(t *testing.T) {
	strictness := 90
	cfg, err := Selection{
		BrandKit:     "rustic",
		Setting:      "marble-deck",
		Plating:      "no-plate",
		Instructions: "  steam rising  ",
		Strictness:   &strictness,
	}.Resolve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(cfg.Prompt, ", steam rising") {
		t.Errorf("prompt = %q", cfg.Prompt)
	}
	kit, _ := BrandKitByID("rustic")
	if cfg.BrandKitPrompt != kit.PromptFragment {
		t.Errorf("brand kit fragment = %q", cfg.BrandKitPrompt)
	}
	if cfg.Strictness != 90 {
		t.Errorf("strictness = %d", cfg.Strictness)
	}
}

func TestResolveRejectsUnknownIDs(t *testing.T) {
	selections := []Selection{
		{BrandKit: "neon"},
		{ShotRecipe: "billboard"},
		{Perspective: "drone"},
		{Setting: "moon"},
		{Plating: "bowl"},
	}
	for _, s := range selections {
		if _, err := s.Resolve(); !errors.Is(err, ErrUnknownOption) {
			t.Errorf("%+v: expected ErrUnknownOption, got %v", s, err)
		}
	}
}

func TestResolveRejectsStrictnessOutOfRange(t *testing.T) {
	for _, v := range []int{-1, 101} {
		v := v
		if _, err := (Selection{Strictness: &v}).Resolve(); !errors.Is(err, mockup.ErrInvalidStrictness) {
			t.Errorf("strictness %d: expected ErrInvalidStrictness, got %v", v, err)
		}
	}
}

func TestResolveRecipeSettingDefault(t *testing.T) {
	cfg, err := Selection{ShotRecipe: "menu-hero"}.Resolve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	marble, _ := SettingByID("marble-deck")
	if !strings.HasSuffix(cfg.Prompt, marble.Value) {
		t.Fatalf("prompt %q does not use the recipe's setting", cfg.Prompt)
	}

	cfg, err = Selection{}.Resolve()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wood, _ := SettingByID(DefaultSetting)
	if !strings.HasSuffix(cfg.Prompt, wood.Value) {
		t.Fatalf("prompt %q does not use the default setting", cfg.Prompt)
	}
}
