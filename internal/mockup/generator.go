package mockup

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"chromadish/internal/imaging"
	"chromadish/internal/llm"
)

// ResultMIMEType is the type reported for every generated mockup.
const ResultMIMEType = "image/png"

// Result is a generated mockup held in memory for the caller.
type Result struct {
	Data        []byte
	MIMEType    string
	Composition Composition
}

// Base64 returns the image bytes base64-encoded.
func (r Result) Base64() string {
	return base64.StdEncoding.EncodeToString(r.Data)
}

// DataURL returns the image as a data URL for direct display.
func (r Result) DataURL() string {
	return "data:" + r.MIMEType + ";base64," + r.Base64()
}

var unsafeTagChars = regexp.MustCompile(`[^a-z0-9-]+`)

// Filename returns the download name, mockup-<tag>.png. Aspect ratios such
// as "4:5" become "4x5".
func Filename(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	tag = strings.ReplaceAll(tag, ":", "x")
	tag = strings.Trim(unsafeTagChars.ReplaceAllString(tag, "-"), "-")
	if tag == "" {
		return "mockup.png"
	}
	return "mockup-" + tag + ".png"
}

// Generator runs the mockup request against the image model.
type Generator struct {
	client   llm.ImageGenerator
	composer *Composer
	model    string
	log      zerolog.Logger
}

// NewGenerator wires a generator. The image client may be a different
// backend from the composer's text client.
func NewGenerator(client llm.ImageGenerator, composer *Composer, imageModel string, logger zerolog.Logger) *Generator {
	return &Generator{client: client, composer: composer, model: imageModel, log: logger}
}

// Generate composes the instruction and requests one image. Failures are
// terminal and classified as ErrContentBlocked, ErrNoImageGenerated or
// ErrGenerationFailed.
func (g *Generator) Generate(ctx context.Context, img imaging.Payload, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	if g == nil || g.client == nil {
		return Result{}, fmt.Errorf("%w: generator unavailable", ErrGenerationFailed)
	}

	composition := g.composer.Compose(ctx, cfg)

	resp, err := g.client.GenerateImage(ctx, llm.ImageRequest{
		Model:    g.model,
		Image:    img.Data,
		MIMEType: img.MIMEType,
		Prompt:   composition.Prompt,
	})
	if err != nil {
		g.log.Error().Err(err).Str("mime_type", img.MIMEType).Msg("mockup generation failed")
		if errors.Is(err, llm.ErrBlocked) {
			return Result{}, fmt.Errorf("%w: %v", ErrContentBlocked, err)
		}
		return Result{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	data, ok := firstInlineImage(resp)
	if !ok {
		g.log.Warn().Int("candidates", len(resp.Candidates)).Msg("mockup response carried no image")
		return Result{}, ErrNoImageGenerated
	}

	return Result{Data: data, MIMEType: ResultMIMEType, Composition: composition}, nil
}

func firstInlineImage(resp llm.ImageResponse) ([]byte, bool) {
	if len(resp.Candidates) == 0 {
		return nil, false
	}
	for _, part := range resp.Candidates[0].Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data, true
		}
	}
	return nil, false
}
