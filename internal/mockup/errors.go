package mockup

import (
	"errors"

	"chromadish/internal/imaging"
)

var (
	ErrInvalidStrictness    = errors.New("mockup: strictness must be between 0 and 100")
	ErrContentBlocked       = errors.New("mockup: content blocked by safety policy")
	ErrNoImageGenerated     = errors.New("mockup: no image was generated")
	ErrGenerationFailed     = errors.New("mockup: failed to generate food mockup image")
	ErrMalformedResponse    = errors.New("mockup: valid JSON object not found in the model's response")
	ErrVariationFetchFailed = errors.New("mockup: could not fetch creative variations")
)

// Kind names the error class for clients and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, imaging.ErrFileTooLarge):
		return "file_too_large"
	case errors.Is(err, imaging.ErrRead):
		return "read_error"
	case errors.Is(err, imaging.ErrDecode):
		return "decode_error"
	case errors.Is(err, imaging.ErrEnvironment):
		return "environment_error"
	case errors.Is(err, ErrInvalidStrictness):
		return "invalid_strictness"
	case errors.Is(err, ErrContentBlocked):
		return "content_blocked"
	case errors.Is(err, ErrNoImageGenerated):
		return "no_image_generated"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed_response"
	case errors.Is(err, ErrVariationFetchFailed):
		return "variation_fetch_failed"
	default:
		return "generation_failed"
	}
}

// UserMessage is the text shown to the person who submitted the request.
func UserMessage(err error) string {
	switch Kind(err) {
	case "":
		return ""
	case "file_too_large":
		return "Image too large (>10MB)"
	case "read_error":
		return "Failed to read file."
	case "decode_error":
		return "Failed to load image for conversion."
	case "environment_error":
		return "Could not prepare the image for upload."
	case "invalid_strictness":
		return "Strictness must be a whole number between 0 and 100."
	case "content_blocked":
		return "Image generation failed. Your prompt might violate safety policies. Please try a different prompt."
	case "no_image_generated":
		return "No image was generated. The response may have been blocked."
	case "malformed_response", "variation_fetch_failed":
		return "Could not fetch creative variations."
	default:
		return "Failed to generate food mockup image."
	}
}
