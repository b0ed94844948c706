// Package llm is the boundary to the hosted generative models. Callers see
// plain request/response structs and structured errors; the SDK stays here.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrBlocked marks a response the provider refused on safety grounds.
var ErrBlocked = errors.New("llm: response was blocked")

// BlockedError carries the provider's block reason.
type BlockedError struct {
	Reason  string
	Message string
}

func (e *BlockedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("llm: response was blocked (%s): %s", e.Reason, e.Message)
	}
	return fmt.Sprintf("llm: response was blocked (%s)", e.Reason)
}

// Is lets errors.Is(err, ErrBlocked) match.
func (e *BlockedError) Is(target error) bool {
	return target == ErrBlocked
}

// TextRequest is a single-turn text generation call.
type TextRequest struct {
	Model             string
	SystemInstruction string
	Prompt            string
	// Grounding enables web search grounding for the call.
	Grounding bool
}

// ImageRequest asks for an image-only response derived from a reference image.
type ImageRequest struct {
	Model    string
	Image    []byte
	MIMEType string
	Prompt   string
}

// ImageResponse mirrors the candidates returned by the model.
type ImageResponse struct {
	Candidates []Candidate
}

// Candidate is one model answer.
type Candidate struct {
	FinishReason string
	Parts        []Part
}

// Part is either text or inline binary data.
type Part struct {
	Text       string
	InlineData *Blob
}

// Blob is inline binary data such as a generated image.
type Blob struct {
	MIMEType string
	Data     []byte
}

// TextGenerator produces text answers.
type TextGenerator interface {
	GenerateText(ctx context.Context, req TextRequest) (string, error)
}

// ImageGenerator produces images from a reference image and an instruction.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req ImageRequest) (ImageResponse, error)
}

// Client defines the remote calls the studio pipeline depends on.
type Client interface {
	TextGenerator
	ImageGenerator
}
