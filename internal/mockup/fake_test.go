package mockup

import (
	"context"
	"sync"

	"chromadish/internal/llm"
)

// fakeClient records requests and replays canned answers.
type fakeClient struct {
	mu sync.Mutex

	text    string
	textErr error
	image   llm.ImageResponse
	imgErr  error

	textReqs  []llm.TextRequest
	imageReqs []llm.ImageRequest
}

func (f *fakeClient) GenerateText(_ context.Context, req llm.TextRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.textReqs = append(f.textReqs, req)
	return f.text, f.textErr
}

func (f *fakeClient) GenerateImage(_ context.Context, req llm.ImageRequest) (llm.ImageResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imageReqs = append(f.imageReqs, req)
	return f.image, f.imgErr
}

func imageResponse(data []byte) llm.ImageResponse {
	return llm.ImageResponse{Candidates: []llm.Candidate{{
		FinishReason: "STOP",
		Parts: []llm.Part{
			{Text: "here is your mockup"},
			{InlineData: &llm.Blob{MIMEType: "image/png", Data: data}},
		},
	}}}
}
