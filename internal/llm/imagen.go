package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"
	// imagenEditMode asks Imagen to keep the product and restage the scene.
	imagenEditMode = "product-image"
)

// VertexImagenConfig describes how to connect to Imagen on Vertex AI.
type VertexImagenConfig struct {
	ProjectID string
	Location  string
	Model     string
	APIKey    string
	// CredentialsJSON is a service account key; when set it wins over APIKey.
	CredentialsJSON string
}

// predictor is the slice of the prediction client this package calls.
type predictor interface {
	Predict(ctx context.Context, req *aiplatformpb.PredictRequest) (*aiplatformpb.PredictResponse, error)
	Close() error
}

type predictionClient struct {
	client *aiplatform.PredictionClient
}

func (p predictionClient) Predict(ctx context.Context, req *aiplatformpb.PredictRequest) (*aiplatformpb.PredictResponse, error) {
	return p.client.Predict(ctx, req)
}

func (p predictionClient) Close() error {
	return p.client.Close()
}

// VertexImagenClient implements ImageGenerator with an Imagen edit request.
type VertexImagenClient struct {
	predictor predictor
	endpoint  string
}

// NewVertexImagenClient dials the regional prediction endpoint once.
func NewVertexImagenClient(ctx context.Context, cfg VertexImagenConfig) (*VertexImagenClient, error) {
	projectID := strings.TrimSpace(cfg.ProjectID)
	location := strings.TrimSpace(cfg.Location)
	model := strings.TrimSpace(cfg.Model)
	if projectID == "" || location == "" || model == "" {
		return nil, fmt.Errorf("imagen: missing project/location/model")
	}

	options := []option.ClientOption{option.WithEndpoint(fmt.Sprintf("%s-aiplatform.googleapis.com:443", location))}
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		creds, err := google.CredentialsFromJSON(ctx, []byte(cfg.CredentialsJSON), cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("imagen: parse credentials: %w", err)
		}
		options = append(options, option.WithTokenSource(creds.TokenSource))
	case strings.TrimSpace(cfg.APIKey) != "":
		options = append(options, option.WithAPIKey(strings.TrimSpace(cfg.APIKey)))
	}

	client, err := aiplatform.NewPredictionClient(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("imagen: prediction client: %w", err)
	}

	return &VertexImagenClient{
		predictor: predictionClient{client: client},
		endpoint:  fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/%s", projectID, location, model),
	}, nil
}

// Close releases the gRPC connection.
func (c *VertexImagenClient) Close() error {
	return c.predictor.Close()
}

// GenerateImage sends the reference image and instruction as one edit
// instance. The model on the request is ignored; the endpoint fixes it.
func (c *VertexImagenClient) GenerateImage(ctx context.Context, req ImageRequest) (ImageResponse, error) {
	if len(req.Image) == 0 {
		return ImageResponse{}, fmt.Errorf("imagen: empty reference image")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return ImageResponse{}, fmt.Errorf("imagen: prompt is required")
	}

	predictReq, err := imagenRequest(c.endpoint, req)
	if err != nil {
		return ImageResponse{}, err
	}

	resp, err := c.predictor.Predict(ctx, predictReq)
	if err != nil {
		return ImageResponse{}, fmt.Errorf("imagen: predict: %w", err)
	}
	return convertPrediction(resp)
}

func imagenRequest(endpoint string, req ImageRequest) (*aiplatformpb.PredictRequest, error) {
	instance, err := structpb.NewValue(map[string]any{
		"prompt": req.Prompt,
		"image": map[string]any{
			"bytesBase64Encoded": base64.StdEncoding.EncodeToString(req.Image),
			"mimeType":           req.MIMEType,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("imagen: build instance: %w", err)
	}

	params, err := structpb.NewValue(map[string]any{
		"sampleCount":       1,
		"editMode":          imagenEditMode,
		"includeRaiReason":  true,
		"outputOptions":     map[string]any{"mimeType": "image/png"},
		"personGeneration":  "dont_allow",
		"safetyFilterLevel": "block_some",
	})
	if err != nil {
		return nil, fmt.Errorf("imagen: build parameters: %w", err)
	}

	return &aiplatformpb.PredictRequest{
		Endpoint:   endpoint,
		Instances:  []*structpb.Value{instance},
		Parameters: params,
	}, nil
}

// convertPrediction maps predictions onto candidates. A prediction that only
// carries raiFilteredReason is a block; no predictions means no image.
func convertPrediction(resp *aiplatformpb.PredictResponse) (ImageResponse, error) {
	if resp == nil {
		return ImageResponse{}, fmt.Errorf("imagen: empty response")
	}

	var out ImageResponse
	for _, prediction := range resp.GetPredictions() {
		fields := prediction.GetStructValue().GetFields()
		encoded := fields["bytesBase64Encoded"].GetStringValue()
		if encoded == "" {
			if reason := fields["raiFilteredReason"].GetStringValue(); reason != "" {
				if len(out.Candidates) == 0 {
					return ImageResponse{}, &BlockedError{Reason: "RAI_FILTERED", Message: reason}
				}
			}
			continue
		}

		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return ImageResponse{}, fmt.Errorf("imagen: decode result: %w", err)
		}
		mimeType := fields["mimeType"].GetStringValue()
		if mimeType == "" {
			mimeType = "image/png"
		}
		out.Candidates = append(out.Candidates, Candidate{
			FinishReason: "STOP",
			Parts:        []Part{{InlineData: &Blob{MIMEType: mimeType, Data: data}}},
		})
	}
	return out, nil
}
