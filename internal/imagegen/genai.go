package imagegen

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is the Imagen model used when none is configured.
const DefaultModel = "imagen-4.0-generate-001"

// GenAIModel adapts the Gemini API Imagen endpoint to Model.
type GenAIModel struct {
	client *genai.Client
	model  string
}

// NewGenAIModel creates a client for the Gemini API.
func NewGenAIModel(ctx context.Context, apiKey, model string) (*GenAIModel, error) {
	if apiKey == "" {
		return nil, errors.New("imagegen: GenAI API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("imagegen: create GenAI client: %w", err)
	}
	return &GenAIModel{client: client, model: model}, nil
}

// Name returns the configured model id.
func (m *GenAIModel) Name() string {
	return m.model
}

// GenerateImage requests a single image.
func (m *GenAIModel) GenerateImage(ctx context.Context, req ModelRequest) (Image, error) {
	resp, err := m.client.Models.GenerateImages(ctx, m.model, req.Prompt, &genai.GenerateImagesConfig{
		NumberOfImages:   1,
		AspectRatio:      req.AspectRatio,
		IncludeRAIReason: true,
	})
	if err != nil {
		return Image{}, fmt.Errorf("imagen generate: %w", err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 {
		return Image{}, ErrNoImage
	}
	generated := resp.GeneratedImages[0]
	if generated == nil || generated.Image == nil {
		if generated != nil && generated.RAIFilteredReason != "" {
			return Image{}, fmt.Errorf("%w: filtered: %s", ErrNoImage, generated.RAIFilteredReason)
		}
		return Image{}, ErrNoImage
	}
	return Image{Data: generated.Image.ImageBytes, MIMEType: generated.Image.MIMEType}, nil
}
