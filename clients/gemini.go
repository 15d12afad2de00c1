package clients

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"google.golang.org/genai"
)

const MaxPromptLength = 1000

// GeneratedImage is the raw output of an image model.
type GeneratedImage struct {
	Data     []byte
	MIMEType string
}

// ImageGenerator turns a text prompt into an image.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (*GeneratedImage, error)
}

type GeminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create genai client")
	}
	return &GeminiGenerator{client: client, model: model}, nil
}

func withSystemPrompt(prompt string) string {
	return fmt.Sprintf(`You are an image generation assistant. Produce a single illustration for the request below.
Keep the content safe and appropriate. Prefer clear composition and lighting.

Request: %s`, prompt)
}

func (g *GeminiGenerator) GenerateImage(ctx context.Context, prompt string) (*GeneratedImage, error) {
	if prompt == "" {
		return nil, errors.New("prompt is required")
	}
	if len(prompt) > MaxPromptLength {
		return nil, errors.Errorf("prompt too long (max %d characters)", MaxPromptLength)
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(withSystemPrompt(prompt)), &genai.GenerateContentConfig{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate image")
	}
	return firstImage(result)
}

// firstImage returns the first inline image of the first candidate.
func firstImage(result *genai.GenerateContentResponse) (*GeneratedImage, error) {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return nil, errors.New("no candidates in response")
	}
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			mime := part.InlineData.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			return &GeneratedImage{Data: part.InlineData.Data, MIMEType: mime}, nil
		}
	}
	return nil, errors.New("no image data in response")
}
