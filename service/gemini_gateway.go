package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/generative-ai-go/genai"
)

// DefaultGeminiModel is used when no model name is configured
const DefaultGeminiModel = "gemini-1.5-flash"

// ErrEmptyResponse is returned when the model produced no text
var ErrEmptyResponse = errors.New("model returned empty content")

// ImageInput is an inline meal photo
type ImageInput struct {
	Data     []byte
	MIMEType string
	Filename string
}

// ContentGenerator sends one prompt, optionally with an image, and returns
// the model's JSON text
type ContentGenerator interface {
	GenerateJSON(ctx context.Context, prompt string, image *ImageInput) (string, error)
}

// GeminiGateway calls Gemini through the Go SDK
type GeminiGateway struct {
	client    *genai.Client
	modelName string
}

// NewGeminiGateway creates a gateway for the given model
func NewGeminiGateway(client *genai.Client, modelName string) *GeminiGateway {
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	return &GeminiGateway{
		client:    client,
		modelName: modelName,
	}
}

// GenerateJSON makes a single generateContent call requesting a JSON response
func (g *GeminiGateway) GenerateJSON(ctx context.Context, prompt string, image *ImageInput) (string, error) {
	if g.client == nil {
		return "", errors.New("gemini client not set")
	}

	model := g.client.GenerativeModel(g.modelName)
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(0.4)

	parts := []genai.Part{genai.Text(prompt)}
	if image != nil && len(image.Data) > 0 {
		parts = append(parts, genai.Blob{MIMEType: image.MIMEType, Data: image.Data})
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return textFromResponse(resp)
}

// textFromResponse returns the text of the first candidate that has any
func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrEmptyResponse
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("API blocked prompt: %s", resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", errors.New("API returned no candidates")
	}

	var responseText strings.Builder
	for i, candidate := range resp.Candidates {
		if candidate == nil {
			continue
		}
		if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
			log.Printf("Warning: Candidate %d finished with reason: %s", i, candidate.FinishReason)
		}
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				responseText.WriteString(string(text))
			}
		}
		if responseText.Len() > 0 {
			break
		}
	}

	result := responseText.String()
	if strings.TrimSpace(result) == "" {
		return "", ErrEmptyResponse
	}
	return result, nil
}
