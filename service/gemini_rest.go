package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const geminiAPIBase = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiRESTGateway calls the Gemini generateContent endpoint directly via HTTP
type GeminiRESTGateway struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// RESTGatewayOption is a functional option for GeminiRESTGateway
type RESTGatewayOption func(*GeminiRESTGateway)

// RESTWithEndpoint overrides the full generateContent URL
func RESTWithEndpoint(endpoint string) RESTGatewayOption {
	return func(g *GeminiRESTGateway) {
		g.endpoint = endpoint
	}
}

// RESTWithHTTPClient sets the HTTP client
func RESTWithHTTPClient(client *http.Client) RESTGatewayOption {
	return func(g *GeminiRESTGateway) {
		g.httpClient = client
	}
}

// NewGeminiRESTGateway creates a REST gateway for the given model
func NewGeminiRESTGateway(apiKey, modelName string, opts ...RESTGatewayOption) *GeminiRESTGateway {
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	g := &GeminiRESTGateway{
		apiKey:     apiKey,
		endpoint:   fmt.Sprintf("%s/%s:generateContent", geminiAPIBase, modelName),
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type restPart struct {
	Text       string          `json:"text,omitempty"`
	InlineData *restInlineData `json:"inline_data,omitempty"`
}

type restInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type restRequest struct {
	Contents []struct {
		Parts []restPart `json:"parts"`
	} `json:"contents"`
	GenerationConfig struct {
		ResponseMimeType string  `json:"responseMimeType"`
		Temperature      float64 `json:"temperature"`
	} `json:"generationConfig"`
}

// GenerateJSON posts the prompt and optional inline image and returns the text
func (g *GeminiRESTGateway) GenerateJSON(ctx context.Context, prompt string, image *ImageInput) (string, error) {
	if g.apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY not set")
	}

	parts := []restPart{{Text: prompt}}
	if image != nil && len(image.Data) > 0 {
		parts = append(parts, restPart{InlineData: &restInlineData{
			MimeType: image.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(image.Data),
		}})
	}

	var reqBody restRequest
	reqBody.Contents = append(reqBody.Contents, struct {
		Parts []restPart `json:"parts"`
	}{Parts: parts})
	reqBody.GenerationConfig.ResponseMimeType = "application/json"
	reqBody.GenerationConfig.Temperature = 0.4

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("Gemini API error: Status %d, Body: %s", resp.StatusCode, truncate(string(bodyBytes), 1000))
		return "", fmt.Errorf("API error: %d", resp.StatusCode)
	}

	var apiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason,omitempty"`
		} `json:"candidates"`
		PromptFeedback struct {
			BlockReason string `json:"blockReason,omitempty"`
		} `json:"promptFeedback,omitempty"`
		Error struct {
			Code    int    `json:"code,omitempty"`
			Message string `json:"message,omitempty"`
		} `json:"error,omitempty"`
	}

	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		log.Printf("Failed to decode response. Body: %s", truncate(string(bodyBytes), 1000))
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if apiResp.Error.Message != "" {
		return "", fmt.Errorf("API error: %s (code: %d)", apiResp.Error.Message, apiResp.Error.Code)
	}
	if apiResp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("API blocked prompt: %s", apiResp.PromptFeedback.BlockReason)
	}
	if len(apiResp.Candidates) == 0 {
		return "", errors.New("API returned no candidates")
	}

	var responseText strings.Builder
	for i, candidate := range apiResp.Candidates {
		if candidate.FinishReason != "" && candidate.FinishReason != "STOP" {
			log.Printf("Warning: Candidate %d finished with reason: %s", i, candidate.FinishReason)
		}
		for _, part := range candidate.Content.Parts {
			responseText.WriteString(part.Text)
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

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
