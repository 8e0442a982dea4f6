package service

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiGateway_DefaultsAndNilClient(t *testing.T) {
	gw := NewGeminiGateway(nil, "")
	assert.Equal(t, DefaultGeminiModel, gw.modelName)

	_, err := gw.GenerateJSON(context.Background(), "p", nil)
	assert.Error(t, err)
}

func textCandidate(reason genai.FinishReason, parts ...genai.Part) *genai.Candidate {
	return &genai.Candidate{
		Content:      &genai.Content{Role: "model", Parts: parts},
		FinishReason: reason,
	}
}

func TestTextFromResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		want    string
		wantErr string
	}{
		{
			name: "single candidate",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				textCandidate(genai.FinishReasonStop, genai.Text(`{"detectedMealName":`), genai.Text(`"Upma"}`)),
			}},
			want: `{"detectedMealName":"Upma"}`,
		},
		{
			name: "skips nil content",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				{FinishReason: genai.FinishReasonSafety},
				textCandidate(genai.FinishReasonStop, genai.Text(`{}`)),
			}},
			want: `{}`,
		},
		{
			name: "stops at first candidate with text",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				textCandidate(genai.FinishReasonStop, genai.Text(`{"a":1}`)),
				textCandidate(genai.FinishReasonStop, genai.Text(`{"b":2}`)),
			}},
			want: `{"a":1}`,
		},
		{
			name: "ignores non text parts",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				textCandidate(genai.FinishReasonMaxTokens, genai.Blob{MIMEType: "image/png", Data: []byte{1}}, genai.Text(`{"c":3}`)),
			}},
			want: `{"c":3}`,
		},
		{
			name: "blocked prompt",
			resp: &genai.GenerateContentResponse{
				PromptFeedback: &genai.PromptFeedback{BlockReason: genai.BlockReasonSafety},
			},
			wantErr: "API blocked prompt",
		},
		{
			name:    "no candidates",
			resp:    &genai.GenerateContentResponse{},
			wantErr: "no candidates",
		},
		{
			name: "empty text",
			resp: &genai.GenerateContentResponse{Candidates: []*genai.Candidate{
				textCandidate(genai.FinishReasonStop, genai.Text("   ")),
			}},
			wantErr: ErrEmptyResponse.Error(),
		},
		{
			name:    "nil response",
			resp:    nil,
			wantErr: ErrEmptyResponse.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := textFromResponse(tt.resp)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
