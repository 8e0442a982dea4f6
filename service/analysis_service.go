package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"cravesmart-backend/models"
	"cravesmart-backend/storage"

	"github.com/google/uuid"
)

var (
	ErrImageRequired  = errors.New("please upload a meal photo to analyze")
	ErrAnalysisFailed = errors.New("failed to analyze meal")
	ErrNotJSONObject  = errors.New("response is not a JSON object")
)

// AnalysisService builds prompts, calls the model and cleans up its answer
type AnalysisService struct {
	generator    ContentGenerator
	imageArchive storage.Storage
}

// AnalysisServiceOption is a functional option for AnalysisService
type AnalysisServiceOption func(*AnalysisService)

// AnalysisWithGenerator sets the model gateway
func AnalysisWithGenerator(generator ContentGenerator) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.generator = generator
	}
}

// AnalysisWithImageArchive stores every submitted meal photo
func AnalysisWithImageArchive(store storage.Storage) AnalysisServiceOption {
	return func(s *AnalysisService) {
		s.imageArchive = store
	}
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(opts ...AnalysisServiceOption) *AnalysisService {
	s := &AnalysisService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeRequest represents a request to analyze a meal or plan a day
type AnalyzeRequest struct {
	Profile     models.Profile
	Image       *ImageInput
	Description string
	PlanType    models.PlanType
	MealsPerDay int
}

// Validate checks the request before any network call is made
func (r AnalyzeRequest) Validate() error {
	if !r.PlanType.IsValid() {
		return ErrInvalidPlanType
	}
	if r.PlanType == models.PlanAnalyze && (r.Image == nil || len(r.Image.Data) == 0) {
		return ErrImageRequired
	}
	if _, err := normalizeMealsPerDay(r.MealsPerDay); err != nil {
		return err
	}
	if err := r.Profile.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	return nil
}

// Analyze runs one analysis request end to end
func (s *AnalysisService) Analyze(ctx context.Context, req AnalyzeRequest) (*models.AnalysisResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if s.generator == nil {
		return nil, errors.New("content generator not set")
	}

	hasImage := req.Image != nil && len(req.Image.Data) > 0
	prompt, err := BuildPrompt(PromptRequest{
		Profile:     req.Profile,
		HasImage:    hasImage,
		Description: req.Description,
		PlanType:    req.PlanType,
		MealsPerDay: req.MealsPerDay,
	})
	if err != nil {
		return nil, err
	}

	text, err := s.generator.GenerateJSON(ctx, prompt.Text, req.Image)
	if err != nil {
		log.Printf("Error calling Gemini API: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	result, err := ParseAnalysisResult(text)
	if err != nil {
		log.Printf("Failed to parse analysis response: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	result = SanitizeForDiet(result, req.Profile)

	if hasImage && s.imageArchive != nil {
		path, err := s.archiveImage(ctx, req.Image)
		if err != nil {
			// The analysis is still usable without the archived photo
			log.Printf("Warning: Failed to archive meal photo: %v", err)
		} else {
			result.ImagePath = path
		}
	}

	return result, nil
}

// ParseAnalysisResult decodes model text into an AnalysisResult.
// Markdown code fences around the JSON are tolerated. The body must be a
// JSON object; fields of the wrong shape inside it decode leniently.
func ParseAnalysisResult(text string) (*models.AnalysisResult, error) {
	body := stripCodeFence(text)
	if body == "" {
		return nil, ErrEmptyResponse
	}

	if body[0] != '{' {
		return nil, ErrNotJSONObject
	}

	result := &models.AnalysisResult{}
	if err := json.Unmarshal([]byte(body), result); err != nil {
		return nil, fmt.Errorf("invalid JSON response: %w", err)
	}
	return result, nil
}

func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		// drop the language tag line
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func (s *AnalysisService) archiveImage(ctx context.Context, image *ImageInput) (string, error) {
	filename := image.Filename
	if filename == "" {
		filename = "meal" + extensionForMIME(image.MIMEType)
	}
	return s.imageArchive.Upload(ctx, uuid.New(), filepath.Base(filename), bytes.NewReader(image.Data))
}

func extensionForMIME(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/heic":
		return ".heic"
	default:
		return ".jpg"
	}
}
