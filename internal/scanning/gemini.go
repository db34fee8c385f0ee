package scanning

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when no model name is configured
const DefaultGeminiModel = "gemini-2.5-flash"

// Gemini implements the Extractor interface using Google Gemini
type Gemini struct {
	client       *genai.Client
	model        *genai.GenerativeModel
	modelName    string
	maxDimension int
}

// NewGemini creates a new Gemini Extractor instance
func NewGemini(apiKey string, modelName string, maxDimension int) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)

	return &Gemini{
		client:       client,
		model:        model,
		modelName:    modelName,
		maxDimension: maxDimension,
	}, nil
}

// Name returns "gemini"
func (g *Gemini) Name() string {
	return "gemini"
}

// ExtractExams sends the image and the exam prompt to Gemini and returns the listed exam names
func (g *Gemini) ExtractExams(ctx context.Context, imageData []byte, contentType string) (*Extraction, error) {
	img, err := prepareImage(imageData, contentType, g.maxDimension)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "Sending image to Gemini",
		"model", g.modelName,
		"mime_type", img.mimeType,
		"converted", img.converted,
		"encoded_size", base64.StdEncoding.EncodedLen(len(img.data)),
	)

	resp, err := g.model.GenerateContent(ctx,
		genai.Text(examScanPrompt),
		genai.Blob{MIMEType: img.mimeType, Data: img.data},
	)
	if err != nil {
		return nil, classifyGeminiError(err)
	}

	return &Extraction{Text: responseText(resp)}, nil
}

// responseText concatenates the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String()
}

// classifyGeminiError marks quota and billing failures with ErrQuotaExceeded
func classifyGeminiError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "quota") || strings.Contains(msg, "billing") {
		return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
	}

	return fmt.Errorf("generating content: %w", err)
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}
