package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/parser"
)

const (
	// DefaultTextURL is the generateContent endpoint used for recipes
	DefaultTextURL = "https://generativelanguage.googleapis.com/v1beta/models/gemini-2.5-flash:generateContent"
	// APIKeyHeader carries the credential on every Gemini request
	APIKeyHeader = "x-goog-api-key"

	textAttempts  = 3
	textBaseDelay = 300 * time.Millisecond
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType   string   `json:"responseMimeType,omitempty"`
	ResponseSchema     any      `json:"responseSchema,omitempty"`
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

// generateContentRequest is the request envelope for both text and image calls
type generateContentRequest struct {
	Contents          []geminiContent  `json:"contents"`
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

func userContent(text string) []geminiContent {
	return []geminiContent{{Parts: []geminiPart{{Text: text}}}}
}

// GenerationClient performs the recipe text call against Gemini
type GenerationClient struct {
	url          string
	systemPrompt string
	schema       any
	transport    Transport
	policy       RetryPolicy
	logger       *zap.Logger
}

// NewGenerationClient creates a client; empty url and systemPrompt fall back to defaults
func NewGenerationClient(url, systemPrompt string, schema any, transport Transport, logger *zap.Logger) *GenerationClient {
	if url == "" {
		url = DefaultTextURL
	}
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &GenerationClient{
		url:          url,
		systemPrompt: systemPrompt,
		schema:       schema,
		transport:    transport,
		policy:       RetryPolicy{MaxAttempts: textAttempts, BaseDelay: textBaseDelay},
		logger:       logger.Named("gemini"),
	}
}

// URL returns the text endpoint, also used to derive the image endpoint
func (c *GenerationClient) URL() string {
	return c.url
}

// Generate sends prompt and returns the first candidate's text. The text is
// whatever the model produced and is not guaranteed to be valid JSON.
// Errors wrap ErrForbidden, ErrRetriesExhausted, ErrEmptyBody or parser.ErrNoCandidate.
func (c *GenerationClient) Generate(ctx context.Context, apiKey, prompt string) (string, error) {
	payload, err := json.Marshal(generateContentRequest{
		Contents:          userContent(prompt),
		SystemInstruction: &geminiContent{Parts: []geminiPart{{Text: c.systemPrompt}}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   c.schema,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	start := time.Now()
	outcome := c.policy.Execute(ctx, c.transport, Request{
		URL:     c.url,
		Headers: map[string]string{APIKeyHeader: apiKey},
		Body:    payload,
	}, c.logAttempt)
	geminiCallDuration.WithLabelValues(callText).Observe(time.Since(start).Seconds())

	if outcome.Kind != OutcomeSuccess {
		c.logger.Error("Gemini text call failed",
			zap.Stringer("outcome", outcome.Kind),
			zap.Int("attempts", outcome.Attempts),
			zap.Int("status", outcome.StatusCode),
			zap.Error(outcome.Err))
		return "", outcome.AsError()
	}

	text, err := parser.CandidateText(outcome.Body)
	if err != nil {
		c.logger.Warn("Gemini response had no candidate text", zap.String("response", parser.RedactBody(outcome.Body)))
		return "", err
	}
	return text, nil
}

func (c *GenerationClient) logAttempt(attempt int, kind OutcomeKind, resp *Response, err error) {
	geminiAttempts.WithLabelValues(callText, kind.String()).Inc()
	if kind == OutcomeSuccess {
		c.logger.Debug("Gemini text attempt succeeded", zap.Int("attempt", attempt))
		return
	}
	fields := []zap.Field{zap.Int("attempt", attempt), zap.Int("max_attempts", c.policy.MaxAttempts), zap.Stringer("outcome", kind)}
	if resp != nil {
		fields = append(fields, zap.Int("status", resp.StatusCode))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	c.logger.Warn("Gemini text attempt failed", fields...)
}
