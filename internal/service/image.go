package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-recipe-ai/backend/config"
	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/parser"
	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/types"
)

const (
	// DefaultImageModel replaces the text model when the image endpoint is derived
	DefaultImageModel = "gemini-2.5-flash-image"

	imageAttempts  = 3
	imageBaseDelay = 500 * time.Millisecond
	maxPromptItems = 6

	errNoImageReturned    = "no_image_returned"
	errImagesDisabled     = "image_generation_disabled"
	errMissingCredential  = "missing_api_key"
	errNoPromptOrRecipe   = "No prompt or recipe context provided"
	errImageEndpointUnset = "image_endpoint_not_configured"
)

const photoStyle = "Style: professional food photography, well-lit, appetizing presentation, garnished and plated beautifully, shallow depth of field, natural lighting, rustic wooden table or clean white background"

// quantity prefixes are stripped repeatedly so "1 1/2 cups" loses both numbers
var (
	leadingRange    = regexp.MustCompile(`^\d+-\d+\s*`)
	leadingFraction = regexp.MustCompile(`^\d+/\d+\s*`)
	leadingDecimal  = regexp.MustCompile(`^\d+(\.\d+)?\s*`)
	unitWords       = regexp.MustCompile(`(?i)\b(cups?|tablespoons?|tbsp|teaspoons?|tsp|ounces?|oz|pounds?|lbs?|grams?|g|kilograms?|kg|milliliters?|ml|liters?|l|pinch|dash|handful|bunch)\b`)
)

// ImageStore persists a generated image and returns a public URL
type ImageStore interface {
	Upload(ctx context.Context, data []byte, mimeType string) (string, error)
}

// S3PutObjectAPI is the subset of the S3 client used for uploads
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ImageStore uploads images under recipe-images/ in a public bucket
type S3ImageStore struct {
	client S3PutObjectAPI
	bucket string
}

// NewS3ImageStore creates a store from the shared S3 configuration
func NewS3ImageStore(cfg *config.S3Config) *S3ImageStore {
	return &S3ImageStore{client: cfg.Client, bucket: cfg.BucketName}
}

// Upload stores data under a random key and returns its public URL
func (s *S3ImageStore) Upload(ctx context.Context, data []byte, mimeType string) (string, error) {
	key := config.ImageKeyPrefix + uuid.New().String() + "." + extensionFor(mimeType)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return config.ObjectURL(s.bucket, key), nil
}

func extensionFor(mimeType string) string {
	switch strings.ToLower(mimeType) {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/webp":
		return "webp"
	case "image/gif":
		return "gif"
	}
	return "png"
}

// ImageOptions configures where image requests are sent
type ImageOptions struct {
	// URL is an explicit image endpoint; when empty one is derived from TextURL
	URL     string
	TextURL string
	Model   string
}

// ImageOrchestrator generates recipe images through the Gemini image model
type ImageOrchestrator struct {
	endpoint    string
	credentials *CredentialResolver
	primary     Transport
	direct      Transport
	policy      RetryPolicy
	store       ImageStore
	logger      *zap.Logger
}

// NewImageOrchestrator wires the image flow. store may be nil, in which case
// inline images are returned as data URIs.
func NewImageOrchestrator(opts ImageOptions, credentials *CredentialResolver, primary, direct Transport, store ImageStore, logger *zap.Logger) *ImageOrchestrator {
	return &ImageOrchestrator{
		endpoint:    ResolveImageEndpoint(opts.URL, opts.TextURL, opts.Model),
		credentials: credentials,
		primary:     primary,
		direct:      direct,
		policy:      RetryPolicy{MaxAttempts: imageAttempts, BaseDelay: imageBaseDelay},
		store:       store,
		logger:      logger.Named("image"),
	}
}

// Endpoint returns the resolved image endpoint
func (o *ImageOrchestrator) Endpoint() string {
	return o.endpoint
}

// ResolveImageEndpoint prefers an explicit URL, otherwise swaps the model
// segment of textURL (between "/models/" and the next ":") for model.
func ResolveImageEndpoint(explicit, textURL, model string) string {
	if s := strings.TrimSpace(explicit); s != "" {
		return s
	}
	if model == "" {
		model = DefaultImageModel
	}
	const marker = "/models/"
	i := strings.Index(textURL, marker)
	if i < 0 {
		return ""
	}
	start := i + len(marker)
	end := strings.Index(textURL[start:], ":")
	if end < 0 {
		return ""
	}
	return textURL[:start] + model + textURL[start+end:]
}

// GenerateFromRequest builds a prompt from the request's recipe or prompt and
// generates an image for it. Cancellation of ctx is ignored once started.
func (o *ImageOrchestrator) GenerateFromRequest(ctx context.Context, req types.ImageGenerationRequest, forceCurl bool) types.ImageGenerationResponse {
	ctx = context.WithoutCancel(ctx)
	prompt, ok := BuildImagePrompt(req.Recipe, req.Prompt)
	if !ok {
		return failedImage(errNoPromptOrRecipe)
	}
	return o.GenerateImage(ctx, prompt, forceCurl)
}

// GenerateImage runs the image call and extracts the first usable image.
// Failures are reported in the response, never as errors.
func (o *ImageOrchestrator) GenerateImage(ctx context.Context, prompt string, forceCurl bool) types.ImageGenerationResponse {
	resp := o.generate(ctx, prompt, forceCurl)
	imageOutcomes.WithLabelValues(string(resp.Status), resp.Source).Inc()
	return resp
}

func (o *ImageOrchestrator) generate(ctx context.Context, prompt string, forceCurl bool) types.ImageGenerationResponse {
	if o.endpoint == "" {
		o.logger.Warn("Skipping image generation, no image endpoint configured")
		return failedImage(errImageEndpointUnset)
	}
	apiKey := o.credentials.Resolve()
	if !IsValidCredential(apiKey) {
		o.logger.Debug("Skipping image generation, no API key available")
		return failedImage(errMissingCredential)
	}

	payload, err := json.Marshal(generateContentRequest{
		Contents:         userContent("Generate image for: " + prompt),
		GenerationConfig: generationConfig{ResponseModalities: []string{"Image"}},
	})
	if err != nil {
		o.logger.Error("Failed to marshal image request", zap.Error(err))
		return failedImage(errNoImageReturned)
	}
	req := Request{
		URL:     o.endpoint,
		Headers: map[string]string{APIKeyHeader: apiKey, "Accept": "application/json"},
		Body:    payload,
	}

	start := time.Now()
	body := o.fetch(ctx, req, forceCurl)
	geminiCallDuration.WithLabelValues(callImage).Observe(time.Since(start).Seconds())
	if body == nil {
		return failedImage(errNoImageReturned)
	}

	root, err := parser.Decode(body)
	if err != nil {
		o.logger.Warn("Image response was not valid JSON", zap.Error(err))
		return failedImage(errNoImageReturned)
	}
	found := parser.FindImage(root)
	if !found.Found() {
		o.logger.Warn("No image found in response", zap.String("response", parser.RedactBody(body)))
		return failedImage(errNoImageReturned)
	}
	o.logger.Info("Image extracted",
		zap.Stringer("kind", found.Kind),
		zap.Int("pass", found.Pass),
		zap.String("mime_type", found.MimeType))

	if found.Kind == parser.InlineFound && o.store != nil {
		u, err := o.offload(ctx, found)
		if err == nil {
			return succeededImage(u, types.SourceExternal)
		}
		o.logger.Warn("Image upload failed, returning inline data", zap.Error(err))
	}
	source := types.SourceInline
	if found.Kind == parser.ExternalFound {
		source = types.SourceExternal
	}
	return succeededImage(found.URI(), source)
}

// fetch returns a non-blank 2xx body, or nil. forceCurl skips the primary
// transport; otherwise the direct transport is tried once after the primary
// gives up for any reason other than a 403.
func (o *ImageOrchestrator) fetch(ctx context.Context, req Request, forceCurl bool) []byte {
	if !forceCurl {
		outcome := o.policy.Execute(ctx, o.primary, req, o.logAttempt)
		switch outcome.Kind {
		case OutcomeSuccess:
			return outcome.Body
		case OutcomeForbidden:
			o.logger.Error("Image endpoint rejected the API key")
			return nil
		}
		o.logger.Warn("Primary image transport gave up, trying direct transport",
			zap.Stringer("outcome", outcome.Kind),
			zap.Int("attempts", outcome.Attempts))
	}

	resp, err := o.direct.Post(ctx, req)
	kind, err := classify(resp, err)
	o.logAttempt(0, kind, resp, err)
	if kind != OutcomeSuccess {
		return nil
	}
	return resp.Body
}

func (o *ImageOrchestrator) logAttempt(attempt int, kind OutcomeKind, resp *Response, err error) {
	geminiAttempts.WithLabelValues(callImage, kind.String()).Inc()
	fields := []zap.Field{zap.Int("attempt", attempt), zap.Stringer("outcome", kind)}
	if resp != nil {
		fields = append(fields,
			zap.Int("status", resp.StatusCode),
			zap.Int("bytes", len(resp.Body)),
			zap.String("response", parser.RedactBody(resp.Body)))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if kind == OutcomeSuccess {
		o.logger.Info("Image attempt returned a body", fields...)
		return
	}
	o.logger.Warn("Image attempt failed", fields...)
}

func (o *ImageOrchestrator) offload(ctx context.Context, img parser.ImageResult) (string, error) {
	data, err := base64.StdEncoding.DecodeString(strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, img.Data))
	if err != nil {
		return "", fmt.Errorf("failed to decode image data: %w", err)
	}
	mime := img.MimeType
	if mime == "" {
		mime = parser.DefaultImageMime
	}
	return o.store.Upload(ctx, data, mime)
}

func failedImage(message string) types.ImageGenerationResponse {
	return types.ImageGenerationResponse{
		Status:       types.ImageFailed,
		Source:       types.SourceEmpty,
		ErrorMessage: message,
	}
}

func succeededImage(u, source string) types.ImageGenerationResponse {
	return types.ImageGenerationResponse{
		Status:   types.ImageSuccess,
		ImageURL: &u,
		Source:   source,
	}
}

// BuildImagePrompt prefers recipe context over the bare prompt. ok is false
// when neither is usable.
func BuildImagePrompt(recipe *types.RecipeResult, prompt string) (string, bool) {
	if recipe != nil {
		return recipeImagePrompt(*recipe), true
	}
	if p := strings.TrimSpace(prompt); p != "" {
		return "Create a professional food photography image: " + p + ". Style: well-lit, appetizing, professional presentation", true
	}
	return "", false
}

func recipeImagePrompt(r types.RecipeResult) string {
	var b strings.Builder
	b.WriteString("Create a professional, appetizing food photography image of ")
	if name := strings.TrimSpace(r.RecipeName); name != "" {
		b.WriteString(name)
	} else {
		b.WriteString("a delicious dish")
	}
	if desc := strings.TrimSpace(r.Description); desc != "" {
		b.WriteString(": ")
		b.WriteString(desc)
	}
	b.WriteString(". ")

	var names []string
	for _, ing := range r.Ingredients {
		if len(names) == maxPromptItems {
			break
		}
		if n := extractIngredientName(ing); n != "" {
			names = append(names, n)
		}
	}
	if len(names) > 0 {
		b.WriteString("The dish prominently features: ")
		b.WriteString(strings.Join(names, ", "))
		b.WriteString(". ")
	}
	b.WriteString(photoStyle)
	return b.String()
}

// extractIngredientName drops quantities and unit words, keeping at most three
// words. The input is returned unchanged if nothing would remain.
func extractIngredientName(ingredient string) string {
	s := strings.TrimSpace(ingredient)
	for {
		stripped := leadingRange.ReplaceAllString(s, "")
		stripped = leadingFraction.ReplaceAllString(stripped, "")
		stripped = leadingDecimal.ReplaceAllString(stripped, "")
		if stripped == s {
			break
		}
		s = stripped
	}
	s = unitWords.ReplaceAllString(s, "")
	words := strings.Fields(s)
	if len(words) == 0 {
		return strings.TrimSpace(ingredient)
	}
	if len(words) > 3 {
		words = words[:3]
	}
	return strings.Join(words, " ")
}

// PlaceholderDataURL renders an SVG card with the recipe title as a data URL
func PlaceholderDataURL(title string) string {
	t := strings.NewReplacer("<", "", ">", "").Replace(strings.TrimSpace(title))
	if t == "" {
		t = "Recipe"
	}
	t = html.EscapeString(t)
	svg := "<svg xmlns='http://www.w3.org/2000/svg' width='640' height='400'>" +
		"<defs><linearGradient id='g' x1='0' x2='1'>" +
		"<stop offset='0' stop-color='#f59e0b'/><stop offset='1' stop-color='#f97316'/>" +
		"</linearGradient></defs>" +
		"<rect width='100%' height='100%' fill='url(#g)'/>" +
		"<text x='50%' y='50%' dominant-baseline='middle' text-anchor='middle' font-family='Arial' font-size='36' fill='white'>" +
		t + "</text></svg>"
	// data URLs are percent-decoded only, so spaces must not become '+'
	return "data:image/svg+xml;utf8," + url.PathEscape(svg)
}
