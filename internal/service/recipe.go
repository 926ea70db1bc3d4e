package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/types"
)

// SafetyMode controls what happens when a recipe trips the safety check
type SafetyMode string

const (
	SafetyWarn   SafetyMode = "warn"
	SafetyReject SafetyMode = "reject"
	SafetyOff    SafetyMode = "off"
)

// ParseSafetyMode is case-insensitive and defaults to SafetyWarn
func ParseSafetyMode(s string) SafetyMode {
	switch SafetyMode(strings.ToLower(strings.TrimSpace(s))) {
	case SafetyReject:
		return SafetyReject
	case SafetyOff:
		return SafetyOff
	}
	return SafetyWarn
}

var errSafetyRejected = errors.New("recipe rejected by safety check")

// GenerationResult is what the recipe flow produced. Exactly one of Recipe,
// Raw or Violation is set.
type GenerationResult struct {
	Recipe    *types.RecipeResult
	Raw       string
	Violation *types.ConstraintViolation
	Mock      bool
}

// RecipeOptions toggles optional behaviour of the recipe flow
type RecipeOptions struct {
	// DevFallback serves the mock recipe when the API rejects the credential
	DevFallback   bool
	ImagesEnabled bool
	SafetyMode    SafetyMode
}

// RecipeService sequences prompt building, the model call, post-processing,
// validation and the image step for one request.
type RecipeService struct {
	credentials *CredentialResolver
	text        TextGenerator
	images      PromptImageGenerator
	safety      *SafetyValidator
	opts        RecipeOptions
	logger      *zap.Logger
}

// NewRecipeService creates the recipe flow. images may be nil when image
// generation is disabled.
func NewRecipeService(credentials *CredentialResolver, text TextGenerator, images PromptImageGenerator, safety *SafetyValidator, opts RecipeOptions, logger *zap.Logger) *RecipeService {
	if opts.SafetyMode == "" {
		opts.SafetyMode = SafetyWarn
	}
	return &RecipeService{
		credentials: credentials,
		text:        text,
		images:      images,
		safety:      safety,
		opts:        opts,
		logger:      logger.Named("recipe"),
	}
}

// Generate runs the recipe flow. Outbound work ignores cancellation of ctx
// so that retries run to completion once a request has started. An error is
// returned only for unrecoverable model failures.
func (s *RecipeService) Generate(ctx context.Context, req types.RecipeRequest) (*GenerationResult, error) {
	ctx = context.WithoutCancel(ctx)
	prompt := BuildPrompt(req)

	apiKey := s.credentials.Resolve()
	if !IsValidCredential(apiKey) {
		s.logger.Info("No valid Gemini API key, serving mock recipe", zap.Bool("dev_fallback", s.opts.DevFallback))
		return s.mock(req), nil
	}

	text, err := s.text.Generate(ctx, apiKey, prompt)
	if err != nil {
		if errors.Is(err, ErrForbidden) && s.opts.DevFallback {
			s.logger.Warn("Gemini rejected the API key, serving mock recipe")
			return s.mock(req), nil
		}
		recipeOutcomes.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("recipe generation failed: %w", err)
	}

	obj, ok := ParseRecipeText(text)
	if !ok {
		s.logger.Warn("Model output is not a JSON object, returning raw text")
		recipeOutcomes.WithLabelValues("raw").Inc()
		return &GenerationResult{Raw: text}, nil
	}
	recipe, ok := RecipeFromTree(obj)
	if !ok {
		s.logger.Warn("Model output lacks ingredients or instructions, returning raw text")
		recipeOutcomes.WithLabelValues("raw").Inc()
		return &GenerationResult{Raw: text}, nil
	}

	maxMinutes, constrained := req.MaxMinutes()
	if violations := CheckTimeConstraint(recipe, maxMinutes, constrained); len(violations) > 0 {
		s.logger.Info("Recipe exceeds time limit", zap.Strings("violations", violations))
		recipeOutcomes.WithLabelValues("time_violation").Inc()
		return &GenerationResult{Violation: NewConstraintViolation(timeViolationMessage, violations)}, nil
	}

	var warnings []string
	g, gctx := errgroup.WithContext(ctx)
	if s.opts.SafetyMode != SafetyOff {
		g.Go(func() error {
			warnings = s.safety.Validate(recipe, req.Allergies, req.DietaryPreferences)
			if len(warnings) > 0 && s.opts.SafetyMode == SafetyReject {
				return errSafetyRejected
			}
			return nil
		})
	}
	var withImage types.RecipeResult
	g.Go(func() error {
		withImage = s.attachImage(gctx, recipe)
		return nil
	})

	if err := g.Wait(); errors.Is(err, errSafetyRejected) {
		s.logger.Info("Recipe rejected by safety check", zap.Strings("violations", warnings))
		recipeOutcomes.WithLabelValues("safety_violation").Inc()
		return &GenerationResult{Violation: NewConstraintViolation(safetyViolationMessage, warnings)}, nil
	}

	if len(warnings) > 0 {
		s.logger.Info("Recipe has safety warnings", zap.Strings("warnings", warnings))
		withImage.SafetyWarnings = warnings
	}
	recipeOutcomes.WithLabelValues("success").Inc()
	return &GenerationResult{Recipe: &withImage}, nil
}

// attachImage fills in the image URL and its metadata. A recipe that already
// carries an image URL is left untouched.
func (s *RecipeService) attachImage(ctx context.Context, r types.RecipeResult) types.RecipeResult {
	if r.ImageURL != "" {
		return r
	}
	if !s.opts.ImagesEnabled || s.images == nil {
		r.ImageGeneration = types.ImageGenerationMeta{Status: types.ImageSkipped, Source: types.SourceEmpty, ErrorMessage: errImagesDisabled}
		return r
	}

	r.ImageGeneration = types.ImageGenerationMeta{Status: types.ImageAttempting, Source: types.SourceEmpty}
	prompt, _ := BuildImagePrompt(&r, "")
	resp := s.images.GenerateImage(ctx, prompt, false)
	if resp.Status == types.ImageSuccess && resp.ImageURL != nil && *resp.ImageURL != "" {
		r.ImageURL = *resp.ImageURL
		r.ImageGeneration = types.ImageGenerationMeta{Status: types.ImageSuccess, Source: resp.Source}
		return r
	}

	msg := resp.ErrorMessage
	if msg == "" {
		msg = errNoImageReturned
	}
	s.logger.Info("Image generation failed, using placeholder", zap.String("reason", msg))
	r.ImageURL = PlaceholderDataURL(r.RecipeName)
	r.ImageGeneration = types.ImageGenerationMeta{Status: types.ImageFailed, Source: types.SourcePlaceholder, ErrorMessage: msg}
	return r
}

func (s *RecipeService) mock(req types.RecipeRequest) *GenerationResult {
	recipeOutcomes.WithLabelValues("mock").Inc()
	r := MockRecipe(req.PantryItems, s.opts.ImagesEnabled)
	return &GenerationResult{Recipe: &r, Mock: true}
}
