package service

import (
	"context"

	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/types"
)

// RecipeGenerator runs the end-to-end recipe flow for a request
type RecipeGenerator interface {
	Generate(ctx context.Context, req types.RecipeRequest) (*GenerationResult, error)
}

// ImageGenerator produces an image for a prompt or recipe
type ImageGenerator interface {
	GenerateFromRequest(ctx context.Context, req types.ImageGenerationRequest, forceCurl bool) types.ImageGenerationResponse
}

// TextGenerator sends a final prompt to the model and returns its raw text
type TextGenerator interface {
	Generate(ctx context.Context, apiKey, prompt string) (string, error)
}

// PromptImageGenerator produces an image for an already-built prompt
type PromptImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string, forceCurl bool) types.ImageGenerationResponse
}

var (
	_ RecipeGenerator      = (*RecipeService)(nil)
	_ ImageGenerator       = (*ImageOrchestrator)(nil)
	_ TextGenerator        = (*GenerationClient)(nil)
	_ PromptImageGenerator = (*ImageOrchestrator)(nil)
	_ ImageStore           = (*S3ImageStore)(nil)
)
