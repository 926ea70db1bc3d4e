package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/types"
)

const stewJSON = `{
	"recipeName": "Beef Stew",
	"description": "Hearty",
	"ingredients": ["500 g beef", "2 carrots", "1 cup almond milk"],
	"instructions": ["Brown the beef.", "Simmer for 2 hours."],
	"prepTime": "20 minutes",
	"cookTime": "2 hours",
	"servings": "4"
}`

const saladJSON = `{
	"recipeName": "Green Salad",
	"ingredients": ["1 lettuce", "1 cucumber"],
	"instructions": ["Chop.", "Toss."],
	"prepTime": "10 minutes",
	"servings": 2
}`

func newRecipeService(key string, text *fakeText, images PromptImageGenerator, opts RecipeOptions) *RecipeService {
	return NewRecipeService(envless(key, ""), text, images, NewSafetyValidator(), opts, zap.NewNop())
}

func successImage(u string) types.ImageGenerationResponse {
	return types.ImageGenerationResponse{Status: types.ImageSuccess, ImageURL: &u, Source: types.SourceInline}
}

func TestRecipeService_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("should serve the mock without a credential", func(t *testing.T) {
		text := &fakeText{}
		res, err := newRecipeService("", text, nil, RecipeOptions{}).Generate(ctx, types.RecipeRequest{PantryItems: []string{"bread"}})

		require.NoError(t, err)
		assert.True(t, res.Mock)
		assert.Equal(t, "Simple Toast", res.Recipe.RecipeName)
		assert.Equal(t, 0, text.calls)
	})

	t.Run("should serve the mock on 403 in dev fallback mode", func(t *testing.T) {
		text := &fakeText{err: fmt.Errorf("wrapped: %w", ErrForbidden)}
		res, err := newRecipeService("key", text, nil, RecipeOptions{DevFallback: true}).Generate(ctx, types.RecipeRequest{})

		require.NoError(t, err)
		assert.True(t, res.Mock)
	})

	t.Run("should fail on 403 without dev fallback", func(t *testing.T) {
		text := &fakeText{err: ErrForbidden}
		_, err := newRecipeService("key", text, nil, RecipeOptions{}).Generate(ctx, types.RecipeRequest{})

		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("should fail when retries are exhausted", func(t *testing.T) {
		text := &fakeText{err: ErrRetriesExhausted}
		_, err := newRecipeService("key", text, nil, RecipeOptions{DevFallback: true}).Generate(ctx, types.RecipeRequest{})

		assert.ErrorIs(t, err, ErrRetriesExhausted)
	})

	t.Run("should return raw text that is not JSON", func(t *testing.T) {
		text := &fakeText{text: "Sorry, I cannot help."}
		res, err := newRecipeService("key", text, nil, RecipeOptions{}).Generate(ctx, types.RecipeRequest{})

		require.NoError(t, err)
		assert.Nil(t, res.Recipe)
		assert.Equal(t, "Sorry, I cannot help.", res.Raw)
	})

	t.Run("should return raw text for a recipe without instructions", func(t *testing.T) {
		raw := `{"recipeName":"x","ingredients":["a"]}`
		res, err := newRecipeService("key", &fakeText{text: raw}, nil, RecipeOptions{}).Generate(ctx, types.RecipeRequest{})

		require.NoError(t, err)
		assert.Equal(t, raw, res.Raw)
	})

	t.Run("should pass the built prompt and key to the model", func(t *testing.T) {
		text := &fakeText{text: saladJSON}
		req := types.RecipeRequest{Prompt: "a salad", Units: types.Imperial}
		_, err := newRecipeService("key", text, nil, RecipeOptions{}).Generate(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, "key", text.apiKey)
		assert.Equal(t, BuildPrompt(req), text.prompt)
	})

	t.Run("should reject a recipe over the time limit", func(t *testing.T) {
		images := &fakeImages{resp: successImage("data:image/png;base64,AAAA")}
		req := types.RecipeRequest{MaxTotalMinutes: intPtr(30)}
		res, err := newRecipeService("key", &fakeText{text: stewJSON}, images, RecipeOptions{ImagesEnabled: true}).Generate(ctx, req)

		require.NoError(t, err)
		require.NotNil(t, res.Violation)
		assert.Nil(t, res.Recipe)
		assert.Equal(t, "constraint_violation", res.Violation.Error)
		assert.Equal(t, []string{"Estimated total time 140 minutes exceeds maximum allowed 30 minutes"}, res.Violation.Details.Violations)
		assert.Empty(t, images.prompts)
	})

	t.Run("should attach the generated image", func(t *testing.T) {
		images := &fakeImages{resp: successImage("data:image/png;base64,AAAA")}
		res, err := newRecipeService("key", &fakeText{text: saladJSON}, images, RecipeOptions{ImagesEnabled: true}).Generate(ctx, types.RecipeRequest{})

		require.NoError(t, err)
		require.NotNil(t, res.Recipe)
		assert.Equal(t, "data:image/png;base64,AAAA", res.Recipe.ImageURL)
		assert.Equal(t, types.ImageGenerationMeta{Status: types.ImageSuccess, Source: types.SourceInline}, res.Recipe.ImageGeneration)
		require.Len(t, images.prompts, 1)
		assert.Contains(t, images.prompts[0], "Green Salad")
		assert.Nil(t, res.Recipe.EstimatedTimeMinutes)
	})

	t.Run("should fall back to a placeholder when the image fails", func(t *testing.T) {
		images := &fakeImages{resp: types.ImageGenerationResponse{Status: types.ImageFailed}}
		res, err := newRecipeService("key", &fakeText{text: saladJSON}, images, RecipeOptions{ImagesEnabled: true}).Generate(ctx, types.RecipeRequest{})

		require.NoError(t, err)
		assert.Equal(t, PlaceholderDataURL("Green Salad"), res.Recipe.ImageURL)
		assert.Equal(t, types.ImageGenerationMeta{Status: types.ImageFailed, Source: types.SourcePlaceholder, ErrorMessage: "no_image_returned"}, res.Recipe.ImageGeneration)
	})

	t.Run("should mark images as skipped when disabled", func(t *testing.T) {
		images := &fakeImages{}
		res, err := newRecipeService("key", &fakeText{text: saladJSON}, images, RecipeOptions{}).Generate(ctx, types.RecipeRequest{})

		require.NoError(t, err)
		assert.Empty(t, res.Recipe.ImageURL)
		assert.Equal(t, types.ImageSkipped, res.Recipe.ImageGeneration.Status)
		assert.Equal(t, "image_generation_disabled", res.Recipe.ImageGeneration.ErrorMessage)
		assert.Empty(t, images.prompts)
	})

	t.Run("should keep an image the model already supplied", func(t *testing.T) {
		images := &fakeImages{}
		raw := `{"recipeName":"x","ingredients":["a"],"instructions":["b"],"imageUrl":"https://img/x.png"}`
		res, err := newRecipeService("key", &fakeText{text: raw}, images, RecipeOptions{ImagesEnabled: true}).Generate(ctx, types.RecipeRequest{})

		require.NoError(t, err)
		assert.Equal(t, "https://img/x.png", res.Recipe.ImageURL)
		assert.Equal(t, types.ImageNotAttempted, res.Recipe.ImageGeneration.Status)
		assert.Empty(t, images.prompts)
	})
}

func TestRecipeService_SafetyModes(t *testing.T) {
	ctx := context.Background()
	req := types.RecipeRequest{Allergies: []string{"nuts"}, DietaryPreferences: []string{"vegetarian"}}
	want := []string{
		"Detected allergen token 'almond' in recipe",
		"Contains non-vegetarian ingredient: beef",
	}

	t.Run("should attach warnings by default", func(t *testing.T) {
		res, err := newRecipeService("key", &fakeText{text: stewJSON}, nil, RecipeOptions{}).Generate(ctx, req)

		require.NoError(t, err)
		require.NotNil(t, res.Recipe)
		assert.Equal(t, want, res.Recipe.SafetyWarnings)
	})

	t.Run("should reject in reject mode", func(t *testing.T) {
		res, err := newRecipeService("key", &fakeText{text: stewJSON}, nil, RecipeOptions{SafetyMode: SafetyReject}).Generate(ctx, req)

		require.NoError(t, err)
		require.NotNil(t, res.Violation)
		assert.Equal(t, "Generated recipe violates requested dietary or allergy constraints.", res.Violation.Message)
		assert.Equal(t, want, res.Violation.Details.Violations)
	})

	t.Run("should skip the check when off", func(t *testing.T) {
		res, err := newRecipeService("key", &fakeText{text: stewJSON}, nil, RecipeOptions{SafetyMode: SafetyOff}).Generate(ctx, req)

		require.NoError(t, err)
		assert.Empty(t, res.Recipe.SafetyWarnings)
	})
}

func TestParseSafetyMode(t *testing.T) {
	assert.Equal(t, SafetyReject, ParseSafetyMode(" REJECT "))
	assert.Equal(t, SafetyOff, ParseSafetyMode("off"))
	assert.Equal(t, SafetyWarn, ParseSafetyMode("bogus"))
	assert.Equal(t, SafetyWarn, ParseSafetyMode(""))
}
