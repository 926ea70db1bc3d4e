package service

import "github.com/pageza/alchemorsel-recipe-ai/backend/internal/types"

const mockRecipeName = "Simple Toast"

// MockRecipe is the deterministic recipe served when the live model is
// unavailable. Ingredients follow the pantry list when one is given.
func MockRecipe(pantryItems []string, imagesEnabled bool) types.RecipeResult {
	ingredients := []string{"bread", "butter"}
	if items := nonBlank(pantryItems); len(items) > 0 {
		ingredients = make([]string, 0, len(items))
		for _, item := range items {
			ingredients = append(ingredients, "1 x "+item)
		}
	}

	r := types.RecipeResult{
		RecipeName:   mockRecipeName,
		Description:  "A quick and tasty toast using available pantry items.",
		Ingredients:  ingredients,
		Instructions: []string{"Toast the bread.", "Spread butter on the toast.", "Serve immediately."},
		PrepTime:     "5 minutes",
		Servings:     "1",
	}
	if imagesEnabled {
		r.ImageURL = PlaceholderDataURL(mockRecipeName)
		r.ImageGeneration = types.ImageGenerationMeta{Status: types.ImageMockPlaceholder, Source: types.SourcePlaceholder}
	} else {
		r.ImageGeneration = types.ImageGenerationMeta{Status: types.ImageSkipped, Source: types.SourceEmpty, ErrorMessage: errImagesDisabled}
	}
	return r
}
