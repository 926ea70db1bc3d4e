package service

import (
	"strings"

	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/parser"
	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/types"
)

// DeriveEstimatedMinutes works out the total time of a decoded recipe:
// an existing numeric estimatedTimeMinutes wins, then a parsed estimatedTime,
// then prep + cook when a positive cook time is present. Prep time alone is
// never treated as a total.
func DeriveEstimatedMinutes(obj map[string]any) (int, bool) {
	if n, ok := parser.Int(obj["estimatedTimeMinutes"]); ok {
		return n, true
	}
	if n, ok := MinutesFromValue(obj["estimatedTime"]); ok {
		return n, true
	}
	cook, ok := MinutesFromValue(obj["cookTime"])
	if !ok || cook <= 0 {
		return 0, false
	}
	prep, _ := MinutesFromValue(obj["prepTime"])
	return prep + cook, true
}

// EnrichTime injects estimatedTimeMinutes unless the model already supplied a number
func EnrichTime(obj map[string]any) {
	if _, ok := parser.Int(obj["estimatedTimeMinutes"]); ok {
		return
	}
	if n, ok := DeriveEstimatedMinutes(obj); ok {
		obj["estimatedTimeMinutes"] = n
	}
}

// ParseRecipeText decodes model output into a tree and applies time
// enrichment. ok is false when the text is not a JSON object.
func ParseRecipeText(text string) (map[string]any, bool) {
	obj, err := parser.DecodeObject([]byte(strings.TrimSpace(text)))
	if err != nil {
		return nil, false
	}
	EnrichTime(obj)
	return obj, true
}

// RecipeFromTree reads a RecipeResult out of a decoded tree. ok is false when
// the recipe lacks ingredients or instructions.
func RecipeFromTree(obj map[string]any) (types.RecipeResult, bool) {
	r := types.RecipeResult{
		RecipeName:    text(obj["recipeName"]),
		Description:   text(obj["description"]),
		Ingredients:   nonBlank(parser.StringList(obj["ingredients"])),
		Instructions:  nonBlank(parser.StringList(obj["instructions"])),
		PrepTime:      text(obj["prepTime"]),
		CookTime:      text(obj["cookTime"]),
		EstimatedTime: text(obj["estimatedTime"]),
		Servings:      types.FlexString(text(obj["servings"])),
		ImageURL:      strings.TrimSpace(text(obj["imageUrl"])),
		ImageGeneration: types.ImageGenerationMeta{
			Status: types.ImageNotAttempted,
			Source: types.SourceEmpty,
		},
	}
	if n, ok := parser.Int(obj["estimatedTimeMinutes"]); ok && n >= 0 {
		r.EstimatedTimeMinutes = &n
	}
	if info, ok := parser.Object(obj["nutritionalInfo"]); ok {
		r.NutritionalInfo = &types.NutritionalInfo{
			PerServing: nutritionValues(info["perServing"]),
			Total:      nutritionValues(info["total"]),
		}
	}
	if tips, ok := parser.Object(obj["tips"]); ok {
		r.Tips = &types.RecipeTips{
			Substitutions: parser.StringList(tips["substitutions"]),
			MakeAhead:     text(tips["makeAhead"]),
			Storage:       text(tips["storage"]),
			Reheating:     text(tips["reheating"]),
			Variations:    parser.StringList(tips["variations"]),
		}
	}
	return r, len(r.Ingredients) > 0 && len(r.Instructions) > 0
}

func nutritionValues(v any) *types.NutritionValues {
	obj, ok := parser.Object(v)
	if !ok {
		return nil
	}
	num := func(key string) *float64 {
		f, ok := parser.Number(obj[key])
		if !ok {
			return nil
		}
		return &f
	}
	return &types.NutritionValues{
		Calories:      num("calories"),
		Protein:       num("protein"),
		Carbohydrates: num("carbohydrates"),
		Fat:           num("fat"),
		Fiber:         num("fiber"),
		Sodium:        num("sodium"),
	}
}

func text(v any) string {
	s, _ := parser.Text(v)
	return s
}
