// Package schema holds the response schema sent to Gemini in
// generationConfig.responseSchema.
package schema

// Gemini schema type names
const (
	TypeString = "STRING"
	TypeNumber = "NUMBER"
	TypeArray  = "ARRAY"
	TypeObject = "OBJECT"
)

func str(desc string) map[string]any {
	return map[string]any{"type": TypeString, "description": desc}
}

func num(desc string) map[string]any {
	return map[string]any{"type": TypeNumber, "description": desc}
}

func strList(desc string) map[string]any {
	return map[string]any{"type": TypeArray, "description": desc, "items": map[string]any{"type": TypeString}}
}

func nutritionValues(desc string) map[string]any {
	return map[string]any{
		"type":        TypeObject,
		"description": desc,
		"properties": map[string]any{
			"calories":      num("Calories (kcal)."),
			"protein":       num("Protein (grams)."),
			"carbohydrates": num("Total carbohydrates (grams)."),
			"fat":           num("Total fat (grams)."),
			"fiber":         num("Dietary fiber (grams)."),
			"sodium":        num("Sodium (milligrams)."),
		},
	}
}

// Recipe returns a fresh copy of the recipe response schema
func Recipe() map[string]any {
	return map[string]any{
		"type": TypeObject,
		"properties": map[string]any{
			"recipeName":           str("The creative name of the recipe."),
			"description":          str("A brief, appealing description of the dish."),
			"ingredients":          strList("A list of ingredients with quantities."),
			"instructions":         strList("Step-by-step instructions for preparation."),
			"prepTime":             str("Estimated preparation time (e.g., '15 minutes')."),
			"cookTime":             str("Estimated cooking time (e.g., '20 minutes')."),
			"estimatedTime":        str("Human-readable total time estimate (e.g., '35 minutes' or '1 hour')."),
			"estimatedTimeMinutes": num("Total estimated time in minutes as an integer."),
			"servings":             str("Number of servings the recipe yields (e.g., '4')."),
			"nutritionalInfo": map[string]any{
				"type":        TypeObject,
				"description": "Nutritional information calculated from ingredients.",
				"properties": map[string]any{
					"perServing": nutritionValues("Nutritional values per single serving."),
					"total":      nutritionValues("Total nutritional values for entire recipe."),
				},
			},
			"tips": map[string]any{
				"type": TypeObject,
				"properties": map[string]any{
					"substitutions": strList("Common ingredient substitutions (e.g., 'Greek yogurt can replace sour cream')."),
					"makeAhead":     str("Instructions for preparing the recipe in advance."),
					"storage":       str("How to store leftovers and for how long."),
					"reheating":     str("Best method to reheat the dish."),
					"variations":    strList("Recipe variations or customization ideas."),
				},
			},
		},
		"required": []string{"recipeName", "ingredients", "instructions", "servings"},
	}
}
