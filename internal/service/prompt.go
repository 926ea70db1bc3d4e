package service

import (
	"strings"

	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/types"
)

// DefaultSystemPrompt is sent as the systemInstruction unless configuration overrides it
const DefaultSystemPrompt = "You are a world-class chef. Based on the user's request, generate a unique, appealing, and easy-to-follow recipe. Use common metric or imperial units as appropriate. Ensure your response strictly follows the provided JSON schema."

const (
	metricInstruction   = "Use metric units (grams, liters, Celsius)."
	imperialInstruction = "Use imperial units (ounces, cups, Fahrenheit)."
)

// BuildPrompt composes the user prompt: pantry, units, dietary preferences,
// allergies, then the caller's own text so their intent is read last.
func BuildPrompt(req types.RecipeRequest) string {
	clauses := make([]string, 0, 5)

	if pantry := nonBlank(req.PantryItems); len(pantry) > 0 {
		clauses = append(clauses, "Prioritize using these available ingredients: ["+strings.Join(pantry, ", ")+
			"]. You may also include common pantry staples like salt, pepper, oil, butter, sugar, flour, and spices as needed.")
	}

	if req.UnitsOrDefault() == types.Imperial {
		clauses = append(clauses, imperialInstruction)
	} else {
		clauses = append(clauses, metricInstruction)
	}

	if prefs := nonBlank(req.DietaryPreferences); len(prefs) > 0 {
		clauses = append(clauses, "Ensure the recipe conforms to the following dietary preferences: "+strings.Join(prefs, ", ")+".")
	}

	if allergies := nonBlank(req.Allergies); len(allergies) > 0 {
		clauses = append(clauses, "Avoid any ingredients or common substitutes that contain: "+strings.Join(allergies, ", ")+".")
	}

	if p := strings.TrimSpace(req.Prompt); p != "" {
		clauses = append(clauses, p)
	}

	return strings.Join(clauses, " ")
}

func nonBlank(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := strings.TrimSpace(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}
