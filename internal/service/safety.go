package service

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/types"
)

// allergenClasses maps an allergen class to the tokens that indicate it.
// The vocabularies are read-only after package init.
var allergenClasses = map[string][]string{
	"tree-nuts": {"almond", "walnut", "pecan", "cashew", "hazelnut", "macadamia", "brazil nut", "pistachio"},
	"peanuts":   {"peanut"},
	"dairy":     {"milk", "butter", "cheese", "cream", "yogurt", "ghee", "custard", "feta", "cheddar", "parmesan", "mascarpone", "whey", "casein", "buttermilk"},
	"gluten":    {"wheat", "flour", "barley", "rye", "seitan", "bulgur", "couscous", "malt"},
	"shellfish": {"shrimp", "prawn", "crab", "lobster", "mussel", "clam", "oyster", "scallop"},
	"fish":      {"salmon", "tuna", "trout", "cod", "haddock", "anchovy", "sardine"},
	"soy":       {"soy", "tofu", "edamame", "miso", "soy sauce", "tempeh"},
}

var synonyms = map[string]string{
	"almond milk":    "almond",
	"peanut butter":  "peanut",
	"soy milk":       "soy",
	"buttermilk":     "dairy",
	"parmesan":       "cheese",
	"feta":           "cheese",
	"cottage cheese": "cheese",
	"mozzarella":     "cheese",
	"yoghurt":        "yogurt",
	"eggs":           "egg",
	"egg yolk":       "egg",
	"egg white":      "egg",
	"ground beef":    "beef",
}

var veganForbidden = []string{
	"chicken", "beef", "pork", "bacon", "egg", "fish", "salmon", "tuna",
	"shrimp", "lamb", "butter", "milk", "cheese", "yogurt", "honey", "gelatin",
}

var vegetarianForbidden = []string{
	"chicken", "beef", "pork", "bacon", "lamb", "shrimp", "crab", "lobster",
}

var nonWordPattern = regexp.MustCompile(`[^\p{L}\p{N}\-\s]+`)

// SafetyValidator checks generated recipes against declared allergies and
// dietary preferences. It holds no state and is safe for concurrent use.
type SafetyValidator struct{}

// NewSafetyValidator returns a validator backed by the built-in vocabularies
func NewSafetyValidator() *SafetyValidator {
	return &SafetyValidator{}
}

// Validate returns human-readable violation messages, de-duplicated in the
// order they were found. An empty result means the recipe passed.
func (v *SafetyValidator) Validate(r types.RecipeResult, allergies, dietaryPreferences []string) []string {
	tokens := make(map[string]struct{})
	for _, line := range r.Ingredients {
		addTokens(tokens, line)
	}
	for _, line := range r.Instructions {
		addTokens(tokens, line)
	}
	has := func(t string) bool {
		_, ok := tokens[t]
		return ok
	}

	var messages []string
	seen := make(map[string]struct{})
	add := func(msg string) {
		if _, dup := seen[msg]; dup {
			return
		}
		seen[msg] = struct{}{}
		messages = append(messages, msg)
	}

	for _, t := range allergyTokens(allergies) {
		if has(t) {
			add(fmt.Sprintf("Detected allergen token '%s' in recipe", t))
		}
	}

	for _, pref := range dietaryPreferences {
		switch strings.ToLower(strings.TrimSpace(pref)) {
		case "vegan":
			for _, t := range veganForbidden {
				if has(t) {
					add("Contains non-vegan ingredient: " + t)
				}
			}
		case "vegetarian":
			for _, t := range vegetarianForbidden {
				if has(t) {
					add("Contains non-vegetarian ingredient: " + t)
				}
			}
		case "gluten_free", "gluten-free":
			for _, t := range allergenClasses["gluten"] {
				if has(t) {
					add("May contain gluten ingredient: " + t)
				}
			}
		}
	}
	return messages
}

// allergyTokens expands declared allergies into match tokens, keeping the
// order of first appearance.
func allergyTokens(allergies []string) []string {
	var out []string
	seen := make(map[string]struct{})
	push := func(tokens ...string) {
		for _, t := range tokens {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}

	for _, a := range allergies {
		an := strings.ToLower(strings.TrimSpace(a))
		if an == "" {
			continue
		}
		switch {
		case strings.Contains(an, "nut"):
			push(allergenClasses["tree-nuts"]...)
			push(allergenClasses["peanuts"]...)
		case an == "dairy" || an == "milk":
			push(allergenClasses["dairy"]...)
		case an == "gluten" || an == "wheat":
			push(allergenClasses["gluten"]...)
		default:
			if class, ok := allergenClasses[an]; ok {
				push(class...)
			} else {
				// same normalization as recipe text, so "Eggs" finds "egg"
				push(tokenize(an)...)
			}
		}
	}
	return out
}

func addTokens(set map[string]struct{}, s string) {
	for _, t := range tokenize(s) {
		set[t] = struct{}{}
	}
}

// tokenize returns the canonical tokens of s in order of appearance
func tokenize(s string) []string {
	var out []string
	parts := strings.Fields(normalizeText(s))
	for i := 0; i < len(parts); {
		token := parts[i]
		if len([]rune(token)) <= 2 {
			i++
			continue
		}
		if i+1 < len(parts) {
			if canon, ok := synonyms[token+" "+parts[i+1]]; ok {
				out = append(out, canon)
				i += 2
				continue
			}
		}
		if canon, ok := synonyms[token]; ok {
			out = append(out, canon)
		} else {
			if strings.HasSuffix(token, "s") && len([]rune(token)) > 3 {
				token = strings.TrimSuffix(token, "s")
			}
			out = append(out, token)
		}
		i++
	}
	return out
}

// normalizeText strips diacritics and punctuation other than hyphens
func normalizeText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	stripped = strings.ToLower(stripped)
	return strings.Join(strings.Fields(nonWordPattern.ReplaceAllString(stripped, " ")), " ")
}
