package types

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ImageStatus tracks how far image generation got for a recipe
type ImageStatus string

const (
	ImageNotAttempted    ImageStatus = "not_attempted"
	ImageAttempting      ImageStatus = "attempting"
	ImageSuccess         ImageStatus = "success"
	ImageFailed          ImageStatus = "failed"
	ImageSkipped         ImageStatus = "skipped"
	ImageMockPlaceholder ImageStatus = "mock_placeholder"
)

// Image sources reported in ImageGenerationMeta
const (
	SourceInline      = "inline"
	SourceExternal    = "external"
	SourcePlaceholder = "placeholder"
	SourceEmpty       = ""
)

// ImageGenerationMeta describes the outcome of the image step
type ImageGenerationMeta struct {
	Status       ImageStatus `json:"status"`
	Source       string      `json:"source"`
	ErrorMessage string      `json:"errorMessage,omitempty"`
}

// NutritionValues holds optional nutrient amounts
type NutritionValues struct {
	Calories      *float64 `json:"calories,omitempty"`
	Protein       *float64 `json:"protein,omitempty"`
	Carbohydrates *float64 `json:"carbohydrates,omitempty"`
	Fat           *float64 `json:"fat,omitempty"`
	Fiber         *float64 `json:"fiber,omitempty"`
	Sodium        *float64 `json:"sodium,omitempty"`
}

// NutritionalInfo holds per-serving and whole-recipe nutrition
type NutritionalInfo struct {
	PerServing *NutritionValues `json:"perServing,omitempty"`
	Total      *NutritionValues `json:"total,omitempty"`
}

// RecipeTips holds the optional advice block of a recipe
type RecipeTips struct {
	Substitutions []string `json:"substitutions,omitempty"`
	MakeAhead     string   `json:"makeAhead,omitempty"`
	Storage       string   `json:"storage,omitempty"`
	Reheating     string   `json:"reheating,omitempty"`
	Variations    []string `json:"variations,omitempty"`
}

// RecipeResult is the enriched recipe returned to callers
type RecipeResult struct {
	RecipeName           string              `json:"recipeName"`
	Description          string              `json:"description,omitempty"`
	Ingredients          []string            `json:"ingredients"`
	Instructions         []string            `json:"instructions"`
	PrepTime             string              `json:"prepTime,omitempty"`
	CookTime             string              `json:"cookTime,omitempty"`
	EstimatedTime        string              `json:"estimatedTime,omitempty"`
	EstimatedTimeMinutes *int                `json:"estimatedTimeMinutes,omitempty"`
	Servings             FlexString          `json:"servings"`
	NutritionalInfo      *NutritionalInfo    `json:"nutritionalInfo,omitempty"`
	Tips                 *RecipeTips         `json:"tips,omitempty"`
	ImageURL             string              `json:"imageUrl,omitempty"`
	ImageGeneration      ImageGenerationMeta `json:"imageGeneration"`
	SafetyWarnings       []string            `json:"safetyWarnings,omitempty"`
}

// FlexString accepts a JSON string, number or {"Value": ...} object and always
// serializes back as a string. Models are not consistent about servings.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*s = FlexString(strconv.FormatFloat(num, 'f', -1, 64))
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = FlexString(str)
		return nil
	}

	var obj struct {
		Value json.RawMessage `json:"Value"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && len(obj.Value) > 0 {
		return s.UnmarshalJSON(obj.Value)
	}

	return fmt.Errorf("servings must be a string or number, got %s", string(data))
}

func (s FlexString) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// ConstraintViolation is returned instead of a recipe when the generated
// recipe breaks a caller-supplied constraint
type ConstraintViolation struct {
	Error   string           `json:"error"`
	Message string           `json:"message"`
	Details ViolationDetails `json:"details"`
}

// ViolationDetails lists the individual violations
type ViolationDetails struct {
	Violations []string `json:"violations"`
}
