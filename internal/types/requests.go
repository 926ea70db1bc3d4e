package types

import (
	"encoding/json"
	"strings"
)

// Units selects the measurement system used in generated recipes
type Units string

const (
	Metric   Units = "METRIC"
	Imperial Units = "IMPERIAL"
)

// ParseUnits is case-insensitive and falls back to Metric
func ParseUnits(s string) Units {
	if strings.EqualFold(strings.TrimSpace(s), string(Imperial)) {
		return Imperial
	}
	return Metric
}

// UnmarshalJSON never fails: anything unrecognized becomes Metric
func (u *Units) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*u = Metric
		return nil
	}
	*u = ParseUnits(s)
	return nil
}

// RecipeRequest represents the request body for recipe generation
type RecipeRequest struct {
	Prompt             string   `json:"prompt"`
	PantryItems        []string `json:"pantryItems"`
	Units              Units    `json:"units"`
	DietaryPreferences []string `json:"dietaryPreferences"`
	Allergies          []string `json:"allergies"`
	MaxTotalMinutes    *int     `json:"maxTotalMinutes,omitempty"`
}

// MaxMinutes reports the time limit; zero or negative values mean unconstrained.
func (r RecipeRequest) MaxMinutes() (int, bool) {
	if r.MaxTotalMinutes == nil || *r.MaxTotalMinutes <= 0 {
		return 0, false
	}
	return *r.MaxTotalMinutes, true
}

// UnitsOrDefault returns the requested units, Metric when unset
func (r RecipeRequest) UnitsOrDefault() Units {
	if r.Units == "" {
		return Metric
	}
	return r.Units
}

// ImageGenerationRequest carries either a bare prompt or a recipe for context
type ImageGenerationRequest struct {
	Prompt string        `json:"prompt,omitempty"`
	Recipe *RecipeResult `json:"recipe,omitempty"`
}

// ImageGenerationResponse is the body returned by the image endpoint
type ImageGenerationResponse struct {
	Status       ImageStatus `json:"status"`
	ImageURL     *string     `json:"imageUrl"`
	Source       string      `json:"source"`
	ErrorMessage string      `json:"errorMessage,omitempty"`
}
