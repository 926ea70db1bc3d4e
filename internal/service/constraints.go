package service

import (
	"fmt"

	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/types"
)

const (
	constraintViolationCode = "constraint_violation"
	timeViolationMessage    = "Generated recipe violates requested time constraints."
	safetyViolationMessage  = "Generated recipe violates requested dietary or allergy constraints."
)

// CheckTimeConstraint compares a recipe against maxMinutes. A numeric
// estimatedTimeMinutes is preferred; otherwise prepTime is parsed.
// It returns nil when no maximum applies or the recipe fits.
func CheckTimeConstraint(r types.RecipeResult, maxMinutes int, constrained bool) []string {
	if !constrained {
		return nil
	}
	if r.EstimatedTimeMinutes != nil {
		if est := *r.EstimatedTimeMinutes; est > maxMinutes {
			return []string{fmt.Sprintf("Estimated total time %d minutes exceeds maximum allowed %d minutes", est, maxMinutes)}
		}
		return nil
	}
	if prep, ok := ParseMinutes(r.PrepTime); ok && prep > maxMinutes {
		return []string{fmt.Sprintf("Parsed prepTime %d minutes exceeds maximum allowed %d minutes", prep, maxMinutes)}
	}
	return nil
}

// NewConstraintViolation builds the payload returned in place of a recipe
func NewConstraintViolation(message string, violations []string) *types.ConstraintViolation {
	return &types.ConstraintViolation{
		Error:   constraintViolationCode,
		Message: message,
		Details: types.ViolationDetails{Violations: violations},
	}
}
