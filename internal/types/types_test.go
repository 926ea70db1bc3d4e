package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected FlexString
	}{
		{"string", `"4"`, "4"},
		{"integer", `4`, "4"},
		{"float", `2.5`, "2.5"},
		{"wrapped value", `{"Value": 6}`, "6"},
		{"null", `null`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s FlexString
			require.NoError(t, json.Unmarshal([]byte(tt.input), &s))
			assert.Equal(t, tt.expected, s)
		})
	}

	t.Run("should reject arrays", func(t *testing.T) {
		var s FlexString
		assert.Error(t, json.Unmarshal([]byte(`[1]`), &s))
	})

	t.Run("should always serialize as a string", func(t *testing.T) {
		out, err := json.Marshal(RecipeResult{Servings: "4"})
		require.NoError(t, err)
		assert.Contains(t, string(out), `"servings":"4"`)
	})
}

func TestRecipeRequest(t *testing.T) {
	t.Run("should decode the wire format", func(t *testing.T) {
		var req RecipeRequest
		err := json.Unmarshal([]byte(`{
			"prompt": "soup",
			"pantryItems": ["leek"],
			"units": "imperial",
			"dietaryPreferences": ["vegan"],
			"allergies": ["nuts"],
			"maxTotalMinutes": 45
		}`), &req)
		require.NoError(t, err)

		assert.Equal(t, Imperial, req.Units)
		limit, ok := req.MaxMinutes()
		assert.True(t, ok)
		assert.Equal(t, 45, limit)
	})

	t.Run("should treat a non-positive limit as unconstrained", func(t *testing.T) {
		zero := 0
		_, ok := RecipeRequest{MaxTotalMinutes: &zero}.MaxMinutes()
		assert.False(t, ok)

		_, ok = RecipeRequest{}.MaxMinutes()
		assert.False(t, ok)
	})

	t.Run("should default to metric", func(t *testing.T) {
		assert.Equal(t, Metric, RecipeRequest{}.UnitsOrDefault())
		assert.Equal(t, Metric, ParseUnits("furlongs"))
	})
}
