package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	geminiAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_ai_gemini_attempts_total",
			Help: "Outbound Gemini attempts by call type and attempt outcome",
		},
		[]string{"call", "outcome"},
	)

	geminiCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipe_ai_gemini_call_duration_seconds",
			Help:    "Duration of a full Gemini call including retries",
			Buckets: []float64{0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"call"},
	)

	recipeOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_ai_recipe_outcomes_total",
			Help: "Recipe generation results by outcome",
		},
		[]string{"outcome"},
	)

	imageOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipe_ai_image_outcomes_total",
			Help: "Image generation results by status and source",
		},
		[]string{"status", "source"},
	)
)

const (
	callText  = "text"
	callImage = "image"
)
