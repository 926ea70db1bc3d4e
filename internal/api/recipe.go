package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/apperrors"
	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/service"
	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/types"
)

// RecipeHandler serves recipe generation
type RecipeHandler struct {
	recipes service.RecipeGenerator
	logger  *zap.Logger
}

func NewRecipeHandler(recipes service.RecipeGenerator, logger *zap.Logger) *RecipeHandler {
	return &RecipeHandler{
		recipes: recipes,
		logger:  logger.Named("recipe_handler"),
	}
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.POST("/generate", h.GenerateRecipe)
	}
}

// GenerateRecipe answers with the recipe, the raw model text when it could
// not be parsed, or a constraint violation.
func (h *RecipeHandler) GenerateRecipe(c *gin.Context) {
	var req types.RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.BadRequest("Invalid request body"))
		return
	}

	result, err := h.recipes.Generate(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(apperrors.ExternalService("Recipe generation failed", err))
		return
	}

	switch {
	case result.Violation != nil:
		c.JSON(http.StatusUnprocessableEntity, result.Violation)
	case result.Recipe == nil:
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(result.Raw))
	default:
		if result.Mock {
			c.Header("X-Recipe-Source", "mock")
		}
		c.JSON(http.StatusOK, result.Recipe)
	}
}
