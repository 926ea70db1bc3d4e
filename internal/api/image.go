package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/apperrors"
	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/service"
	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/types"
)

// ImageHandler handles image generation requests
type ImageHandler struct {
	images service.ImageGenerator
	logger *zap.Logger
}

// NewImageHandler creates a new image handler
func NewImageHandler(images service.ImageGenerator, logger *zap.Logger) *ImageHandler {
	return &ImageHandler{
		images: images,
		logger: logger.Named("image_handler"),
	}
}

func (h *ImageHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.POST("/image/generate", h.GenerateImage)
	}
}

// GenerateImage generates an image from a prompt or a recipe. Generation
// failures are reported in the body with status "failed", not as HTTP errors.
func (h *ImageHandler) GenerateImage(c *gin.Context) {
	var req types.ImageGenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.BadRequest("Invalid request body"))
		return
	}

	// anything other than a recognised true value keeps the default transport
	forceCurl, _ := strconv.ParseBool(c.Query("forceCurl"))

	resp := h.images.GenerateFromRequest(c.Request.Context(), req, forceCurl)
	if resp.Status == types.ImageFailed {
		h.logger.Info("Image generation failed", zap.String("reason", resp.ErrorMessage), zap.Bool("force_curl", forceCurl))
	}
	c.JSON(http.StatusOK, resp)
}
