package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-recipe-ai/backend/internal/apperrors"
)

// ErrorResponse is the JSON body of every error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// ErrorHandler renders errors attached with c.Error as JSON and turns panics
// into a plain 500. Causes are logged, never returned.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("Recovered from panic",
					zap.Any("panic", rec),
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", RequestIDFrom(c)))
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{Error: string(apperrors.CodeInternal), Message: "Internal Server Error"})
			}
		}()

		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		appErr := apperrors.From(c.Errors.Last().Err)
		fields := []zap.Field{
			zap.String("code", string(appErr.Code)),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", RequestIDFrom(c)),
		}
		if appErr.Cause != nil {
			fields = append(fields, zap.Error(appErr.Cause))
		}
		if appErr.StatusCode() >= http.StatusInternalServerError {
			logger.Error(appErr.Message, fields...)
		} else {
			logger.Debug(appErr.Message, fields...)
		}
		c.JSON(appErr.StatusCode(), ErrorResponse{Error: string(appErr.Code), Message: appErr.Message, Details: appErr.Details})
	}
}
