package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every failed rule
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

var validate = validator.New()

// ValidateConfig checks field rules and the requirements of the current environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			errs = append(errs, ValidationError{Field: fe.Field(), Message: ruleMessage(fe)})
		}
	}

	if cfg.AuthEnabled && len(cfg.APIKeys) == 0 && cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{Field: "AuthEnabled", Message: "API_KEYS or JWT_SECRET is required when authentication is enabled"})
	}
	if cfg.JWTSecret != "" && len(cfg.JWTSecret) < 32 && cfg.Environment.IsProduction() {
		errs = append(errs, ValidationError{Field: "JWTSecret", Message: "must be at least 32 characters in production"})
	}
	if cfg.ImageUploadEnabled && cfg.S3BucketName == "" {
		errs = append(errs, ValidationError{Field: "S3BucketName", Message: "S3_BUCKET_NAME is required when IMAGE_UPLOAD_ENABLED is set"})
	}
	if cfg.Environment.IsProduction() && cfg.GeminiDevFallback {
		errs = append(errs, ValidationError{Field: "GeminiDevFallback", Message: "dev fallback must be disabled in production"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gt", "gte", "lte":
		return fmt.Sprintf("must be %s %s", fe.Tag(), fe.Param())
	}
	return "failed " + fe.Tag() + " validation"
}
