package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"kritika/internal/app/kritika/service"
	"kritika/pkg/logger"
)

// respondError переводит ошибки сервисного слоя в HTTP-статусы.
// Конфликты уникальности сервис уже превратил в ValidationError,
// поэтому наружу они уходят как обычный 400.
func respondError(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": ve.Message,
		})
	case errors.Is(err, service.ErrInvalidConfirmationCode):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Bad Request",
			"message": "Invalid confirmation code",
		})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": "Resource not found",
		})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Forbidden",
			"message": "You do not have permission to perform this action",
		})
	default:
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Internal Server Error",
			"message": "Something went wrong",
		})
	}
}

func respondBadBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Bad Request",
		"message": "Invalid request body",
	})
}

func respondValidation(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Bad Request",
		"message": formatValidationError(err),
	})
}

func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			return fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "Validation failed"
}
