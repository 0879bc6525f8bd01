package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/foodgram/internal/logging"
	"github.com/localnerve/foodgram/internal/types"
	"github.com/localnerve/foodgram/internal/utils"
)

// ErrorHandler renders every error as the standard envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var ce *types.CustomError
	if errors.As(err, &ce) {
		return utils.ErrorResponse(c, ce.Message, ce.Code, ce.Type, ce.Details)
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		errorType := "request"
		if fe.Code == fiber.StatusNotFound {
			errorType = "not_found"
		}
		return utils.ErrorResponse(c, fe.Message, fe.Code, errorType, nil)
	}

	log := logging.WithComponent("http")
	log.Error().Err(err).
		Str("method", c.Method()).
		Str("url", c.OriginalURL()).
		Msg("unhandled error")
	return utils.ErrorResponse(c, "Internal Server Error", fiber.StatusInternalServerError, "unknown", nil)
}

// NotFound is the catch-all for unmatched routes.
func NotFound(c *fiber.Ctx) error {
	return utils.ErrorResponse(c, "[404] Resource Not Found", fiber.StatusNotFound, "not_found", nil)
}
