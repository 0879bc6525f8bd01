package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// SuccessResponse sends a JSON body with the given status
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

// NoContentResponse sends an empty 204
func NoContentResponse(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// ErrorResponse sends the standard error envelope
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string, details map[string]any) error {
	return c.Status(status).JSON(ErrorResponseStruct{
		Status:    status,
		Message:   message,
		Ok:        false,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		URL:       c.OriginalURL(),
		Type:      errorType,
		Details:   details,
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusNotFound, "not_found", nil)
}

// ErrorResponseStruct is the body of every error response
type ErrorResponseStruct struct {
	Status    int            `json:"status"`
	Message   string         `json:"message"`
	Ok        bool           `json:"ok"`
	Timestamp string         `json:"timestamp"`
	URL       string         `json:"url"`
	Type      string         `json:"type,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
}

// PageResponseStruct is the body of a paginated list
type PageResponseStruct[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
