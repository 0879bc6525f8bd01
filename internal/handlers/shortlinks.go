package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/foodgram/internal/services"
)

// ShortLinkHandler handles short link redirects
type ShortLinkHandler struct {
	Links *services.ShortLinks
}

// Redirect handles GET /s/:code
// @Summary Follow a short link
// @Tags Recipes
// @Param code path string true "Short code"
// @Success 302
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /s/{code} [get]
func (h *ShortLinkHandler) Redirect(c *fiber.Ctx) error {
	fullPath, err := h.Links.Resolve(c.UserContext(), c.Params("code"))
	if err != nil {
		return err
	}
	return c.Redirect(fullPath, fiber.StatusFound)
}
