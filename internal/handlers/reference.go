package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/foodgram/internal/services"
	"github.com/localnerve/foodgram/internal/utils"
)

// ReferenceHandler handles tag and ingredient routes
type ReferenceHandler struct {
	Reference *services.ReferenceService
}

// Tags handles GET /api/tags/
// @Summary List tags
// @Tags Reference
// @Produce json
// @Success 200 {array} services.TagView
// @Router /tags/ [get]
func (h *ReferenceHandler) Tags(c *fiber.Ctx) error {
	tags, err := h.Reference.Tags(c.UserContext())
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, tags, fiber.StatusOK)
}

// Tag handles GET /api/tags/:id/
// @Summary Get a tag
// @Tags Reference
// @Produce json
// @Param id path int true "Tag ID"
// @Success 200 {object} services.TagView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /tags/{id}/ [get]
func (h *ReferenceHandler) Tag(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	tag, err := h.Reference.Tag(c.UserContext(), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, tag, fiber.StatusOK)
}

// Ingredients handles GET /api/ingredients/
// @Summary List ingredients
// @Description name filters by prefix, search ranks by fuzzy match
// @Tags Reference
// @Produce json
// @Param name query string false "Name prefix"
// @Param search query string false "Fuzzy search"
// @Success 200 {array} services.IngredientView
// @Router /ingredients/ [get]
func (h *ReferenceHandler) Ingredients(c *fiber.Ctx) error {
	ingredients, err := h.Reference.Ingredients(c.UserContext(), c.Query("name"), c.Query("search"))
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, ingredients, fiber.StatusOK)
}

// Ingredient handles GET /api/ingredients/:id/
// @Summary Get an ingredient
// @Tags Reference
// @Produce json
// @Param id path int true "Ingredient ID"
// @Success 200 {object} services.IngredientView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /ingredients/{id}/ [get]
func (h *ReferenceHandler) Ingredient(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	ingredient, err := h.Reference.Ingredient(c.UserContext(), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, ingredient, fiber.StatusOK)
}
