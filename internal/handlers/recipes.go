// recipes.go
//
// A recipe sharing backend: recipes, favorites, shopping lists and subscriptions
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of foodgram.
// foodgram is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// foodgram is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with foodgram.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/foodgram/internal/middleware"
	"github.com/localnerve/foodgram/internal/services"
	"github.com/localnerve/foodgram/internal/types"
	"github.com/localnerve/foodgram/internal/utils"
)

// RecipeHandler handles recipe routes
type RecipeHandler struct {
	Recipes   *services.RecipeService
	Relations *services.RelationService
	Shopping  *services.ShoppingListService
	SiteURL   string
	PageSize  int
}

// ShortLinkResponse is the body of GET /api/recipes/:id/get-link/
type ShortLinkResponse struct {
	ShortLink string `json:"short-link"`
}

func recipeFilter(c *fiber.Ctx) (services.RecipeFilter, error) {
	filter := services.RecipeFilter{
		TagSlugs:         parseTags(c),
		IsFavorited:      boolQuery(c, "is_favorited"),
		IsInShoppingCart: boolQuery(c, "is_in_shopping_cart"),
	}
	if raw := c.Query("author"); raw != "" {
		author, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return filter, types.ValidationError("recipes.validation.author_invalid", "Author must be a user id, got %q", raw)
		}
		filter.AuthorID = &author
	}
	return filter, nil
}

// List handles GET /api/recipes/
// @Summary List recipes
// @Description Newest first. Boolean filters apply to the authenticated caller.
// @Tags Recipes
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param author query int false "Author ID"
// @Param tags query []string false "Tag slugs, any match" collectionFormat(multi)
// @Param is_favorited query int false "1 for favorites only, 0 to exclude"
// @Param is_in_shopping_cart query int false "1 for cart only, 0 to exclude"
// @Success 200 {object} utils.PageResponseStruct[services.RecipeView]
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /recipes/ [get]
func (h *RecipeHandler) List(c *fiber.Ctx) error {
	filter, err := recipeFilter(c)
	if err != nil {
		return err
	}
	page, err := h.Recipes.List(c.UserContext(), middleware.ViewerFrom(c), filter, pageRequest(c, h.PageSize))
	if err != nil {
		return err
	}
	return pageResponse(c, h.SiteURL, page)
}

// Create handles POST /api/recipes/
// @Summary Create a recipe
// @Tags Recipes
// @Security TokenAuth
// @Accept json
// @Produce json
// @Param body body services.RecipeInput true "Recipe"
// @Success 201 {object} services.RecipeView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /recipes/ [post]
func (h *RecipeHandler) Create(c *fiber.Ctx) error {
	var input services.RecipeInput
	if err := bindJSON(c, &input); err != nil {
		return err
	}
	recipe, err := h.Recipes.Create(c.UserContext(), middleware.ViewerFrom(c), input)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, recipe, fiber.StatusCreated)
}

// Get handles GET /api/recipes/:id/
// @Summary Get a recipe
// @Tags Recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} services.RecipeView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /recipes/{id}/ [get]
func (h *RecipeHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	recipe, err := h.Recipes.Get(c.UserContext(), middleware.ViewerFrom(c), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, recipe, fiber.StatusOK)
}

// Update handles PATCH /api/recipes/:id/
// @Summary Update a recipe
// @Description Author or staff only. ingredients and tags are required and replace the existing sets.
// @Tags Recipes
// @Security TokenAuth
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param body body services.RecipeInput true "Changes"
// @Success 200 {object} services.RecipeView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /recipes/{id}/ [patch]
func (h *RecipeHandler) Update(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	var input services.RecipeInput
	if err := bindJSON(c, &input); err != nil {
		return err
	}
	recipe, err := h.Recipes.Update(c.UserContext(), middleware.ViewerFrom(c), id, input)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, recipe, fiber.StatusOK)
}

// Delete handles DELETE /api/recipes/:id/
// @Summary Delete a recipe
// @Tags Recipes
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /recipes/{id}/ [delete]
func (h *RecipeHandler) Delete(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.Recipes.Delete(c.UserContext(), middleware.ViewerFrom(c), id); err != nil {
		return err
	}
	return utils.NoContentResponse(c)
}

// GetLink handles GET /api/recipes/:id/get-link/
// @Summary Short link of a recipe
// @Tags Recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} ShortLinkResponse
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /recipes/{id}/get-link/ [get]
func (h *RecipeHandler) GetLink(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	code, err := h.Recipes.ShortLink(c.UserContext(), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, ShortLinkResponse{ShortLink: services.ShortURL(h.SiteURL, code)}, fiber.StatusOK)
}

func (h *RecipeHandler) addRelation(kind services.RelationKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		view, err := h.Relations.Add(c.UserContext(), kind, middleware.ViewerFrom(c), id)
		if err != nil {
			return err
		}
		return utils.SuccessResponse(c, view, fiber.StatusCreated)
	}
}

func (h *RecipeHandler) removeRelation(kind services.RelationKind) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := idParam(c, "id")
		if err != nil {
			return err
		}
		if err := h.Relations.Remove(c.UserContext(), kind, middleware.ViewerFrom(c), id); err != nil {
			return err
		}
		return utils.NoContentResponse(c)
	}
}

// AddFavorite handles POST /api/recipes/:id/favorite/
// @Summary Favorite a recipe
// @Tags Favorites
// @Security TokenAuth
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} services.RecipeShortView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /recipes/{id}/favorite/ [post]
func (h *RecipeHandler) AddFavorite(c *fiber.Ctx) error {
	return h.addRelation(services.Favorites)(c)
}

// RemoveFavorite handles DELETE /api/recipes/:id/favorite/
// @Summary Unfavorite a recipe
// @Tags Favorites
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /recipes/{id}/favorite/ [delete]
func (h *RecipeHandler) RemoveFavorite(c *fiber.Ctx) error {
	return h.removeRelation(services.Favorites)(c)
}

// AddToCart handles POST /api/recipes/:id/shopping_cart/
// @Summary Put a recipe in the shopping cart
// @Tags Shopping
// @Security TokenAuth
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} services.RecipeShortView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /recipes/{id}/shopping_cart/ [post]
func (h *RecipeHandler) AddToCart(c *fiber.Ctx) error {
	return h.addRelation(services.ShoppingCart)(c)
}

// RemoveFromCart handles DELETE /api/recipes/:id/shopping_cart/
// @Summary Take a recipe out of the shopping cart
// @Tags Shopping
// @Security TokenAuth
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /recipes/{id}/shopping_cart/ [delete]
func (h *RecipeHandler) RemoveFromCart(c *fiber.Ctx) error {
	return h.removeRelation(services.ShoppingCart)(c)
}

// DownloadShoppingCart handles GET /api/recipes/download_shopping_cart/
// @Summary Download the shopping list
// @Description Ingredient totals across the cart, summed per name and unit.
// @Tags Shopping
// @Security TokenAuth
// @Produce application/pdf
// @Produce text/plain
// @Success 200 {file} file
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /recipes/download_shopping_cart/ [get]
func (h *RecipeHandler) DownloadShoppingCart(c *fiber.Ctx) error {
	doc, err := h.Shopping.Download(c.UserContext(), middleware.ViewerFrom(c))
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, doc.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", doc.Filename))
	return c.Status(fiber.StatusOK).Send(doc.Data)
}
