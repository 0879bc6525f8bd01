package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/foodgram/internal/middleware"
	"github.com/localnerve/foodgram/internal/services"
	"github.com/localnerve/foodgram/internal/utils"
)

// UserHandler handles user and subscription routes
type UserHandler struct {
	Users         *services.UserService
	Subscriptions *services.SubscriptionService
	SiteURL       string
	PageSize      int
}

// List handles GET /api/users/
// @Summary List users
// @Tags Users
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} utils.PageResponseStruct[services.UserView]
// @Router /users/ [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	page, err := h.Users.List(c.UserContext(), middleware.ViewerFrom(c), pageRequest(c, h.PageSize))
	if err != nil {
		return err
	}
	return pageResponse(c, h.SiteURL, page)
}

// Register handles POST /api/users/
// @Summary Register a user
// @Tags Users
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "New user"
// @Success 201 {object} services.RegisteredUserView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /users/ [post]
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var input services.RegisterInput
	if err := bindJSON(c, &input); err != nil {
		return err
	}
	user, err := h.Users.Register(c.UserContext(), input)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, user, fiber.StatusCreated)
}

// Get handles GET /api/users/:id/
// @Summary Get a user
// @Tags Users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} services.UserView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /users/{id}/ [get]
func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	user, err := h.Users.Get(c.UserContext(), middleware.ViewerFrom(c), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, user, fiber.StatusOK)
}

// Me handles GET /api/users/me/
// @Summary Current user
// @Tags Users
// @Security TokenAuth
// @Produce json
// @Success 200 {object} services.UserView
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /users/me/ [get]
func (h *UserHandler) Me(c *fiber.Ctx) error {
	user, err := h.Users.Me(c.UserContext(), middleware.ViewerFrom(c))
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, user, fiber.StatusOK)
}

// SetAvatar handles PUT /api/users/me/avatar/
// @Summary Upload an avatar
// @Tags Users
// @Security TokenAuth
// @Accept json
// @Produce json
// @Param body body services.AvatarInput true "Base64 data URI"
// @Success 200 {object} services.AvatarView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /users/me/avatar/ [put]
func (h *UserHandler) SetAvatar(c *fiber.Ctx) error {
	var input services.AvatarInput
	if err := bindJSON(c, &input); err != nil {
		return err
	}
	avatar, err := h.Users.SetAvatar(c.UserContext(), middleware.ViewerFrom(c), input)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, avatar, fiber.StatusOK)
}

// DeleteAvatar handles DELETE /api/users/me/avatar/
// @Summary Remove the avatar
// @Tags Users
// @Security TokenAuth
// @Success 204
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /users/me/avatar/ [delete]
func (h *UserHandler) DeleteAvatar(c *fiber.Ctx) error {
	if err := h.Users.DeleteAvatar(c.UserContext(), middleware.ViewerFrom(c)); err != nil {
		return err
	}
	return utils.NoContentResponse(c)
}

// SetPassword handles POST /api/users/set_password/
// @Summary Change password
// @Tags Users
// @Security TokenAuth
// @Accept json
// @Param body body services.SetPasswordInput true "Passwords"
// @Success 204
// @Failure 400 {object} utils.ErrorResponseStruct
// @Router /users/set_password/ [post]
func (h *UserHandler) SetPassword(c *fiber.Ctx) error {
	var input services.SetPasswordInput
	if err := bindJSON(c, &input); err != nil {
		return err
	}
	if err := h.Users.SetPassword(c.UserContext(), middleware.ViewerFrom(c), input); err != nil {
		return err
	}
	return utils.NoContentResponse(c)
}

// ListSubscriptions handles GET /api/users/subscriptions/
// @Summary Followed authors
// @Tags Subscriptions
// @Security TokenAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param recipes_limit query int false "Recipes per author"
// @Success 200 {object} utils.PageResponseStruct[services.SubscriptionView]
// @Router /users/subscriptions/ [get]
func (h *UserHandler) ListSubscriptions(c *fiber.Ctx) error {
	page, err := h.Subscriptions.List(c.UserContext(), middleware.ViewerFrom(c), pageRequest(c, h.PageSize), recipesLimit(c))
	if err != nil {
		return err
	}
	return pageResponse(c, h.SiteURL, page)
}

// Subscribe handles POST /api/users/:id/subscribe/
// @Summary Follow an author
// @Tags Subscriptions
// @Security TokenAuth
// @Produce json
// @Param id path int true "Author ID"
// @Param recipes_limit query int false "Recipes in the response"
// @Success 201 {object} services.SubscriptionView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /users/{id}/subscribe/ [post]
func (h *UserHandler) Subscribe(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	view, err := h.Subscriptions.Subscribe(c.UserContext(), middleware.ViewerFrom(c), id, recipesLimit(c))
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, view, fiber.StatusCreated)
}

// Unsubscribe handles DELETE /api/users/:id/subscribe/
// @Summary Unfollow an author
// @Tags Subscriptions
// @Security TokenAuth
// @Param id path int true "Author ID"
// @Success 204
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /users/{id}/subscribe/ [delete]
func (h *UserHandler) Unsubscribe(c *fiber.Ctx) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.Subscriptions.Unsubscribe(c.UserContext(), middleware.ViewerFrom(c), id); err != nil {
		return err
	}
	return utils.NoContentResponse(c)
}
