package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/foodgram/internal/middleware"
	"github.com/localnerve/foodgram/internal/services"
	"github.com/localnerve/foodgram/internal/types"
	"github.com/localnerve/foodgram/internal/utils"
)

// AuthHandler handles token login and logout routes
type AuthHandler struct {
	Auth *services.AuthService
}

// Login handles POST /api/auth/token/login/
// @Summary Obtain an API token
// @Description Exchange email and password for a token sent as "Authorization: Token <t>"
// @Tags Auth
// @Accept json
// @Produce json
// @Param body body services.LoginInput true "Credentials"
// @Success 200 {object} services.TokenView
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 429 {object} utils.ErrorResponseStruct
// @Router /auth/token/login/ [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input services.LoginInput
	if err := bindJSON(c, &input); err != nil {
		return err
	}
	token, err := h.Auth.Login(c.UserContext(), input)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, token, fiber.StatusOK)
}

// Logout handles POST /api/auth/token/logout/
// @Summary Revoke the current token
// @Tags Auth
// @Security TokenAuth
// @Success 204
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/token/logout/ [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	token := middleware.TokenFrom(c)
	if token == "" {
		return types.Unauthenticated("auth.required", "Logout requires a token")
	}
	if err := h.Auth.Logout(c.UserContext(), token); err != nil {
		return err
	}
	return utils.NoContentResponse(c)
}
