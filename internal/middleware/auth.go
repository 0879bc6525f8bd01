package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/foodgram/internal/models"
	"github.com/localnerve/foodgram/internal/services"
	"github.com/localnerve/foodgram/internal/types"
)

const (
	viewerKey = "viewer"
	tokenKey  = "token"

	// SessionCookie is the Authorizer session cookie name
	SessionCookie = "cookie_session"
)

// Authenticate resolves the caller from an "Authorization: Token <t>" (or
// Bearer) header, falling back to the Authorizer session cookie when the
// Authorizer client is initialized. Requests with neither stay anonymous.
// A presented but invalid credential fails with 401.
func Authenticate(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var (
			user *models.User
			err  error
		)

		if token := bearerToken(c.Get(fiber.HeaderAuthorization)); token != "" {
			user, err = auth.Authenticate(c.UserContext(), token)
			if err != nil {
				return err
			}
			c.Locals(tokenKey, token)
		} else if session := c.Cookies(SessionCookie); session != "" && services.IsAuthorizerInitialized() {
			user, err = auth.AuthenticateSession(c.UserContext(), session)
			if err != nil {
				return err
			}
		}

		c.Locals(viewerKey, services.ViewerOf(user))
		return c.Next()
	}
}

// RequireUser rejects anonymous callers.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !ViewerFrom(c).Authenticated() {
			return types.Unauthenticated("auth.required", "Authentication credentials were not provided")
		}
		return c.Next()
	}
}

// ViewerFrom returns the caller set by Authenticate, anonymous if unset.
func ViewerFrom(c *fiber.Ctx) services.Viewer {
	viewer, _ := c.Locals(viewerKey).(services.Viewer)
	return viewer
}

// TokenFrom returns the API token the request authenticated with.
func TokenFrom(c *fiber.Ctx) string {
	token, _ := c.Locals(tokenKey).(string)
	return token
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return ""
	}
	switch strings.ToLower(scheme) {
	case "token", "bearer":
		return strings.TrimSpace(token)
	}
	return ""
}
