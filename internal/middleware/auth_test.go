package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/foodgram/internal/services"
	"github.com/localnerve/foodgram/internal/testhelpers"
	"github.com/localnerve/foodgram/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Token abc"))
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer  abc "))
	assert.Equal(t, "", bearerToken("Basic abc"))
	assert.Equal(t, "", bearerToken("abc"))
}

func newApp(auth *services.AuthService) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if ce, ok := err.(*types.CustomError); ok {
				return c.Status(ce.Code).SendString(ce.Type)
			}
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		},
	})
	app.Use(Authenticate(auth))
	app.Get("/whoami", func(c *fiber.Ctx) error {
		return c.SendString(ViewerFrom(c).Username)
	})
	app.Get("/private", RequireUser(), func(c *fiber.Ctx) error {
		return c.SendString(TokenFrom(c))
	})
	return app
}

func TestAuthenticate(t *testing.T) {
	db := testhelpers.NewTestDB(t)
	alice := testhelpers.CreateUser(t, db, "alice")
	auth := services.NewAuthService(db, "secret", time.Hour)
	token, err := auth.Login(t.Context(), services.LoginInput{Email: alice.Email, Password: "alice-password"})
	require.NoError(t, err)
	app := newApp(auth)

	t.Run("anonymous", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/whoami", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		resp, err = app.Test(httptest.NewRequest("GET", "/private", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/private", nil)
		req.Header.Set("Authorization", "Token "+token.AuthToken)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/whoami", nil)
		req.Header.Set("Authorization", "Token nope")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("session cookie ignored without authorizer", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/private", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "whatever"})
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}
