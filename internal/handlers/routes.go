package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/localnerve/foodgram/internal/config"
	"github.com/localnerve/foodgram/internal/middleware"
	"github.com/localnerve/foodgram/internal/services"
	"gorm.io/gorm"
)

// LoginRateLimit caps login attempts per client IP per minute.
const LoginRateLimit = 10

// Services are the dependencies the routes are served from.
type Services struct {
	Config        *config.Config
	DB            *gorm.DB
	Auth          *services.AuthService
	Users         *services.UserService
	Subscriptions *services.SubscriptionService
	Reference     *services.ReferenceService
	Recipes       *services.RecipeService
	Relations     *services.RelationService
	Shopping      *services.ShoppingListService
	Links         *services.ShortLinks
}

// SetupRoutes registers /api, the short link redirect and the 404 catch-all.
// Static segments are registered before their :id siblings.
func SetupRoutes(app *fiber.App, s *Services) {
	authHandler := &AuthHandler{Auth: s.Auth}
	userHandler := &UserHandler{
		Users:         s.Users,
		Subscriptions: s.Subscriptions,
		SiteURL:       s.Config.SiteURL,
		PageSize:      s.Config.PageSize,
	}
	referenceHandler := &ReferenceHandler{Reference: s.Reference}
	recipeHandler := &RecipeHandler{
		Recipes:   s.Recipes,
		Relations: s.Relations,
		Shopping:  s.Shopping,
		SiteURL:   s.Config.SiteURL,
		PageSize:  s.Config.PageSize,
	}
	linkHandler := &ShortLinkHandler{Links: s.Links}
	healthHandler := &HealthHandler{Config: s.Config, DB: s.DB}

	app.Get("/s/:code", linkHandler.Redirect)

	api := app.Group("/api", middleware.Authenticate(s.Auth))
	api.Get("/health", healthHandler.Health)

	user := middleware.RequireUser()

	auth := api.Group("/auth/token")
	auth.Post("/login", limiter.New(limiter.Config{
		Max:        LoginRateLimit,
		Expiration: time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many login attempts")
		},
	}), authHandler.Login)
	auth.Post("/logout", user, authHandler.Logout)

	users := api.Group("/users")
	users.Get("/", userHandler.List)
	users.Post("/", userHandler.Register)
	users.Get("/me", user, userHandler.Me)
	users.Put("/me/avatar", user, userHandler.SetAvatar)
	users.Delete("/me/avatar", user, userHandler.DeleteAvatar)
	users.Post("/set_password", user, userHandler.SetPassword)
	users.Get("/subscriptions", user, userHandler.ListSubscriptions)
	users.Get("/:id", userHandler.Get)
	users.Post("/:id/subscribe", user, userHandler.Subscribe)
	users.Delete("/:id/subscribe", user, userHandler.Unsubscribe)

	api.Get("/tags", referenceHandler.Tags)
	api.Get("/tags/:id", referenceHandler.Tag)
	api.Get("/ingredients", referenceHandler.Ingredients)
	api.Get("/ingredients/:id", referenceHandler.Ingredient)

	recipes := api.Group("/recipes")
	recipes.Get("/", recipeHandler.List)
	recipes.Post("/", user, recipeHandler.Create)
	recipes.Get("/download_shopping_cart", user, recipeHandler.DownloadShoppingCart)
	recipes.Get("/:id", recipeHandler.Get)
	recipes.Patch("/:id", user, recipeHandler.Update)
	recipes.Delete("/:id", user, recipeHandler.Delete)
	recipes.Get("/:id/get-link", recipeHandler.GetLink)
	recipes.Post("/:id/favorite", user, recipeHandler.AddFavorite)
	recipes.Delete("/:id/favorite", user, recipeHandler.RemoveFavorite)
	recipes.Post("/:id/shopping_cart", user, recipeHandler.AddToCart)
	recipes.Delete("/:id/shopping_cart", user, recipeHandler.RemoveFromCart)

	app.Use(NotFound)
}
