package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/localnerve/foodgram/internal/config"
	"github.com/localnerve/foodgram/internal/database"
	"github.com/localnerve/foodgram/internal/handlers"
	"github.com/localnerve/foodgram/internal/logging"
	"github.com/localnerve/foodgram/internal/render"
	"github.com/localnerve/foodgram/internal/services"
	"github.com/localnerve/foodgram/internal/storage"

	_ "github.com/localnerve/foodgram/docs/api" // Swagger docs
)

// @title Foodgram API
// @version 1.0.0
// @description Recipe sharing backend: recipes, favorites, shopping cart and subscriptions
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/localnerve/foodgram
// @contact.email info@localnerve.com

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey TokenAuth
// @in header
// @name Authorization
// @description "Token <auth_token>"

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name cookie_session

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, JSONOutput: cfg.LogJSON})
	log := logging.WithComponent("server")

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	ctx := context.Background()
	media, err := storage.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up media storage")
	}

	renderer, err := render.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up shopping list renderer")
	}
	if pdf, ok := renderer.(*render.PDF); ok {
		defer pdf.Close()
	}

	links, err := services.NewShortLinks(db, cfg.ShortLinkCacheSize)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up short links")
	}

	if cfg.AuthzURL != "" {
		if err := services.InitAuthorizer(cfg); err != nil {
			// Token auth keeps working, sessions are ignored until restart
			log.Error().Err(err).Msg("authorizer unavailable, session cookies disabled")
		}
	}

	composer := services.NewComposer(db, media)
	svc := &handlers.Services{
		Config:        cfg,
		DB:            db,
		Auth:          services.NewAuthService(db, cfg.TokenSecret, cfg.TokenTTL),
		Users:         services.NewUserService(db, media, composer),
		Subscriptions: services.NewSubscriptionService(db, composer),
		Reference:     services.NewReferenceService(db),
		Recipes:       services.NewRecipeService(db, media, links, composer),
		Relations:     services.NewRelationService(db, composer),
		Shopping:      services.NewShoppingListService(db, renderer, cfg.ShoppingListFormat),
		Links:         links,
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler,
		BodyLimit:    16 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(cors.New())

	prometheus := fiberprometheus.New("foodgram")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	app.Get("/swagger/*", swagger.HandlerDefault)

	if cfg.MediaBackend == "local" {
		app.Static(cfg.MediaURL, cfg.MediaRoot)
	}

	// Registers the 404 catch-all last
	handlers.SetupRoutes(app, svc)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info().Msg("gracefully shutting down")
		_ = app.Shutdown()
	}()

	log.Info().Str("port", cfg.Port).Msg("starting server")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}

	log.Info().Msg("server stopped")
}
