package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/biosecret/go-todo/auth"
	"github.com/biosecret/go-todo/config"
	"github.com/biosecret/go-todo/database"
	"github.com/biosecret/go-todo/events"
	"github.com/biosecret/go-todo/handlers"
	"github.com/biosecret/go-todo/logger"
	"github.com/biosecret/go-todo/middleware"
	"github.com/biosecret/go-todo/router"
	"github.com/biosecret/go-todo/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// New builds the Fiber app: CORS, request logging, panic recovery, the API
// routes and the Swagger UI.
func New(cfg *config.Config, store database.Store, broker *events.Broker, notifier events.Notifier, log *zap.Logger) *fiber.App {
	tokens := auth.NewTokenService([]byte(cfg.JWTSecret), auth.TokenTTL)

	app := fiber.New(fiber.Config{
		AppName:               "go-todo",
		ErrorHandler:          handlers.ErrorHandler(log),
		DisableStartupMessage: true,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.RequestLogger(log))
	app.Use(recover.New())

	h := handlers.New(store, tokens, broker, notifier, log)
	router.SetupRoutes(app, h, middleware.Protected(tokens, store))

	config.AddSwaggerRoutes(app)

	return app
}

// SetupAndRunApp loads configuration, connects the store and serves until
// SIGINT or SIGTERM.
func SetupAndRunApp() error {
	if err := config.LoadENV(); err != nil {
		return err
	}

	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config.yml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := database.Open(ctx, cfg.DatabaseURI, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Error("failed to close database", zap.Error(err))
		}
		log.Info("database connection closed")
	}()

	broker := events.NewBroker()
	notifier := events.Multi{broker}
	if cfg.MQTTURL != "" {
		publisher, err := events.ConnectMQTT(cfg.MQTTURL, "gotodo-"+utils.NewRequestID(), log)
		if err != nil {
			return err
		}
		defer publisher.Close()
		notifier = append(notifier, publisher)
	}

	app := New(cfg, store, broker, notifier, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", zap.String("port", cfg.Port))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
