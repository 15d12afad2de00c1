package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/superrabbithero/appmanage/auth"
	"github.com/superrabbithero/appmanage/clients"
	"github.com/superrabbithero/appmanage/config"
	"github.com/superrabbithero/appmanage/database"
	handler "github.com/superrabbithero/appmanage/handlers"
	"github.com/superrabbithero/appmanage/router"
	"github.com/superrabbithero/appmanage/storage"
)

func newStore(ctx context.Context, cfg *config.Settings) (storage.Store, func()) {
	if cfg.GCSBucket == "" {
		log.Warn("GCS_BUCKET_NAME not set, objects are kept in memory")
		return storage.NewMemoryStore(cfg.PublicBaseURL), func() {}
	}
	store, err := storage.NewGCSStore(ctx, cfg.GCSBucket, cfg.GCSCredentialsFile, cfg.PublicBaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to create storage client")
	}
	log.WithFields(log.Fields{"bucket": cfg.GCSBucket, "project": cfg.GCSProjectID}).Info("using cloud storage")
	return store, func() { store.Close() }
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	if cfg.IsProduction() {
		log.SetFormatter(&log.JSONFormatter{})
		log.SetLevel(log.InfoLevel)
	} else {
		log.SetLevel(log.DebugLevel)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.WithError(err).Error("failed to close database")
		}
	}()

	if err := database.MigrateModels(db); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}

	ctx := context.Background()
	store, closeStore := newStore(ctx, cfg)
	defer closeStore()

	var generator clients.ImageGenerator
	if cfg.GeminiAPIKey != "" {
		gemini, err := clients.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.WithError(err).Fatal("failed to create image generator")
		}
		generator = gemini
	} else {
		log.Warn("GEMINI_API_KEY not set, image generation disabled")
	}

	tokens := auth.NewService(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	h := handler.New(db, handler.Services{
		Store:        store,
		Tokens:       tokens,
		AnswerCards:  clients.NewXueceClient(cfg.XueceURLs, cfg.XueceUser, cfg.XuecePassword),
		Generator:    generator,
		SignedURLTTL: cfg.SignedURLTTL,
	})

	app := fiber.New(fiber.Config{
		AppName:   "appmanage",
		BodyLimit: 16 * 1024 * 1024,
	})
	router.SetupRoutes(app, h, tokens)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.WithError(err).Error("shutdown failed")
		}
	}()

	log.WithField("port", cfg.Port).Info("server listening")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.WithError(err).Error("server stopped")
	}
}
