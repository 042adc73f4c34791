package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"

	"feed_workspace/bootstrap"
	"feed_workspace/database"
	"feed_workspace/internal/cache"
	"feed_workspace/internal/dispatch"
	"feed_workspace/internal/middleware"
	"feed_workspace/internal/repository"
	"feed_workspace/internal/routes"
	"feed_workspace/services"
)

func init() {
	if err := godotenv.Overload(".env"); err != nil {
		slog.Info("no .env file found, using system environment variables")
	}
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := database.LoadConfig()
	if err != nil {
		logger.Error("config", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := database.ConnectMongo(ctx, cfg)
	if err != nil {
		logger.Error("mongo", "err", err)
		os.Exit(1)
	}
	defer database.DisconnectMongo(client)
	db := client.Database(cfg.DBName)

	if err := bootstrap.EnsureIndexes(ctx, db); err != nil {
		logger.Error("ensure indexes failed", "err", err)
		os.Exit(1)
	}

	postRepo := repository.NewMongoPostRepo(db)
	commentRepo := repository.NewMongoCommentRepo(db)
	likeRepo := repository.NewMongoLikeRepo(db)
	blobs := repository.NewGridFSBlobStore(db, cfg.BaseURL)

	// one explicitly constructed cache shared by every component; no ambient
	// singletons
	store := cache.New()
	dispatcher := dispatch.New(store, logger)

	deps := routes.Deps{
		Dispatcher: dispatcher,
		Publisher:  services.NewPublisher(postRepo, blobs, logger),
		Likes:      services.NewLikeService(likeRepo, postRepo, logger),
		Comments:   services.NewCommentService(commentRepo, postRepo, store, logger),
		Feed:       services.NewFeedPaginator(postRepo, store, 10, logger),
		PostView:   services.NewPostViewService(postRepo, likeRepo, store, logger),
		Blobs:      blobs,
	}

	app := fiber.New(fiber.Config{BodyLimit: 32 << 20})
	app.Use(middleware.JWTUidOnly(cfg.JWTSecret))
	routes.Register(app, deps)

	logger.Info("listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
