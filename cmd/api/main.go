package main

import (
	"context"
	"os"

	"github.com/foodgram/backend/config"
	"github.com/foodgram/backend/internal/api"
	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/logging"
	"github.com/foodgram/backend/internal/middleware"
	"github.com/foodgram/backend/internal/policy"
	"github.com/foodgram/backend/internal/server"
	"github.com/foodgram/backend/internal/service"
	"github.com/foodgram/backend/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile})

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	images, err := imageStore(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to configure image storage")
	}

	// The rate limiters are the only Redis consumer; run without them if it is down.
	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		logging.Warn().Err(err).Msg("redis unavailable, rate limiting disabled")
		redisClient = nil
	}

	enforcer := policy.MustNewEnforcer()
	auth := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL)
	a := api.New(api.Services{
		Auth:     auth,
		Users:    service.NewUserService(db),
		Catalog:  service.NewCatalogService(db),
		Recipes:  service.NewRecipeService(db, images, policy.NewAuthorOrReadOnly(enforcer)),
		Social:   service.NewSocialService(db),
		Shopping: service.NewShoppingService(db),
	}, enforcer, api.Limiters{
		RecipeCreate: middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RecipeCreateLimit, cfg.RateLimitWindow),
		RecipeModify: middleware.NewRecipeModificationRateLimiter(redisClient, cfg.RecipeModifyLimit, cfg.RateLimitWindow),
	}, db, redisClient)

	srv := server.New(cfg, a, auth)
	if err := srv.Start(); err != nil {
		logging.Error().Err(err).Msg("server stopped with error")
		os.Exit(1)
	}
}

func imageStore(cfg *config.Config) (storage.ImageStore, error) {
	if cfg.ImageStorage != "s3" {
		logging.Info().Str("dir", cfg.MediaDir).Msg("storing images locally")
		return storage.NewLocalStore(cfg.MediaDir, cfg.MediaURL), nil
	}
	s3cfg, err := config.NewS3Config(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	logging.Info().Str("bucket", cfg.S3Bucket).Msg("storing images in S3")
	return storage.NewS3Store(s3cfg), nil
}
