package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/gerenciadorpro/roster-api/internal/api"
	"github.com/gerenciadorpro/roster-api/internal/core/domain"
	"github.com/gerenciadorpro/roster-api/internal/core/service"
	"github.com/gerenciadorpro/roster-api/internal/infrastructure/ai/gemini"
	"github.com/gerenciadorpro/roster-api/internal/infrastructure/config"
	mongodb "github.com/gerenciadorpro/roster-api/internal/infrastructure/db/mongo"
	redisdb "github.com/gerenciadorpro/roster-api/internal/infrastructure/db/redis"
	"github.com/gerenciadorpro/roster-api/internal/infrastructure/storage/s3"
	"github.com/gerenciadorpro/roster-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("mongodb disconnect failed")
		}
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer rdb.Close()

	store, err := s3.NewBackupStore(ctx, s3.Config{
		Region:    cfg.Backup.Region,
		Endpoint:  cfg.Backup.Endpoint,
		AccessKey: cfg.Backup.AccessKey,
		SecretKey: cfg.Backup.SecretKey,
		Bucket:    cfg.Backup.Bucket,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure backup store")
	}

	generator := gemini.NewClient(gemini.Config{
		APIKey: cfg.Gemini.APIKey,
		Model:  cfg.Gemini.Model,
	})

	authRepo := mongodb.NewAuthRepository(db)
	if err := authRepo.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create mongodb indexes")
	}
	seedAdmin(ctx, cfg, authRepo, log)

	e := api.NewRouter(ctx, api.Deps{
		DB:        db,
		Redis:     rdb,
		Store:     store,
		Generator: generator,
		Config:    cfg,
		Logger:    log,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// seedAdmin creates the bootstrap admin account when configured. An existing
// account with the same email is left untouched.
func seedAdmin(ctx context.Context, cfg *config.Config, repo *mongodb.MongoAuthRepository, log zerolog.Logger) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return
	}

	auth := service.NewAuthService(repo, cfg.JWTSecret, 0)
	_, err := auth.Register(ctx, cfg.AdminEmail, cfg.AdminPassword, domain.RoleAdmin)
	switch {
	case err == nil:
		log.Info().Str("email", cfg.AdminEmail).Msg("admin account seeded")
	case errors.Is(err, domain.ErrUserExists):
		// Already seeded on a previous start.
	default:
		log.Fatal().Err(err).Msg("failed to seed admin account")
	}
}
