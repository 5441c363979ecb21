// @title                       Stash API
// @version                     1.0
// @description                 Personal bookmarks, snippets and notes behind JWT authentication.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/stashly/stash-api/internal/api"
	"github.com/stashly/stash-api/internal/core/service"
	"github.com/stashly/stash-api/internal/infrastructure/db/mongo"
	"github.com/stashly/stash-api/internal/infrastructure/db/redis"
	"github.com/stashly/stash-api/internal/infrastructure/http/handlers"
	"github.com/stashly/stash-api/internal/infrastructure/queue"
	"github.com/stashly/stash-api/internal/pkg/config"
	"github.com/stashly/stash-api/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "stash-api",
		Version: version,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(dctx); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()

	userRepo := mongo.NewUserRepository(db)
	itemRepo := mongo.NewItemRepository(db)
	if err := mongo.EnsureIndexes(ctx, userRepo, itemRepo); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	hashPool := queue.NewWorkerPool("bcrypt", cfg.Auth.HashWorkers, logger.Component("queue"))
	defer hashPool.Stop()

	tokens := service.NewTokenService(cfg.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	hasher := service.NewBcryptHasher(cfg.Auth.BcryptCost, hashPool)
	authService := service.NewAuthService(userRepo, hasher, tokens, logger.Component("auth"))
	itemService := service.NewItemService(itemRepo, redis.NewIdempotencyStore(rdb, cfg.HTTP.IdempotencyTTL), logger.Component("items"))

	e := api.NewRouter(api.Deps{
		Logger:       logger.Component("http"),
		AuthService:  authService,
		ItemService:  itemService,
		TokenService: tokens,
		Version:      version,
		HealthChecks: map[string]handlers.Check{
			"mongodb": handlers.MongoCheck(db),
			"redis":   handlers.RedisCheck(rdb),
		},
		CORSAllowOrigins:  cfg.HTTP.CORSAllowOrigins,
		RequestTimeout:    cfg.HTTP.RequestTimeout,
		MetricsRegisterer: prometheus.DefaultRegisterer,
		MetricsGatherer:   prometheus.DefaultGatherer,
		EnableSwagger:     cfg.IsDevelopment(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
	log.Info().Msg("server stopped")
}
