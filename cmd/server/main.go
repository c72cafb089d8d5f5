package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"indoors/internal/api/router"
	"indoors/internal/cache"
	"indoors/internal/config"
	"indoors/internal/core/repository"
	"indoors/internal/core/service"
	"indoors/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.NewLogger(cfg.Logger)
	mainLog := logger.GetLogger("main")

	// Room store
	var store repository.RoomRepository
	if cfg.Mongo.TestMode {
		mainLog.Warn().Msg("TEST_MODE enabled, using in-memory room store")
		store = repository.NewInMemoryRoomRepository(cfg.Ingestion.CoordinateTolerance)
	} else {
		db, err := config.ConnectMongoDB(cfg.Mongo, logger.GetLogger("mongodb"))
		if err != nil {
			mainLog.Fatal().Err(err).Msg("Failed to connect to MongoDB")
		}
		defer db.Client().Disconnect(context.Background())

		store = repository.NewMongoRoomRepository(db, repository.RoomStoreConfig{
			Collection: cfg.Mongo.Collection,
			Timeout:    cfg.Mongo.Timeout,
			Tolerance:  cfg.Ingestion.CoordinateTolerance,
		})
	}
	store = repository.NewGuardedRoomRepository(store, repository.BreakerConfig{
		FailureThreshold: uint32(cfg.Breaker.FailureThreshold),
		OpenTimeout:      cfg.Breaker.OpenTimeout,
	}, logger.GetLogger("breaker"))

	roomCache := cache.New(cfg.Redis.URL, cfg.Redis.TTL, logger.GetLogger("cache"))
	defer roomCache.Close()

	// Initialize services
	services := router.Services{
		Rooms:     service.NewRoomService(store, roomCache, logger.GetLogger("rooms")),
		Ingestion: service.NewIngestionService(store, roomCache, cfg.Ingestion.MergePolicy, logger.GetLogger("ingestion")),
		Positions: service.NewPositionService(store, roomCache, logger.GetLogger("positioning")),
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router.NewRouter(services, cfg.Auth.JWTSecret, logger.GetLogger("http")),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		mainLog.Info().
			Str("addr", srv.Addr).
			Str("merge_policy", cfg.Ingestion.MergePolicy).
			Bool("auth", cfg.Auth.JWTSecret != "").
			Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			mainLog.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	mainLog.Info().Msg("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		mainLog.Error().Err(err).Msg("Graceful shutdown failed")
	}
}
