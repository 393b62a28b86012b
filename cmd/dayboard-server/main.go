package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/existflow/dayboard/internal/config"
	"github.com/existflow/dayboard/internal/db"
	"github.com/existflow/dayboard/internal/logger"
	"github.com/existflow/dayboard/server"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := logger.Init(logger.Config{
		Level:   logger.ParseLevel(cfg.LogLevel),
		Console: true,
		JSON:    cfg.LogJSON,
	}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	database, err := openDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Invalid REDIS_URL: %v", err)
		}
		rdb = redis.NewClient(opts)
		defer rdb.Close()
	}

	jwtAuth, err := openJWT(cfg)
	if err != nil {
		log.Fatalf("Failed to set up token verification: %v", err)
	}
	if jwtAuth != nil {
		defer jwtAuth.Close()
	}

	srv, err := server.New(server.Options{
		DB:            database,
		Redis:         rdb,
		CacheTTL:      cfg.CacheTTL,
		JWT:           jwtAuth,
		AdminSubjects: cfg.AdminSubjects,
		Location:      cfg.Location,
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Error("Error closing server", logger.F("error", err))
		}
	}()

	if err := srv.StartRollover(); err != nil {
		log.Fatalf("Failed to schedule rollover: %v", err)
	}

	go func() {
		logger.Info("Dayboard server starting", logger.F("port", cfg.Port), logger.F("driver", cfg.DatabaseDriver))
		if err := srv.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", logger.F("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Shutdown failed", logger.F("error", err))
	}
	logger.Info("Dayboard server stopped")
}

func openDatabase(cfg *config.ServerConfig) (*db.DB, error) {
	if cfg.DatabaseDriver == "sqlite" {
		return db.Open(cfg.DatabaseURL)
	}
	return db.OpenPostgres(cfg.DatabaseURL)
}

func openJWT(cfg *config.ServerConfig) (*server.JWTAuth, error) {
	switch {
	case cfg.JWTSecret != "":
		return server.NewHS256Auth([]byte(cfg.JWTSecret), cfg.JWTAudience, cfg.JWTIssuer), nil
	case cfg.JWKSURL != "":
		return server.NewJWKSAuth(cfg.JWKSURL, cfg.JWTAudience, cfg.JWTIssuer)
	default:
		return nil, nil
	}
}
