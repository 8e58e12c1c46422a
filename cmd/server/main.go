package main

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zaqqye/seb_proctor/internal/config"
	"github.com/zaqqye/seb_proctor/internal/database"
	"github.com/zaqqye/seb_proctor/internal/exam"
	"github.com/zaqqye/seb_proctor/internal/routes"
	"github.com/zaqqye/seb_proctor/internal/store"
	"github.com/zaqqye/seb_proctor/internal/ws"
)

func main() {
	// Load .env (non-fatal if missing in production)
	_ = godotenv.Load()

	cfg := config.Load()

	logger := newLogger(cfg)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	st, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("store setup failed", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}

	policy, err := exam.ParseEndPolicy(cfg.EndPolicy)
	if err != nil {
		logger.Fatal("invalid end policy", zap.Error(err))
	}
	exams := exam.NewController(st, policy, logger)

	hubs := ws.NewHubs()
	hubs.Monitoring.WithLogger(logger)
	hubs.Run()

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	routes.Register(r, cfg, routes.Deps{Store: st, Exams: exams, Hubs: hubs, Log: logger})

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	logger.Info("server starting",
		zap.String("port", port),
		zap.String("store", cfg.StoreBackend),
		zap.String("end_policy", string(policy)))
	if err := r.Run(":" + port); err != nil {
		logger.Error("server exited with error", zap.Error(err))
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Production() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func openStore(cfg *config.Config, logger *zap.Logger) (store.MetadataStore, error) {
	switch cfg.StoreBackend {
	case "postgres":
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(db); err != nil {
			return nil, err
		}
		return store.NewPostgresStore(db, logger), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, err
		}
		return store.NewRedisStore(client, cfg.RedisKeyPrefix, logger), nil
	default:
		logger.Warn("using in-memory store; records are lost on restart")
		return store.NewMemoryStore(), nil
	}
}
