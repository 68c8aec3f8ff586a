package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/zhouzirui/sms-sim/internal/config"
	"github.com/zhouzirui/sms-sim/internal/handler"
	"github.com/zhouzirui/sms-sim/internal/service/ai"
	"github.com/zhouzirui/sms-sim/internal/service/chat"
	"github.com/zhouzirui/sms-sim/internal/service/conversation"
	"github.com/zhouzirui/sms-sim/internal/storage/keyvalue"
	"github.com/zhouzirui/sms-sim/pkg/utils"
)

const janitorInterval = time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger := utils.ConfigureLogger(cfg.Server.LogLevel, os.Stderr)
	if envErr != nil {
		logger.Warn().Err(envErr).Msg("no .env file loaded, using process environment only")
	}

	if err := run(ctx, logger, cfg); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func run(ctx context.Context, logger zerolog.Logger, cfg *config.Config) error {
	eg, ctx := errgroup.WithContext(ctx)

	store, err := newStore(ctx, cfg.Storage, eg)
	if err != nil {
		return err
	}

	aiService, err := ai.NewService(ctx, cfg.AI)
	if err != nil {
		return errors.Wrap(err, "initialize ai service")
	}
	if !aiService.HasAPIKey() {
		logger.Warn().Msg("no API key configured, /api/chat will fail until one is added to .env")
	}

	exchange := conversation.NewService(chat.NewService(store), aiService)
	router := handler.NewRouter(logger, handler.Services{
		Chat:      exchange,
		Health:    aiService,
		Models:    aiService.Catalog(),
		StaticDir: cfg.Server.StaticDir,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	eg.Go(func() error {
		<-ctx.Done()
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	eg.Go(func() error {
		logger.Info().Str("addr", srv.Addr).Msg("sms simulator backend listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "listen")
		}
		return nil
	})

	return eg.Wait()
}

// newStore 根据配置选择 Redis 或内存存储。内存存储的清理协程挂在 eg 上。
func newStore(ctx context.Context, cfg config.StorageConfig, eg *errgroup.Group) (chat.Store, error) {
	if !cfg.UseRedis() {
		store := chat.NewMemoryStore(cfg.SessionIdleTimeout)
		eg.Go(func() error {
			return store.RunJanitor(ctx, janitorInterval)
		})
		log.Info().Dur("idle_timeout", cfg.SessionIdleTimeout).Msg("using in-memory transcript store")
		return store, nil
	}

	rdb := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    []string{cfg.RedisAddr},
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrapf(err, "connect redis %s", cfg.RedisAddr)
	}
	eg.Go(func() error {
		<-ctx.Done()
		return rdb.Close()
	})

	log.Info().Str("addr", cfg.RedisAddr).Msg("using redis transcript store")
	return keyvalue.NewTranscriptStorage(rdb, cfg.SessionIdleTimeout), nil
}
