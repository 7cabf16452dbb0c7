package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/licensegate/internal/infrastructure/config"
	"github.com/orris-inc/licensegate/internal/infrastructure/database"
	"github.com/orris-inc/licensegate/internal/infrastructure/pubsub"
	"github.com/orris-inc/licensegate/internal/infrastructure/repository"
	httpRouter "github.com/orris-inc/licensegate/internal/interfaces/http"
	"github.com/orris-inc/licensegate/internal/shared/constants"
	shareddb "github.com/orris-inc/licensegate/internal/shared/db"
	"github.com/orris-inc/licensegate/internal/shared/logger"
	"github.com/orris-inc/licensegate/internal/shared/utils"
)

func main() {
	// Parse environment from command line or env variable
	env := constants.EnvDevelopment
	if len(os.Args) > 1 {
		env = os.Args[1]
	}
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env, os.Getenv("LICENSEGATE_CONFIG"))
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode); err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger().Named("inbox_worker")
	log.Infow("starting licensing inbox worker", "environment", env)

	if !cfg.Redis.Enabled {
		logger.Fatal("licensing inbox requires redis, set redis.enabled")
	}

	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("failed to initialize database", "error", err)
	}
	defer database.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = redisClient.Ping(pingCtx).Err()
	pingCancel()
	if err != nil {
		logger.Fatal("failed to connect to redis", "error", err)
	}
	log.Infow("redis connection established", "address", cfg.Redis.GetAddr())

	dispatcher := httpRouter.NewEventDispatcher(cfg, redisClient, log)
	if err := dispatcher.Start(); err != nil {
		logger.Fatal("failed to start event dispatcher", "error", err)
	}
	defer dispatcher.Stop()

	storeRepo := repository.NewStoreRepository(database.Get(), log.Named("store_repository"))
	licensingSvc, err := httpRouter.NewLicensingService(cfg, storeRepo, shareddb.NewTransactionManager(database.Get()), dispatcher, log)
	if err != nil {
		logger.Fatal("failed to build licensing service", "error", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	inbox := pubsub.NewLicensingInbox(redisClient, cfg.Notify.InboxChannel, log.Named("inbox"))
	err = inbox.Run(ctx, func(ctx context.Context, payload []byte) error {
		result, err := licensingSvc.HandlePayload(ctx, payload)
		if err != nil {
			return err
		}
		args := []any{"type", result.Type, "action", result.Action}
		switch {
		case result.Ignored:
			args = append(args, "reason", result.Reason)
		case result.Connect != nil:
			args = append(args, "store", utils.MaskToken(result.Connect.StoreToken))
		case result.Disconnect != nil:
			args = append(args, "store", utils.MaskToken(result.Disconnect.StoreToken))
		case result.Plan != nil:
			args = append(args, "store", utils.MaskToken(result.Plan.StoreToken))
		}
		log.Infow("notification applied", args...)
		return nil
	})
	if err != nil && ctx.Err() == nil {
		log.Errorw("licensing inbox stopped unexpectedly", "error", err)
		os.Exit(1)
	}

	log.Infow("licensing inbox worker stopped")
}
