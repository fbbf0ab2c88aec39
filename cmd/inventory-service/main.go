package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shop/internal/config"
	"shop/internal/handler"
	"shop/internal/infra/cache"
	"shop/internal/infra/db"
	"shop/internal/infra/messaging"
	infraRepo "shop/internal/infra/repository"
	"shop/internal/observability"
	"shop/internal/seed"
	"shop/internal/server"
	"shop/internal/usecase"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "inventory-service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config.LoadDotEnv(".env", "../.env")

	cfg, err := config.Load(config.InventoryServiceName)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.ServiceName, cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Error("tracer shutdown failed", zap.Error(err))
		}
	}()

	//DB接続
	gormDB, err := db.Connect(cfg.DB)
	if err != nil {
		return err
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := db.MigrateInventory(gormDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	metrics := observability.NewMetrics(cfg.ServiceName)
	txManager := infraRepo.NewTxManagerGorm(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)

	//初期在庫
	if cfg.SeedInventory {
		if err := seed.Inventory(ctx, txManager, seed.DefaultInventory, logger); err != nil {
			return err
		}
	}

	//Redis（未設定ならキャッシュなし）
	var stockCache usecase.StockCache = cache.NopStockCache{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, stock cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			stockCache = cache.NewRedisStockCache(rdb, cfg.CacheTTL)
		}
	}

	inventoryUC := usecase.NewInventoryUsecase(txManager, inventoryRepo, stockCache, metrics, logger)

	e := server.New(logger, metrics)
	handler.NewInventoryHandler(inventoryUC).RegisterRoutes(e, cfg.JWTSecret)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Run(gctx, e, cfg.Port, logger)
	})

	//注文確定イベントの購読
	if cfg.KafkaEnabled() {
		reader := messaging.NewReader(cfg.Kafka.Brokers, cfg.Kafka.OrderPlacedTopic, cfg.Kafka.GroupID)
		consumer := messaging.NewOrderPlacedConsumer(reader, inventoryUC, cfg.Kafka.OrderPlacedTopic, metrics, logger)
		g.Go(func() error {
			defer func() {
				if err := consumer.Close(); err != nil {
					logger.Error("kafka reader close failed", zap.Error(err))
				}
			}()
			return consumer.Run(gctx)
		})
	} else {
		logger.Warn("KAFKA_BROKERS not set, order events are not consumed")
	}

	return g.Wait()
}
