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
	"shop/internal/infra/db"
	"shop/internal/infra/inventoryclient"
	"shop/internal/infra/messaging"
	infraRepo "shop/internal/infra/repository"
	"shop/internal/observability"
	"shop/internal/server"
	"shop/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "order-service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config.LoadDotEnv(".env", "../.env")

	cfg, err := config.Load(config.OrderServiceName)
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
	if err := db.MigrateOrders(gormDB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	metrics := observability.NewMetrics(cfg.ServiceName)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//Kafka（未設定なら送信しない）
	var publisher usecase.OrderEventPublisher = messaging.NopPublisher{Logger: logger}
	if cfg.KafkaEnabled() {
		writer := messaging.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.OrderPlacedTopic, cfg.Kafka.BatchTimeout)
		p := messaging.NewOrderEventPublisher(writer, cfg.Kafka.OrderPlacedTopic, metrics, logger)
		defer func() {
			if err := p.Close(); err != nil {
				logger.Error("kafka writer close failed", zap.Error(err))
			}
		}()
		publisher = p
	} else {
		logger.Warn("KAFKA_BROKERS not set, order events are not published")
	}

	stock := inventoryclient.New(cfg.InventoryServiceURL, cfg.InventoryTimeout)

	//Usecase生成
	orderUC := usecase.NewOrderUsecase(txManager, stock, publisher, &uuidGenerator{}, &realClock{}, metrics, logger)

	//Server起動
	e := server.New(logger, metrics)
	handler.NewOrderHandler(orderUC).RegisterRoutes(e)

	return server.Run(ctx, e, cfg.Port, logger)
}
