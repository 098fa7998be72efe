package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/carpetline/orderflow/internal/config"
	kafkax "github.com/carpetline/orderflow/internal/kafka"
	"github.com/carpetline/orderflow/internal/notify"
	"github.com/carpetline/orderflow/internal/orders"
	"github.com/carpetline/orderflow/internal/paysync"
	"github.com/carpetline/orderflow/internal/postgres"
	"github.com/carpetline/orderflow/internal/redisx"
	"github.com/carpetline/orderflow/internal/reservations"
	"github.com/carpetline/orderflow/internal/stock"
	"github.com/carpetline/orderflow/internal/timeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// This worker only flips RESERVED -> PAID; it publishes nothing itself.
	saga := &orders.Saga{
		Ledger:   &stock.PG{DB: db},
		Store:    &orders.PGStore{DB: db},
		Timeline: &timeline.Store{DB: db},
		Recorder: &reservations.Recorder{Redis: rdb, TTL: cfg.ReservationTTL},
		Notify:   notify.Nop{},
		Log:      logger,
	}

	svc := &paysync.Service{Saga: saga, Redis: rdb, Log: logger}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.PaymentSyncGroup,
		orders.TopicPaymentSucceeded, cfg.PaymentSyncWorkers, logger)

	go func() {
		logger.Info("paymentsync consumer started",
			zap.String("group", cfg.PaymentSyncGroup),
			zap.String("topic", orders.TopicPaymentSucceeded),
			zap.Int("workers", cfg.PaymentSyncWorkers))
		if err := cons.Start(ctx, svc.HandlePaymentSucceeded); err != nil {
			logger.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	logger.Info("shutting down consumer")
	cancel()
}
