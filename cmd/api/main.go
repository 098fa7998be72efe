package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/carpetline/orderflow/internal/config"
	"github.com/carpetline/orderflow/internal/httpx"
	kafkax "github.com/carpetline/orderflow/internal/kafka"
	"github.com/carpetline/orderflow/internal/notify"
	"github.com/carpetline/orderflow/internal/orders"
	"github.com/carpetline/orderflow/internal/payments"
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

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per topic
	pReserved := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicInventoryReserved, 1024, logger)
	pReleased := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicInventoryReleased, 1024, logger)
	pPaid := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicPaymentSucceeded, 1024, logger)
	pReserved.Start(ctx)
	pReleased.Start(ctx)
	pPaid.Start(ctx)

	bus := &notify.Kafka{
		Reserved: pReserved,
		Released: pReleased,
		Paid:     pPaid,
		Service:  cfg.ServiceName,
	}

	ledger := &stock.PG{DB: db}
	saga := &orders.Saga{
		Ledger:   ledger,
		Store:    &orders.PGStore{DB: db},
		Timeline: &timeline.Store{DB: db},
		Recorder: &reservations.Recorder{Redis: rdb, TTL: cfg.ReservationTTL},
		Notify:   bus,
		Log:      logger,
	}
	if cfg.InventoryURL != "" {
		saga.External = stock.NewRemoteReleaser(cfg.InventoryURL)
	}

	processor := &payments.Processor{
		Store:  &payments.PGStore{DB: db},
		Ledger: &payments.PGLedger{DB: db},
		Orders: saga,
		Notify: bus,
		Log:    logger,
	}

	router := httpx.NewRouter()
	(&httpx.OrdersHandler{Saga: saga}).Register(router)
	(&httpx.PaymentsHandler{Processor: processor}).Register(router)
	(&httpx.InventoryHandler{Ledger: ledger}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)

	// close inboxes so producers flush, then wait
	pReserved.Close()
	pReleased.Close()
	pPaid.Close()
	pReserved.WaitClosed()
	pReleased.WaitClosed()
	pPaid.WaitClosed()
}
