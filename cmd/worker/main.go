package main

import (
	"time"

	"go.uber.org/zap"

	"gigledger/internal/config"
	"gigledger/internal/db"
	"gigledger/internal/mq"
	"gigledger/internal/mqhandler"
	redisclient "gigledger/internal/redis"
	"gigledger/internal/repository"
	"gigledger/internal/util"
)

func main() {
	cfg := config.Load()

	logger := util.NewLogger()
	defer logger.Sync()

	logger.Info("Starting ledger worker...")

	// Init Redis (handler idempotency)
	rdb := redisclient.NewClient(cfg.Redis)
	defer rdb.Close()

	deduper := util.NewDeduper(rdb, time.Hour)
	retries := util.NewRetryCounter(rdb, time.Hour)

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, logger)
	if err != nil {
		logger.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// Init Repositories
	eventRepo := repository.NewJobEventRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Init Handlers
	auditHandler := mqhandler.NewJobAuditHandler(eventRepo, deduper, logger)
	notificationHandler := mqhandler.NewNotificationHandler(notificationRepo, deduper, logger)

	// (1) Audit consumer: the whole event stream into job_events
	auditConsumer, err := mq.NewConsumer(cfg.MQ.URL, "ledger.audit.q", "#", logger)
	if err != nil {
		logger.Fatal("failed to init audit consumer", zap.Error(err))
	}
	auditConsumer.SetHandler(mqhandler.WithRetryGuard(auditHandler.Handle, retries, 5, logger))
	go func() {
		if err := auditConsumer.StartConsuming(); err != nil {
			logger.Fatal("audit consumer failed", zap.Error(err))
		}
	}()
	defer auditConsumer.Close()

	// (2) Notification consumer: job events dispatched by type
	dispatcher := mq.NewDispatcher(logger)
	dispatcher.Register(mq.EventJobAssigned, notificationHandler.HandleJobAssigned)
	dispatcher.Register(mq.EventPaymentReleased, notificationHandler.HandlePaymentReleased)

	notifyConsumer, err := mq.NewConsumer(cfg.MQ.URL, "ledger.notify.q", "job.#", logger)
	if err != nil {
		logger.Fatal("failed to init notification consumer", zap.Error(err))
	}
	notifyConsumer.SetHandler(mqhandler.WithRetryGuard(dispatcher.Handle, retries, 5, logger))
	go func() {
		if err := notifyConsumer.StartConsuming(); err != nil {
			logger.Fatal("notification consumer failed", zap.Error(err))
		}
	}()
	defer notifyConsumer.Close()

	logger.Info("All consumers started, worker is ready to process events")

	// Keep worker running
	select {}
}
