package main

import (
	"context"

	"go.uber.org/zap"

	"gigledger/internal/api"
	"gigledger/internal/asset"
	"gigledger/internal/config"
	"gigledger/internal/db"
	"gigledger/internal/httpserver"
	"gigledger/internal/ledger"
	"gigledger/internal/model"
	"gigledger/internal/mq"
	"gigledger/internal/query"
	"gigledger/internal/registry"
	"gigledger/internal/repository"
	"gigledger/internal/service"
	"gigledger/internal/util"
	"gigledger/internal/vault"
)

func main() {
	cfg := config.Load()

	logger := util.NewLogger()
	defer logger.Sync()

	// Init DB (durable mirror)
	dbConn, err := db.NewConnection(cfg.DB, logger)
	if err != nil {
		logger.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// Init RabbitMQ publisher
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		logger.Fatal("failed to init publisher", zap.Error(err))
	}
	defer publisher.Close()

	// Custody identity and asset registry. The memory token stands in for
	// the external token contract.
	custody := model.Address(cfg.Ledger.CustodyAddress)
	if custody.IsZero() {
		custody = "ledger:custody"
	}
	token := asset.NewMemoryToken()
	account := asset.NewTokenAccount(token, custody)

	// Yield vault: external over HTTP, in-process otherwise.
	var vaultSvc vault.Service
	if cfg.Vault.URL != "" {
		vaultSvc = vault.NewClient(cfg.Vault.URL)
	} else {
		vaultSvc = vault.NewMemory()
	}

	// Core ledger
	reg := registry.New(custody, logger)
	core := ledger.New(reg, account, vaultSvc, ledger.Config{
		Admin:                 model.Address(cfg.Ledger.AdminAddress),
		DoubleCompletionCount: cfg.Ledger.DoubleCompletionCount,
	}, logger)

	// Repositories
	userRepo := repository.NewUserRepository(dbConn)
	jobRepo := repository.NewJobRepository(dbConn)
	freelancerRepo := repository.NewFreelancerRepository(dbConn)
	bidRepo := repository.NewBidRepository(dbConn)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret)
	ledgerService := service.NewLedgerService(core, publisher, jobRepo, freelancerRepo, bidRepo, logger)
	queries := query.NewService(core, reg)

	if err := ledgerService.Rehydrate(context.Background()); err != nil {
		logger.Fatal("ledger rehydration failed", zap.Error(err))
	}

	// Handlers
	authHandler := api.NewAuthHandler(authService)
	jobHandler := api.NewJobHandler(ledgerService, queries)
	freelancerHandler := api.NewFreelancerHandler(ledgerService, queries)
	adminHandler := api.NewAdminHandler(ledgerService, token)

	// Router
	router := httpserver.NewRouter(
		authHandler,
		jobHandler,
		freelancerHandler,
		adminHandler,
		cfg.JWT.Secret,
		model.Address(cfg.Ledger.AdminAddress),
	)

	if err := router.Run(cfg.Server.Port); err != nil {
		logger.Fatal("server start failed", zap.Error(err))
	}
}
