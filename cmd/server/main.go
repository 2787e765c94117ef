package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bankledger/internal/config"
	"bankledger/internal/database"
	"bankledger/internal/handlers"
	"bankledger/internal/ledger"
	custommw "bankledger/internal/middleware"
	"bankledger/internal/repositories"
	"bankledger/internal/services"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const idempotencyRetention = 7 * 24 * time.Hour

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := config.Load()
	setupLogger(cfg)

	gormDB, err := database.Initialize(cfg)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	db := &database.DB{DB: gormDB}

	if cfg.IsDevelopment() && cfg.Server.SeedDevData {
		if err := database.SeedDevData(gormDB, 5); err != nil {
			slog.Warn("dev seed failed", "error", err)
		}
	}

	// Repositories
	accountRepo := repositories.NewAccountRepository(gormDB)
	transactionRepo := repositories.NewTransactionRepository(gormDB)
	transferRepo := repositories.NewTransferRepository(gormDB)
	idempotencyRepo := repositories.NewIdempotencyRepository(gormDB)
	fdRepo := repositories.NewFixedDepositRepository(gormDB)
	cardRepo := repositories.NewCreditCardRepository(gormDB)
	userRepo := repositories.NewUserRepository(gormDB)

	// Ledger engine
	metrics := services.NewPrometheusMetrics()
	guard := ledger.NewGuard(cfg.Ledger.LockTimeout)
	engine := ledger.NewEngine(accountRepo, transactionRepo, transferRepo, idempotencyRepo, guard, ledger.Config{
		MaxRetries: cfg.Ledger.MaxCASRetries,
		Logger:     slog.Default(),
		Metrics:    metrics,
	})

	// Services
	accountService := services.NewAccountService(accountRepo, userRepo, engine, slog.Default())
	statementService := services.NewStatementService(accountRepo, transactionRepo, transferRepo)
	fdService := services.NewFixedDepositService(fdRepo, accountRepo, engine, slog.Default())
	cardService := services.NewCreditCardService(cardRepo, accountRepo, userRepo, slog.Default())

	// Handlers
	accountHandler := handlers.NewAccountHandler(accountService)
	operationHandler := handlers.NewOperationHandler(engine)
	transactionHandler := handlers.NewTransactionHandler(statementService, accountService, engine)
	fdHandler := handlers.NewFixedDepositHandler(fdService)
	cardHandler := handlers.NewCreditCardHandler(cardService)
	healthHandler := handlers.NewHealthCheckHandler(gormDB)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.HTTPErrorHandler = custommw.CustomHTTPErrorHandler

	e.Use(custommw.RequestID())
	e.Use(custommw.PanicRecovery())
	e.Use(custommw.SecurityHeaders())
	e.Use(custommw.RateLimiterWithConfig(cfg.Server.RateLimitPerSec, cfg.Server.RateLimitPerSec*2))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.Server.CORSAllowOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, handlers.IdempotencyKeyHeader, custommw.TraceIDHeader},
	}))

	registerRoutes(e, accountHandler, operationHandler, transactionHandler, fdHandler, cardHandler, healthHandler)

	// Expired idempotency receipts are swept in the background
	cleanupCtx, cancelCleanup := context.WithCancel(context.Background())
	go cleanupLoop(cleanupCtx, db)

	go func() {
		address := cfg.Server.Host + ":" + cfg.Server.Port
		slog.Info("starting server", "address", address, "environment", cfg.Server.Environment)
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			slog.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	cancelCleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
	if err := db.Close(); err != nil {
		slog.Error("failed to close database", "error", err)
	}
}

func registerRoutes(
	e *echo.Echo,
	accountHandler *handlers.AccountHandler,
	operationHandler *handlers.OperationHandler,
	transactionHandler *handlers.TransactionHandler,
	fdHandler *handlers.FixedDepositHandler,
	cardHandler *handlers.CreditCardHandler,
	healthHandler *handlers.HealthCheckHandler,
) {
	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")

	// Accounts
	api.POST("/accounts", accountHandler.OpenAccount)
	api.GET("/accounts", accountHandler.ListAccounts)
	api.GET("/accounts/:number", accountHandler.GetAccount)
	api.DELETE("/accounts/:number", accountHandler.CloseAccount)
	api.GET("/users/:userId/accounts", accountHandler.ListUserAccounts)

	// Ledger operations
	api.POST("/operations/deposit", operationHandler.Deposit)
	api.POST("/operations/withdraw", operationHandler.Withdraw)
	api.POST("/operations/transfer", operationHandler.Transfer)

	// History, statements and reconciliation
	api.GET("/accounts/:number/transactions", transactionHandler.ListTransactions)
	api.GET("/accounts/:number/statement", transactionHandler.GetStatement)
	api.GET("/accounts/:number/statement.csv", transactionHandler.DownloadStatement)
	api.GET("/accounts/:number/transfers", transactionHandler.ListTransfers)
	api.GET("/accounts/:number/reconcile", transactionHandler.Reconcile)

	// Fixed deposits
	api.POST("/fixed-deposits", fdHandler.OpenFixedDeposit)
	api.GET("/fixed-deposits/:fdNumber", fdHandler.GetFixedDeposit)
	api.POST("/fixed-deposits/:fdNumber/payout", fdHandler.PayOutFixedDeposit)
	api.POST("/fixed-deposits/:fdNumber/renew", fdHandler.RenewFixedDeposit)
	api.GET("/users/:userId/fixed-deposits", fdHandler.ListUserFixedDeposits)

	// Credit cards
	api.POST("/credit-cards", cardHandler.IssueCard)
	api.GET("/users/:userId/credit-cards", cardHandler.ListUserCards)
}

func setupLogger(cfg *config.Config) {
	var handler slog.Handler
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	slog.SetDefault(slog.New(handler))
}

func cleanupLoop(ctx context.Context, db *database.DB) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := db.CleanupIdempotencyRecords(idempotencyRetention); err != nil {
				slog.Warn("idempotency cleanup failed", "error", err)
			}
		}
	}
}
