package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codespire/finance-backend/internal"
	"github.com/codespire/finance-backend/internal/advisor"
	"github.com/codespire/finance-backend/internal/budget"
	budgetSqlite "github.com/codespire/finance-backend/internal/budget/sqlite"
	"github.com/codespire/finance-backend/internal/chat"
	"github.com/codespire/finance-backend/internal/core/events"
	"github.com/codespire/finance-backend/internal/transaction"
	transactionSqlite "github.com/codespire/finance-backend/internal/transaction/sqlite"
	"github.com/codespire/finance-backend/internal/transport/rest"
	"github.com/codespire/finance-backend/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config             *internal.Config
	DB                 *gorm.DB
	Router             *chi.Mux
	Logger             *slog.Logger
	EventBus           *events.EventBus
	BudgetHandler      *budget.Handler
	TransactionHandler *transaction.Handler
	ChatHandler        *chat.Handler
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		if sqlDB, err := deps.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				deps.Logger.Error("Database close error", "error", err)
			}
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	sqlDB, err := deps.DB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to access underlying database: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(
		deps.Router,
		sqlDB,
		deps.BudgetHandler,
		deps.TransactionHandler,
		deps.ChatHandler,
		deps.Config.Server.AllowedOrigins,
		deps.Logger,
	)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"), config.Logging.Level)
	lg := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	eventBus := events.NewEventBus(lg)
	registerEventSubscribers(eventBus, lg)

	advisorClient := advisor.NewClient(advisor.Config{
		APIURL:  config.Gemini.APIURL,
		APIKey:  config.Gemini.APIKey,
		Model:   config.Gemini.Model,
		Timeout: config.Gemini.Timeout,
	}, lg)

	budgetRepo := budgetSqlite.NewBudgetRepository(db)
	budgetService := budget.NewService(budgetRepo, advisorClient, eventBus, lg)
	budgetHandler := budget.NewHandler(budgetService)

	transactionRepo := transactionSqlite.NewTransactionRepository(db)
	transactionService := transaction.NewService(transactionRepo, advisorClient, eventBus, lg)
	transactionHandler := transaction.NewHandler(transactionService)

	chatService := chat.NewService(advisorClient, lg)
	chatHandler := chat.NewHandler(chatService)

	return &Dependencies{
		Config:             config,
		Logger:             lg,
		DB:                 db,
		Router:             chi.NewRouter(),
		EventBus:           eventBus,
		BudgetHandler:      budgetHandler,
		TransactionHandler: transactionHandler,
		ChatHandler:        chatHandler,
	}, nil
}

// registerEventSubscribers attaches the audit-log subscribers. More
// consumers (notifications, spend summaries) hang off the same bus later.
func registerEventSubscribers(bus *events.EventBus, lg *slog.Logger) {
	bus.Subscribe(events.EventTypeBudgetPlanGenerated, func(ctx context.Context, event events.Event) error {
		lg.Info("budget plan generated",
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	})

	bus.Subscribe(events.EventTypeTransactionsIngested, func(ctx context.Context, event events.Event) error {
		lg.Info("transactions ingested",
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	})
}

// initDB opens the sqlite database file and configures the pool. SQLite
// only supports one writer, so the pool stays small.
func initDB(cfg internal.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access underlying database: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
