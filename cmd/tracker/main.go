package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/amqp"
	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/auth"
	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/config"
	apphttp "github.com/gsaldivar12/ExpenseTrackingSystem/internal/http"
	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/log"
	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/services"
	"github.com/gsaldivar12/ExpenseTrackingSystem/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// AMQP is optional. Without it expense events simply aren't published.
	var publisher services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		} else {
			defer amqpClient.Close()
			publisher = amqpClient
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled, expense events will not be published")
	}

	authManager := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	expenseService := services.NewExpenseService(repo, repo, publisher)
	dashboardService := services.NewDashboardService(repo, repo)

	server := apphttp.NewServer(cfg, apphttp.Deps{
		Users:      repo,
		Categories: repo,
		Expenses:   expenseService,
		Lister:     repo,
		Dashboard:  dashboardService,
		Auth:       authManager,
		Health:     repo,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting tracker server", "port", cfg.Port, "db", cfg.SQLiteDBPath)
	if err := server.Start(); err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
