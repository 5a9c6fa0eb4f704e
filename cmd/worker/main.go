package main

import (
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"buyback-backend/internal/carrier"
	"buyback-backend/internal/config"
	"buyback-backend/internal/jobs"
	"buyback-backend/internal/logger"
	"buyback-backend/internal/notify"
	"buyback-backend/internal/ops"
	"buyback-backend/internal/pricing"
	"buyback-backend/internal/repository/postgres"
	"buyback-backend/internal/scheduler"
	"buyback-backend/internal/service"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'expire-quotes', 'expire-decision-windows', 'refresh-tracking', 'dispatch-outbox', 'all')")
	flag.Parse()

	// Optional .env file for local development
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting Buyback Worker...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)

	// Initialize Database
	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Carrier Client
	var carrierClient carrier.Client
	switch cfg.Carrier.Type {
	case "", "mock":
		logger.Info("Using mock carrier client", "carrier", cfg.Carrier.Name)
		carrierClient = carrier.NewMockClient(cfg.Carrier.Name, cfg.Carrier.LabelCostCents)
	default:
		logger.Error("Unsupported carrier type", "type", cfg.Carrier.Type)
		log.Fatalf("Carrier type '%s' not yet implemented", cfg.Carrier.Type)
	}

	// Initialize Notification Sender
	var sender notify.Sender
	if cfg.SendGrid.APIKey != "" {
		sender = notify.NewSendGridSender(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	} else {
		logger.Warn("No SendGrid API key configured, using mock sender")
		sender = notify.NewMockSender()
	}

	// Initialize Services
	calculator := pricing.NewCalculator(store.CatalogRepository)
	orderSvc := service.NewOrderService(
		store.OrderRepository,
		store.ShipmentRepository,
		calculator,
		carrierClient,
		cfg.Buyback.DecisionWindowDays,
		cfg.ExternalTimeout(),
	)
	noteSvc := service.NewNotificationService(store.OutboxRepository, sender, cfg.ExternalTimeout())

	// Initialize Jobs
	jobRunner := jobs.NewJobRunner(
		store.QuoteRepository,
		store.OrderRepository,
		store.ShipmentRepository,
		orderSvc,
		noteSvc,
		carrierClient,
		cfg,
	)

	// Handle run-once mode
	if *runOnce != "" {
		switch *runOnce {
		case "expire-quotes":
			jobRunner.ExpireQuotes()
		case "expire-decision-windows":
			jobRunner.ExpireDecisionWindows()
		case "refresh-tracking":
			jobRunner.RefreshTracking()
		case "dispatch-outbox":
			jobRunner.DispatchOutbox()
		case "all":
			jobRunner.RunAll()
		default:
			log.Fatalf("Unknown job: %s", *runOnce)
		}
		return
	}

	// Start the scheduler
	sched := scheduler.NewScheduler(jobRunner)
	sched.Start()
	defer sched.Stop()

	// Start the ops HTTP surface
	opsHandler := ops.NewHandler(db, store.OrderRepository, store.OutboxRepository)
	server := &http.Server{
		Addr:    cfg.GetServerAddress(),
		Handler: opsHandler.Router(),
	}
	go func() {
		logger.Info("Ops server listening", "address", cfg.GetServerAddress())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Ops server failed", "error", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	server.Close()
}
