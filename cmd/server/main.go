package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	grpcapi "fleetrent-backend/internal/api/grpc"
	httpapi "fleetrent-backend/internal/api/http"
	"fleetrent-backend/internal/config"
	"fleetrent-backend/internal/logger"
	"fleetrent-backend/internal/repository/postgres"
	"fleetrent-backend/internal/security"
	"fleetrent-backend/internal/service"
	"fleetrent-backend/internal/storage"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.InitializeWithOptions(logger.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	logger.Info("Starting FleetRent Booking Engine...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "http_address", cfg.GetHTTPAddress(), "grpc_address", cfg.GetGRPCAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	db, err := postgres.Open(cfg.GetDatabaseConnectionString(), cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	err = db.PingContext(pingCtx)
	cancelPing()
	if err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	if cfg.Database.MigrateOnStart {
		if err := postgres.Migrate(db); err != nil {
			logger.Error("Failed to migrate database", "error", err)
			log.Fatalf("Failed to migrate database: %v", err)
		}
	}

	// Initialize Repositories
	store := postgres.NewStore(db)

	// Initialize Storage
	storageCfg := storage.Config{
		Type:         cfg.Storage.Type,
		Dir:          cfg.Storage.UploadDir,
		BaseURL:      cfg.Storage.BaseURL,
		MaxFileSize:  cfg.Storage.MaxFileSize * 1024 * 1024,
		AllowedTypes: cfg.Storage.AllowedTypes,
		URLExpiry:    time.Duration(cfg.Storage.UploadURLExpiryMin) * time.Minute,
	}
	files, err := storage.New(storageCfg)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	logger.Info("Using local photo storage", "upload_dir", cfg.Storage.UploadDir)

	// Initialize Services
	rateSvc := service.NewRateService(store.RateRepository)
	discountSvc := service.NewDiscountService(store.DiscountRepository)
	pricingSvc := service.NewPricingService(
		store.CompanyRepository,
		store.LocationRepository,
		store.VehicleRepository,
		store.ExtraRepository,
		rateSvc,
		discountSvc,
		cfg.TaxRate(),
	)
	availabilitySvc := service.NewAvailabilityService(store.VehicleRepository, store.BookingRepository, rateSvc)
	bookingSvc := service.NewBookingService(
		store.BookingRepository,
		store.CompanyRepository,
		store.VehicleRepository,
		pricingSvc,
		files,
		cfg.Pricing.DefaultBookingPrefix,
	)
	paymentSvc := service.NewPaymentService(store.BookingRepository, bookingSvc, service.NewManualGateway())
	photoSvc := service.NewPhotoService(store.BookingRepository, files, storageCfg)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)

	// HTTP API
	router := httpapi.NewRouter(httpapi.Services{
		Availability: availabilitySvc,
		Pricing:      pricingSvc,
		Discounts:    discountSvc,
		Rates:        rateSvc,
		Bookings:     bookingSvc,
		Payments:     paymentSvc,
		Photos:       photoSvc,
		Health:       store,
	}, tokenManager, files, storageCfg)
	httpServer := &http.Server{
		Addr:              cfg.GetHTTPAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	// gRPC health
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	monitor := grpcapi.NewHealthMonitor(store, 10*time.Second)
	go monitor.Run(ctx)
	grpcServer := grpcapi.NewServer(monitor)

	lis, err := net.Listen("tcp", cfg.GetGRPCAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetGRPCAddress())
		log.Fatalf("Failed to listen: %v", err)
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("gRPC server listening", "address", cfg.GetGRPCAddress())
		if err := grpcServer.Serve(lis); err != nil {
			errCh <- err
		}
	}()
	go func() {
		logger.Info("HTTP server listening", "address", cfg.GetHTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-errCh:
		logger.Error("Server error", "error", err)
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", "error", err)
	}
	grpcServer.GracefulStop()
	logger.Info("Server stopped. Goodbye!")
}
