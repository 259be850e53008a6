package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"net/http"

	api "nft-rental-backend/internal/api/http"
	"nft-rental-backend/internal/config"
	"nft-rental-backend/internal/custody"
	"nft-rental-backend/internal/logger"
	"nft-rental-backend/internal/repository/postgres"
	"nft-rental-backend/internal/security"
	"nft-rental-backend/internal/service"

	_ "github.com/lib/pq"
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
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting NFT Rental Backend...", "log_level", cfg.Log.Level, "log_format", cfg.Log.Format)
	logger.Info("Server configuration", "address", cfg.GetServerAddress())
	logger.Info("Database configuration", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database, "user", cfg.Database.User)

	// Initialize Database
	logger.Debug("Connecting to database...", "connection_string", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.Database))
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(); err != nil {
		logger.Error("Failed to ping database", "error", err)
		log.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Initialize custody keyring and repositories
	keyring := custody.NewKeyring(cfg.Escrow.Secret)
	store := postgres.NewStore(db, keyring)

	// Initialize Security
	tokenManager := security.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	// Initialize Services
	clock := service.RealClock()
	authSvc := service.NewAuthService(store, keyring, tokenManager)
	walletSvc := service.NewWalletService(store, keyring)
	listingSvc := service.NewListingService(store, keyring, clock)
	rentalSvc := service.NewRentalService(store, keyring, clock)
	noteSvc := service.NewNotificationService(store)

	// Initialize HTTP handlers
	authHandler := api.NewAuthHandler(authSvc)
	listingHandler := api.NewListingHandler(listingSvc)
	rentalHandler := api.NewRentalHandler(rentalSvc)
	walletHandler := api.NewWalletHandler(walletSvc, noteSvc)

	router := api.NewRouter(tokenManager, authHandler, listingHandler, rentalHandler, walletHandler)

	logger.Info("HTTP server listening", "address", cfg.GetServerAddress())
	if err := http.ListenAndServe(cfg.GetServerAddress(), router); err != nil {
		logger.Error("Failed to serve HTTP", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
}
