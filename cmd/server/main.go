package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/viper"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/zarwallet/backend/docs"
	"github.com/zarwallet/backend/internal/chain"
	"github.com/zarwallet/backend/internal/config"
	"github.com/zarwallet/backend/internal/database"
	"github.com/zarwallet/backend/internal/handlers"
	"github.com/zarwallet/backend/internal/logger"
	mW "github.com/zarwallet/backend/internal/middleware"
	"github.com/zarwallet/backend/internal/services"
)

// @title ZAR Wallet Ledger API
// @version 1.0
// @description Custodial wallet ledger: idempotent journal writes, handle directory and balance reconciliation
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	config.Init()

	port := viper.GetString("server.port")
	docs.SwaggerInfo.Host = "localhost:" + port

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	ledgerStore, err := database.OpenStore(startCtx, viper.GetBool("store.auto_migrate"))
	cancelStart()
	if err != nil {
		logger.Fatalf("[SERVER] failed to open ledger store: %v", err)
	}
	defer ledgerStore.Close()

	redisClient := database.InitRedis()
	if redisClient != nil {
		defer redisClient.Close()
	}

	ledgerCfg := config.LoadLedgerConfig()
	tron := chain.NewTronClient(config.LoadTronConfig())

	ledgerService := services.NewLedgerService(ledgerStore, ledgerCfg)
	directory := services.NewWalletDirectory(ledgerStore, redisClient, ledgerCfg)
	reconciliation := services.NewReconciliationService(ledgerStore, tron, ledgerService, redisClient, ledgerCfg)
	transfers := services.NewTransferService(ledgerService, directory, ledgerCfg)

	api := &handlers.API{
		Ledger:         handlers.NewLedgerHandler(ledgerService, ledgerCfg),
		Wallet:         handlers.NewWalletHandler(directory),
		Reconciliation: handlers.NewReconciliationHandler(reconciliation),
		Transfer:       handlers.NewTransferHandler(transfers),
	}

	// Setup router
	r := chi.NewRouter()

	r.Use(mW.SecurityHeaders)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Deposit-Address"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/v1", api.Routes)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 70 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("[SERVER] listening on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("[SERVER] failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("[SERVER] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("[SERVER] forced to shutdown: %v", err)
	}

	logger.Info("[SERVER] stopped")
}
