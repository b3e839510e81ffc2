package main

import (
	"context"
	"encoding/json"
	stdlog "log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/username/scrapdash/backend/src/config"
	"github.com/username/scrapdash/backend/src/database"
	"github.com/username/scrapdash/backend/src/handlers"
	"github.com/username/scrapdash/backend/src/listener"
	"github.com/username/scrapdash/backend/src/logger"
	"github.com/username/scrapdash/backend/src/reports"
	"github.com/username/scrapdash/backend/src/sources"
	"github.com/username/scrapdash/backend/src/store"
	"github.com/username/scrapdash/backend/src/unify"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == config.Cfg.AllowedOrigin {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Requested-With, X-Request-ID")
			w.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			logger.L.Debug("Handling OPTIONS preflight request", "path", r.URL.Path, "origin", origin)
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Scrapdash backend server starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)
	logger.L.Info("Database initialized successfully.")

	logger.L.Info("Initializing report cache...")
	reportCache := cache.New(config.Cfg.ReportCacheExpiry, config.Cfg.ReportCacheCleanup)
	logger.L.Info("Report cache initialized.")

	logger.L.Info("Initializing sources and listener...")
	purchaseSource := sources.NewSQLitePurchaseSource(database.DB, config.Cfg.SourcePollInterval)
	saleSource := sources.NewSQLiteSaleSource(database.DB, config.Cfg.SourcePollInterval)
	supplierDirectory := sources.NewSQLiteSupplierDirectory(database.DB)

	adapter := unify.NewAdapter(supplierDirectory)
	transactionStore := store.New()
	liveListener := listener.New(adapter, transactionStore, purchaseSource, saleSource, config.Cfg.ReconnectBackoff)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	liveListener.Start(ctx)

	logger.L.Info("Initializing services and handlers...")
	reportService := reports.NewService(transactionStore, liveListener, reportCache)

	reportHandler := handlers.NewReportHandler(reportService)
	txHandler := handlers.NewTransactionHandler(reportService)
	exportHandler := handlers.NewExportHandler(reportService)
	healthHandler := handlers.NewHealthHandler(liveListener)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	apiRouter.HandleFunc("GET /api/health", healthHandler.HandleHealth)
	apiRouter.HandleFunc("GET /api/transactions", txHandler.HandleGetTransactions)
	apiRouter.HandleFunc("GET /api/summary", txHandler.HandleGetSummary)
	apiRouter.HandleFunc("POST /api/reports", reportHandler.HandleGenerateReport)
	apiRouter.HandleFunc("GET /api/reports/daily", reportHandler.HandleDailyReport)
	apiRouter.HandleFunc("GET /api/reports/weekly", reportHandler.HandleWeeklyReport)
	apiRouter.HandleFunc("GET /api/reports/monthly", reportHandler.HandleMonthlyReport)
	apiRouter.HandleFunc("GET /api/export", exportHandler.HandleExport)

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "Scrapdash backend is running"})
		} else {
			if !strings.HasPrefix(r.URL.Path, "/api/") {
				logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
				http.NotFound(w, r)
			}
		}
	})

	logger.L.Info("Applying global middleware...")
	finalHandler := enableCORS(requestIDMiddleware(rateLimitMiddleware(rootMux)))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.L.Info("Shutdown signal received, stopping server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.L.Error("Server shutdown error", "error", err)
		}
	}()

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	}

	liveListener.Wait()
	logger.L.Info("Server stopped gracefully.")
}
