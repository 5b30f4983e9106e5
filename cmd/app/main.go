package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"papertrade/configs"
	"papertrade/internal/database"
	httpdelivery "papertrade/internal/delivery/http"
	"papertrade/internal/domain"
	"papertrade/internal/infra"
	applogger "papertrade/internal/logger"
	custommiddleware "papertrade/internal/middleware"
	"papertrade/internal/repository"
	"papertrade/internal/repository/memory"
	"papertrade/internal/service"
	"papertrade/internal/usecase"
	"papertrade/internal/utils"
)

// healthCheck pings one backing service
type healthCheck func(ctx context.Context) error

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	// Load configuration
	cfg, err := configs.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := applogger.New(applogger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if envErr != nil {
		logger.Warn(".env file not found, using environment variables")
	}

	if err := utils.SetLocation(cfg.Timezone); err != nil {
		logger.Fatal("invalid timezone", zap.Error(err))
	}

	ctx := context.Background()
	checks := make(map[string]healthCheck)

	// Initialize store
	pool, err := openDatabase(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	var store domain.Store
	if pool != nil {
		defer pool.Close()
		if err := database.RunMigrations(ctx, pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
		store = repository.NewPostgresStore(pool)
		checks["database"] = pool.Ping
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory store; data is lost on restart")
		store = memory.NewStore()
	}

	// Initialize session backend
	var sessions domain.SessionStore
	if cfg.Redis.URL != "" {
		client, err := infra.NewRedis(ctx, cfg.Redis.URL, logger)
		if err != nil {
			logger.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer client.Close()
		sessions = infra.NewRedisSessionStore(client, cfg.Redis.KeyPrefix, cfg.Session.TTL)
		checks["redis"] = redisPing(client)
	} else {
		logger.Warn("REDIS_URL not set, sessions are kept in memory")
		sessions = infra.NewMemorySessionStore(cfg.Session.TTL)
	}

	// Initialize services
	quotes := service.NewMarketPriceService(cfg.Quote, logger)
	authService := service.NewAuthService(store, sessions, cfg.Trading.StartingCash, logger)
	portfolioService := service.NewPortfolioService(store, quotes, cfg.Quote.Timeout, logger)
	tradingService := usecase.NewTradingService(store, quotes, logger)

	// Initialize web application
	renderer, err := httpdelivery.NewRenderer()
	if err != nil {
		logger.Fatal("failed to parse templates", zap.Error(err))
	}
	cookies := custommiddleware.NewSessionCookie(cfg.Session)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	httpdelivery.SetupRoutes(e, &httpdelivery.RouterConfig{
		Renderer:    renderer,
		AuthHandler: httpdelivery.NewAuthHandler(authService, cookies, logger),
		WebHandler:  httpdelivery.NewWebHandler(portfolioService, tradingService, quotes, logger),
		Cookies:     cookies,
		AuthService: authService,
		Logger:      logger,
	})

	// Initialize HTTP router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.WriteTimeout))

	// Routes
	r.Get("/health", handleHealth(checks))
	r.Handle("/*", e)

	// Start HTTP server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Run server in goroutine
	go func() {
		logger.Info("server starting",
			zap.String("addr", addr),
			zap.String("env", cfg.Server.Env),
			zap.String("starting_cash", cfg.Trading.StartingCash.StringFixed(2)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("server exited gracefully")
}

// openDatabase connects to Postgres. Development runs without DATABASE_URL get no pool.
func openDatabase(ctx context.Context, cfg *configs.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	if cfg.Database.URL == "" && cfg.IsDevelopment() {
		return nil, nil
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return infra.NewDatabase(connectCtx, cfg.Database, logger)
}

func redisPing(client *redis.Client) healthCheck {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

// HTTP Handlers

func handleHealth(checks map[string]healthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := map[string]string{
			"status":    "healthy",
			"service":   "papertrade",
			"timestamp": utils.Now().Format(time.RFC3339),
		}
		for name, check := range checks {
			body[name] = "healthy"
			if err := check(ctx); err != nil {
				body[name] = "unhealthy"
				body["status"] = "unhealthy"
				status = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}
