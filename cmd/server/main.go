package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"streamgate/internal/core/domain"
	"streamgate/internal/core/services"
	httphandlers "streamgate/internal/handlers/http"
	"streamgate/internal/infrastructure/middleware"
	"streamgate/internal/infrastructure/monitoring"
	"streamgate/internal/infrastructure/player"
	repositories "streamgate/internal/infrastructure/repositories"
	"streamgate/pkg/config"
	"streamgate/pkg/logger"
	"streamgate/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	startTime := time.Now()

	// Try multiple config paths
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"/etc/streamgate/config.yaml",
		"config.yaml",
	}

	var cfg *config.Config
	var err error

	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}

	if err != nil {
		// Fallback to defaults if config cannot be loaded
		cfg = config.DefaultConfig()
	}

	// Initialize logger
	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()

	log := zapLogger.Sugar()

	// Initialize tracing
	tracerProvider, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: "streamgate",
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: "production",
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}

	// Initialize repository factory
	repoFactory, err := repositories.NewRepositoryFactory(cfg, log)
	if err != nil {
		log.Fatalw("failed to create repository factory", "error", err)
	}
	defer repoFactory.Close()

	userRepo := repoFactory.CreateUserRepository()
	videoRepo := repoFactory.CreateVideoRepository()

	// Initialize services
	policy := domain.NewBootstrapPolicy(cfg.Auth.AdminTelegramID)
	userService := services.NewUserService(userRepo, policy, cfg.Auth.BotToken, log)
	sessionService := services.NewSessionService(cfg.Auth.SessionSecret, cfg.Auth.SessionTTL, cfg.Auth.SecureCookie)
	videoService := services.NewVideoService(videoRepo, cfg.Catalog.ListCacheTTL, log)
	playerService := player.NewVdoCipherClient(
		cfg.Player.VdoCipherBaseURL,
		cfg.Player.VdoCipherAPISecret,
		cfg.Player.OTPTTL,
		log,
	)

	// Initialize monitoring
	prometheusCollector := monitoring.NewPrometheusCollector()

	// Initialize HTTP handlers
	authHandler := httphandlers.NewAuthHandler(
		userService,
		sessionService,
		prometheusCollector,
		cfg.Auth.LoginPath,
		cfg.Auth.HomePath,
		log,
	)
	userHandler := httphandlers.NewUserHandler(userService)
	videoHandler := httphandlers.NewVideoHandler(videoService, playerService, prometheusCollector)

	// Configure Gin
	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.RequestLoggerMiddleware(logger.NewContextLogger(zapLogger)))
	router.Use(middleware.NewHTTPRateLimitMiddleware(cfg))
	if cfg.Tracing.Enabled {
		router.Use(middleware.TracingMiddleware())
	}
	router.Use(middleware.ErrorHandlerMiddleware(log))

	// Access gate: the login page, the authenticated pages and the API all
	// pass through it; the hand-off and introspection endpoints are its
	// public carve-outs.
	gate := middleware.NewAccessGate(sessionService, userRepo, cfg.Auth.LoginPath, cfg.Auth.HomePath, prometheusCollector, log)
	router.Use(gate.Middleware())

	authHandler.SetupRoutes(router)
	userHandler.SetupRoutes(router)
	videoHandler.SetupRoutes(router)

	// Health check endpoint
	healthChecker := monitoring.NewHealthChecker()
	healthChecker.AddCheck("store", func(ctx context.Context) (bool, error) {
		if err := repoFactory.HealthCheck(ctx); err != nil {
			return false, err
		}
		return true, nil
	}, 2*time.Second)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"uptime":    time.Since(startTime).String(),
		})
	})

	router.GET("/ready", func(c *gin.Context) {
		status := healthChecker.CheckAll(c.Request.Context())
		if status.Status != "healthy" {
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		c.JSON(http.StatusOK, status)
	})

	// Prometheus metrics endpoint
	if cfg.Monitoring.PrometheusEnabled {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
		log.Info("Prometheus metrics enabled")
	}

	// Inventory gauges refreshed in the background
	gaugeCtx, stopGauges := context.WithCancel(context.Background())
	defer stopGauges()
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-gaugeCtx.Done():
				return
			case <-ticker.C:
				refreshCtx, cancel := context.WithTimeout(gaugeCtx, 5*time.Second)
				if users, err := userRepo.List(refreshCtx); err == nil {
					approved := 0
					for _, u := range users {
						if u.IsAllowed {
							approved++
						}
					}
					prometheusCollector.SetUserCounts(len(users), approved)
				}
				if videos, err := videoRepo.List(refreshCtx); err == nil {
					prometheusCollector.SetVideoCount(len(videos))
				}
				cancel()
			}
		}
	}()

	// Create HTTP server with timeouts
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		log.Infof("Starting streamgate server on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal or server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Fatalw("server failed", "error", err)
	case sig := <-quit:
		log.Infow("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server shutdown failed", "error", err)
	}

	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Errorw("tracer shutdown failed", "error", err)
	}

	log.Info("server stopped")
}
