package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/vialocal/contact-trust-backend/api"
	"github.com/vialocal/contact-trust-backend/internal/platform/config"
	"github.com/vialocal/contact-trust-backend/internal/platform/database"
	"github.com/vialocal/contact-trust-backend/internal/platform/health"
	"github.com/vialocal/contact-trust-backend/internal/platform/logger"
	"github.com/vialocal/contact-trust-backend/internal/platform/shutdown"
	"github.com/vialocal/contact-trust-backend/internal/platform/startup"
	"github.com/vialocal/contact-trust-backend/internal/trust"
	"github.com/vialocal/contact-trust-backend/pkg/lifecycle"
)

func main() {
	// .env is optional; real deployments use environment variables.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}
	if err := logger.Init(cfg.Server.Mode); err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	if err := database.InitDB(cfg.Database.SQL); err != nil {
		zap.S().Fatalw("database initialization failed", "error", err)
	}
	if err := database.InitRedis(cfg.Database.Redis); err != nil {
		zap.S().Fatalw("redis initialization failed", "error", err)
	}

	// Capture the run_id before anything touches derived state, so that a
	// restart between now and the first periodic check is still caught.
	if err := health.InitializeRunID(); err != nil {
		zap.S().Fatalw("health initialization failed", "error", err)
	}

	if err := startup.InitializeApplication(); err != nil {
		zap.S().Fatalw("application initialization failed", "error", err)
	}

	// One blocking check before serving traffic.
	health.PerformCheck()

	gracefulMgr := lifecycle.NewManager()
	forcefulMgr := lifecycle.NewManager()

	healthHandle, err := gracefulMgr.NewServiceHandle("redis-health-checker")
	if err != nil {
		zap.S().Fatalw("failed to register health checker", "error", err)
	}
	go health.StartRedisHealthCheck(healthHandle)

	reconcilerHandle, err := gracefulMgr.NewServiceHandle("trust-reconciler")
	if err != nil {
		zap.S().Fatalw("failed to register trust reconciler", "error", err)
	}
	go trust.StartReconciler(reconcilerHandle)

	if cfg.Server.Mode != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.Cors.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api.SetupRoutes(r)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	go func() {
		zap.S().Infow("server listening", "address", cfg.Server.Address)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.S().Fatalw("server failed", "error", err)
		}
	}()

	coordinator := shutdown.NewCoordinator(gracefulMgr, forcefulMgr)
	coordinator.ListenForSignalsAndShutdown(server)
}
