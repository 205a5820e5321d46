package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	controlapp "github.com/nedlog/warehouse-control/internal/application/control"
	reportapp "github.com/nedlog/warehouse-control/internal/application/report"
	domaincontrol "github.com/nedlog/warehouse-control/internal/domain/control"
	"github.com/nedlog/warehouse-control/internal/infrastructure/config"
	"github.com/nedlog/warehouse-control/internal/infrastructure/locking"
	"github.com/nedlog/warehouse-control/internal/infrastructure/logger"
	"github.com/nedlog/warehouse-control/internal/infrastructure/persistence"
	"github.com/nedlog/warehouse-control/internal/interfaces/http/handler"
	"github.com/nedlog/warehouse-control/internal/interfaces/http/middleware"
	"github.com/nedlog/warehouse-control/internal/interfaces/http/router"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting warehouse control",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	locker, cleanup, err := newLocker(cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize location locker", zap.Error(err))
	}
	defer cleanup()

	// Repositories
	locationRepo := persistence.NewGormLocationRepository(db.DB)
	logRepo := persistence.NewGormControlLogRepository(db.DB)
	stockReader := persistence.NewGormStockReader(db.DB)
	docRepo := persistence.NewGormSourceDocumentRepository(db.DB)

	// Application services
	oracle := controlapp.NewQuantityOracle(stockReader, log)
	resolver := controlapp.NewCustomerResolver(docRepo, log)
	controlService := controlapp.NewControlService(locationRepo, logRepo, oracle, resolver, locker, log)
	controlService.SetConflictRetries(cfg.Control.ConflictRetries)
	reportService := reportapp.NewService(locationRepo, logRepo, stockReader, oracle, log)

	// HTTP engine
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	engine.GET("/healthz", healthHandler(db))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewControlHandler(controlService)).
		Register(handler.NewReportHandler(reportService))
	r.Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// newLocker selects the per-location lock backend from configuration
func newLocker(cfg *config.Config, log *zap.Logger) (domaincontrol.LocationLocker, func(), error) {
	if cfg.Control.LockBackend == "redis" {
		locker, err := locking.NewRedisLocker(locking.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Control.LockTTL)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Using Redis location locks", zap.String("addr", cfg.Redis.Addr()))
		return locker, func() {
			if err := locker.Close(); err != nil {
				log.Error("Error closing Redis locker", zap.Error(err))
			}
		}, nil
	}

	log.Info("Using in-process location locks")
	return locking.NewKeyedMutex(), func() {}, nil
}

// healthHandler reports liveness and database reachability
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}
