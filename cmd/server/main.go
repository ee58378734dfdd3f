package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"haccp-flow/internal/access"
	"haccp-flow/internal/api/handler"
	"haccp-flow/internal/approval"
	"haccp-flow/internal/config"
	"haccp-flow/internal/core/ports"
	"haccp-flow/internal/core/postgres/repository"
	"haccp-flow/internal/infrastructure/redis"
	"haccp-flow/internal/logging"
	"haccp-flow/internal/metrics"
	"haccp-flow/internal/notification"
	"haccp-flow/internal/service"
	"haccp-flow/internal/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1. Set up database connection
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := repository.Migrate(db); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	// 2. Redis: notification queue and audit-mode flag
	rdb, err := redis.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.PoolSize)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()
	queue := redis.NewRedisQueue(rdb, cfg.Notification.Queue, cfg.Notification.PollTimeout)
	auditMode := redis.NewAuditModeFlag(rdb, cfg.AuditMode.Key)

	// 3. Initialize repositories
	docRepo := repository.NewDocumentRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)
	metrics.RegisterQueueDepth(reg, queue)

	// 4. Engine and services
	engine := approval.NewEngine(repository.NewDecisionStore(db), ports.SystemClock{}, logger)
	gate := access.NewGate(userRepo)
	docSvc := service.NewDocumentService(service.Deps{
		Documents:  docRepo,
		Engine:     engine,
		Audit:      auditRepo,
		Dispatcher: notification.NewQueueDispatcher(queue, m, logger),
		Gate:       gate,
		AuditMode:  auditMode,
		Metrics:    m,
		Logger:     logger,
	})
	auditSvc := service.NewAuditService(auditMode, auditRepo, gate, logger)

	// 5. Notification delivery runs beside the API
	registry := worker.InitRegistry(docRepo, userRepo, notification.NewLogSender(logger))
	w := worker.NewWorker(queue, registry, m, logger)
	w.StartPool(ctx, cfg.Notification.Workers)

	// 6. Set up routes
	router := handler.NewRouter(handler.NewDocumentHandler(docSvc, auditSvc), logger, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: cfg.HTTP.Addr, Handler: router}

	go func() {
		logger.Info("server starting", zap.String("addr", cfg.HTTP.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	w.Wait()
}
