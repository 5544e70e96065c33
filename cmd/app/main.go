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
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gomodule/redigo/redis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"shortlink-go/internal/config"
	"shortlink-go/internal/dto"
	"shortlink-go/internal/handler"
	"shortlink-go/internal/i18n"
	"shortlink-go/internal/metrics"
	"shortlink-go/internal/repository"
	"shortlink-go/internal/service"
	"shortlink-go/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.InitLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("Application started")

	db, err := repository.OpenDB(cfg.DB, logger, logging.AtomicLevel)
	if err != nil {
		logger.Fatal("Failed to connect database", zap.Error(err))
	}

	var (
		pool   *redis.Pool
		cache  repository.LinkCache = repository.NopLinkCache{}
		visits repository.VisitCounter
	)
	if cfg.Redis.Enabled {
		pool = repository.NewRedisPool(cfg.Redis, logger)
		cache = repository.NewRedisLinkCache(pool, cfg.Redis.LinkCacheTTL, cfg.Redis.NegativeCacheTTL, logger)
		visits = repository.NewRedisVisitCounter(pool, logger)
	}

	catalog, err := i18n.InitI18n(cfg.I18n.Files, cfg.I18n.DefaultLang)
	if err != nil {
		logger.Fatal("Failed to load i18n messages", zap.Error(err))
	}
	if err := dto.RegisterValidators(); err != nil {
		logger.Fatal("Failed to register validators", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	links := repository.NewLinkStore(db)
	clicks := repository.NewClickStore(db)
	dailyStats := repository.NewDailyStatStore(db)

	hasher := service.NewBcryptHasher(cfg.Password.BcryptCost)
	recorder := service.NewClickRecorder(clicks, links, visits, m, logger)
	resolver := service.NewResolver(links, cache, recorder, hasher, m, logger)
	linkService := service.NewLinkService(links, cache, service.NewCodeGenerator(cfg.ShortCode.Reserved), hasher, cfg.ShortCode, logger)
	analyticsService := service.NewAnalyticsService(links, clicks, cfg.Analytics, logger)
	statsService := service.NewStatsService(links, dailyStats, visits, logger)

	gin.SetMode(gin.ReleaseMode)
	r := handler.NewRouter(handler.RouterDeps{
		Redirect:  handler.NewRedirectHandler(resolver, cfg.Geo, logger),
		Links:     handler.NewLinkHandler(linkService, cfg.Server.BaseURL, logger),
		Analytics: handler.NewAnalyticsHandler(analyticsService, statsService),
		Catalog:   catalog,
		JWTSecret: cfg.Auth.JWTSecret,
		Ping:      func(ctx context.Context) error { return repository.Ping(ctx, db) },
		Gatherer:  reg,
		Logger:    logger,
	})

	c := startStatsSync(cfg.Stats.SyncSpec, statsService, visits != nil, logger)

	startServer(cfg.Server, r, logger)

	<-c.Stop().Done()
	shutdown(db, pool, logger)
}

// startStatsSync 定时把 Redis 中的 PV/UV 写入 daily_stats，未启用 Redis 时不调度
func startStatsSync(spec string, stats *service.StatsService, enabled bool, logger *zap.Logger) *cron.Cron {
	c := cron.New()
	if !enabled {
		return c
	}

	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := stats.SyncDaily(ctx); err != nil {
			logger.Error("Failed to sync daily stats via cron job", zap.Error(err))
		}
	})
	if err != nil {
		logger.Fatal("Failed to schedule cron job", zap.Error(err))
	}

	c.Start()
	return c
}

func startServer(cfg config.ServerConfig, r *gin.Engine, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server is running on " + cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
}

func shutdown(db *gorm.DB, pool *redis.Pool, logger *zap.Logger) {
	if pool != nil {
		if err := pool.Close(); err != nil {
			logger.Warn("Redis pool close failed", zap.Error(err))
		}
	}
	if err := repository.CloseDB(db); err != nil {
		logger.Warn("Database close failed", zap.Error(err))
	}
	logger.Info("Server exiting")
}
