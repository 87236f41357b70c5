package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"creditpipe/internal/auth"
	"creditpipe/internal/config"
	cronrunner "creditpipe/internal/cron"
	"creditpipe/internal/db"
	"creditpipe/internal/handler"
	"creditpipe/internal/ledger"
	"creditpipe/internal/logger"
	"creditpipe/internal/pricing"
	"creditpipe/internal/rates"
	gormrepository "creditpipe/internal/repository/gorm"
	"creditpipe/internal/sba"
	"creditpipe/internal/scheduler"
	"creditpipe/internal/worker"

	_ "creditpipe/docs"
)

// @title Credit Pipeline Service
// @version 1.0
// @description Deterministic credit-decision pipeline: snapshots, policy, stress, pricing, memos.
func main() {
	cfgPath := os.Getenv("CP_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("CP_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	sink := &ledger.Sink{Repo: store, Logger: logger}

	ratesHTTP := &http.Client{Timeout: cfg.Rates.Timeout}
	ratesClient := rates.NewClient(ratesHTTP, cfg.Rates.BaseURL)
	ratesReader := &rates.Reader{Repo: store, Client: ratesClient, Cfg: cfg.Rates, Logger: logger}

	sbaEval := sba.Evaluator{Cfg: cfg.SBA}
	generator := &pricing.Generator{
		Repo:      store,
		Rates:     ratesReader,
		SBA:       sbaEval,
		Ledger:    sink,
		Logger:    logger,
		Cfg:       cfg.Pricing,
		PolicyCfg: cfg.Policy,
	}
	recorder := &pricing.Recorder{Repo: store, Ledger: sink, Logger: logger}

	schedulerSvc := &scheduler.Service{Repo: store, Ledger: sink, Logger: logger, Cfg: cfg.Scheduler}
	pipeline := &worker.Pipeline{Repo: store, Ledger: sink, Logger: logger, PolicyCfg: cfg.Policy}
	runner := &worker.Runner{
		Repo:     store,
		Pipeline: pipeline,
		Pricing:  generator,
		Ledger:   sink,
		Logger:   logger,
		Cfg:      cfg.Worker,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())
	engine.Use(auth.RequireBearerMiddleware())
	engine.Use(auth.WriteAuditMiddleware(sink))

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm, Repo: store}
	healthHandler.Register(engine)
	spreadHandler := &handler.SpreadHandler{Repo: store, Scheduler: schedulerSvc}
	spreadHandler.Register(engine)
	pricingHandler := &handler.PricingHandler{Repo: store, Generator: generator, Recorder: recorder}
	pricingHandler.Register(engine)
	memoHandler := &handler.MemoHandler{Repo: store, Pipeline: pipeline}
	memoHandler.Register(engine)
	overlayHandler := &handler.OverlayHandler{Repo: store}
	overlayHandler.Register(engine)
	eventHandler := &handler.EventHandler{Repo: store}
	eventHandler.Register(engine)

	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		_, err = cronRunner.Add(cfg.Cron.WorkerPoll, func(ctx context.Context) {
			if err := runner.Tick(ctx); err != nil {
				logger.Warn("worker tick failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register worker poll failed", zap.Error(err))
		}

		_, err = cronRunner.Add(cfg.Cron.RatesRefresh, func(ctx context.Context) {
			if _, err := ratesReader.Refresh(ctx); err != nil {
				logger.Warn("rates refresh failed", zap.Error(err))
			}
		})
		if err != nil {
			logger.Warn("cron register rates refresh failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	if cfg.RateStream.Enabled {
		stream := &rates.Stream{Repo: store, Cfg: cfg.RateStream, Logger: logger}
		go stream.Run(ctx)
	}

	// Warm the rate cache so the first pricing request does not block on a
	// live fetch.
	{
		warmCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if _, err := ratesReader.Refresh(warmCtx); err != nil {
			logger.Warn("initial rates refresh failed (continuing)", zap.Error(err))
		}
		cancel()
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
