package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/kasuganosora/tradeboard/api/rest"
	"github.com/kasuganosora/tradeboard/api/sse"
	"github.com/kasuganosora/tradeboard/audit"
	"github.com/kasuganosora/tradeboard/cache"
	"github.com/kasuganosora/tradeboard/config"
	dbadapter "github.com/kasuganosora/tradeboard/db"
	mw "github.com/kasuganosora/tradeboard/middleware"
	"github.com/kasuganosora/tradeboard/model"
	"github.com/kasuganosora/tradeboard/pricing"
	"github.com/kasuganosora/tradeboard/scheduler"
	"github.com/kasuganosora/tradeboard/session"
	"github.com/kasuganosora/tradeboard/store"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// reloadRetry is the delay before a failed periodic reload is retried.
const reloadRetry = 30 * time.Second

func main() {
	cfgPath := "config/config.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// ---- Logger ----
	var logger *zap.Logger
	var logErr error
	if cfg.Server.Debug {
		logger, logErr = zap.NewDevelopment()
	} else {
		logger, logErr = zap.NewProduction()
	}
	if logErr != nil {
		log.Fatalf("logger: %v", logErr)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Database ----
	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}
	logger.Info("DB initialized", zap.String("mode", cfg.Database.Mode))

	// ---- Audit ----
	auditSvc := audit.New(db, logger)
	defer auditSvc.Stop()

	// ---- Cache / PubSub ----
	cacheConfig := cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
		LocalPubSubBuf:  cfg.Cache.LocalPubSubBuf,
	}
	c, err := cache.NewCache(cacheConfig)
	if err != nil {
		log.Fatalf("cache: %v", err)
	}
	pubsub, err := cache.NewPubSub(cacheConfig)
	if err != nil {
		log.Fatalf("pubsub: %v", err)
	}
	logger.Info("Cache initialized", zap.Bool("redis", cfg.Cache.RedisAddr != ""))

	// ---- Snapshot ----
	snaps := store.New(store.Config{
		Inventory:      cfg.Source.Inventory,
		Prices:         cfg.Source.Prices,
		FetchTimeout:   cfg.Source.FetchTimeout,
		LegacyIDLookup: cfg.Source.LegacyIDLookup,
	}, pubsub, logger)
	if _, err := snaps.Load(ctx); err != nil {
		logger.Fatal("initial snapshot load failed", zap.Error(err))
	}

	sessions := session.NewStore(c, cfg.Session.TTL)
	exporter := pricing.NewExporter(pricing.Policy{
		Retention:      cfg.Pricing.Retention,
		RefreshOnCarry: cfg.Pricing.RefreshOnCarry,
	}, logger)
	logger.Info("Export policy",
		zap.Duration("retention", exporter.Policy().Retention),
		zap.Bool("refresh_on_carry", exporter.Policy().RefreshOnCarry))

	// ---- Scheduler ----
	sched := scheduler.New(logger)
	defer sched.Stop()

	if cfg.Source.ReloadInterval > 0 {
		sched.AddTicker("snapshot_reload", cfg.Source.ReloadInterval,
			sched.WithRetry("snapshot_retry", reloadRetry, snaps.Reload))
	}

	// ---- Gin HTTP Server ----
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(mw.TraceID(), mw.Session(), mw.AdminMode(), mw.Logger(logger), mw.Recovery(logger))
	r.Use(mw.RateLimit(ctx, rate.Limit(cfg.Security.RateLimitRPS), cfg.Security.RateLimitBurst))

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ---- REST API routes ----
	catH := apirest.NewCatalogHandler(snaps, sessions, logger)
	editH := apirest.NewEditHandler(snaps, sessions, logger)
	expH := apirest.NewExportHandler(snaps, sessions, exporter, auditSvc, cfg.Pricing.ExportFilename, logger)
	adminH := apirest.NewAdminHandler(snaps, auditSvc, sched, logger)

	api := r.Group("/api")
	{
		api.GET("/items", catH.Items)
		api.GET("/items/sort", catH.NextSort)
		api.GET("/summary", catH.Summary)
		api.GET("/snapshot", catH.Snapshot)

		editsG := api.Group("/edits", mw.RequireAdmin())
		editsG.GET("", editH.List)
		editsG.DELETE("", editH.Clear)
		editsG.PUT("/:stable_id", editH.Put)
		editsG.DELETE("/:stable_id", editH.Delete)

		api.POST("/export", mw.RequireAdmin(), expH.Export)

		adminG := api.Group("/admin", mw.RequireAdmin())
		adminG.POST("/reload", adminH.Reload)
		adminG.GET("/exports", adminH.Exports)
		adminG.GET("/scheduler", adminH.SchedulerTasks)
	}

	// ---- SSE ----
	sseH := sse.NewHandler(pubsub, snaps, logger)
	r.GET("/sse", sseH.ServeSSE)

	// ---- Table UI static files ----
	if dir := cfg.Server.StaticDir; dir != "" {
		r.StaticFile("/", filepath.Join(dir, "index.html"))
		r.NoRoute(func(c *gin.Context) {
			path := filepath.Join(dir, filepath.Clean("/"+c.Request.URL.Path))
			if fi, err := os.Stat(path); err == nil && !fi.IsDir() {
				c.File(path)
				return
			}
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		})
		logger.Info("Serving table UI", zap.String("dir", dir))
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
		// Open SSE streams end when the process is asked to stop.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Server listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server", zap.Error(err))
	}
	logger.Info("Server stopped")
}
