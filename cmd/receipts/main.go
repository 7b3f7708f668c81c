package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/receipts/internal/cache"
	"github.com/Skotchmaster/receipts/internal/config"
	"github.com/Skotchmaster/receipts/internal/events"
	"github.com/Skotchmaster/receipts/internal/httpserver"
	"github.com/Skotchmaster/receipts/internal/migrations"
	"github.com/Skotchmaster/receipts/internal/repo"
	"github.com/Skotchmaster/receipts/internal/search"
	"github.com/Skotchmaster/receipts/internal/service"
	"github.com/Skotchmaster/receipts/internal/shortcode"
	pkgdb "github.com/Skotchmaster/receipts/pkg/db"
	"github.com/Skotchmaster/receipts/pkg/logging"
	"github.com/Skotchmaster/receipts/pkg/tokens"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("warning: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err == nil && cfg.MigrateOnStart {
		err = migrate(ctx, db, cfg.DBDriver)
	}
	cancel()
	if err != nil {
		logger.Error("db_init_failed", "error", err)
		os.Exit(1)
	}

	r := &repo.GormRepo{DB: db}

	authSvc := &service.AuthService{
		Repo:   r,
		Tokens: &tokens.Issuer{Secret: cfg.JWTSecret, TTL: cfg.AccessTokenTTL},
	}
	receiptSvc := &service.ReceiptService{
		Repo: r,
		Codes: &shortcode.Allocator{
			Length:      cfg.ShortCodeLength,
			MaxAttempts: cfg.ShortCodeMaxAttempts,
		},
	}
	publicSvc := &service.PublicService{Receipts: receiptSvc, Slip: cfg.SlipOptions()}

	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer, err = events.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			logger.Error("kafka_init_failed", "error", err)
			os.Exit(1)
		}
		authSvc.Events = producer
		receiptSvc.Events = producer
		logger.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	}

	if cfg.ESURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		es, err := search.NewClient(ctx, cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err == nil {
			idx := search.New(es, cfg.ESIndex)
			if err = idx.EnsureIndex(ctx); err == nil {
				receiptSvc.Index = idx
				logger.Info("search_enabled", "index", cfg.ESIndex)
			}
		}
		cancel()
		if err != nil {
			logger.Warn("search_disabled", "reason", "elasticsearch unavailable", "error", err)
		}
	}

	if cfg.RedisAddr != "" {
		rdb := cache.NewRedis(cfg.RedisAddr, cfg.RedisPassword)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := cache.Ping(ctx, rdb); err != nil {
			logger.Warn("slip_cache_disabled", "reason", "redis unavailable", "error", err)
			_ = rdb.Close()
		} else {
			publicSvc.Cache = cache.NewSlipCache(rdb, cfg.SlipCacheTTL)
			defer rdb.Close()
			logger.Info("slip_cache_enabled", "ttl", cfg.SlipCacheTTL)
		}
		cancel()
	}

	e := httpserver.New(logger, &httpserver.Deps{
		AuthHandler:    &httpserver.AuthHTTP{Svc: authSvc},
		ReceiptHandler: &httpserver.ReceiptHTTP{Svc: receiptSvc, PublicHost: cfg.PublicHost},
		PublicHandler:  &httpserver.PublicHTTP{Svc: publicSvc},
		Ready:          r.Ping,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen_failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_failed", "error", err)
	}
	if producer != nil {
		if err := producer.Close(); err != nil {
			logger.Warn("kafka_close_failed", "error", err)
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("stopped")
}

// migrate applies the SQL scripts on PostgreSQL and falls back to
// AutoMigrate on SQLite.
func migrate(ctx context.Context, db *gorm.DB, driver string) error {
	if driver == pkgdb.DriverSQLite {
		return repo.AutoMigrate(db.WithContext(ctx))
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return migrations.Apply(ctx, sqlDB)
}
