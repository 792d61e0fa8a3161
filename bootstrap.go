package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/amirphl/dispupr-numbering/app/handlers"
	"github.com/amirphl/dispupr-numbering/app/router"
	businessflow "github.com/amirphl/dispupr-numbering/business_flow"
	"github.com/amirphl/dispupr-numbering/config"
	"github.com/amirphl/dispupr-numbering/models"
	"github.com/amirphl/dispupr-numbering/repository"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Application represents the main application structure
type Application struct {
	router    router.Router
	config    *config.ProductionConfig
	db        *gorm.DB
	cache     *redis.Client
	stopFuncs []func()
	closers   []io.Closer
}

// Close stops background workers and releases connections in reverse order of acquisition
func (a *Application) Close() {
	for _, fn := range a.stopFuncs {
		fn()
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			log.Printf("Error closing redis client: %v", err)
		}
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				log.Printf("Error closing database: %v", err)
			}
		}
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
}

// setupLogging routes the standard logger and returns the access log writer.
// File outputs rotate through lumberjack.
func setupLogging(cfg config.LoggingConfig) (io.Writer, []io.Closer) {
	var closers []io.Closer

	appLog := io.Writer(os.Stdout)
	if cfg.Output == "file" || cfg.Output == "both" {
		rotating := newRotatingFile(cfg, cfg.FilePath)
		closers = append(closers, rotating)
		if cfg.Output == "both" {
			appLog = io.MultiWriter(os.Stdout, rotating)
		} else {
			appLog = rotating
		}
	}
	log.SetOutput(appLog)
	log.SetFlags(log.LstdFlags | log.LUTC)

	accessLog := appLog
	if cfg.AccessLogPath != "" {
		rotating := newRotatingFile(cfg, cfg.AccessLogPath)
		closers = append(closers, rotating)
		accessLog = rotating
	}
	return accessLog, closers
}

func newRotatingFile(cfg config.LoggingConfig, path string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
		LocalTime:  false,
	}
}

// newGormLogger maps LOG_LEVEL onto gorm's log levels and reports slow queries when enabled
func newGormLogger(logging config.LoggingConfig, db config.DatabaseConfig) logger.Interface {
	level := logger.Warn
	switch logging.Level {
	case "debug":
		level = logger.Info
	case "error":
		level = logger.Error
	}

	slowThreshold := time.Duration(0)
	if db.SlowQueryLog {
		slowThreshold = db.SlowQueryTime
	}

	return logger.New(log.Default(), logger.Config{
		SlowThreshold:             slowThreshold,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

// dialectorFor builds the gorm dialector of the configured driver
func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)
		return postgres.Open(dsn), nil
	case "sqlite":
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create sqlite directory %s: %w", dir, err)
			}
		}
		dsn := "file:" + cfg.SQLitePath + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

func initializeDatabase(cfg config.DatabaseConfig, gormLogger logger.Interface) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling; sqlite allows a single writer
	maxOpen := cfg.MaxOpenConns
	if cfg.Driver == "sqlite" {
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(min(cfg.MaxIdleConns, maxOpen))
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := db.AutoMigrate(models.AllModels()...); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to migrate schema: %w", err)
		}
	}

	log.Printf("Database connection established (driver=%s) with %d max open connections",
		cfg.Driver, maxOpen)

	return db, nil
}

// initializeCache initializes the Cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established (db=%d)", cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(monitorCtx, 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// openStore connects the database for commands that do not serve HTTP
func openStore(cfg *config.ProductionConfig) (*gorm.DB, error) {
	return initializeDatabase(cfg.Database, newGormLogger(cfg.Logging, cfg.Database))
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	accessLog, closers := setupLogging(cfg.Logging)
	application := &Application{config: cfg, closers: closers}

	// Initialize database
	db, err := openStore(cfg)
	if err != nil {
		application.Close()
		return nil, err
	}
	application.db = db

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		application.Close()
		return nil, err
	}
	if rc != nil {
		application.cache = rc
		application.stopFuncs = append(application.stopFuncs,
			startCacheHealthMonitor(context.Background(), rc, cfg.Cache.HealthInterval))
	}

	// Initialize repositories
	counterRepo := repository.NewCounterRepository(db)
	bastRepo := repository.NewBastRecordRepository(db)
	contractRepo := repository.NewContractRecordRepository(db)

	// Initialize business flows
	idempotency := businessflow.NewRedisIdempotencyStore(rc, cfg.Cache.RedisPrefix, cfg.Cache.IdempotencyTTL, cfg.Cache.LockTTL)
	generator := businessflow.NewGenerator(counterRepo)
	bastFlow := businessflow.NewBastFlow(bastRepo, generator, idempotency, db)
	contractFlow := businessflow.NewContractFlow(contractRepo, generator, idempotency, db)
	counterFlow := businessflow.NewCounterFlow(counterRepo)

	// Initialize handlers
	bastHandler := handlers.NewBastHandler(bastFlow)
	contractHandler := handlers.NewContractHandler(contractFlow)
	counterHandler := handlers.NewCounterHandler(counterFlow)

	application.router = router.NewFiberRouter(cfg, accessLog, bastHandler, contractHandler, counterHandler)
	return application, nil
}
