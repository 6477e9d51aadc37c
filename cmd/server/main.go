package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/scanera/product-service/config"
	"github.com/scanera/product-service/internal/database"
	"github.com/scanera/product-service/internal/fetcher"
	"github.com/scanera/product-service/internal/handlers"
	"github.com/scanera/product-service/internal/importer"
	"github.com/scanera/product-service/internal/metrics"
	"github.com/scanera/product-service/internal/middleware"
	"github.com/scanera/product-service/internal/pipeline"
	"github.com/scanera/product-service/internal/scheduler"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Msg("Starting product service")

	dbURL := config.GetDatabaseURL()
	if dbURL == "" {
		logger.Fatal().Msg("DATABASE_URL not set")
	}

	ctx := context.Background()
	if err := database.Connect(
		ctx,
		dbURL,
		cfg.Database.MaxConnections,
		cfg.Database.MinConnections,
		cfg.Database.MaxConnLifetime,
		cfg.Database.MaxConnIdleTime,
	); err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer database.Close()

	logger.Info().Msg("Database connected")

	version, err := database.RunMigrations(dbURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to run migrations")
	}
	logger.Info().Uint("version", version).Msg("Database schema up to date")

	products := database.NewProductRepository(database.Pool())
	runs := database.NewImportRunRepository(database.Pool())
	imp := importer.New(products, runs, logger)

	var feedFetcher pipeline.Fetcher
	if cfg.SFTP.Host != "" {
		feedFetcher = fetcher.NewSFTPClient(fetcher.Config{
			Host:     cfg.SFTP.Host,
			Port:     cfg.SFTP.Port,
			User:     cfg.SFTP.User,
			Password: cfg.SFTP.Password,
			KeyPath:  cfg.SFTP.KeyPath,
		}, logger)
	}
	syncPipeline := pipeline.New(feedFetcher, imp, cfg.Feed.RemotePath, cfg.Feed.LocalPath, logger)

	schedCtx, stopScheduler := context.WithCancel(ctx)
	defer stopScheduler()
	go scheduler.New(cfg.Feed.SyncInterval, syncPipeline.Run, logger).Start(schedCtx)

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", handlers.HealthCheck(database.Status))
	router.GET("/metrics", metrics.Handler())
	router.GET("/products/:barcode", handlers.GetProduct(products))

	internal := router.Group("/internal")
	internal.Use(middleware.InternalAuth(cfg.Auth.InternalAPIKey))
	{
		internal.POST("/admin/sync", handlers.TriggerSync(syncPipeline))
		internal.GET("/import-runs", handlers.ListRuns(runs))
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server")
	stopScheduler()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}

func initLogger(cfg config.LoggingConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level := zerolog.InfoLevel
	if parsedLevel, err := zerolog.ParseLevel(cfg.Level); err == nil && cfg.Level != "" {
		level = parsedLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		output := zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
		logger = zerolog.New(output)
	} else {
		logger = zerolog.New(os.Stdout)
	}

	return logger.Level(level).With().Timestamp().Logger()
}
