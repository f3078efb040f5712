package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vytor/wordflash/internal/api"
	"github.com/vytor/wordflash/internal/audio"
	"github.com/vytor/wordflash/internal/config"
	"github.com/vytor/wordflash/internal/db"
	"github.com/vytor/wordflash/internal/jobs"
	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/repository"
	"github.com/vytor/wordflash/internal/repository/redis"
	"github.com/vytor/wordflash/internal/repository/sqlite"
	"github.com/vytor/wordflash/internal/scheduler"
	"github.com/vytor/wordflash/internal/services"
	"github.com/vytor/wordflash/internal/tts"
	"github.com/vytor/wordflash/internal/worker"
)

func main() {
	cfg := config.Load()

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(cfg.LogFormat == "console"),
		logger.WithJSON(cfg.LogFormat == "json"),
	)
	logger.SetDefault(log)
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}

	log.Info("===========================================")
	log.Info("WordFlash Server Starting")
	log.Info("===========================================")
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("default_batch_size=%d", cfg.DefaultBatchSize)
	log.Debug("audio_dir=%s", cfg.AudioDir)
	log.Debug("tts_endpoint=%s", cfg.TTSEndpoint)
	log.Debug("tts_timeout=%v", cfg.TTSTimeout())
	log.Debug("redis_enabled=%t", cfg.RedisURL != "")
	log.Debug("prefetch_worker_count=%d", cfg.PrefetchWorkerCount)
	log.Debug("prefetch_queue_size=%d", cfg.PrefetchQueueSize)
	log.Debug("session_ttl=%v", cfg.SessionTTL())
	log.Debug("sweep_interval=%v", cfg.SweepInterval())

	// Open database
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	readiness := map[string]api.Pinger{"database": database}

	// Audio index: shared redis when configured, otherwise the local database
	var audioIndex repository.AudioCacheRepository = sqlite.NewAudioCacheRepository(database.DB)
	if cfg.RedisURL != "" {
		redisIndex, err := redis.NewAudioCacheRepository(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Error("failed to connect to redis: %v", err)
			os.Exit(1)
		}
		defer redisIndex.Close()
		audioIndex = redisIndex
		readiness["redis"] = redisIndex
		log.Info("using redis audio index")
	}

	blobs, err := audio.NewFileStore(cfg.AudioDir)
	if err != nil {
		log.Error("failed to prepare audio storage: %v", err)
		os.Exit(1)
	}
	resolver := audio.NewResolver(audioIndex, tts.New(cfg.TTSEndpoint, cfg.TTSAPIKey, cfg.TTSTimeout()), blobs,
		audio.WithGenerationTimeout(cfg.TTSTimeout()+5*time.Second))

	// Initialize worker pools
	prefetchPool := worker.NewPool(cfg.PrefetchWorkerCount, cfg.PrefetchQueueSize)
	queue := jobs.NewWorkerQueue(prefetchPool, resolver)

	// Initialize services
	progressRepo := sqlite.NewProgressRepository(database.DB)
	sessionRepo := sqlite.NewSessionRepository(database.DB)
	sessionService := services.NewSessionService(
		sqlite.NewCatalogRepository(database.DB),
		progressRepo,
		sessionRepo,
		services.WithPrefetch(queue, cfg.DefaultVoice),
	)
	progressService := services.NewProgressService(progressRepo, nil)

	srv := &api.Server{
		SessionService:   sessionService,
		ProgressService:  progressService,
		AudioResolver:    resolver,
		ReadinessChecks:  readiness,
		DefaultBatchSize: cfg.DefaultBatchSize,
		DefaultVoice:     cfg.DefaultVoice,
		AudioDir:         blobs.Dir(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	prefetchPool.Start(ctx)

	sweeper := scheduler.New(sessionRepo, cfg.SessionTTL(), cfg.SweepInterval())
	if err := sweeper.Start(); err != nil {
		log.Error("failed to start scheduler: %v", err)
		os.Exit(1)
	}

	// Configure HTTP server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 150 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start HTTP server
	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping scheduler")
	sweeper.Stop()

	// Cancel worker context
	log.Debug("stopping prefetch pool")
	cancel()
	prefetchPool.Stop()

	log.Info("===========================================")
	log.Info("WordFlash Server Stopped")
	log.Info("===========================================")
}
