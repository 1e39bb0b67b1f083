package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"mediaconv/internal/api"
	"mediaconv/internal/config"
	"mediaconv/internal/logger"
	"mediaconv/internal/media"
	"mediaconv/internal/redis"
	"mediaconv/internal/scratch"
	"mediaconv/internal/service/ai"
	"mediaconv/internal/service/conversion"
	"mediaconv/internal/storage"
	"mediaconv/internal/worker"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("load .env failed", "error", err)
	}

	cfg, err := config.Load(os.Getenv(config.PathEnv))
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:      logger.ParseLevel(cfg.Logging.Level),
		Output:     os.Stderr,
		JSONFormat: strings.EqualFold(cfg.Logging.Format, "json"),
	})
	logger.SetDefault(log)

	ctx := logger.WithContext(context.Background(), log)
	rootCtx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(rootCtx, cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	scratchMgr, err := scratch.NewManager(cfg.BasicConfig.ScratchDir)
	if err != nil {
		return err
	}
	scratchMgr.StartJanitor(ctx, log, cfg.ScratchCleanupInterval(), cfg.ScratchTTL())

	transcriber, err := ai.NewTranscriber(cfg)
	if err != nil {
		return fmt.Errorf("init transcriber: %w", err)
	}
	summarizer, err := ai.NewSummarizer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init summarizer: %w", err)
	}
	if cfg.Redis.Enabled() {
		rdb, err := redis.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("create redis client: %w", err)
		}
		defer rdb.Close()
		summarizer = ai.WithCache(summarizer, rdb, cfg.SummaryCacheTTL())
		log.Info("summary cache enabled", "host", cfg.Redis.Host)
	}

	var recorder api.ConversionRecorder
	if cfg.Database.Enabled() {
		db, err := storage.Open(cfg.Database)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		if err := storage.Migrate(db, cfg.Database.Driver); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
		rec, err := storage.NewRecorder(db)
		if err != nil {
			return err
		}
		recorder = rec
		log.Info("conversion log enabled", "driver", cfg.Database.Driver)
	}

	converter := media.NewConverter(cfg.FFmpeg, media.NewExecutor())
	svc, err := conversion.NewService(converter, transcriber, summarizer)
	if err != nil {
		return err
	}
	handler, err := api.NewHandler(api.Options{
		Converter:      svc,
		Scratch:        scratchMgr,
		Limiter:        worker.NewLimiter(cfg.BasicConfig.MaxConcurrent),
		Recorder:       recorder,
		Logger:         log,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	})
	if err != nil {
		return err
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler.RegisterRoutes(router)

	origins := cfg.BasicConfig.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	srv := &http.Server{
		Addr: cfg.BasicConfig.ServerAddress,
		Handler: cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"Content-Disposition", "X-Request-ID"},
			MaxAge:         300,
		})(router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("mediaconv started", "address", srv.Addr, "summary_provider", cfg.AI.SummaryProvider, "summary_model", cfg.SummaryModel())
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		log.Info("start shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			srv.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info("server stopped cleanly")
		return nil
	}
}
