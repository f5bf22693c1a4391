package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/nirmitee/clinic-api/internal/config"
	api "github.com/nirmitee/clinic-api/internal/http"
	"github.com/nirmitee/clinic-api/internal/log"
	"github.com/nirmitee/clinic-api/internal/metrics"
	"github.com/nirmitee/clinic-api/internal/queue"
	"github.com/nirmitee/clinic-api/internal/repo"
	"github.com/nirmitee/clinic-api/internal/storage"
)

func main() {
	cfg := config.Load()

	logger, err := log.Init(os.Getenv("APP_ENV") == "production")
	if err != nil {
		stdlog.Fatalf("logger init: %v", err)
	}
	defer log.Sync()

	if os.Getenv("DD_AGENT_HOST") != "" {
		tracer.Start(tracer.WithService("clinic-api"))
		defer tracer.Stop()
	}

	metrics.MustRegister()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	store, err := repo.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		logger.Fatal("mongo connect", zap.Error(err))
	}
	defer store.Close(context.Background())

	if err := store.EnsureUserIndexes(ctx); err != nil {
		logger.Fatal("user indexes", zap.Error(err))
	}
	if err := store.EnsureAppointmentIndexes(ctx); err != nil {
		logger.Fatal("appointment indexes", zap.Error(err))
	}

	var limiter api.RateLimiter
	if cfg.RedisAddr != "" {
		rds := repo.NewRedis(cfg.RedisAddr)
		if err := rds.Ping(ctx); err != nil {
			logger.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
		} else {
			limiter = rds
			defer rds.Close()
		}
	}

	pub := queue.NewNoop()
	if cfg.RabbitURL != "" {
		rp, err := queue.NewRabbit(cfg.RabbitURL, cfg.RabbitExchange)
		if err != nil {
			logger.Fatal("rabbit connect", zap.Error(err))
		}
		pub = rp
	}
	defer pub.Close()

	var images storage.ImageStore = storage.NoopStore{}
	if cfg.S3Bucket != "" {
		s3s, err := storage.NewS3(ctx, cfg.S3Region, cfg.S3Endpoint, cfg.S3Key, cfg.S3Secret, cfg.S3Bucket)
		if err != nil {
			logger.Fatal("s3 init", zap.Error(err))
		}
		images = s3s
	}

	h := api.NewHandler(cfg, store, store, pub, limiter, images, logger)
	r := api.NewRouter(h)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	srvErr := make(chan error, 1)
	go func() { srvErr <- srv.ListenAndServe() }()

	logger.Info("clinic-api listening", zap.String("port", cfg.Port))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		logger.Info("shutting down", zap.String("signal", s.String()))
	case err := <-srvErr:
		logger.Error("server error", zap.Error(err))
	}

	shCtx, shCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shCancel()
	_ = srv.Shutdown(shCtx)
}
