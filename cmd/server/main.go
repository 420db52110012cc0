// Command server runs the signet admin backend: the administration HTTP
// surface plus the background task worker.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"signet/internal/admin"
	adminmetrics "signet/internal/admin/metrics"
	"signet/internal/events"
	"signet/internal/flows"
	httprouter "signet/internal/http"
	"signet/internal/platform/cache"
	"signet/internal/platform/config"
	"signet/internal/platform/httpserver"
	"signet/internal/platform/kafka"
	"signet/internal/platform/logger"
	"signet/internal/platform/metrics"
	"signet/internal/platform/postgres"
	platformredis "signet/internal/platform/redis"
	"signet/internal/policies"
	"signet/internal/providers"
	"signet/internal/sessions"
	"signet/internal/tasks"
	"signet/internal/users"
	"signet/internal/version"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("postgres unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		log.Error("schema migration failed", "error", err)
		os.Exit(1)
	}

	redisClient, err := platformredis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	store := cache.NewRedis(redisClient.Client)

	userStore := users.NewPostgresStore(db)
	providerStore := providers.NewPostgresStore(db)
	policyStore := policies.NewPostgresStore(db)
	eventStore := events.NewPostgresStore(db)
	flowStore := flows.NewInMemoryStore()

	userSvc := users.NewService(userStore, log)
	eventSvc := events.NewService(eventStore, log)
	sessionSvc := sessions.NewService(cfg.JWTSigningKey, cfg.SessionTTL)

	if err := seed(ctx, cfg, db, userStore, flowStore, log); err != nil {
		log.Error("seeding failed", "error", err)
		os.Exit(1)
	}

	// The task queue is optional in debug mode so local development needs
	// neither Kafka nor network access; the version checker observes the
	// same flag and stops enqueueing.
	var producer *kafka.Producer
	var consumer *kafka.Consumer
	if cfg.Debug {
		log.Info("debug mode: task queue disabled")
	} else {
		if err := kafka.EnsureTopic(ctx, cfg.KafkaBrokers, cfg.TaskTopic); err != nil {
			log.Error("task topic unavailable", "error", err)
			os.Exit(1)
		}
		producer, err = kafka.NewProducer(cfg.KafkaBrokers, cfg.TaskTopic)
		if err != nil {
			log.Error("task producer unavailable", "error", err)
			os.Exit(1)
		}
		defer producer.Close()

		registry := tasks.NewRegistry()
		updater := version.NewUpdater(cfg.ReleasesURL, store, cfg.VersionCacheTTL, eventSvc, log)
		registry.Register(version.TaskVersionCheck, updater.Handle)

		consumer, err = kafka.NewConsumer(cfg.KafkaBrokers, cfg.TaskTopic, cfg.ConsumerGroup, registry, log)
		if err != nil {
			log.Error("task consumer unavailable", "error", err)
			os.Exit(1)
		}
	}

	// A typed nil producer must not end up inside the interface.
	var queue version.Enqueuer
	if producer != nil {
		queue = producer
	}
	checker := version.NewChecker(store, queue, cfg.Debug, log)

	adminHandler := admin.New(
		userSvc,
		providerStore,
		policyStore,
		eventSvc,
		store,
		checker,
		sessionSvc,
		cfg.SessionCookie,
		log,
		adminmetrics.New(),
	)
	router := httprouter.NewRouter(adminHandler, metrics.New(), log)
	srv := httpserver.New(cfg.Addr, router)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info("starting signet admin backend", "addr", cfg.Addr, "version", version.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if consumer != nil {
		group.Go(func() error {
			err := consumer.Run(gctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	group.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}
