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

	"civreg/internal/activity"
	activityhandler "civreg/internal/activity/handler"
	"civreg/internal/jwtauth"
	"civreg/internal/platform/config"
	"civreg/internal/platform/database"
	"civreg/internal/platform/httpserver"
	"civreg/internal/platform/logger"
	"civreg/internal/platform/metrics"
	"civreg/internal/platform/redis"
	projecthandler "civreg/internal/projects/handler"
	projectservice "civreg/internal/projects/service"
	projectstore "civreg/internal/projects/store"
	"civreg/internal/residents/adapters"
	residenthandler "civreg/internal/residents/handler"
	residentservice "civreg/internal/residents/service"
	residentstore "civreg/internal/residents/store"
	httptransport "civreg/internal/transport/http"
)

// main wires the dependency graph and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	checks := map[string]httptransport.HealthChecker{}

	// Stores fall back to in-memory when no database is configured, which
	// keeps local development dependency free.
	var (
		residentStore residentservice.Store
		projectStore  projectservice.Store
		activityStore activity.Store
	)
	if cfg.DatabaseURL != "" {
		db, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("database unavailable", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		residentStore = residentstore.NewPostgres(db)
		projectStore = projectstore.NewPostgres(db)
		activityStore = activity.NewPostgresStore(db)
		checks["postgres"] = healthFunc(func() error { return db.Ping() })
	} else {
		log.Warn("no DATABASE_URL set, using in-memory stores")
		residentStore = residentstore.NewInMemory()
		projectStore = projectstore.NewInMemory()
		activityStore = activity.NewInMemoryStore()
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		checks["redis"] = redisClient
	}

	sink, err := activity.NewKafkaSink(cfg.Kafka)
	if err != nil {
		log.Error("kafka unavailable", "error", err)
		os.Exit(1)
	}

	publisherOpts := []activity.PublisherOption{
		activity.WithLogger(log),
		activity.WithMetrics(m),
		activity.WithAsyncBuffer(cfg.ActivityBuffer),
	}
	if sink != nil {
		publisherOpts = append(publisherOpts, activity.WithSink(sink))
	}
	publisher := activity.NewPublisher(activityStore, publisherOpts...)
	defer publisher.Close()

	residents := residentservice.New(residentStore,
		residentservice.WithLogger(log),
		residentservice.WithMetrics(m),
		residentservice.WithActivityPublisher(publisher),
		residentservice.WithNotifier(adapters.NewLogNotifier(log)),
	)

	projectOpts := []projectservice.Option{
		projectservice.WithLogger(log),
		projectservice.WithMetrics(m),
		projectservice.WithActivityPublisher(publisher),
	}
	if redisClient != nil {
		projectOpts = append(projectOpts, projectservice.WithReactionCounters(
			projectstore.NewRedisCounters(redisClient.Client),
		))
	}
	projects := projectservice.New(projectStore, projectOpts...)

	jwtService := jwtauth.NewService(cfg.JWTSigningKey, "civreg", "civreg-console")
	validator := jwtauth.NewMiddlewareAdapter(jwtService)

	router := httptransport.NewRouter(httptransport.Config{
		Logger:  log,
		Metrics: m,
		Handlers: []httptransport.Registrar{
			residenthandler.New(residents, log, validator),
			projecthandler.New(projects, log, validator),
			activityhandler.New(publisher, log, validator),
			httptransport.NewDashboardHandler(residents, projects, log, validator),
			httptransport.NewConsoleHandler(residents, log, validator),
		},
		Checks: checks,
	})
	srv := httpserver.New(cfg.Addr, router)

	worker := activity.NewWorker(activityStore, cfg.ActivityRetention, cfg.ActivityPruneInterval, log, m)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting civreg console", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// healthFunc adapts a probe closure to the router's HealthChecker.
type healthFunc func() error

func (f healthFunc) Health() error { return f() }
