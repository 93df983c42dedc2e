package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/agritechlabs/agroalert-backend/api/routes"
	"github.com/agritechlabs/agroalert-backend/internal/adapters"
	"github.com/agritechlabs/agroalert-backend/internal/analytics"
	"github.com/agritechlabs/agroalert-backend/internal/dispatch"
	"github.com/agritechlabs/agroalert-backend/internal/engine"
	"github.com/agritechlabs/agroalert-backend/internal/notifications"
	"github.com/agritechlabs/agroalert-backend/internal/preferences"
	"github.com/agritechlabs/agroalert-backend/internal/scheduler"
	"github.com/agritechlabs/agroalert-backend/internal/stream"
	"github.com/agritechlabs/agroalert-backend/internal/subscriptions"
	"github.com/agritechlabs/agroalert-backend/pkg/bigquery"
	"github.com/agritechlabs/agroalert-backend/pkg/config"
	"github.com/agritechlabs/agroalert-backend/pkg/db"
	"github.com/agritechlabs/agroalert-backend/pkg/logger"
	"github.com/agritechlabs/agroalert-backend/pkg/metrics"
	"github.com/agritechlabs/agroalert-backend/pkg/migrate"
	"github.com/agritechlabs/agroalert-backend/pkg/pubsub"
	"github.com/agritechlabs/agroalert-backend/pkg/redis"
)

// The API server and the scheduler share one process: the notification store
// is in-memory, and both surfaces must see the same instance.
func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	var pubsubClient *pubsub.Client
	var bigqueryClient *bigquery.Client
	if cfg.GCP.Enabled() {
		pubsubClient, err = pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer pubsubClient.Close()

		bigqueryClient, err = bigquery.NewClient(context.Background(), cfg.GCP, cfg.BigQuery, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap bigquery", err)
			os.Exit(1)
		}
		defer bigqueryClient.Close()
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector())
	promRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	bus := stream.NewBus(logg)
	store, err := notifications.NewStore(context.Background(), notifications.StoreParams{
		Logger:       logg,
		Repo:         notifications.NewSnapshotRepository(dbClient),
		Capacity:     cfg.Store.Capacity,
		SnapshotSize: cfg.Store.SnapshotSize,
		OnAppend:     bus.Publish,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification store", err)
		os.Exit(1)
	}

	prefsService, err := preferences.NewService(preferences.ServiceParams{
		Repo:   preferences.NewRepository(dbClient),
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create preferences service", err)
		os.Exit(1)
	}
	subsService, err := subscriptions.NewService(subscriptions.ServiceParams{
		Repo:   subscriptions.NewRepository(dbClient),
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create subscriptions service", err)
		os.Exit(1)
	}

	permissions, err := dispatch.NewRedisPermissions(redisClient, cfg.Push.PermissionTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create permission store", err)
		os.Exit(1)
	}
	pushChannel, err := dispatch.NewPushChannel(dispatch.PushChannelParams{
		Permissions: permissions,
		Subs:        subsService,
		Quiet:       prefsService,
		Sender:      dispatch.NewHTTPSender(cfg.Push.SendTimeout),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create push channel", err)
		os.Exit(1)
	}

	dispatcher, err := dispatch.NewDispatcher(dispatch.DispatcherParams{
		Channels: []dispatch.Channel{
			pushChannel,
			dispatch.NewInAppChannel(),
			dispatch.NewSMSChannel(),
			dispatch.NewEmailChannel(),
		},
		Store:    store,
		Metrics:  metrics.NewDeliveryMetrics(promRegistry),
		Exporter: analytics.NewBigQueryExporter(bigqueryClient, logg),
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatcher", err)
		os.Exit(1)
	}

	aggregator, err := analytics.NewAggregator(store, nil)
	if err != nil {
		logg.Error(context.Background(), "failed to create aggregator", err)
		os.Exit(1)
	}

	eng, err := engine.New(engine.Params{
		Logger:      logg,
		Store:       store,
		Dispatcher:  dispatcher,
		Prefs:       prefsService,
		Subs:        subsService,
		Aggregator:  aggregator,
		Permissions: permissions,
		Bus:         bus,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create engine", err)
		os.Exit(1)
	}

	pipeline, err := scheduler.NewPipeline(scheduler.PipelineParams{
		Store:      store,
		Dispatcher: dispatcher,
		Prefs:      prefsService,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create pipeline", err)
		os.Exit(1)
	}

	simulators := adapters.SimulatorParams{}
	registry := scheduler.NewRegistry(
		scheduler.NewWeatherPollJob(adapters.NewWeatherSimulator(simulators), pipeline, cfg.Poll.WeatherInterval),
		scheduler.NewPricePollJob(adapters.NewPriceSimulator(simulators), pipeline, cfg.Poll.PriceInterval),
		scheduler.NewSeasonalPollJob(adapters.NewSeasonalSimulator(simulators), pipeline, cfg.Poll.SeasonalInterval),
		scheduler.NewGovernmentPollJob(adapters.NewGovernmentSimulator(simulators), pipeline, cfg.Poll.GovernmentInterval),
		scheduler.NewEvictionJob(store, logg, cfg.Maintenance.EvictionInterval),
		scheduler.NewRetentionJob(subsService, logg, cfg.Maintenance.SubscriptionMaxAge, cfg.Maintenance.SubscriptionInterval),
	)

	var lock scheduler.Lock
	if cfg.Maintenance.SchedulerLockDisabled {
		lock = scheduler.NoopLock{}
	} else {
		redisLock, err := scheduler.NewRedisLock(redisClient)
		if err != nil {
			logg.Error(context.Background(), "failed to create scheduler lock", err)
			os.Exit(1)
		}
		lock = redisLock
	}

	schedService, err := scheduler.NewService(scheduler.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewSchedulerJobMetrics(promRegistry),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create scheduler", err)
		os.Exit(1)
	}

	hub := stream.NewHub(logg)
	publisher := stream.NewPublisher(pubsubClient, logg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		hub.Run(ctx, bus)
	}()
	if publisher != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			publisher.Run(ctx, bus)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := schedService.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "scheduler stopped unexpectedly", err)
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:   cfg,
			Logger:   logg,
			Engine:   eng,
			Hub:      hub,
			DB:       dbClient,
			Redis:    redisClient,
			Registry: promRegistry,
		}),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "server shutdown failed", err)
		}
	}()

	logg.Info(logg.WithField(ctx, "addr", addr), "starting api server")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}

	wg.Wait()
	hub.Stop()
	if publisher != nil {
		publisher.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	eng.Shutdown(shutdownCtx)
}
