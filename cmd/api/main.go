package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	httptransport "github.com/campusdesk/complaint-service/internal/api/http"
	"github.com/campusdesk/complaint-service/internal/api/http/handlers"
	"github.com/campusdesk/complaint-service/internal/auth"
	"github.com/campusdesk/complaint-service/internal/classifier"
	"github.com/campusdesk/complaint-service/internal/clock"
	"github.com/campusdesk/complaint-service/internal/config"
	"github.com/campusdesk/complaint-service/internal/events"
	"github.com/campusdesk/complaint-service/internal/messaging"
	"github.com/campusdesk/complaint-service/internal/observability"
	"github.com/campusdesk/complaint-service/internal/persistence"
	"github.com/campusdesk/complaint-service/internal/repository"
	"github.com/campusdesk/complaint-service/internal/service"
	"github.com/campusdesk/complaint-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(registry)

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	complaintRepo := repository.NewMemoryComplaintRepository()
	commentRepo := repository.NewMemoryCommentRepository()
	dependencies := map[string]handlers.Pinger{}
	if cfg.Postgres.Enabled() {
		complaintRepo = repository.NewPostgresComplaintRepository(pg.PoolHandle())
		commentRepo = repository.NewPostgresCommentRepository(pg.PoolHandle())
		dependencies["postgres"] = pg
	}
	if cfg.Redis.Enabled() {
		dependencies["redis"] = redis
	}
	userRepo := repository.NewMemoryUserRepository()
	notificationRepo := repository.NewMemoryNotificationRepository()

	// A nil interface, not a typed nil, keeps the composite on the local path.
	var remote classifier.Classifier
	if cfg.Classifier.APIKey != "" {
		r := classifier.NewRemote(classifier.RemoteConfig{
			URL:         cfg.Classifier.APIURL,
			APIKey:      cfg.Classifier.APIKey,
			Model:       cfg.Classifier.Model,
			Temperature: cfg.Classifier.Temperature,
			Timeout:     cfg.Classifier.Timeout(),
		}, nil, logger)
		remote = classifier.NewCached(r, redis.Client, cfg.Redis.CacheTTL(), r.Model(), logger)
		logger.Info("remote classifier enabled", zap.String("model", r.Model()))
	} else {
		logger.Info("CLASSIFIER_API_KEY not provided; using local keyword classifier")
	}
	composite := classifier.NewComposite(remote, logger, metrics)

	clk := clock.System()
	dispatcher := events.NewInMemoryDispatcher(logger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL())
	authService := service.NewAuthService(cfg.Auth, userRepo, tokens)
	if err := authService.SeedUsers(ctx, cfg.Auth.DemoPassword); err != nil {
		logger.Fatal("failed to seed users", zap.Error(err))
	}

	complaintService := service.NewComplaintService(service.ComplaintDependencies{
		ComplaintRepo: complaintRepo,
		CommentRepo:   commentRepo,
		UserRepo:      userRepo,
		Classifier:    composite,
		Clock:         clk,
		Dispatcher:    dispatcher,
		Recorder:      metrics,
		Logger:        logger,
	})
	notificationService := service.NewNotificationService(dispatcher, notificationRepo, clk, logger, cfg.Notification)
	leaderboardService := service.NewLeaderboardService(userRepo, dispatcher, logger)
	reportService := service.NewReportService(complaintRepo, clk)
	worker.StartEventHandlers(notificationService, leaderboardService)

	publisherDone := make(chan struct{})
	if cfg.Kafka.Enabled() {
		publisher := messaging.NewPublisher(messaging.NewWriter(cfg.Kafka, cfg.App.Name), metrics, logger, cfg.Kafka.QueueSize)
		publisher.Attach(dispatcher)
		go func() {
			defer close(publisherDone)
			publisher.Run(ctx)
			if err := publisher.Close(); err != nil {
				logger.Warn("kafka writer close", zap.Error(err))
			}
		}()
		logger.Info("publishing events to kafka", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	} else {
		close(publisherDone)
	}

	if cfg.App.SeedDemoData {
		n, err := service.SeedDemoComplaints(ctx, complaintRepo, userRepo, clk)
		if err != nil {
			logger.Fatal("failed to seed complaints", zap.Error(err))
		}
		if n > 0 {
			logger.Info("seeded demo complaints", zap.Int("count", n))
		}
	}

	monitor := worker.NewSLAMonitor(complaintService, dispatcher, clk, metrics, logger, cfg.SLA.MonitorInterval())
	go monitor.Run(ctx)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Auth:           handlers.NewAuthHandler(authService),
		Complaints:     handlers.NewComplaintsHandler(complaintService, clk),
		Insights:       handlers.NewInsightsHandler(reportService, leaderboardService, notificationService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, userRepo),
		Metrics:        observability.Handler(registry),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("fiber shutdown", zap.Error(err))
	}
	cancel()
	<-publisherDone
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
