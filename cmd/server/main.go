package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/app"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/broadcast"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/config"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/handler"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/logging"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/payments"
	internalRedis "github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/redis"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/repository/postgres"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/routing"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/service"
	"github.com/ramizaiter1989/taxi-lebanon-backend-sub000/internal/worker"
)

func main() {
	// Load .env when present; real deployments set env vars directly.
	_ = godotenv.Load()

	cfg := config.Load()

	logger, err := logging.New(cfg.DevMode)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			logger.Error("failed to initialize New Relic", zap.Error(err))
		} else {
			logger.Info("New Relic enabled", zap.String("app", cfg.NewRelic.AppName))
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("connected to PostgreSQL")

	if err := app.RunMigrations(db, cfg.Migrations); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("connected to Redis")

	// Wire dependencies.
	server, sweeper := wireServer(db, redisClient, nrApp, cfg, logger)

	// Background session reconciliation.
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go sweeper.Run(workerCtx)

	// Start server in goroutine.
	go func() {
		logger.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")
	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server plus
// the background session sweeper.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config, logger *zap.Logger) (*http.Server, *worker.SessionSweeper) {
	// Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	geoIndex := internalRedis.NewPendingRideIndex(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Repositories.
	passengerRepo := postgres.NewPassengerRepository(db)
	driverRepo := postgres.NewDriverRepository(db)
	rideRepo := postgres.NewRideRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	declineRepo := postgres.NewDeclineRepository(db)
	blockRepo := postgres.NewBlockRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	txRunner := postgres.NewTxRunner(db)

	// Routing with Redis-backed caching.
	routeService := routing.NewCachedRouteService(routing.NewOSRMClient(cfg.Routing.OSRMEndpoint), cacheStore)
	geocoder := routing.NewCachedGeocoder(
		routing.NewNominatimClient(cfg.Routing.NominatimEndpoint, cfg.Routing.UserAgent), cacheStore)

	// Broadcast fan-out: websockets always, Kafka mirror when enabled.
	wsHub := broadcast.NewWSHub(logger)
	publishers := broadcast.Fanout{wsHub}
	if cfg.Kafka.Enabled {
		publishers = append(publishers, broadcast.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger))
	}

	// Notification channels.
	channels := []service.Channel{service.NewDatabaseChannel(notificationRepo)}
	if cfg.Push.Enabled {
		channels = append(channels, service.NewPushChannel(cfg.Push.Endpoint, cfg.Push.ServerKey))
	}
	notifier := service.NewNotificationService(logger, channels...)

	// Services.
	fareCalc := service.NewFareCalculator(service.FareSettings{
		BaseFare:        cfg.Fare.BaseFare,
		PerKm:           cfg.Fare.PerKm,
		PerMinute:       cfg.Fare.PerMinute,
		MinimumFare:     cfg.Fare.MinimumFare,
		PeakMultiplier:  cfg.Fare.PeakMultiplier,
		CancellationFee: cfg.Fare.CancellationFee,
		TolerancePct:    cfg.Fare.TolerancePct,
	}, logger)

	availability := service.NewAvailabilityService(driverRepo, sessionRepo, txRunner, logger)

	// Capture is a no-op until Stripe is configured.
	var gateway payments.Gateway
	if cfg.Stripe.Enabled && cfg.Stripe.APIKey != "" {
		gateway = payments.NewStripeGateway(cfg.Stripe.APIKey)
	}
	paymentService := service.NewPaymentService(paymentRepo, gateway, notifier, cfg.Fare.Currency, logger)

	dispatch := service.NewDispatchEngine(
		rideRepo, driverRepo, passengerRepo, declineRepo, blockRepo,
		txRunner, lockStore, geoIndex, routeService, geocoder,
		fareCalc, availability, paymentService, notifier, publishers,
		service.DispatchSettings{
			DefaultScanRadiusKm:  cfg.Dispatch.DefaultScanRadiusKm,
			MaxAcceptanceRangeKm: cfg.Dispatch.MaxAcceptanceRangeKm,
			CandidateLimit:       cfg.Dispatch.CandidateLimit,
			LockTTL:              cfg.Dispatch.LockTTL,
		},
		logger,
	)

	driverService := service.NewDriverService(driverRepo, rideRepo, publishers)
	passengerService := service.NewPassengerService(passengerRepo, notificationRepo)

	// Handlers.
	rideHandler := handler.NewRideHandler(dispatch, paymentService)
	driverHandler := handler.NewDriverHandler(driverService, dispatch, availability)
	passengerHandler := handler.NewPassengerHandler(passengerService, dispatch)
	wsHandler := handler.NewWSHandler(wsHub, logger)

	// Router.
	router := app.NewRouter(app.RouterDeps{
		RideHandler:      rideHandler,
		DriverHandler:    driverHandler,
		PassengerHandler: passengerHandler,
		WSHandler:        wsHandler,
		RedisClient:      redisClient,
		NewRelicApp:      nrApp,
	})

	sweeper := worker.NewSessionSweeper(availability, cfg.Worker.SweepInterval, cfg.Worker.MaxSessionAge, logger)

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, sweeper
}
