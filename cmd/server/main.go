package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"farebroker/internal/app"
	"farebroker/internal/config"
	"farebroker/internal/events"
	"farebroker/internal/gateway"
	"farebroker/internal/handler"
	"farebroker/internal/logging"
	internalRedis "farebroker/internal/redis"
	"farebroker/internal/repository/postgres"
	"farebroker/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()
	log := logging.New(cfg.Log.Level)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.WithError(err).Warn("failed to initialize New Relic")
		} else {
			log.WithField("app", cfg.NewRelic.AppName).Info("New Relic enabled")
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()
	log.Info("connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info("connected to Redis")

	// Wire dependencies.
	server, publisher := wireServer(db, redisClient, nrApp, cfg, log)
	defer publisher.Close()

	// Start server in goroutine.
	go func() {
		log.WithField("port", cfg.Server.Port).Info("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server exited")
}

// closablePublisher lets main defer Close on whichever publisher was wired.
type closablePublisher interface {
	events.Publisher
	Close() error
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config, log *logrus.Logger) (*http.Server, closablePublisher) {
	// Initialize Redis stores.
	demandStore := internalRedis.NewDemandStore(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)
	policyCache := internalRedis.NewPolicyCache(redisClient)

	// Initialize repositories.
	rideRepo := postgres.NewRideRepository(db)
	walletRepo := postgres.NewWalletRepository(db)
	directoryRepo := postgres.NewDirectoryRepository(db)
	policyRepo := internalRedis.NewCachedPolicyRepository(postgres.NewPolicyRepository(db), policyCache)

	// Initialize event publisher: Kafka when brokers are configured, the
	// structured log otherwise.
	var publisher closablePublisher
	if len(cfg.Kafka.Brokers) > 0 {
		publisher = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		log.WithField("topic", cfg.Kafka.Topic).Info("publishing events to Kafka")
	} else {
		publisher = events.NewLogPublisher(log)
	}

	// Initialize payment gateway: Stripe when configured, the mock otherwise.
	var paymentGateway service.PaymentGateway
	if cfg.Stripe.Enabled && cfg.Stripe.APIKey != "" {
		paymentGateway = gateway.NewStripeGateway(cfg.Stripe.APIKey, cfg.Wallet.Currency)
		log.Info("using Stripe payment gateway")
	} else {
		paymentGateway = service.NewMockGateway()
		log.Warn("using mock payment gateway")
	}

	// Initialize services.
	pricing := service.NewPricingEngine(nil, cfg.Wallet.Currency)
	ledger := service.NewWalletLedger(walletRepo, cfg.Wallet.Currency, log)
	lifecycle := service.NewRideLifecycle(
		rideRepo,
		policyRepo,
		directoryRepo,
		pricing,
		ledger,
		paymentGateway,
		publisher,
		demandStore,
		lockStore,
		service.LifecycleConfig{
			GatewayTimeout: cfg.Gateway.Timeout,
			GatewayRetries: cfg.Gateway.MaxRetries,
			RetryBackoff:   cfg.Gateway.RetryBackoff,
		},
		log,
	)

	// Initialize handlers.
	rideHandler := handler.NewRideHandler(lifecycle)
	walletHandler := handler.NewWalletHandler(ledger)
	policyHandler := handler.NewPolicyHandler(policyRepo)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		RideHandler:   rideHandler,
		WalletHandler: walletHandler,
		PolicyHandler: policyHandler,
		RedisClient:   redisClient,
		NewRelicApp:   nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, publisher
}
