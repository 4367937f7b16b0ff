package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"dispatch/internal/app"
	"dispatch/internal/config"
	"dispatch/internal/geocode"
	"dispatch/internal/handler"
	"dispatch/internal/logger"
	"dispatch/internal/notify"
	internalRedis "dispatch/internal/redis"
	"dispatch/internal/repository/postgres"
	"dispatch/internal/service"
)

func main() {
	// Load .env if present, then configuration.
	_ = godotenv.Load()
	cfg := config.Load()

	logg := logger.New("dispatch-core")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic first so the database driver can be instrumented.
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
			logg.Error("initialize New Relic", logger.Error(err))
		} else {
			logg.Info("New Relic enabled", logger.String("app", cfg.NewRelic.AppName))
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	logg.Info("connected to PostgreSQL")

	if err := app.RunMigrations(db, cfg.Database.MigrationsDir, cfg.Database.DBName); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	logg.Info("connected to Redis")

	// Wire dependencies.
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	server, dispatcher := wireServer(db, redisClient, nrApp, cfg, logg)

	dispatcher.Start(workerCtx)

	go func() {
		logg.Info("starting server", logger.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logg.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	stopWorkers()
	dispatcher.Wait()

	logg.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server and the
// notification dispatcher.
func wireServer(
	db *sql.DB,
	redisClient *redis.Client,
	nrApp *newrelic.Application,
	cfg *config.Config,
	logg logger.Logger,
) (*http.Server, *notify.Dispatcher) {
	// Redis stores.
	queue := internalRedis.NewNotificationQueue(redisClient)
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Repositories.
	orderRepo := postgres.NewOrderRepository(db)
	driverRepo := postgres.NewDriverRepository(db)
	travelRepo := postgres.NewTravelRequestRepository(db)
	passengerRepo := postgres.NewPassengerRepository(db)
	cityRepo := postgres.NewCityRepository(db)
	ledgerRepo := postgres.NewDriverTransactionRepository(db)

	// Notification pipeline.
	snapshots := notify.NewSnapshotBuilder(orderRepo, driverRepo, passengerRepo, travelRepo)
	botClient := notify.NewBotClient(notify.ClientConfig{
		DriverBaseURL:    cfg.Bots.DriverBaseURL,
		PassengerBaseURL: cfg.Bots.PassengerBaseURL,
		RequestTimeout:   cfg.Bots.RequestTimeout,
		MaxAttempts:      cfg.Bots.MaxAttempts,
		RetryBackoff:     cfg.Bots.RetryBackoff,
	})
	dispatcher := notify.NewDispatcher(queue, lockStore, snapshots, botClient, logg, cfg.Bots.Workers)

	// Services.
	settlementService := service.NewSettlementService(
		orderRepo, driverRepo, ledgerRepo, travelRepo, logg, cfg.Orders.CommissionPercent,
	)
	orderService := service.NewOrderService(
		db, orderRepo, driverRepo, travelRepo, logg, cfg.Orders.StrictReassignment,
	)
	orderService.Subscribe(settlementService)
	orderService.Subscribe(dispatcher)

	travelService := service.NewTravelService(travelRepo, cityRepo, logg)
	driverService := service.NewDriverService(driverRepo, ledgerRepo, logg)
	passengerService := service.NewPassengerService(passengerRepo, logg)

	resolver := geocode.NewResolver(cfg.Geocoder.BaseURL, cfg.Geocoder.Timeout)
	locationService := service.NewLocationService(resolver, cacheStore, cityRepo, logg)

	// Handlers.
	orderHandler := handler.NewOrderHandler(orderService)
	travelHandler := handler.NewTravelHandler(travelService)
	driverHandler := handler.NewDriverHandler(driverService, settlementService)
	passengerHandler := handler.NewPassengerHandler(passengerService)
	locationHandler := handler.NewLocationHandler(locationService)

	router := app.NewRouter(app.RouterDeps{
		OrderHandler:     orderHandler,
		TravelHandler:    travelHandler,
		DriverHandler:    driverHandler,
		PassengerHandler: passengerHandler,
		LocationHandler:  locationHandler,
		RedisClient:      redisClient,
		NewRelicApp:      nrApp,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return server, dispatcher
}
