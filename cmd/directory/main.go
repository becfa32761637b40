package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/directory/internal/directory/auth"
	"github.com/gartstein/directory/internal/directory/config"
	"github.com/gartstein/directory/internal/directory/controller"
	"github.com/gartstein/directory/internal/directory/db"
	"github.com/gartstein/directory/internal/directory/events"
	"github.com/gartstein/directory/internal/directory/handlers"
	"github.com/gartstein/directory/internal/directory/store"
	"github.com/gartstein/directory/internal/directory/validation"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration (defaults to $"+config.PathEnv+")")
	flag.Parse()

	logger := initLogger()
	defer func(logger *zap.Logger) {
		// Sync fails on stderr ttys; nothing can be done about it here.
		_ = logger.Sync()
	}(logger)

	cfg, err := config.Load(config.Path(*configPath))
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	validator, err := validation.New(cfg.Validation.Rules(), cfg.Directory.Catalog, nil)
	if err != nil {
		logger.Fatal("failed to initialize validator", zap.Error(err))
	}

	seed := cfg.Directory.SeedEmployees()
	if err := controller.CheckSeed(seed, validator); err != nil {
		logger.Fatal("invalid seed employees", zap.Error(err))
	}

	repo, err := initRepository(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Startup.MaxElapsed)
	employees, err := repo.Bootstrap(ctx, seed)
	cancel()
	if err != nil {
		logger.Fatal("failed to load employees", zap.Error(err))
	}
	logger.Info("directory loaded", zap.Int("employees", len(employees)))

	employeeStore := store.NewStore(logger, employees...)
	employeeStore.Subscribe(repo.Mirror(logger))

	if cfg.Kafka.Enabled {
		producer, err := initProducer(cfg, logger)
		if err != nil {
			logger.Fatal("failed to initialize Kafka producer", zap.Error(err))
		}
		defer producer.Close()
		employeeStore.Subscribe(producer.Publish)
	}

	employeeSvc := controller.NewEmployeeService(employeeStore, validator, logger,
		controller.WithCommitDelay(cfg.Directory.CommitDelay),
		controller.WithPageSize(cfg.Directory.PageSize),
	)
	employeeHandler := handlers.NewEmployeeHandler(employeeSvc, logger)

	authInterceptor := auth.NewAuthInterceptor(cfg.Auth.JWTSecret)
	server := handlers.NewServer(cfg.Server.GRPCPort, cfg.Server.HTTPPort, logger,
		grpc.UnaryInterceptor(authInterceptor.Unary()))
	server.RegisterGRPCHandler(employeeHandler)
	if err := server.RegisterHTTPGateway(employeeHandler, cfg.Auth.JWTSecret); err != nil {
		logger.Fatal("Failed to register HTTP gateway", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	waitForShutdown(server, errCh, logger)
}

// initLogger initializes a Zap production logger.
func initLogger() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	return logger
}

// retryPolicy retries with exponential backoff until the start-up budget is spent.
func retryPolicy(cfg *config.Config) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = cfg.Startup.MaxElapsed
	return b
}

func initRepository(cfg *config.Config, logger *zap.Logger) (*db.Repository, error) {
	var repo *db.Repository
	err := backoff.RetryNotify(func() error {
		var err error
		repo, err = db.NewRepository(cfg.Database.Repository())
		return err
	}, retryPolicy(cfg), func(err error, next time.Duration) {
		logger.Warn("database not ready, retrying", zap.Error(err), zap.Duration("next", next))
	})
	return repo, err
}

func initProducer(cfg *config.Config, logger *zap.Logger) (*events.Producer, error) {
	var producer *events.Producer
	err := backoff.RetryNotify(func() error {
		var err error
		producer, err = events.NewProducer(cfg.Kafka.Brokers, logger, cfg.Kafka.Topic)
		return err
	}, retryPolicy(cfg), func(err error, next time.Duration) {
		logger.Warn("Kafka not ready, retrying", zap.Error(err), zap.Duration("next", next))
	})
	return producer, err
}

// waitForShutdown blocks until an interrupt, SIGTERM or a server failure,
// then shuts down the servers.
func waitForShutdown(server *handlers.Server, errCh <-chan error, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-stop:
		logger.Info("Received signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("Server failed", zap.Error(err))
	}

	server.Stop()
	logger.Info("Servers stopped properly")
}
