package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/event-enrollment-api/internal/config"
	"github.com/iliyamo/event-enrollment-api/internal/database"
	"github.com/iliyamo/event-enrollment-api/internal/handler"
	"github.com/iliyamo/event-enrollment-api/internal/metrics"
	"github.com/iliyamo/event-enrollment-api/internal/queue"
	"github.com/iliyamo/event-enrollment-api/internal/repository"
	"github.com/iliyamo/event-enrollment-api/internal/router"
	"github.com/iliyamo/event-enrollment-api/internal/service"
)

var serverPort string

func newServeCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables (and .env if present)
- Apply pending migrations when MIGRATE_ON_START is true
- Connect to Redis for caching and rate limiting when reachable
- Publish enrollment changes to RabbitMQ when RABBITMQ_URL is set
- Handle graceful shutdown on SIGINT/SIGTERM`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}
	c.Flags().StringVar(&serverPort, "port", "", "port to listen on (default: APP_PORT)")
	return c
}

func runServer(parent context.Context) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	if serverPort != "" {
		cfg.Port = serverPort
	}
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MigrateOnStart {
		if err := database.MigrateUp(cfg.Database()); err != nil {
			return err
		}
		logger.Info().Msg("migrations applied")
	}

	db, err := database.Open(cfg.Database())
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()
	metrics.Init(db)

	rdb := config.NewRedisClient(logger)
	if rdb != nil {
		defer rdb.Close()
	}

	var pub queue.Publisher = queue.NopPublisher{}
	if cfg.AMQPURL != "" {
		pub = queue.NewAMQPPublisher(cfg.AMQPURL, logger)
	} else {
		logger.Info().Msg("RABBITMQ_URL not set; enrollment notifications disabled")
	}

	store := repository.NewStore(db)
	e := router.New(router.Deps{
		Auth:        handler.NewAuthHandler(cfg, store.Users(), store.Tokens(), logger),
		Venues:      handler.NewVenueHandler(service.NewVenueService(store), logger),
		Events:      handler.NewEventHandler(service.NewEventService(store), service.NewEventQuery(store), logger),
		Enrollments: handler.NewEnrollmentHandler(service.NewEnrollmentService(store), pub, metrics.Enrollment{}, logger),
		Health:      handler.NewHealthHandler(db, rdb),
		JWTSecret:   cfg.JWTSecret,
		Redis:       rdb,
		Cache:       config.LoadCacheConfig(),
		RateLimit:   config.LoadRateLimitConfig(),
		Log:         logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}
	return nil
}
