package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/eventdesk-backend/api/routes"
	"github.com/angelmondragon/eventdesk-backend/internal/quotes"
	"github.com/angelmondragon/eventdesk-backend/pkg/config"
	"github.com/angelmondragon/eventdesk-backend/pkg/db"
	"github.com/angelmondragon/eventdesk-backend/pkg/db/models"
	"github.com/angelmondragon/eventdesk-backend/pkg/logger"
	"github.com/angelmondragon/eventdesk-backend/pkg/metrics"
	"github.com/angelmondragon/eventdesk-backend/pkg/outbox"
	"github.com/angelmondragon/eventdesk-backend/pkg/pdf"
	"github.com/angelmondragon/eventdesk-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if cfg.FeatureFlags.AutoMigrate || cfg.DB.IsSQLite() {
		if err := dbClient.AutoMigrate(context.Background(), models.All()...); err != nil {
			return err
		}
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, redisClient.Close())
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	quoteService, err := quotes.NewService(quotes.ServiceParams{
		Repository:      quotes.NewRepository(dbClient.DB()),
		Tx:              dbClient,
		Outbox:          outbox.NewService(outbox.NewRepository(dbClient.DB()), logg),
		Renderer:        pdf.NewRenderer(cfg.Quotes.CompanyName),
		Logger:          logg,
		Metrics:         metrics.NewQuoteMetrics(registry),
		DefaultTaxRate:  cfg.Quotes.TaxRate(),
		ReferencePrefix: cfg.Quotes.ReferencePrefix,
	})
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Dependencies{
			DB:           dbClient,
			Redis:        redisClient,
			RedisPinger:  redisClient,
			Quotes:       quoteService,
			MetricsRoute: metrics.Handler(registry),
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "api server shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
