package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"marketplace-ads/internal/adapter/catalog"
	httpadapter "marketplace-ads/internal/adapter/http"
	"marketplace-ads/internal/adapter/kafka"
	"marketplace-ads/internal/adapter/memory"
	"marketplace-ads/internal/adapter/postgres"
	"marketplace-ads/internal/adapter/reach"
	"marketplace-ads/internal/adapter/sqlite"
	"marketplace-ads/internal/adapter/usecase"
	"marketplace-ads/internal/config"
	"marketplace-ads/internal/config/configs"
	"marketplace-ads/internal/core/port"
	"marketplace-ads/internal/db"
	"marketplace-ads/internal/telemetry"
)

// closer releases a resource on shutdown.
type closer struct {
	name  string
	close func(context.Context) error
}

// main is the entry point of the campaign engine. It loads configuration,
// opens the configured store, wires the optional reach, event and catalog
// integrations, then serves HTTP until a termination signal arrives.
func main() {
	os.Exit(run())
}

func run() int {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env", slog.Any("error", err))
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		return 1
	}
	logger := cfg.Log.New(os.Stdout, cfg.Env)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var closers []closer
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		var result *multierror.Error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].close(shutdownCtx); err != nil {
				result = multierror.Append(result, fmt.Errorf("%s: %w", closers[i].name, err))
			}
		}
		if err := result.ErrorOrNil(); err != nil {
			logger.Error("shutdown error", slog.Any("error", err))
		}
	}()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.Telemetry)
	if err != nil {
		logger.Error("telemetry setup error", slog.Any("error", err))
		return 1
	}
	closers = append(closers, closer{"telemetry", shutdownTracing})

	repo, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("store setup error", slog.String("driver", cfg.Store.Driver), slog.Any("error", err))
		return 1
	}
	closers = append(closers, closer{"store", closeStore})

	if cfg.Store.SeedDemo {
		if err = db.Seed(ctx, repo, logger); err != nil {
			logger.Error("seed error", slog.Any("error", err))
			return 1
		}
	}

	opts := []usecase.Option{
		usecase.WithLogger(logger),
		usecase.WithPlacements(cfg.Ads.Placements...),
	}

	estimator, closeReach, err := openReach(ctx, cfg)
	if err != nil {
		logger.Error("reach setup error", slog.Any("error", err))
		return 1
	}
	closers = append(closers, closer{"reach", closeReach})
	opts = append(opts, usecase.WithReach(estimator, reach.NewEstimatePolicy(estimator, cfg.Reach)))

	if cfg.Kafka.Enabled() {
		publisher, err := kafka.NewPublisher(cfg.Kafka, logger)
		if err != nil {
			logger.Error("kafka setup error", slog.Any("error", err))
			return 1
		}
		closers = append(closers, closer{"kafka", func(context.Context) error { return publisher.Close() }})
		opts = append(opts, usecase.WithPublisher(publisher))
	}

	var items port.Catalog
	if cfg.Catalog.BaseURL == "" {
		items = catalog.NewPermissive(cfg.Catalog.PageBaseURL, logger)
	} else {
		items, err = catalog.NewHTTPCatalog(cfg.Catalog, catalog.WithLogger(logger))
		if err != nil {
			logger.Error("catalog setup error", slog.Any("error", err))
			return 1
		}
	}

	svc := usecase.NewAdUseCase(repo, items, opts...)
	handler := httpadapter.NewHandler(svc, httpadapter.NewAuthenticator(cfg.Auth, logger), logger)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: otelhttp.NewHandler(handler.Router(), "http.server"),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)), slog.String("store", cfg.Store.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		logger.Info("server gracefully stopped")
		return nil
	})
	if err = g.Wait(); err != nil {
		logger.Error("server error", slog.Any("error", err))
		return 1
	}
	return 0
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (port.CampaignRepository, func(context.Context) error, error) {
	switch cfg.Store.Driver {
	case configs.DriverPostgres:
		if cfg.Psql.RunMigrations {
			if err := db.Migrate(cfg.Psql.Addr.String()); err != nil {
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
			logger.Info("migrations applied successfully")
		}
		pool, err := db.NewPostgresPool(ctx, cfg.Psql)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewCampaignRepository(pool), func(context.Context) error { pool.Close(); return nil }, nil
	case configs.DriverSQLite:
		conn, err := sqlite.Open(ctx, cfg.SQLite)
		if err != nil {
			return nil, nil, err
		}
		return sqlite.NewCampaignRepository(conn), func(context.Context) error { return conn.Close() }, nil
	default:
		logger.Warn("using in-memory store, campaigns are lost on restart")
		return memory.NewCampaignRepository(), func(context.Context) error { return nil }, nil
	}
}

// openReach counts reach in Redis when an address is configured so that
// every replica sees the same estimate.
func openReach(ctx context.Context, cfg config.Config) (port.ReachEstimator, func(context.Context) error, error) {
	if cfg.Redis.Address == "" {
		return reach.NewMemoryEstimator(cfg.Reach.Window), func(context.Context) error { return nil }, nil
	}
	client, err := reach.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, err
	}
	return reach.NewRedisEstimator(client, cfg.Reach.Window), func(context.Context) error { return client.Close() }, nil
}
