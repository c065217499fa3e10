package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"agropredict/internal/cache"
	"agropredict/internal/catalog"
	"agropredict/internal/config"
	"agropredict/internal/controller"
	"agropredict/internal/events"
	"agropredict/internal/external"
	"agropredict/internal/repository"
	"agropredict/internal/service"
)

func serveCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "HTTP port, overrides PORT")
	return cmd
}

// openDatabase connects and migrates the configured database
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := repository.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func runServe(parent context.Context, cfg *config.Config) error {
	logger := newLogger(cfg.LogFormat)
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("database handle: %w", err)
	}
	defer sqlDB.Close()

	catalogRepo := repository.NewCatalogRepository(db)
	provider := catalog.NewProvider(catalogRepo)
	if err := provider.Reload(ctx); err != nil {
		return err
	}
	if provider.Snapshot().Empty() {
		logger.Warn("catalog is empty, run the seed command first")
	}

	analysisCache, closeCache := newAnalysisCache(ctx, cfg, logger)
	defer closeCache()
	publisher := newPublisher(cfg, logger)
	defer publisher.Close()

	var assistant external.Assistant = external.MockAssistant{}
	if cfg.AssistantEndpoint != "" && cfg.AssistantAPIKey != "" {
		assistant = external.NewChatAssistant(cfg.AssistantEndpoint, cfg.AssistantAPIKey, cfg.AssistantModel)
	}

	var seeds service.SeedFunc
	if cfg.RandomSeed != nil {
		seeds = service.FixedSeed(*cfg.RandomSeed)
		logger.Info("prediction seed pinned", "seed", *cfg.RandomSeed)
	}

	predictionRepo := repository.NewPredictionRepository(db)
	analysisRepo := repository.NewAnalysisRepository(db)

	predictionService := service.NewPredictionService(predictionRepo, provider, analysisCache, publisher, seeds, logger)
	analysisService := service.NewAnalysisService(predictionRepo, analysisRepo, analysisCache, logger)
	dashboardService := service.NewDashboardService(predictionRepo, provider, external.StubClimate{}, logger)
	comparisonService := service.NewComparisonService(predictionRepo)
	catalogService := service.NewCatalogService(provider, catalogRepo)

	if cfg.LogFormat == "json" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := controller.NewRouter(controller.Controllers{
		Predictions:  controller.NewPredictionController(predictionService, analysisService, logger),
		Analytics:    controller.NewAnalyticsController(dashboardService, comparisonService, logger),
		Catalog:      controller.NewCatalogController(catalogService, logger),
		Calculators:  controller.NewCalculatorController(logger),
		Integrations: controller.NewIntegrationController(assistant, external.NewMicroservice(cfg.MicroserviceURL), sqlDB, logger),
	}, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port, "db_driver", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", "timeout", cfg.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// newAnalysisCache uses Redis when REDIS_URL is set and reachable, and the
// in-process cache otherwise
func newAnalysisCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cache.AnalysisCache, func()) {
	if cfg.RedisURL != "" {
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		r, err := cache.NewRedis(pingCtx, cfg.RedisURL, cfg.AnalysisCacheTTL)
		if err == nil {
			logger.Info("analysis cache backed by redis")
			return r, func() { _ = r.Close() }
		}
		logger.Warn("redis unavailable, using memory cache", "error", err.Error())
	}
	return cache.NewMemory(cfg.AnalysisCacheTTL), func() {}
}

// newPublisher connects to NATS when NATS_URL is set, and drops events
// otherwise
func newPublisher(cfg *config.Config, logger *slog.Logger) events.Publisher {
	if cfg.NatsURL == "" {
		return events.Noop{}
	}
	n, err := events.NewNATS(events.NATSConfig{
		URL:            cfg.NatsURL,
		Name:           "agropredict",
		ReconnectWait:  2 * time.Second,
		MaxReconnects:  10,
		ConnectTimeout: 5 * time.Second,
	})
	if err != nil {
		logger.Warn("nats unavailable, events disabled", "error", err.Error())
		return events.Noop{}
	}
	logger.Info("publishing prediction events", "url", cfg.NatsURL)
	return n
}
