package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"ledgervault/docs"
	"ledgervault/internal/cloud"
	"ledgervault/internal/config"
	"ledgervault/internal/database"
	"ledgervault/internal/database/schema"
	"ledgervault/internal/health"
	handlers "ledgervault/internal/http/handler"
	"ledgervault/internal/http/middleware"
	"ledgervault/internal/localstore"
	"ledgervault/internal/logging"
	"ledgervault/internal/metrics"
	"ledgervault/internal/migration"
	"ledgervault/internal/model"
	"ledgervault/internal/otel"
	"ledgervault/internal/repository/postgres"
	"ledgervault/internal/scheduler"
	"ledgervault/internal/service"
	"ledgervault/internal/storage"
	"ledgervault/internal/tasks"
)

const (
	shutdownTimeout    = 15 * time.Second
	bucketSetupTimeout = 10 * time.Second
	taskTimeout        = 30 * time.Second
)

// @title Ledgervault API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	logger := logging.New(os.Stdout, cfg.Location(), cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, logging.Component(logger, "otel"))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize tracing")
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := schema.EnsureMigrated(ctx, db, logging.Component(logger, "schema"), cfg.Database.Host); err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare database schema")
	}

	reg := prometheus.DefaultRegisterer
	m, err := metrics.New(reg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to register metrics")
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to register http metrics")
	}

	cloudClient := newCloudClient(ctx, cfg, logging.Component(logger, "cloud"), m)

	queue := tasks.NewQueue(cfg.Storage.QueueSize, cfg.Storage.QueueWorkers, taskTimeout, logging.Component(logger, "tasks"))
	queue.OnDrop(func(tasks.Task) {
		m.SnapshotUpload(string(model.SnapshotFileMetadata), metrics.OutcomeDropped)
	})

	store, err := localstore.New(cfg.Storage.UploadRoot,
		localstore.WithMetadataBackup(cloudClient, queue),
		localstore.WithLogger(logging.Component(logger, "localstore")),
		localstore.WithMetrics(m),
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize local file store")
	}
	monitor := health.NewMonitor(store.Root(), cloudClient, logging.Component(logger, "health"))

	repo := postgres.NewLedgerPostgres(db)
	sched := scheduler.New(repo, cloudClient, cfg.Backup,
		scheduler.WithLogger(logging.Component(logger, "scheduler")),
		scheduler.WithMetrics(m),
	)
	orch := migration.New(repo, sched, monitor, store, cloudClient,
		migration.Config{
			Workers:      cfg.Migration.Workers,
			FileTimeout:  cfg.Migration.FileTimeout,
			ObjectPrefix: cfg.Migration.ObjectPrefix,
		},
		migration.WithLogger(logging.Component(logger, "migration")),
		migration.WithMetrics(m),
	)
	svc := service.NewStorageService(store, monitor, orch, int64(cfg.Storage.MaxUploadBytes))

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             cfg.Storage.MaxUploadBytes + 1<<20,
		DisableStartupMessage: true,
	})

	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(logging.Component(logger, "http")))
	app.Use(httpMetrics.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	handlers.RegisterRoutes(app, db, svc)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	sched.Start(ctx)

	addr := ":" + cfg.Port
	go func() {
		logger.Info().
			Str("addr", addr).
			Str("upload_root", store.Root()).
			Str("max_upload", humanize.IBytes(uint64(cfg.Storage.MaxUploadBytes))).
			Bool("cloud_configured", cloudClient.Configured()).
			Msg("server starting")
		if err := app.Listen(addr); err != nil {
			logger.Error().Err(err).Msg("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
	sched.Stop()
	if err := queue.Close(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("background tasks abandoned")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("tracing shutdown failed")
	}
}

// newCloudClient returns a client that works without MinIO settings; uploads then fail with a
// configuration error and health reports the client as not ready.
func newCloudClient(ctx context.Context, cfg *config.AppConfig, log zerolog.Logger, m *metrics.Metrics) *cloud.Client {
	opts := []cloud.Option{
		cloud.WithLogger(log),
		cloud.WithMetrics(m),
		cloud.WithSnapshotPrefix(cfg.Backup.SnapshotPrefix),
	}

	if !cfg.MinIO.Configured() {
		log.Warn().Msg("object storage not configured; cloud backups disabled")
		return cloud.NewUnconfigured("MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY and MINIO_BUCKET must be set", opts...)
	}

	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Warn().Err(err).Msg("object storage client unavailable")
		return cloud.NewUnconfigured(err.Error(), opts...)
	}

	bctx, cancel := context.WithTimeout(ctx, bucketSetupTimeout)
	defer cancel()
	if err := objStore.EnsureBucket(bctx); err != nil {
		log.Warn().Err(err).Str("bucket", objStore.Bucket()).Msg("bucket setup failed")
	}

	return cloud.New(objStore, opts...)
}
