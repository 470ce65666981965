// cmd/forecast/main.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/urfave/cli/v2"

	"github.com/saai/forecast-backend/internal/alerting"
	"github.com/saai/forecast-backend/internal/cache"
	"github.com/saai/forecast-backend/internal/config"
	"github.com/saai/forecast-backend/internal/pipeline"
	"github.com/saai/forecast-backend/internal/queue"
	"github.com/saai/forecast-backend/internal/repository/postgres"
	"github.com/saai/forecast-backend/internal/service"
	"github.com/saai/forecast-backend/internal/storage"
	"github.com/saai/forecast-backend/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "forecast",
		Usage: "Run the demand forecasting pipeline",
		Before: func(c *cli.Context) error {
			cfg := config.Load()
			logger.SetLevel(cfg.Server.Mode)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "orchestrate",
				Usage:  "Enqueue one prediction job per active tenant",
				Action: runOrchestrate,
			},
			{
				Name:  "work",
				Usage: "Consume tenant jobs and generate predictions",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "once",
						Usage: "Drain the queue and exit instead of polling forever",
					},
				},
				Action: runWork,
			},
			{
				Name:  "migrate",
				Usage: "Apply schema migrations in order",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db-url",
						Usage:    "Database connection string",
						Required: true,
						EnvVars:  []string{"DATABASE_URL"},
					},
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Directory containing .sql migration files",
						Value: "./migrations",
					},
				},
				Action: runMigrate,
			},
			{
				Name:  "train",
				Usage: "Train seasonal models for recently active products",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "tenant",
						Usage: "Train a single tenant instead of every active one",
					},
				},
				Action: runTrain,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runOrchestrate(c *cli.Context) error {
	cfg := config.Load()

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	redisClient, _, err := cache.NewRedisClient(cfg.Cache)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	ctx, stop := signalContext()
	defer stop()

	orchestrator := pipeline.NewOrchestrator(
		postgres.NewTenantRepository(db.DB),
		queue.NewRedisQueue(redisClient, cfg.Queue.Name, cfg.Queue.PollTimeout),
	)

	enqueued, err := orchestrator.Run(ctx)
	if err != nil {
		return err
	}
	logger.Log.Info().Int("enqueued", enqueued).Msg("Dispatch pass done")
	return nil
}

func runWork(c *cli.Context) error {
	cfg := config.Load()

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	redisClient, _, err := cache.NewRedisClient(cfg.Cache)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()

	objectStore, err := storage.NewMinioClient(cfg.ModelStore)
	if err != nil {
		return fmt.Errorf("connect to model store: %w", err)
	}

	predictionCache, err := cache.NewPredictionCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Cache unavailable, predicting without it")
		predictionCache = cache.NewNoopPredictionCache()
	}

	products := postgres.NewProductRepository(db.DB)
	forecastService := service.NewForecastService(
		postgres.NewSalesRepository(db.DB),
		products,
		postgres.NewPredictionRepository(db),
		postgres.NewNotificationRepository(db),
		predictionCache,
		storage.NewModelStore(objectStore),
		alerting.NewRedisSink(redisClient, cfg.Alerts.Channel),
		cfg.Forecast,
	)

	ctx, stop := signalContext()
	defer stop()

	worker := pipeline.NewWorker(
		queue.NewRedisQueue(redisClient, cfg.Queue.Name, cfg.Queue.PollTimeout),
		products,
		forecastService,
	)
	return worker.Run(ctx, c.Bool("once"))
}

func runMigrate(c *cli.Context) error {
	// Migration files hold several statements per file; pgx's default
	// extended protocol prepares each Exec and rejects multi-command
	// strings, so migrations run over the simple protocol.
	db, err := sql.Open("pgx", withSimpleProtocol(c.String("db-url")))
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(c.String("dir"), "*.sql"))
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		contents, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		if _, err := db.ExecContext(c.Context, string(contents)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
		logger.Log.Info().Str("file", filepath.Base(file)).Msg("Migration applied")
	}
	return nil
}

func runTrain(c *cli.Context) error {
	cfg := config.Load()

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	objectStore, err := storage.NewMinioClient(cfg.ModelStore)
	if err != nil {
		return fmt.Errorf("connect to model store: %w", err)
	}

	trainingService := service.NewTrainingService(
		postgres.NewSalesRepository(db.DB),
		storage.NewModelStore(objectStore),
		cfg.Forecast,
	)

	ctx, stop := signalContext()
	defer stop()

	tenantIDs := []string{c.String("tenant")}
	if tenantIDs[0] == "" {
		tenants, err := postgres.NewTenantRepository(db.DB).ListActive(ctx)
		if err != nil {
			return fmt.Errorf("list active tenants: %w", err)
		}
		tenantIDs = tenantIDs[:0]
		for _, tenant := range tenants {
			tenantIDs = append(tenantIDs, tenant.ID)
		}
	}

	for _, tenantID := range tenantIDs {
		stats, err := trainingService.TrainTenant(ctx, tenantID)
		if err != nil {
			logger.Log.Error().Err(err).Str("tenant", tenantID).Msg("Training pass failed")
			continue
		}
		logger.Log.Info().
			Str("tenant", tenantID).
			Int("candidates", stats.Candidates).
			Int("trained", stats.Trained).
			Int("skipped", stats.Skipped).
			Int("failed", stats.Failed).
			Msg("Training pass done")
	}
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// withSimpleProtocol appends pgx's simple-protocol option to a connection
// string, handling both URL and keyword/value forms.
func withSimpleProtocol(dsn string) string {
	const option = "default_query_exec_mode=simple_protocol"
	switch {
	case strings.Contains(dsn, option):
		return dsn
	case strings.Contains(dsn, "?"):
		return dsn + "&" + option
	case strings.Contains(dsn, "://"):
		return dsn + "?" + option
	case dsn == "":
		return option
	default:
		return dsn + " " + option
	}
}
