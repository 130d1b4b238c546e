package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/history"
	"sales-dashboard/internal/insight"
	"sales-dashboard/internal/middleware"
	"sales-dashboard/internal/report"
	"sales-dashboard/internal/server"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/warehouse"
)

const csvLoadTimeout = 30 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the dashboard server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "source",
				Usage: "Dataset source: file or warehouse",
				Value: "file",
			},
		},
		Action: runServe,
	}
}

// loadDataset fills the analytics engine from the CSV file or, with
// --source warehouse, from the configured warehouse.
func loadDataset(c *cli.Context, cfg *config.Config, analytics *services.Analytics, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(c.Context, csvLoadTimeout)
	defer cancel()

	start := time.Now()
	switch source := c.String("source"); source {
	case "file":
		if err := analytics.LoadFromCSV(ctx, cfg.Data.CSVFile); err != nil {
			return fmt.Errorf("load dataset: %w", err)
		}
		logger.Info("dataset loaded", "path", cfg.Data.CSVFile, "duration", time.Since(start))
	case "warehouse":
		store, err := warehouse.Open(cfg.Warehouse)
		if err != nil {
			return fmt.Errorf("open warehouse: %w", err)
		}
		defer store.Close()
		txs, err := store.FetchAll(ctx)
		if err != nil {
			return fmt.Errorf("fetch dataset from warehouse: %w", err)
		}
		analytics.SetData(txs)
		logger.Info("dataset loaded", "source", "warehouse", "rows", len(txs), "duration", time.Since(start))
	default:
		return fmt.Errorf("unknown dataset source %q", source)
	}
	return nil
}

func runServe(c *cli.Context) error {
	cfg, logger, err := bootstrap(c)
	if err != nil {
		return err
	}

	analytics := services.NewAnalytics()
	analytics.SetCacheDir(cfg.Data.CacheDir)

	if err := loadDataset(c, cfg, analytics, logger); err != nil {
		return err
	}

	hist, err := history.Open(cfg.History.Path)
	if err != nil {
		logger.Warn("history unavailable, asks will go unrecorded", "error", err)
		hist = nil
	}

	translator := insight.NewTranslator(
		cfg.Assistant.APIKey,
		cfg.Assistant.Model,
		cfg.Assistant.MaxTokens,
		cfg.Assistant.ContextFile,
	)
	assistant := insight.NewService(translator, insight.NewExecutor(analytics), hist, logger)
	logger.Info("assistant ready", "translator", translator.Name())

	srv := server.NewServer(analytics, assistant, logger)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)
	handler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
		middleware.Compression(logger),
	)(srv)

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	if cfg.Data.Watch && c.String("source") == "file" {
		watcher, err := services.NewDatasetWatcher(analytics, cfg.Data.CSVFile, logger)
		if err != nil {
			return fmt.Errorf("start dataset watcher: %w", err)
		}
		if err := watcher.Start(c.Context); err != nil {
			return fmt.Errorf("start dataset watcher: %w", err)
		}
		gracefulServer.RegisterShutdownHook("dataset watcher", func(ctx context.Context) error {
			watcher.Stop()
			return nil
		})
	}

	scheduler, err := report.NewScheduler(cfg.Report.Schedule, scheduledReportJob(cfg, analytics, hist, logger), logger)
	if err != nil {
		return fmt.Errorf("parse report schedule: %w", err)
	}
	if scheduler != nil {
		scheduler.Start(c.Context)
		gracefulServer.RegisterShutdownHook("report scheduler", func(ctx context.Context) error {
			scheduler.Stop()
			return nil
		})
	}

	if hist != nil {
		gracefulServer.RegisterShutdownHook("ask history", func(ctx context.Context) error {
			return hist.Close()
		})
	}

	return gracefulServer.ListenAndServe()
}

// scheduledReportJob emits the markdown report to the output directory and,
// when a Slack channel is configured, posts it there too.
func scheduledReportJob(cfg *config.Config, analytics *services.Analytics, hist *history.Store, logger *slog.Logger) func(ctx context.Context) {
	return func(ctx context.Context) {
		data := report.FromAnalytics(analytics)
		content := data.Markdown()

		path, err := report.WriteFile(content, cfg.Report.OutputDir, data.GeneratedAt)
		recordRun(hist, "scheduled", path, err)
		if err != nil {
			logger.Error("scheduled report write failed", "error", err)
			return
		}
		logger.Info("scheduled report written", "path", path)

		if cfg.Report.SlackToken != "" && cfg.Report.SlackChannel != "" {
			err := report.DeliverSlack(report.NewSlackClient(cfg.Report.SlackToken), cfg.Report.SlackChannel, content)
			recordRun(hist, "scheduled", "slack:"+cfg.Report.SlackChannel, err)
			if err != nil {
				logger.Error("scheduled report slack delivery failed", "error", err)
				return
			}
			logger.Info("scheduled report delivered to slack", "channel", cfg.Report.SlackChannel)
		}
	}
}

func recordRun(hist *history.Store, kind, destination string, runErr error) {
	if hist == nil {
		return
	}
	detail := ""
	if runErr != nil {
		detail = runErr.Error()
	}
	_ = hist.RecordReportRun(history.ReportRun{
		Kind:        kind,
		Destination: destination,
		OK:          runErr == nil,
		Detail:      detail,
	})
}
