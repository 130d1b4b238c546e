package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/history"
	"sales-dashboard/internal/report"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/warehouse"
)

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Render the sales summary report",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format (table, md, json)",
			},
			&cli.StringFlag{
				Name:  "out",
				Usage: "Directory for the markdown report file (defaults to the configured dir)",
			},
			&cli.StringFlag{
				Name:  "source",
				Value: "file",
				Usage: "Aggregate source (file, warehouse)",
			},
			&cli.BoolFlag{
				Name:  "slack",
				Usage: "Also post the report to the configured Slack channel",
			},
		},
		Action: runReport,
	}
}

func runReport(c *cli.Context) error {
	cfg, logger, err := bootstrap(c)
	if err != nil {
		return err
	}

	data, err := reportData(c, cfg)
	if err != nil {
		return err
	}

	format := c.String("format")
	content, err := data.Render(format)
	if err != nil {
		return err
	}

	hist, histErr := history.Open(cfg.History.Path)
	if histErr != nil {
		logger.Warn("history unavailable, runs will go unrecorded", "error", histErr)
		hist = nil
	} else {
		defer hist.Close()
	}

	switch format {
	case "md", "markdown":
		dir := c.String("out")
		if dir == "" {
			dir = cfg.Report.OutputDir
		}
		path, err := report.WriteFile(content, dir, data.GeneratedAt)
		recordRun(hist, "manual", path, err)
		if err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		logger.Info("report written", "path", path, "source", data.Source)
		fmt.Printf("Report written to %s\n", path)
	default:
		fmt.Println(content)
		recordRun(hist, "manual", "stdout", nil)
	}

	if c.Bool("slack") {
		if cfg.Report.SlackToken == "" {
			return fmt.Errorf("slack delivery requested but no token configured")
		}
		err := report.DeliverSlack(report.NewSlackClient(cfg.Report.SlackToken), cfg.Report.SlackChannel, data.Markdown())
		recordRun(hist, "manual", "slack:"+cfg.Report.SlackChannel, err)
		if err != nil {
			return err
		}
		logger.Info("report delivered to slack", "channel", cfg.Report.SlackChannel)
	}
	return nil
}

func reportData(c *cli.Context, cfg *config.Config) (report.Data, error) {
	switch c.String("source") {
	case "warehouse":
		store, err := warehouse.Open(cfg.Warehouse)
		if err != nil {
			return report.Data{}, err
		}
		defer store.Close()
		return report.FromWarehouse(c.Context, store)
	case "file", "":
		analytics := services.NewAnalytics()
		loadCtx, cancel := context.WithTimeout(c.Context, csvLoadTimeout)
		defer cancel()
		if err := analytics.LoadFromCSV(loadCtx, cfg.Data.CSVFile); err != nil {
			return report.Data{}, fmt.Errorf("load dataset: %w", err)
		}
		return report.FromAnalytics(analytics), nil
	default:
		return report.Data{}, fmt.Errorf("unknown report source %q", c.String("source"))
	}
}
