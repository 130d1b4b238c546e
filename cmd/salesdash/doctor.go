package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/history"
	"sales-dashboard/internal/platform"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/warehouse"
)

const doctorCheckTimeout = 10 * time.Second

type checkResult struct {
	Name   string
	Status string // PASS, WARN, FAIL
	Detail string
}

func doctorCommand() *cli.Command {
	return &cli.Command{
		Name:   "doctor",
		Usage:  "Check dataset, warehouse, workspace, and assistant connectivity",
		Action: runDoctor,
	}
}

func runDoctor(c *cli.Context) error {
	cfg, logger, err := bootstrap(c)
	if err != nil {
		return err
	}

	checks := []checkResult{
		checkDataset(c.Context, cfg),
		checkWarehouse(c.Context, cfg),
		checkWorkspace(c.Context, cfg, logger),
		checkAssistant(cfg),
		checkHistory(cfg),
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CHECK\tSTATUS\tDETAIL")
	failed := false
	for _, check := range checks {
		fmt.Fprintf(w, "%s\t%s\t%s\n", check.Name, check.Status, check.Detail)
		if check.Status == "FAIL" {
			failed = true
		}
	}
	w.Flush()

	if failed {
		return cli.Exit("one or more checks failed", 1)
	}
	return nil
}

func checkDataset(ctx context.Context, cfg *config.Config) checkResult {
	name := "dataset"
	if _, err := os.Stat(cfg.Data.CSVFile); err != nil {
		return checkResult{name, "FAIL", fmt.Sprintf("%s: %v (run salesdash generate)", cfg.Data.CSVFile, err)}
	}

	analytics := services.NewAnalytics()
	loadCtx, cancel := context.WithTimeout(ctx, doctorCheckTimeout)
	defer cancel()
	if err := analytics.LoadFromCSV(loadCtx, cfg.Data.CSVFile); err != nil {
		return checkResult{name, "FAIL", fmt.Sprintf("unreadable: %v", err)}
	}
	summary := analytics.Summary()
	return checkResult{name, "PASS", fmt.Sprintf("%s: %d rows", cfg.Data.CSVFile, summary.Transactions)}
}

func checkWarehouse(ctx context.Context, cfg *config.Config) checkResult {
	name := "warehouse"
	if cfg.Warehouse.Host == "" {
		return checkResult{name, "WARN", "not configured"}
	}

	store, err := warehouse.Open(cfg.Warehouse)
	if err != nil {
		return checkResult{name, "FAIL", err.Error()}
	}
	defer store.Close()

	pingCtx, cancel := context.WithTimeout(ctx, doctorCheckTimeout)
	defer cancel()
	if err := store.Ping(pingCtx); err != nil {
		return checkResult{name, "FAIL", fmt.Sprintf("ping %s: %v", cfg.Warehouse.Driver, err)}
	}
	count, err := store.Count(pingCtx)
	if err != nil {
		return checkResult{name, "WARN", fmt.Sprintf("reachable, count failed: %v (run salesdash load)", err)}
	}
	return checkResult{name, "PASS", fmt.Sprintf("%s: %d rows", cfg.Warehouse.Driver, count)}
}

func checkWorkspace(ctx context.Context, cfg *config.Config, logger *slog.Logger) checkResult {
	name := "workspace"
	if cfg.Platform.BaseURL == "" || cfg.Platform.Token == "" {
		return checkResult{name, "WARN", "not configured"}
	}

	client := platform.NewClient(cfg.Platform.BaseURL, cfg.Platform.Token, cfg.Platform.Retries, logger)

	checkCtx, cancel := context.WithTimeout(ctx, doctorCheckTimeout)
	defer cancel()
	user, err := client.CurrentUser(checkCtx)
	if err != nil {
		return checkResult{name, "FAIL", fmt.Sprintf("identity: %v", err)}
	}

	detail := fmt.Sprintf("authenticated as %s", user.UserName)
	if cfg.Platform.WarehouseID != "" {
		wh, err := client.WarehouseState(checkCtx, cfg.Platform.WarehouseID)
		if err != nil {
			return checkResult{name, "WARN", fmt.Sprintf("%s; warehouse state: %v", detail, err)}
		}
		detail = fmt.Sprintf("%s; warehouse %s is %s", detail, wh.Name, wh.State)
	}
	return checkResult{name, "PASS", detail}
}

func checkAssistant(cfg *config.Config) checkResult {
	name := "assistant"
	if cfg.Assistant.APIKey == "" {
		return checkResult{name, "WARN", "no API key, ask runs in offline mode"}
	}
	if _, err := os.Stat(cfg.Assistant.ContextFile); err != nil {
		return checkResult{name, "WARN", fmt.Sprintf("context file %s: %v", cfg.Assistant.ContextFile, err)}
	}
	return checkResult{name, "PASS", fmt.Sprintf("model %s, context %s", cfg.Assistant.Model, cfg.Assistant.ContextFile)}
}

func checkHistory(cfg *config.Config) checkResult {
	name := "history"
	hist, err := history.Open(cfg.History.Path)
	if err != nil {
		return checkResult{name, "FAIL", fmt.Sprintf("%s: %v", cfg.History.Path, err)}
	}
	defer hist.Close()
	return checkResult{name, "PASS", cfg.History.Path}
}
