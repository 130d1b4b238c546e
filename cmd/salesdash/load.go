package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"sales-dashboard/internal/services"
	"sales-dashboard/internal/warehouse"
)

func loadCommand() *cli.Command {
	return &cli.Command{
		Name:  "load",
		Usage: "Ingest the CSV dataset into the configured warehouse",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "input",
				Aliases: []string{"i"},
				Usage:   "CSV path (defaults to the configured dataset path)",
			},
			&cli.BoolFlag{
				Name:  "truncate",
				Usage: "Empty the table before loading",
			},
		},
		Action: runLoad,
	}
}

func runLoad(c *cli.Context) error {
	cfg, logger, err := bootstrap(c)
	if err != nil {
		return err
	}

	input := c.String("input")
	if input == "" {
		input = cfg.Data.CSVFile
	}

	analytics := services.NewAnalytics()
	loadCtx, cancel := context.WithTimeout(c.Context, csvLoadTimeout)
	defer cancel()
	if err := analytics.LoadFromCSV(loadCtx, input); err != nil {
		return fmt.Errorf("read dataset: %w", err)
	}
	transactions := analytics.Transactions()
	logger.Info("dataset read", "path", input, "records", len(transactions))

	store, err := warehouse.Open(cfg.Warehouse)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := c.Context
	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("warehouse unreachable: %w", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	if c.Bool("truncate") {
		if err := store.Truncate(ctx); err != nil {
			return fmt.Errorf("truncate table: %w", err)
		}
		logger.Info("table truncated")
	}

	start := time.Now()
	for offset := 0; offset < len(transactions); offset += warehouse.InsertBatchSize {
		end := offset + warehouse.InsertBatchSize
		if end > len(transactions) {
			end = len(transactions)
		}
		if err := store.InsertTransactions(ctx, transactions[offset:end]); err != nil {
			return fmt.Errorf("insert batch at offset %d: %w", offset, err)
		}
		logger.Info("batch inserted", "offset", offset, "rows", end-offset)
	}

	count, err := store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count rows: %w", err)
	}

	logger.Info("load complete",
		"driver", cfg.Warehouse.Driver,
		"inserted", len(transactions),
		"table_rows", count,
		"duration", time.Since(start),
	)
	fmt.Printf("Loaded %d transactions into %s (%d rows total)\n", len(transactions), cfg.Warehouse.Driver, count)
	return nil
}
