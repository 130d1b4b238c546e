package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"sales-dashboard/internal/generator"
)

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate the deterministic sales transactions dataset",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Output CSV path (defaults to the configured dataset path)",
			},
			&cli.IntFlag{
				Name:  "records",
				Value: generator.DefaultRecords,
				Usage: "Number of transactions to generate",
			},
			&cli.Int64Flag{
				Name:  "seed",
				Value: generator.DefaultSeed,
				Usage: "RNG seed; the same seed always yields the same dataset",
			},
			&cli.IntFlag{
				Name:  "customers",
				Value: generator.DefaultCustomers,
				Usage: "Size of the customer pool",
			},
			&cli.IntFlag{
				Name:  "salespeople",
				Value: generator.DefaultSalespeople,
				Usage: "Size of the salesperson pool",
			},
			&cli.IntFlag{
				Name:  "window-days",
				Value: generator.DefaultWindowDays,
				Usage: "Length of the date window ending today",
			},
		},
		Action: runGenerate,
	}
}

func runGenerate(c *cli.Context) error {
	cfg, logger, err := bootstrap(c)
	if err != nil {
		return err
	}

	out := c.String("out")
	if out == "" {
		out = cfg.Data.CSVFile
	}

	gen := generator.New(generator.Config{
		Records:     c.Int("records"),
		Seed:        c.Int64("seed"),
		Customers:   c.Int("customers"),
		Salespeople: c.Int("salespeople"),
		WindowDays:  c.Int("window-days"),
	})

	start := time.Now()
	transactions := gen.Generate()
	if err := generator.WriteCSV(out, transactions); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}

	logger.Info("dataset generated",
		"path", out,
		"records", len(transactions),
		"seed", c.Int64("seed"),
		"duration", time.Since(start),
	)
	fmt.Printf("Wrote %d transactions to %s\n", len(transactions), out)
	return nil
}
