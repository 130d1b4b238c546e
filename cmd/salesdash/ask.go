package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"sales-dashboard/internal/history"
	"sales-dashboard/internal/insight"
	"sales-dashboard/internal/services"
)

func askCommand() *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Ask a natural-language question about the dataset",
		ArgsUsage: `"which region drove Q4 revenue?"`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "table",
				Usage:   "Output format (table, json)",
			},
		},
		Action: runAsk,
	}
}

func runAsk(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("usage: salesdash ask \"your question\"")
	}

	cfg, logger, err := bootstrap(c)
	if err != nil {
		return err
	}

	analytics := services.NewAnalytics()
	loadCtx, cancel := context.WithTimeout(c.Context, csvLoadTimeout)
	defer cancel()
	if err := analytics.LoadFromCSV(loadCtx, cfg.Data.CSVFile); err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	hist, histErr := history.Open(cfg.History.Path)
	if histErr != nil {
		logger.Warn("history unavailable, ask will go unrecorded", "error", histErr)
		hist = nil
	} else {
		defer hist.Close()
	}

	translator := insight.NewTranslator(
		cfg.Assistant.APIKey,
		cfg.Assistant.Model,
		cfg.Assistant.MaxTokens,
		cfg.Assistant.ContextFile,
	)
	assistant := insight.NewService(translator, insight.NewExecutor(analytics), hist, logger)

	answer := assistant.Ask(c.Context, question)

	if c.String("format") == "json" {
		out, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Println(answer.Reply)
	fmt.Println()
	printAnswerTable(answer.Table)
	if answer.Confidence < 0.5 {
		fmt.Printf("\n(low confidence: %.2f, consider rephrasing)\n", answer.Confidence)
	}
	return nil
}

func printAnswerTable(table insight.Table) {
	if len(table.Rows) == 0 {
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(table.Columns, "\t"))
	for _, row := range table.Rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}
