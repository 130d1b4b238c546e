package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/urfave/cli/v2"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/platform"
)

func deployCommand() *cli.Command {
	return &cli.Command{
		Name:  "deploy",
		Usage: "Bundle the app and deploy it to the workspace",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "name",
				Usage: "App name (defaults to the configured name)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Assemble the bundle and list its contents without uploading",
			},
		},
		Action: runDeploy,
	}
}

func runDeploy(c *cli.Context) error {
	cfg, logger, err := bootstrap(c)
	if err != nil {
		return err
	}

	name := c.String("name")
	if name == "" {
		name = cfg.Platform.AppName
	}
	if name == "" {
		return fmt.Errorf("no app name configured; pass --name or set platform.app_name")
	}

	files := bundleFiles(cfg, c.String("config"))
	if len(files) == 0 {
		return fmt.Errorf("nothing to bundle; generate the dataset and context file first")
	}

	if c.Bool("dry-run") {
		names := make([]string, 0, len(files))
		for n := range files {
			names = append(names, n)
		}
		sort.Strings(names)
		fmt.Printf("Would deploy %q with %d files:\n", name, len(names))
		for _, n := range names {
			fmt.Printf("  %s (%s)\n", n, files[n])
		}
		return nil
	}

	if cfg.Platform.BaseURL == "" || cfg.Platform.Token == "" {
		return fmt.Errorf("platform base URL and token must be configured to deploy")
	}

	bundle, err := platform.BuildBundle(files)
	if err != nil {
		return fmt.Errorf("build bundle: %w", err)
	}
	logger.Info("bundle assembled", "files", len(files), "bytes", len(bundle))

	client := platform.NewClient(cfg.Platform.BaseURL, cfg.Platform.Token, cfg.Platform.Retries, logger)
	deployment, err := client.Deploy(c.Context, name, bundle)
	if err != nil {
		return err
	}

	logger.Info("deployment finished", "id", deployment.ID, "status", deployment.Status)
	fmt.Printf("Deployed %q: %s\n", name, deployment.URL)
	return nil
}

// bundleFiles gathers the artifacts worth shipping: the config file, the
// assistant context, the README, and the dataset. Missing files are skipped.
func bundleFiles(cfg *config.Config, configPath string) map[string]string {
	candidates := map[string]string{
		"llms.txt":  cfg.Assistant.ContextFile,
		"README.md": "README.md",
		"sales.csv": cfg.Data.CSVFile,
	}
	if configPath != "" {
		candidates["salesdash.yaml"] = configPath
	}

	files := make(map[string]string, len(candidates))
	for name, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			files[name] = path
		}
	}
	return files
}
