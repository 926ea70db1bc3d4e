package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/pageza/alchemorsel-recipe-ai/backend/config"
)

// overridden during build with ldflags
var version = "dev"

func main() {
	cmd := &cli.Command{
		Name:    "recipe-ai",
		Usage:   "Recipe generation API backed by Gemini",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file; environment variables take precedence",
				Sources: cli.EnvVars("CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:  "api-key",
				Usage: "Gemini API key, takes precedence over GEMINI_API_KEY and the env file",
			},
			&cli.BoolFlag{
				Name:  "dev-fallback",
				Usage: "Serve a mock recipe when Gemini rejects the API key",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on",
			},
			&cli.BoolFlag{
				Name:  "setup-bucket-policy",
				Usage: "Apply the public-read policy for uploaded images to the S3 bucket on startup",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := config.LoadConfig(cmd.String("config"))
			if err != nil {
				return err
			}
			if cmd.IsSet("api-key") {
				cfg.GeminiAPIKeyOverride = cmd.String("api-key")
			}
			if cmd.IsSet("dev-fallback") {
				cfg.GeminiDevFallback = cmd.Bool("dev-fallback")
			}
			if cmd.IsSet("port") {
				cfg.ServerPort = int(cmd.Int("port"))
			}
			if err := config.ValidateConfig(cfg); err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}
			return run(ctx, cfg, cmd.Bool("setup-bucket-policy"))
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
