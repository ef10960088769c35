package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"newsolvr/internal/app"
	"newsolvr/internal/config"
	"newsolvr/internal/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)

	cliApp := &cli.App{
		Name:  "newsolvr",
		Usage: "collect news articles, extract business problems, and rank them",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "execute one full pipeline pass",
				Action: func(c *cli.Context) error { return withApp(cfg, logger, (*app.Application).RunOnce) },
			},
			{
				Name:   "serve",
				Usage:  "serve the ranked-problems web view",
				Action: func(c *cli.Context) error { return withApp(cfg, logger, (*app.Application).Serve) },
			},
			{
				Name:   "schedule",
				Usage:  "run the pipeline on the configured cron expression",
				Action: func(c *cli.Context) error { return withApp(cfg, logger, (*app.Application).Schedule) },
			},
			{
				Name:  "export",
				Usage: "export the article table as CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Usage: "output file path (default stdout)"},
				},
				Action: func(c *cli.Context) error { return exportCSV(c, cfg, logger) },
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// withApp builds the application, runs one of its lifecycle methods under a
// signal-aware context, and tears it down.
func withApp(cfg config.Config, logger *slog.Logger, fn func(*app.Application, context.Context) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Error("close application", "error", err)
		}
	}()

	return fn(application, ctx)
}

func exportCSV(c *cli.Context, cfg config.Config, logger *slog.Logger) error {
	out := os.Stdout
	if path := c.String("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	return withApp(cfg, logger, func(a *app.Application, ctx context.Context) error {
		count, err := a.Export(ctx, out)
		if err != nil {
			return err
		}
		logger.Info("export finished", "rows", count)
		return nil
	})
}
