package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/abdesslem/cds/internal/api/cds"
	"github.com/abdesslem/cds/internal/cli"
	"github.com/abdesslem/cds/internal/pkg/config"
	"github.com/abdesslem/cds/internal/telemetry"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CDSCTL_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "cdsctl: %v\n", err)
		return 1
	}

	// Logs go to stderr so stdout stays parseable.
	logger, err := telemetry.NewLogger(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cdsctl: %v\n", err)
		return 1
	}
	slog.SetDefault(logger)

	shutdown, err := telemetry.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.Enabled, os.Stderr, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cdsctl: failed to initialize tracer: %v\n", err)
		return 1
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	timeout, _ := cfg.API.TimeoutDuration()
	client := cds.NewClient(
		cds.WithBaseURL(cfg.API.URL),
		cds.WithUserAgent(cfg.API.UserAgent),
		cds.WithLogger(logger),
		cds.WithHTTPClient(cds.NewHTTPClient(timeout)),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Client:  client,
		Project: cfg.API.Project,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Context: ctx,
	}
	if err := cli.Root(app).Execute(args, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "cdsctl: %v\n", err)
		return 1
	}
	return 0
}
