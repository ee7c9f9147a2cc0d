// Command weather-mcp serves Open-Meteo weather tools to an MCP host over
// stdin/stdout. Diagnostics go to stderr; stdout carries only protocol traffic.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/flitsinc/weather-mcp/config"
	"github.com/flitsinc/weather-mcp/logging"
	"github.com/flitsinc/weather-mcp/openmeteo"
	"github.com/flitsinc/weather-mcp/server"
	"github.com/flitsinc/weather-mcp/tools"
	"github.com/flitsinc/weather-mcp/weather"
)

func main() {
	envFile, err := config.LoadEnvFile()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log, err := logging.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer log.Sync()

	client := openmeteo.NewClient(
		openmeteo.WithTimeout(cfg.HTTPTimeout()),
		openmeteo.WithLogger(log),
	)
	svc := weather.NewService(client, cfg.Endpoints())
	srv := server.New(tools.Box(svc.Tools()...), log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("serving on stdio",
		zap.String("server", server.Name),
		zap.String("version", server.Version),
		zap.Duration("timeout", cfg.HTTPTimeout()),
		zap.String("geocoding", cfg.GeocodingBaseURL),
		zap.String("forecast", cfg.ForecastBaseURL),
		zap.String("archive", cfg.ArchiveBaseURL),
		zap.String("envFile", envFile),
	)
	if err := server.Run(ctx, srv); err != nil && ctx.Err() == nil {
		log.Error(fmt.Sprintf("Server stopped: %v", err))
		os.Exit(1)
	}
}
