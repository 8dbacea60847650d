package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/spacesedan/sentiflow-kv/config"
	"github.com/spacesedan/sentiflow-kv/internal/app"
	"github.com/spacesedan/sentiflow-kv/internal/logging"
	"github.com/spacesedan/sentiflow-kv/internal/server"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(os.Stderr, cfg.LogLevel)

	ctx := context.Background()
	slog.Info("Lambda cold start: Initializing...", slog.String("environment", env))
	a, err := app.New(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize", slog.String("error", err.Error()))
		os.Exit(1)
	}

	a.Start(ctx)

	var opts []server.Option
	if a.ModelHealthy != nil {
		opts = append(opts, server.WithModelHealth(a.ModelHealthy))
	}
	srv := server.NewServer(a.Service, opts...)
	lambda.Start(srv.HandleLambda)
}
