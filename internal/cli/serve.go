package cli

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spacesedan/sentiflow-kv/internal/app"
	"github.com/spacesedan/sentiflow-kv/internal/server"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve POST /api/sentiment-analysis over HTTP",
		RunE:  runServe,
	}

	cmd.Flags().String("port", "8080", "HTTP listen port")
	viper.BindPFlag("port", cmd.Flags().Lookup("port"))

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()
	a.Start(ctx)

	opts := []server.Option{server.WithPort(cfg.Port)}
	if a.ModelHealthy != nil {
		opts = append(opts, server.WithModelHealth(a.ModelHealthy))
	}
	srv := server.NewServer(a.Service, opts...)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		stop()
		return err
	case <-ctx.Done():
	}

	slog.Info("[Serve] Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
