package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	echoadapter "github.com/awslabs/aws-lambda-go-api-proxy/echo"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Analyzer runs a raw sentiment analysis request body through the pipeline.
type Analyzer interface {
	Handle(ctx context.Context, body []byte) ([]byte, error)
}

type Server struct {
	echo         *echo.Echo
	analyzer     Analyzer
	modelHealthy *atomic.Bool
	startTime    time.Time
	port         string
	lambda       *echoadapter.EchoLambdaV2
}

type Option func(*Server)

func WithPort(port string) Option {
	return func(s *Server) { s.port = port }
}

// WithModelHealth makes readiness follow the model health monitor.
func WithModelHealth(healthy *atomic.Bool) Option {
	return func(s *Server) { s.modelHealthy = healthy }
}

func NewServer(analyzer Analyzer, opts ...Option) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				slog.Warn("[Server] Request failed", attrs...)
				return nil
			}
			slog.Info("[Server] Request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableErrorHandler: true,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			slog.Error("[Server] Recovered from panic",
				slog.String("error", err.Error()),
				slog.String("stack", string(stack)))
			return err
		},
	}))

	srv := &Server{
		echo:      e,
		analyzer:  analyzer,
		startTime: time.Now(),
		port:      "8080",
	}
	for _, opt := range opts {
		opt(srv)
	}

	srv.registerRoutes()
	srv.lambda = echoadapter.NewV2(e)
	return srv
}

func (s *Server) Start() error {
	slog.Info("[Server] Starting server", slog.String("port", s.port))
	err := s.echo.Start(fmt.Sprintf(":%s", s.port))
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("[Server] Shutting down")
	return s.echo.Shutdown(ctx)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
