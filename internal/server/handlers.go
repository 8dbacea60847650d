package server

import (
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/spacesedan/sentiflow-kv/internal/analysis"
)

func (s *Server) handleSentimentAnalysis(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body")
	}

	out, err := s.analyzer.Handle(c.Request().Context(), body)
	if err != nil {
		status := analysis.StatusFor(err)
		return echo.NewHTTPError(status, errorMessage(status, err)).SetInternal(err)
	}
	return c.JSONBlob(http.StatusOK, out)
}

// errorMessage keeps upstream and internal details out of response bodies.
// They stay on the internal error for logging.
func errorMessage(status int, err error) string {
	switch status {
	case http.StatusBadRequest:
		return err.Error()
	case http.StatusBadGateway:
		return "model inference failed"
	default:
		return http.StatusText(status)
	}
}

func (s *Server) handleNotFound(c echo.Context) error {
	return c.String(http.StatusNotFound, "Not found")
}

func (s *Server) handleLiveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startTime).Seconds(),
	})
}

func (s *Server) handleReadiness(c echo.Context) error {
	if s.modelHealthy != nil && !s.modelHealthy.Load() {
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"status":       "unhealthy",
			"failed_check": "model",
		})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}
