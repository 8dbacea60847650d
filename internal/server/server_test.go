package server

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/sentiflow-kv/internal/analysis"
	"github.com/spacesedan/sentiflow-kv/internal/sentiment"
)

type mockAnalyzer struct {
	out   []byte
	err   error
	calls int
	body  []byte
}

func (m *mockAnalyzer) Handle(_ context.Context, body []byte) ([]byte, error) {
	m.calls++
	m.body = body
	return m.out, m.err
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestSentimentAnalysis_OK(t *testing.T) {
	m := &mockAnalyzer{out: []byte(`{"sentiment":"positive"}`)}
	srv := NewServer(m)

	rec := do(t, srv, http.MethodPost, "/api/sentiment-analysis", `{"sentence":"I am so happy today"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sentiment":"positive"}`, rec.Body.String())
	assert.Equal(t, `{"sentence":"I am so happy today"}`, string(m.body))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestSentimentAnalysis_ErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"decode error", analysis.ErrDecode, http.StatusBadRequest},
		{"inference error", &sentiment.InferenceError{Err: context.DeadlineExceeded}, http.StatusBadGateway},
		{"internal error", analysis.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(&mockAnalyzer{err: tt.err})
			rec := do(t, srv, http.MethodPost, "/api/sentiment-analysis", `{}`)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

func TestSentimentAnalysis_UpstreamErrorNotExposed(t *testing.T) {
	upstream := errors.New(`Post "https://internal-tgi.example:8443/generate": connection refused`)
	srv := NewServer(&mockAnalyzer{err: &sentiment.InferenceError{Err: upstream}})

	rec := do(t, srv, http.MethodPost, "/api/sentiment-analysis", `{"sentence":"hi"}`)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"message":"model inference failed"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "internal-tgi")
}

func TestSentimentAnalysis_DecodeErrorKeepsReason(t *testing.T) {
	srv := NewServer(&mockAnalyzer{err: fmt.Errorf("%w: missing field \"sentence\"", analysis.ErrDecode)})

	rec := do(t, srv, http.MethodPost, "/api/sentiment-analysis", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing field")
}

func TestPanicIsRecoveredAndLogged(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	srv := NewServer(&mockAnalyzer{})
	srv.echo.GET("/boom", func(c echo.Context) error { panic("kaboom") })

	rec := do(t, srv, http.MethodGet, "/boom", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, logs.String(), "[Server] Request failed")
	assert.Contains(t, logs.String(), "uri=/boom")
	assert.Contains(t, logs.String(), "status=500")
	assert.Contains(t, logs.String(), "[Server] Recovered from panic")
	assert.Contains(t, logs.String(), "kaboom")
}

func TestOtherAPIPaths_NotFound(t *testing.T) {
	m := &mockAnalyzer{}
	srv := NewServer(m)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/other"},
		{http.MethodPost, "/api/other"},
		{http.MethodDelete, "/api/a/b/c"},
		{http.MethodGet, "/api/sentiment-analysis"},
	} {
		rec := do(t, srv, tc.method, tc.path, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, "Not found", rec.Body.String())
	}
	assert.Zero(t, m.calls)
}

func TestHealthEndpoints(t *testing.T) {
	var healthy atomic.Bool
	srv := NewServer(&mockAnalyzer{}, WithModelHealth(&healthy))

	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/health/live", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, do(t, srv, http.MethodGet, "/health/ready", "").Code)

	healthy.Store(true)
	rec := do(t, srv, http.MethodGet, "/health/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ready"}`, rec.Body.String())
}

func TestReadinessWithoutMonitor(t *testing.T) {
	srv := NewServer(&mockAnalyzer{})
	assert.Equal(t, http.StatusOK, do(t, srv, http.MethodGet, "/health/ready", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := NewServer(&mockAnalyzer{})
	rec := do(t, srv, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestHandleLambda(t *testing.T) {
	m := &mockAnalyzer{out: []byte(`{"sentiment":"negative"}`)}
	srv := NewServer(m)

	event := events.APIGatewayV2HTTPRequest{
		RawPath:         "/api/sentiment-analysis",
		Body:            base64.StdEncoding.EncodeToString([]byte(`{"sentence":"I am so sad today"}`)),
		IsBase64Encoded: true,
		Headers:         map[string]string{"content-type": "application/json"},
	}
	event.RequestContext.HTTP.Method = http.MethodPost

	resp, err := srv.HandleLambda(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"sentiment":"negative"}`, resp.Body)
	assert.Equal(t, `{"sentence":"I am so sad today"}`, string(m.body))
}

func TestHandleLambda_NotFound(t *testing.T) {
	srv := NewServer(&mockAnalyzer{})

	event := events.APIGatewayV2HTTPRequest{RawPath: "/api/unknown"}
	event.RequestContext.HTTP.Method = http.MethodGet

	resp, err := srv.HandleLambda(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Not found", resp.Body)
}

func TestHandleLambda_CompressedBodyIsBase64(t *testing.T) {
	srv := NewServer(&mockAnalyzer{})

	event := events.APIGatewayV2HTTPRequest{
		RawPath: "/metrics",
		Headers: map[string]string{"accept-encoding": "gzip"},
	}
	event.RequestContext.HTTP.Method = http.MethodGet

	resp, err := srv.HandleLambda(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "gzip", resp.Headers["Content-Encoding"])
	require.True(t, resp.IsBase64Encoded)

	raw, err := base64.StdEncoding.DecodeString(resp.Body)
	require.NoError(t, err)
	zr, err := gzip.NewReader(bytes.NewReader(raw))
	require.NoError(t, err)
	plain, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(plain), "go_goroutines")
}

func TestHandleLambda_SetCookieGoesToCookies(t *testing.T) {
	srv := NewServer(&mockAnalyzer{})
	srv.echo.GET("/session", func(c echo.Context) error {
		c.SetCookie(&http.Cookie{Name: "a", Value: "1"})
		c.SetCookie(&http.Cookie{Name: "b", Value: "2"})
		return c.NoContent(http.StatusNoContent)
	})

	event := events.APIGatewayV2HTTPRequest{RawPath: "/session"}
	event.RequestContext.HTTP.Method = http.MethodGet

	resp, err := srv.HandleLambda(context.Background(), event)

	require.NoError(t, err)
	assert.Equal(t, []string{"a=1", "b=2"}, resp.Cookies)
	assert.NotContains(t, resp.Headers, "Set-Cookie")
}

func TestHandleLambda_BadBase64(t *testing.T) {
	srv := NewServer(&mockAnalyzer{})
	event := events.APIGatewayV2HTTPRequest{RawPath: "/api/sentiment-analysis", Body: "%%%", IsBase64Encoded: true}
	event.RequestContext.HTTP.Method = http.MethodPost

	_, err := srv.HandleLambda(context.Background(), event)
	assert.Error(t, err)
}
