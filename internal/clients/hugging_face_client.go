package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/spacesedan/sentiflow-kv/internal/models"
)

const HF_INFERENCE_BASE_URL = "https://api-inference.huggingface.co/models/"

// HuggingFaceClient calls a text-generation inference endpoint
// (the serverless Inference API or a dedicated TGI endpoint).
type HuggingFaceClient struct {
	Client         *http.Client
	endpoint       string
	token          string
	initialBackoff time.Duration
}

type HuggingFaceOption func(*HuggingFaceClient)

func WithHTTPClient(c *http.Client) HuggingFaceOption {
	return func(h *HuggingFaceClient) { h.Client = c }
}

func WithInitialBackoff(d time.Duration) HuggingFaceOption {
	return func(h *HuggingFaceClient) { h.initialBackoff = d }
}

// NewHuggingFaceClient builds a client for endpoint, or for the hosted model
// when endpoint is empty.
func NewHuggingFaceClient(endpoint, model, token string, timeout time.Duration, opts ...HuggingFaceOption) *HuggingFaceClient {
	if endpoint == "" {
		endpoint = HF_INFERENCE_BASE_URL + model
	}
	h := &HuggingFaceClient{
		Client:         &http.Client{Timeout: timeout},
		endpoint:       endpoint,
		token:          token,
		initialBackoff: INITIAL_BACKOFF,
	}
	for _, opt := range opts {
		opt(h)
	}

	slog.Info("[HuggingFaceClient] Initializing Client",
		slog.String("endpoint", endpoint),
		slog.Duration("timeout", timeout))
	return h
}

func (h *HuggingFaceClient) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	input := models.TextGenerationRequest{
		Inputs: prompt,
		Parameters: models.TextGenerationParameters{
			MaxNewTokens:   maxTokens,
			ReturnFullText: false,
		},
	}

	start := time.Now()
	respBody, err := h.postJSON(ctx, input)
	if err != nil {
		slog.Error("[HuggingFaceClient] Text generation request failed",
			slog.Duration("elapsed", time.Since(start)))
		return "", err
	}

	var batch models.TextGenerationBatchResponse
	if err := json.Unmarshal(respBody, &batch); err == nil {
		if len(batch) == 0 {
			return "", fmt.Errorf("empty generation response")
		}
		return batch[0].GeneratedText, nil
	}

	var single models.TextGenerationResponse
	if err := json.Unmarshal(respBody, &single); err != nil {
		slog.Error("[HuggingFaceClient] Failed to unmarshal response",
			slog.String("error", err.Error()),
			getPreview(respBody))
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return single.GeneratedText, nil
}

// HealthCheck reports whether the endpoint answers without a server error.
func (h *HuggingFaceClient) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.endpoint, nil)
	if err != nil {
		return false
	}
	h.setHeaders(req)

	resp, err := h.Client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}

// DoWithRetry sends body, retrying transport errors, 429 and 5xx responses
// with exponential backoff. Other responses are returned to the caller as is.
func (h *HuggingFaceClient) DoWithRetry(ctx context.Context, body []byte) (*http.Response, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = h.initialBackoff
	eb.MaxInterval = MAX_BACKOFF
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, MAX_RETRIES-1), ctx)

	attempt := 0
	return backoff.RetryWithData(func() (*http.Response, error) {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
		}
		h.setHeaders(req)
		req.Header.Set("Content-Type", "application/json")

		resp, err := h.Client.Do(req)
		if err == nil && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		if resp != nil {
			resp.Body.Close()
		}

		slog.Warn("[HuggingFaceClient] Request failed, will retry",
			slog.Int("attempt", attempt),
			slog.String("error", errMsg(err, resp)))

		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("status code %d", resp.StatusCode)
	}, policy)
}

func (h *HuggingFaceClient) postJSON(ctx context.Context, input interface{}) ([]byte, error) {
	body, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal input: %w", err)
	}

	resp, err := h.DoWithRetry(ctx, body)
	if err != nil {
		slog.Error("[HuggingFaceClient] Failed request after retries",
			slog.String("endpoint", h.endpoint),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("request failed after retries: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		slog.Error("[HuggingFaceClient] Endpoint rejected request",
			slog.Int("status", resp.StatusCode),
			getPreview(respBody))
		return nil, fmt.Errorf("endpoint returned status code %d", resp.StatusCode)
	}

	return respBody, nil
}

func (h *HuggingFaceClient) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", USER_AGENT)
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}
}

func getPreview(respBody []byte) slog.Attr {
	raw := string(respBody)
	if len(raw) > 50 {
		raw = raw[:50]
	}
	return slog.String("raw_response", raw)
}

func errMsg(err error, resp *http.Response) string {
	if err != nil {
		return err.Error()
	}
	if resp != nil {
		return fmt.Sprintf("status code %d", resp.StatusCode)
	}
	return "unknown error"
}
