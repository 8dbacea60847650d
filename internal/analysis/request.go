package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/spacesedan/sentiflow-kv/internal/models"
	"github.com/spacesedan/sentiflow-kv/internal/sentiment"
)

var (
	ErrDecode   = errors.New("invalid request body")
	ErrInternal = errors.New("internal error")
)

type rawRequest struct {
	Sentence *string `json:"sentence"`
}

// DecodeRequest parses the request body and trims the sentence. The trimmed
// sentence is the only form used downstream, as both cache key and prompt input.
// Empty or whitespace-only sentences are accepted.
func DecodeRequest(body []byte) (models.SentimentAnalysisRequest, error) {
	if len(body) == 0 {
		return models.SentimentAnalysisRequest{}, fmt.Errorf("%w: request body is empty", ErrDecode)
	}

	if !utf8.Valid(body) {
		return models.SentimentAnalysisRequest{}, fmt.Errorf("%w: body is not valid UTF-8", ErrDecode)
	}

	var raw *rawRequest
	if err := json.Unmarshal(body, &raw); err != nil {
		return models.SentimentAnalysisRequest{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if raw == nil || raw.Sentence == nil {
		return models.SentimentAnalysisRequest{}, fmt.Errorf("%w: missing field \"sentence\"", ErrDecode)
	}

	return models.SentimentAnalysisRequest{
		Sentence: strings.TrimSpace(*raw.Sentence),
	}, nil
}

func EncodeResponse(resp models.SentimentAnalysisResponse) ([]byte, error) {
	body, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode response: %v", ErrInternal, err)
	}
	return body, nil
}

// StatusFor maps a pipeline error onto an HTTP status code.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrDecode):
		return http.StatusBadRequest
	case errors.Is(err, sentiment.ErrInference):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
