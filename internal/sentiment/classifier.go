package sentiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	DefaultMaxTokens = 8
	DefaultTimeout   = 30 * time.Second
)

var (
	ErrInference         = errors.New("inference failed")
	ErrUnrecognizedLabel = errors.New("unrecognized sentiment label")
)

// Generator is a text-generation model: prompt in, generated text out.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// InferenceError wraps a failed model invocation.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string { return fmt.Sprintf("inference failed: %v", e.Err) }
func (e *InferenceError) Unwrap() error { return e.Err }
func (e *InferenceError) Is(target error) bool {
	return target == ErrInference
}

// ParseError carries the model output that did not match a label.
type ParseError struct {
	Raw string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unrecognized sentiment label: %q", e.Raw)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrUnrecognizedLabel
}

// ParseLabel reads the sentiment from the first line of generated text.
// A leading "Bot:" is stripped when present.
func ParseLabel(generated string) (Sentiment, error) {
	line, _, _ := strings.Cut(generated, "\n")
	line = strings.TrimSuffix(line, "\r")
	line = strings.TrimPrefix(line, BotMarker)

	s, ok := TryParse(line)
	if !ok {
		return 0, &ParseError{Raw: line}
	}
	return s, nil
}

type Classifier struct {
	generator Generator
	maxTokens int
	timeout   time.Duration
}

type ClassifierOption func(*Classifier)

// WithMaxTokens caps the generated output length.
func WithMaxTokens(n int) ClassifierOption {
	return func(c *Classifier) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithTimeout bounds a single model call. Zero disables the bound.
func WithTimeout(d time.Duration) ClassifierOption {
	return func(c *Classifier) {
		c.timeout = d
	}
}

func NewClassifier(generator Generator, opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		generator: generator,
		maxTokens: DefaultMaxTokens,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify runs one few-shot completion for sentence and parses its label.
// Model failures return an *InferenceError; unusable output returns a *ParseError.
func (c *Classifier) Classify(ctx context.Context, sentence string) (Sentiment, error) {
	prompt, err := BuildPrompt(sentence)
	if err != nil {
		return 0, err
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	slog.Debug("[Classifier] Running inference", slog.Int("max_tokens", c.maxTokens))
	start := time.Now()

	text, err := c.generator.Generate(ctx, prompt, c.maxTokens)
	if err != nil {
		slog.Error("[Classifier] Inference failed",
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return 0, &InferenceError{Err: err}
	}

	slog.Debug("[Classifier] Inference result",
		slog.String("text", text),
		slog.Duration("elapsed", time.Since(start)))

	return ParseLabel(text)
}
