package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/getsavvyinc/nbcomplete/config"
	"github.com/getsavvyinc/nbcomplete/prompt"
	"github.com/sashabaranov/go-openai"
	"github.com/sethvargo/go-retry"
)

// Service turns prompts into model output.
type Service interface {
	// CompleteCode returns the model's answer to a completion prompt.
	CompleteCode(ctx context.Context, prompt string) (string, error)
	// Explain returns a description of what code does.
	Explain(ctx context.Context, code string) (string, error)
}

var ErrNoChoices = errors.New("completion returned no choices")

const defaultBackoff = 1 * time.Second

type Option func(*openAISvc)

// WithHTTPClient sets the client used to reach the API.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *openAISvc) { s.httpClient = hc }
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *openAISvc) { s.logger = logger }
}

// WithBackoff sets the base delay of the Fibonacci backoff between retries.
func WithBackoff(base time.Duration) Option {
	return func(s *openAISvc) {
		if base > 0 {
			s.backoff = base
		}
	}
}

type openAISvc struct {
	cl         *openai.Client
	httpClient *http.Client
	logger     *slog.Logger
	modelName  string
	maxRetries uint64
	backoff    time.Duration
}

var _ Service = (*openAISvc)(nil)

// New returns a Service backed by an OpenAI compatible chat completion
// endpoint. cfg.BaseURL overrides the default OpenAI endpoint.
func New(cfg *config.Config, opts ...Option) Service {
	s := &openAISvc{
		logger:     slog.Default(),
		modelName:  cfg.ModelName,
		maxRetries: cfg.MaxRetries,
		backoff:    defaultBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.modelName == "" {
		s.modelName = config.DefaultModelName
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	if s.httpClient != nil {
		clientConfig.HTTPClient = s.httpClient
	}
	s.cl = openai.NewClientWithConfig(clientConfig)
	return s
}

func (s *openAISvc) CompleteCode(ctx context.Context, completionPrompt string) (string, error) {
	code, err := s.chat(ctx, completionPrompt)
	if err != nil {
		return "", fmt.Errorf("error completing code: %w", err)
	}
	return code, nil
}

func (s *openAISvc) Explain(ctx context.Context, code string) (string, error) {
	explanation, err := s.chat(ctx, prompt.Explanation(code))
	if err != nil {
		return "", fmt.Errorf("error explaining code: %w", err)
	}
	return explanation, nil
}

// chat sends content as a single user message and returns the trimmed text
// of the first choice. Rate limit and server errors are retried up to
// maxRetries times; everything else fails immediately.
func (s *openAISvc) chat(ctx context.Context, content string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: s.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: content,
			},
		},
	}

	b := retry.NewFibonacci(s.backoff)
	b = retry.WithMaxRetries(s.maxRetries, b)

	var resp openai.ChatCompletionResponse
	attempt := 0
	if err := retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		var err error
		resp, err = s.cl.CreateChatCompletion(ctx, req)
		if err != nil && isRetryable(err) {
			s.logger.Debug("retry: chat completion failed", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		return err
	}); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	s.logger.Debug("chat completion", "model", resp.Model, "total_tokens", resp.Usage.TotalTokens, "attempts", attempt)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func isRetryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	return false
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
