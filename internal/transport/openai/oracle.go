// Package openai implements the scoring oracle over an OpenAI-compatible
// chat completions API (Gemini, OpenAI, Nebius and similar).
package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matchmaker/internal/domain"
	"github.com/kailas-cloud/matchmaker/internal/domain/match"
	"github.com/kailas-cloud/matchmaker/internal/metrics"
)

// Config holds the oracle provider settings.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Provider    string
	Logger      *zap.Logger
}

// Client is the scoring oracle. Safe for concurrent use; construct once and share.
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	provider    string
	logger      *zap.Logger
}

// New creates an oracle client. A missing API key does not fail construction:
// every call then returns an Unconfigured oracle error.
func New(cfg *Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Client{
		model:       cfg.Model,
		temperature: cfg.Temperature,
		provider:    cfg.Provider,
		logger:      logger,
	}
	if cfg.APIKey == "" {
		logger.Warn("Oracle API key is not set, scoring calls will fail",
			zap.String("provider", cfg.Provider))
		return c
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	c.client = openai.NewClientWithConfig(clientCfg)
	return c
}

// Configured reports whether the client has a credential.
func (c *Client) Configured() bool { return c.client != nil }

// Invoke sends the prompt and returns the validated oracle verdict.
func (c *Client) Invoke(ctx context.Context, prompt string) (match.OracleResult, error) {
	res, _, err := c.Score(ctx, prompt)
	return res, err
}

// Score is Invoke plus the token usage reported by the provider.
// Usage is returned even when the response fails validation.
func (c *Client) Score(ctx context.Context, prompt string) (match.OracleResult, match.TokenUsage, error) {
	if c.client == nil {
		c.countError(domain.OracleUnconfigured)
		return match.OracleResult{}, match.TokenUsage{},
			domain.NewOracleError(domain.OracleUnconfigured, errors.New("api key is not set"))
	}

	c.logger.Debug("Calling oracle", zap.String("model", c.model))

	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.OracleRequestsTotal.WithLabelValues(c.provider, c.model, "error").Inc()
		c.countError(domain.OracleTransportFailure)
		return match.OracleResult{}, match.TokenUsage{},
			domain.NewOracleError(domain.OracleTransportFailure, describeAPIError(err))
	}

	metrics.OracleRequestsTotal.WithLabelValues(c.provider, c.model, "success").Inc()
	metrics.OracleRequestDuration.WithLabelValues(c.provider, c.model).Observe(duration.Seconds())

	usage := match.TokenUsage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}
	if usage.TotalTokens > 0 {
		metrics.OracleTokensTotal.WithLabelValues(c.provider, c.model, "prompt").Add(float64(usage.PromptTokens))
		metrics.OracleTokensTotal.WithLabelValues(c.provider, c.model, "completion").Add(float64(usage.CompletionTokens))
	}

	if len(resp.Choices) == 0 {
		c.countError(domain.OracleMalformedResponse)
		return match.OracleResult{}, usage,
			domain.NewOracleError(domain.OracleMalformedResponse, errors.New("no choices in response"))
	}

	raw := resp.Choices[0].Message.Content
	// Profile text stays at debug; the call itself is always visible.
	c.logger.Info("Oracle call completed",
		zap.String("model", c.model),
		zap.Duration("duration", duration),
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("response_chars", len(raw)),
		zap.Int("total_tokens", usage.TotalTokens),
	)
	c.logger.Debug("Oracle response received",
		zap.String("model", c.model),
		zap.String("prompt", prompt),
		zap.String("raw_text", raw),
	)

	result, err := ParseResponse(raw)
	if err != nil {
		c.countError(domain.OracleMalformedResponse)
		return match.OracleResult{}, usage, domain.NewOracleError(domain.OracleMalformedResponse, err)
	}
	return result, usage, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.client == nil {
		return domain.NewOracleError(domain.OracleUnconfigured, errors.New("api key is not set"))
	}
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", describeAPIError(err))
	}
	return nil
}

func (c *Client) countError(kind domain.OracleErrorKind) {
	metrics.OracleErrorsTotal.WithLabelValues(c.provider, c.model, string(kind)).Inc()
}
