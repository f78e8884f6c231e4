package matchmaker

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver   string // "valkey" or "redis"
	addrs    []string
	password string

	apiKey      string
	baseURL     string
	model       string
	temperature float32
	scorer      Scorer

	minScore    float64
	topN        int
	concurrency int
	callTimeout time.Duration

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithValkey configures the client to connect to a Valkey instance.
func WithValkey(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "valkey"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithRedis configures the client to connect to a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = "redis"
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithOracle configures the built-in oracle against an OpenAI-compatible
// chat completions endpoint. An empty baseURL means api.openai.com.
func WithOracle(apiKey, baseURL, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = apiKey
		c.baseURL = baseURL
		c.model = model
	})
}

// WithTemperature sets the sampling temperature of the built-in oracle.
func WithTemperature(t float32) Option {
	return optionFunc(func(c *clientConfig) {
		c.temperature = t
	})
}

// WithScorer replaces the built-in oracle. Takes precedence over WithOracle.
func WithScorer(s Scorer) Option {
	return optionFunc(func(c *clientConfig) {
		c.scorer = s
	})
}

// WithSelection sets the heuristic gate and the number of candidates sent to the oracle.
// Defaults: minScore=0.1, topN=20.
func WithSelection(minScore float64, topN int) Option {
	return optionFunc(func(c *clientConfig) {
		c.minScore = minScore
		c.topN = topN
	})
}

// WithConcurrency bounds parallel oracle calls and sets the per-call timeout.
// Defaults: 5 and 60s.
func WithConcurrency(n int, callTimeout time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.concurrency = n
		c.callTimeout = callTimeout
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
