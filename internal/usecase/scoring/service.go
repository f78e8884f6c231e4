// Package scoring fans selected candidates out to the oracle and fuses the verdicts.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/matchmaker/internal/domain"
	"github.com/kailas-cloud/matchmaker/internal/domain/entity"
	"github.com/kailas-cloud/matchmaker/internal/domain/match"
	"github.com/kailas-cloud/matchmaker/internal/logger"
	"github.com/kailas-cloud/matchmaker/internal/metrics"
)

// Defaults for the oracle fan-out.
const (
	DefaultConcurrency  = 5
	DefaultCallTimeout  = 60 * time.Second
	DefaultMaxAttempts  = 1
	DefaultRetryBackoff = 500 * time.Millisecond
)

// Config bounds the fan-out.
type Config struct {
	// Concurrency is the maximum number of oracle calls in flight.
	Concurrency int
	// CallTimeout bounds each oracle attempt.
	CallTimeout time.Duration
	// MaxAttempts per candidate; only transport failures are retried.
	MaxAttempts int
	// RetryBackoff is the delay before the second attempt, doubled after each retry.
	RetryBackoff time.Duration
}

func (c *Config) applyDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = DefaultCallTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = DefaultRetryBackoff
	}
}

// Service is the scoring orchestrator.
type Service struct {
	oracle Oracle
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
}

// New creates a Service. The oracle handle is shared by all workers.
func New(oracle Oracle, cfg Config, l *zap.Logger) *Service {
	cfg.applyDefaults()
	if l == nil {
		l = zap.NewNop()
	}
	return &Service{
		oracle: oracle,
		cfg:    cfg,
		logger: l,
		now:    time.Now,
	}
}

// Run scores every candidate and returns one fused result per candidate whose
// oracle call succeeded, in candidate order. A failing candidate is logged and
// dropped; it never affects the others.
func (s *Service) Run(ctx context.Context, subject entity.Entity, candidates []match.ScoredCandidate) []match.Result {
	if len(candidates) == 0 {
		return nil
	}

	log := logger.FromContextOr(ctx, s.logger).With(zap.String("subject_id", subject.ID()))
	slots := make([]*match.Result, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i := range candidates {
		cand := candidates[i]
		prompt := BuildPrompt(subject, cand.Entity)
		g.Go(func() error {
			verdict, err := s.invoke(gctx, prompt)
			if err != nil {
				kind := domain.OracleErrorKindOf(err)
				if kind == "" {
					kind = domain.OracleTransportFailure
				}
				metrics.PipelineCandidateFailuresTotal.WithLabelValues(string(kind)).Inc()
				log.Warn("Candidate scoring failed",
					zap.String("candidate_id", cand.Entity.ID()),
					zap.String("error_kind", string(kind)),
					zap.Error(err),
				)
				return nil // isolation: one candidate never cancels the rest
			}
			res := match.NewResult(subject, cand, verdict, s.now())
			slots[i] = &res
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	results := make([]match.Result, 0, len(candidates))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}

	log.Info("Candidates scored",
		zap.Int("candidates", len(candidates)),
		zap.Int("scored", len(results)),
	)
	return results
}

// retryable reports whether another attempt can succeed. An exhausted budget
// stays exhausted for the rest of the run.
func retryable(err error) bool {
	return domain.OracleErrorKindOf(err) == domain.OracleTransportFailure &&
		!errors.Is(err, domain.ErrOracleQuotaExceeded)
}

// invoke calls the oracle with a per-attempt timeout, retrying transport
// failures up to MaxAttempts.
func (s *Service) invoke(ctx context.Context, prompt string) (match.OracleResult, error) {
	backoff := s.cfg.RetryBackoff
	var lastErr error

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
		verdict, err := s.oracle.Invoke(callCtx, prompt)
		cancel()

		if err == nil {
			if verr := verdict.Validate(); verr != nil {
				return match.OracleResult{}, domain.NewOracleError(domain.OracleMalformedResponse, verr)
			}
			return verdict, nil
		}
		lastErr = err

		if !retryable(err) || attempt == s.cfg.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return match.OracleResult{}, domain.NewOracleError(domain.OracleTransportFailure,
				fmt.Errorf("retry aborted: %w", ctx.Err()))
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return match.OracleResult{}, lastErr
}
