// Package oracle wraps the scoring oracle with token budget enforcement and logging.
package oracle

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchmaker/internal/domain"
	"github.com/kailas-cloud/matchmaker/internal/domain/match"
	"github.com/kailas-cloud/matchmaker/internal/metrics"
)

// Scorer is the transport-level oracle that also reports token usage.
type Scorer interface {
	Score(ctx context.Context, prompt string) (match.OracleResult, match.TokenUsage, error)
}

// BudgetChecker is the local interface for budget enforcement.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(tokens int64)
	RemainingDaily() int64
	RemainingMonthly() int64
}

// Instrumented adds budget enforcement on top of a Scorer.
// Request, duration and token metrics belong to the transport; this layer
// owns the budget and its gauges.
type Instrumented struct {
	inner    Scorer
	provider string
	model    string
	budget   BudgetChecker
	logger   *zap.Logger
}

// NewInstrumented wraps a scorer. budget may be nil (unlimited).
func NewInstrumented(inner Scorer, provider, model string, budget BudgetChecker, logger *zap.Logger) *Instrumented {
	return &Instrumented{
		inner:    inner,
		provider: provider,
		model:    model,
		budget:   budget,
		logger:   logger,
	}
}

// Invoke checks the budget, delegates to the scorer and records token usage.
// A rejected budget surfaces as a transport failure so the candidate is dropped
// like any other unreachable-oracle case.
func (p *Instrumented) Invoke(ctx context.Context, prompt string) (match.OracleResult, error) {
	if p.budget != nil {
		if err := p.budget.Check(ctx); err != nil {
			p.logger.Error("Oracle budget exceeded",
				zap.String("provider", p.provider),
				zap.String("model", p.model),
				zap.Error(err),
			)
			return match.OracleResult{}, domain.NewOracleError(domain.OracleTransportFailure, err)
		}
	}

	start := time.Now()
	result, usage, err := p.inner.Score(ctx, prompt)
	duration := time.Since(start)

	// tokens are spent even when the response is rejected
	p.record(usage)

	if err != nil {
		p.logger.Warn("Oracle call failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.String("error_kind", string(domain.OracleErrorKindOf(err))),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return match.OracleResult{}, err
	}

	p.logger.Debug("Oracle call completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Float64("score", result.Score),
		zap.Int("total_tokens", usage.TotalTokens),
	)
	return result, nil
}

func (p *Instrumented) record(usage match.TokenUsage) {
	if p.budget == nil || usage.TotalTokens <= 0 {
		return
	}
	p.budget.Record(int64(usage.TotalTokens))
	gauge := metrics.OracleBudgetTokensRemaining
	gauge.WithLabelValues(p.provider, "daily").Set(float64(p.budget.RemainingDaily()))
	gauge.WithLabelValues(p.provider, "monthly").Set(float64(p.budget.RemainingMonthly()))
}
