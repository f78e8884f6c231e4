// Package matching runs the candidate matching pipeline for one subject.
package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matchmaker/internal/domain"
	"github.com/kailas-cloud/matchmaker/internal/domain/match"
	"github.com/kailas-cloud/matchmaker/internal/logger"
	"github.com/kailas-cloud/matchmaker/internal/metrics"
)

// Outcome is the result of one pipeline run.
type Outcome struct {
	RunID        string
	MatchesFound int
}

// Service is the pipeline entry point.
type Service struct {
	entities  EntityReader
	selector  Selector
	scorer    Scorer
	repo      Repository
	publisher Publisher
	logger    *zap.Logger
}

// New creates a Service. publisher may be nil.
func New(
	entities EntityReader, selector Selector, scorer Scorer,
	repo Repository, publisher Publisher, l *zap.Logger,
) *Service {
	if l == nil {
		l = zap.NewNop()
	}
	return &Service{
		entities:  entities,
		selector:  selector,
		scorer:    scorer,
		repo:      repo,
		publisher: publisher,
		logger:    l,
	}
}

// Compute matches the caller against the population and persists the results.
//
// Errors: domain.ErrUnauthenticated without a caller, domain.ErrNotFound when
// the caller has no profile, domain.ErrPersistence when the batch write fails.
// Oracle failures never fail the run; a run where every call failed reports zero.
func (s *Service) Compute(ctx context.Context, callerID string) (Outcome, error) {
	if callerID == "" {
		metrics.PipelineRunsTotal.WithLabelValues("unauthenticated").Inc()
		return Outcome{}, domain.ErrUnauthenticated
	}

	runID := uuid.NewString()
	log := logger.FromContextOr(ctx, s.logger).With(
		zap.String("run_id", runID),
		zap.String("subject_id", callerID),
	)
	ctx = logger.ContextWithLogger(ctx, log)
	start := time.Now()

	subject, err := s.entities.Get(ctx, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			metrics.PipelineRunsTotal.WithLabelValues("not_found").Inc()
			return Outcome{}, fmt.Errorf("subject %s: %w", callerID, err)
		}
		return Outcome{}, s.fail(log, fmt.Errorf("load subject %s: %w", callerID, err))
	}

	population, err := s.entities.All(ctx)
	if err != nil {
		return Outcome{}, s.fail(log, fmt.Errorf("load population: %w", err))
	}

	candidates := s.selector.Select(subject, population)
	metrics.PipelineCandidatesSelected.Observe(float64(len(candidates)))
	log.Info("Candidates selected",
		zap.Int("population", len(population)),
		zap.Int("candidates", len(candidates)),
	)

	results := s.scorer.Run(ctx, subject, candidates)

	saved, err := s.repo.Save(ctx, callerID, results)
	if err != nil {
		return Outcome{}, s.fail(log, fmt.Errorf("save matches: %w", err))
	}
	metrics.PipelineMatchesPersisted.Add(float64(saved))
	metrics.PipelineRunsTotal.WithLabelValues("success").Inc()

	log.Info("Matching run completed",
		zap.Int("matches_found", saved),
		zap.Duration("duration", time.Since(start)),
	)

	s.publish(ctx, log, runID, callerID, saved, results)

	return Outcome{RunID: runID, MatchesFound: saved}, nil
}

// List returns the caller's stored matches, best first.
func (s *Service) List(ctx context.Context, callerID string) ([]match.Result, error) {
	if callerID == "" {
		return nil, domain.ErrUnauthenticated
	}
	results, err := s.repo.List(ctx, callerID)
	if err != nil {
		return nil, fmt.Errorf("list matches for %s: %w", callerID, err)
	}
	return results, nil
}

func (s *Service) fail(log *zap.Logger, err error) error {
	metrics.PipelineRunsTotal.WithLabelValues("error").Inc()
	log.Error("Matching run failed", zap.Error(err))
	return err
}

func (s *Service) publish(
	ctx context.Context, log *zap.Logger, runID, subjectID string, saved int, results []match.Result,
) {
	if s.publisher == nil || saved == 0 {
		return
	}
	ids := make([]string, len(results))
	for i := range results {
		ids[i] = results[i].ID()
	}
	ev := match.ComputedEvent{
		RunID:        runID,
		SubjectID:    subjectID,
		MatchesFound: saved,
		MatchIDs:     ids,
		ComputedAt:   time.Now().UTC(),
	}
	if err := s.publisher.PublishComputed(ctx, ev); err != nil {
		metrics.EventsPublishedTotal.WithLabelValues("error").Inc()
		log.Warn("Failed to publish matches computed event", zap.Error(err))
		return
	}
	metrics.EventsPublishedTotal.WithLabelValues("success").Inc()
}
