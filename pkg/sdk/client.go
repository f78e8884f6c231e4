package matchmaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchmaker/internal/db"
	dbRedis "github.com/kailas-cloud/matchmaker/internal/db/redis"
	domentity "github.com/kailas-cloud/matchmaker/internal/domain/entity"
	"github.com/kailas-cloud/matchmaker/internal/domain/match"
	entityrepo "github.com/kailas-cloud/matchmaker/internal/repository/entity"
	matchrepo "github.com/kailas-cloud/matchmaker/internal/repository/match"
	openaiOracle "github.com/kailas-cloud/matchmaker/internal/transport/openai"
	entityuc "github.com/kailas-cloud/matchmaker/internal/usecase/entity"
	healthuc "github.com/kailas-cloud/matchmaker/internal/usecase/health"
	matchinguc "github.com/kailas-cloud/matchmaker/internal/usecase/matching"
	"github.com/kailas-cloud/matchmaker/internal/usecase/scoring"
	"github.com/kailas-cloud/matchmaker/internal/usecase/selection"
	usageuc "github.com/kailas-cloud/matchmaker/internal/usecase/usage"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, swapped for fakes in tests.
type matchingUseCase interface {
	Compute(ctx context.Context, callerID string) (matchinguc.Outcome, error)
	List(ctx context.Context, callerID string) ([]match.Result, error)
}

type entityUseCase interface {
	Seed(ctx context.Context, id string, in entityuc.UpsertInput) (domentity.Entity, error)
	Get(ctx context.Context, id string) (domentity.Entity, error)
}

// Client is the matchmaker SDK entry point.
type Client struct {
	store       db.Store
	matchingSvc matchingUseCase
	entitySvc   entityUseCase
	healthSvc   healthUseCase
	usageSvc    usageUseCase
	obs         *observer
}

// New creates a Client and connects to the database.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("matchmaker: database address required (use WithValkey or WithRedis)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("matchmaker: database not ready: %w", err)
	}

	return wireClient(store, cfg, obs), nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case "valkey", "redis":
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.addrs,
			Password: cfg.password,
		})
		if err != nil {
			return nil, fmt.Errorf("matchmaker: create %s store: %w", cfg.driver, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("matchmaker: unknown driver %q", cfg.driver)
	}
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	entities := entityrepo.New(store)
	matches := matchrepo.New(store)

	// The built-in oracle reports its health; custom scorers are not probed.
	var (
		oracle scoring.Oracle
		probe  healthuc.OracleChecker
	)
	if cfg.scorer != nil {
		oracle = &scorerAdapter{inner: cfg.scorer}
	} else {
		builtin := openaiOracle.New(&openaiOracle.Config{
			APIKey:      cfg.apiKey,
			BaseURL:     cfg.baseURL,
			Model:       cfg.model,
			Temperature: cfg.temperature,
			Provider:    "sdk",
		})
		oracle, probe = builtin, builtin
	}

	scorer := scoring.New(oracle, scoring.Config{
		Concurrency: cfg.concurrency,
		CallTimeout: cfg.callTimeout,
	}, zap.NewNop())

	minScore, topN := cfg.minScore, cfg.topN
	if minScore <= 0 {
		minScore = selection.DefaultMinScore
	}
	if topN <= 0 {
		topN = selection.DefaultTopN
	}

	return &Client{
		store:       store,
		matchingSvc: matchinguc.New(entities, selection.New(minScore, topN), scorer, matches, nil, zap.NewNop()),
		entitySvc:   entityuc.New(entities),
		healthSvc:   healthuc.New(store, probe),
		usageSvc:    usageuc.New(nil, "sdk"), // nil = unlimited mode (no budget tracking in SDK)
		obs:         obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Entities returns the profile service.
func (c *Client) Entities() *EntityService {
	return &EntityService{svc: c.entitySvc, obs: c.obs}
}

// Compute matches subjectID against every stored profile and persists the results.
// Oracle failures drop single candidates; they never fail the call.
func (c *Client) Compute(ctx context.Context, subjectID string) (out Outcome, err error) {
	start := time.Now()
	defer func() {
		c.obs.observe("compute", start, err, "subject_id", subjectID, "matches_found", out.MatchesFound)
	}()

	res, err := c.matchingSvc.Compute(ctx, subjectID)
	if err != nil {
		return Outcome{}, fmt.Errorf("compute %s: %w", subjectID, err)
	}
	c.obs.matches(res.MatchesFound)
	return Outcome{RunID: res.RunID, MatchesFound: res.MatchesFound}, nil
}

// Matches returns the stored matches of subjectID, best first.
func (c *Client) Matches(ctx context.Context, subjectID string) (_ []Match, err error) {
	start := time.Now()
	defer func() { c.obs.observe("matches", start, err, "subject_id", subjectID) }()

	results, err := c.matchingSvc.List(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("list matches %s: %w", subjectID, err)
	}
	out := make([]Match, len(results))
	for i := range results {
		out[i] = matchFromDomain(&results[i])
	}
	return out, nil
}

func matchFromDomain(r *match.Result) Match {
	var features map[string]FeatureScore
	if src := r.SimilarFeatures(); len(src) > 0 {
		features = make(map[string]FeatureScore, len(src))
		for k, f := range src {
			features[k] = FeatureScore{Score: f.Score, Explanation: f.Explanation}
		}
	}
	return Match{
		ID:                   r.ID(),
		SubjectID:            r.SubjectID(),
		CandidateID:          r.CandidateID(),
		CandidateName:        r.CandidateName(),
		HeuristicScore:       r.HeuristicScore(),
		OracleScore:          r.OracleScore(),
		FinalScore:           r.FinalScore(),
		Summary:              r.Summary(),
		ConversationStarters: r.ConversationStarters(),
		SimilarFeatures:      features,
		ComputedAt:           r.ComputedAt(),
	}
}
