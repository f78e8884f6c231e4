package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/matchmaker/internal/config"
	"github.com/kailas-cloud/matchmaker/internal/db"
	dbRedis "github.com/kailas-cloud/matchmaker/internal/db/redis"
	domentity "github.com/kailas-cloud/matchmaker/internal/domain/entity"
	"github.com/kailas-cloud/matchmaker/internal/domain/match"
	logpkg "github.com/kailas-cloud/matchmaker/internal/logger"
	"github.com/kailas-cloud/matchmaker/internal/metrics"
	budgetrepo "github.com/kailas-cloud/matchmaker/internal/repository/budget"
	entityrepo "github.com/kailas-cloud/matchmaker/internal/repository/entity"
	matchrepo "github.com/kailas-cloud/matchmaker/internal/repository/match"
	"github.com/kailas-cloud/matchmaker/internal/repository/postgres"
	natspub "github.com/kailas-cloud/matchmaker/internal/transport/nats"
	openaiOracle "github.com/kailas-cloud/matchmaker/internal/transport/openai"
	entityuc "github.com/kailas-cloud/matchmaker/internal/usecase/entity"
	healthuc "github.com/kailas-cloud/matchmaker/internal/usecase/health"
	matchinguc "github.com/kailas-cloud/matchmaker/internal/usecase/matching"
	oracleuc "github.com/kailas-cloud/matchmaker/internal/usecase/oracle"
	"github.com/kailas-cloud/matchmaker/internal/usecase/scoring"
	"github.com/kailas-cloud/matchmaker/internal/usecase/selection"
	usageuc "github.com/kailas-cloud/matchmaker/internal/usecase/usage"
)

// entityStore is satisfied by the Redis and Postgres entity repositories.
type entityStore interface {
	Put(ctx context.Context, e *domentity.Entity) error
	Get(ctx context.Context, id string) (domentity.Entity, error)
	All(ctx context.Context) ([]domentity.Entity, error)
}

// matchStore is satisfied by the Redis and Postgres match repositories.
type matchStore interface {
	Save(ctx context.Context, subjectID string, results []match.Result) (int, error)
	List(ctx context.Context, subjectID string) ([]match.Result, error)
}

// app is the composition root shared by every command.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger

	kv        db.Store // nil for postgres without addrs
	pg        *postgres.DB
	publisher *natspub.Publisher

	oracle   *openaiOracle.Client
	matching *matchinguc.Service
	entities *entityuc.Service
	usage    *usageuc.Service
	health   *healthuc.Service
}

func newApp(ctx context.Context, env string) (*app, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	a := &app{env: env, cfg: cfg, logger: logger}
	if err := a.wire(ctx); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context) error {
	cfg := a.cfg
	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second

	metrics.Register()

	// redis and valkey speak the same protocol; rueidis serves both
	if len(cfg.Database.Addrs) > 0 {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			return fmt.Errorf("create %s store: %w", cfg.Database.Driver, err)
		}
		a.kv = store
		if err := store.WaitForReady(ctx, readiness); err != nil {
			return fmt.Errorf("key-value store not ready: %w", err)
		}
		a.logger.Info("Connected to key-value store", zap.Strings("addrs", cfg.Database.Addrs))
	}

	var (
		entities entityStore
		matches  matchStore
		pinger   healthuc.DBPinger
	)
	if cfg.Database.IsPostgres() {
		pg, err := postgres.Open(cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		a.pg = pg
		if err := pg.WaitForReady(ctx, readiness); err != nil {
			return fmt.Errorf("postgres not ready: %w", err)
		}
		a.logger.Info("Connected to postgres")
		entities, matches, pinger = postgres.NewEntityRepo(pg), postgres.NewMatchRepo(pg), pg
	} else {
		entities, matches, pinger = entityrepo.New(a.kv), matchrepo.New(a.kv), a.kv
	}

	// One budget tracker shared by the oracle and the usage service.
	var budget *oracleuc.BudgetTracker
	if b := cfg.Oracle.Budget; b.Enabled() {
		action := oracleuc.BudgetActionWarn
		if b.Action == "reject" {
			action = oracleuc.BudgetActionReject
		}
		budget = oracleuc.NewBudgetTracker(cfg.Oracle.Provider, b.DailyTokenLimit, b.MonthlyTokenLimit, action, a.logger)
		if a.kv != nil {
			budget.WithStore(ctx, budgetrepo.New(a.kv, budgetrepo.DefaultDailyTTL, budgetrepo.DefaultMonthlyTTL))
		}
	}

	// Go gotcha: a typed nil *BudgetTracker inside an interface is not nil.
	var (
		budgetChecker oracleuc.BudgetChecker
		budgetReader  usageuc.BudgetReader
	)
	if budget != nil {
		budgetChecker, budgetReader = budget, budget
	}

	a.oracle = openaiOracle.New(&openaiOracle.Config{
		APIKey:      cfg.Oracle.APIKey,
		BaseURL:     cfg.Oracle.BaseURL,
		Model:       cfg.Oracle.Model,
		Temperature: cfg.Oracle.Temperature,
		Provider:    cfg.Oracle.Provider,
		Logger:      a.logger,
	})
	instrumented := oracleuc.NewInstrumented(a.oracle, cfg.Oracle.Provider, cfg.Oracle.Model, budgetChecker, a.logger)

	var publisher matchinguc.Publisher
	if cfg.Events.NATSURL != "" {
		p, err := natspub.Connect(cfg.Events.NATSURL, cfg.Events.Subject, a.logger)
		if err != nil {
			// events are best effort; matching works without them
			a.logger.Warn("NATS unavailable, events disabled", zap.Error(err))
		} else {
			a.publisher = p
			publisher = p
		}
	}

	scorer := scoring.New(instrumented, scoring.Config{
		Concurrency:  cfg.Matching.Concurrency,
		CallTimeout:  time.Duration(cfg.Oracle.TimeoutSec) * time.Second,
		MaxAttempts:  cfg.Matching.MaxAttempts,
		RetryBackoff: time.Duration(cfg.Matching.RetryBackoffMs) * time.Millisecond,
	}, a.logger)

	a.matching = matchinguc.New(
		entities,
		selection.New(cfg.Matching.MinScore, cfg.Matching.TopN),
		scorer,
		matches,
		publisher,
		a.logger,
	)
	a.entities = entityuc.New(entities)
	a.usage = usageuc.New(budgetReader, cfg.Oracle.Provider)
	a.health = healthuc.New(pinger, a.oracle)

	a.logger.Info("Pipeline wired",
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("oracle_provider", cfg.Oracle.Provider),
		zap.String("oracle_model", cfg.Oracle.Model),
		zap.Bool("oracle_configured", a.oracle.Configured()),
		zap.Bool("budget", budget != nil),
		zap.Bool("events", a.publisher != nil),
	)
	return nil
}

func (a *app) close() {
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.pg != nil {
		a.pg.Close()
	}
	if a.kv != nil {
		a.kv.Close()
	}
	_ = a.logger.Sync()
}
