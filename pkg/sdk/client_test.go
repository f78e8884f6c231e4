package matchmaker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/matchmaker/internal/domain"
	domentity "github.com/kailas-cloud/matchmaker/internal/domain/entity"
	entityuc "github.com/kailas-cloud/matchmaker/internal/usecase/entity"
	matchinguc "github.com/kailas-cloud/matchmaker/internal/usecase/matching"
)

func TestNew_NoAddress(t *testing.T) {
	_, err := New(context.Background())
	if err == nil {
		t.Fatal("expected error when no address provided")
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := &clientConfig{driver: "unknown", addrs: []string{"localhost:1234"}}
	_, err := createStore(cfg)
	if err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestClientOptions(t *testing.T) {
	cfg := &clientConfig{}

	WithValkey("localhost:6379", "secret").apply(cfg)
	if cfg.driver != "valkey" || cfg.addrs[0] != "localhost:6379" || cfg.password != "secret" {
		t.Errorf("valkey option = %+v", cfg)
	}

	WithRedis("localhost:6380", "pass").apply(cfg)
	if cfg.driver != "redis" || cfg.addrs[0] != "localhost:6380" {
		t.Errorf("redis option = %+v", cfg)
	}

	WithOracle("key", "https://example.com/v1/", "gemini-2.0-flash").apply(cfg)
	if cfg.apiKey != "key" || cfg.baseURL != "https://example.com/v1/" || cfg.model != "gemini-2.0-flash" {
		t.Errorf("oracle option = %+v", cfg)
	}

	WithTemperature(0.2).apply(cfg)
	if cfg.temperature != 0.2 {
		t.Errorf("temperature = %v", cfg.temperature)
	}

	WithSelection(0.25, 5).apply(cfg)
	if cfg.minScore != 0.25 || cfg.topN != 5 {
		t.Errorf("selection = (%v, %d)", cfg.minScore, cfg.topN)
	}

	WithConcurrency(3, time.Second).apply(cfg)
	if cfg.concurrency != 3 || cfg.callTimeout != time.Second {
		t.Errorf("concurrency = (%d, %v)", cfg.concurrency, cfg.callTimeout)
	}

	scorer := &mockScorer{}
	WithScorer(scorer).apply(cfg)
	if cfg.scorer != scorer {
		t.Error("expected scorer to be set")
	}

	logger := slog.Default()
	WithLogger(logger).apply(cfg)
	if cfg.logger != logger {
		t.Error("expected logger to be set")
	}

	reg := prometheus.NewRegistry()
	WithPrometheus(reg).apply(cfg)
	if cfg.metricsReg != reg {
		t.Error("expected metricsReg to be set")
	}
}

func TestClient_Close_NilStore(t *testing.T) {
	c := &Client{store: nil}
	c.Close()
}

func TestScorerAdapter(t *testing.T) {
	a := &scorerAdapter{inner: &mockScorer{fn: func(_ context.Context, prompt string) (Verdict, error) {
		if prompt != "p" {
			t.Errorf("prompt = %q", prompt)
		}
		return Verdict{
			Summary: "s", Score: 70,
			SimilarFeatures: map[string]FeatureScore{"humor": {Score: 8, Explanation: "dry"}},
		}, nil
	}}}

	got, err := a.Invoke(context.Background(), "p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Score != 70 || got.SimilarFeatures["humor"].Explanation != "dry" {
		t.Errorf("result = %+v", got)
	}
}

func TestScorerAdapter_Errors(t *testing.T) {
	plain := &scorerAdapter{inner: &mockScorer{fn: func(context.Context, string) (Verdict, error) {
		return Verdict{}, errors.New("provider down")
	}}}
	_, err := plain.Invoke(context.Background(), "p")
	if domain.OracleErrorKindOf(err) != domain.OracleTransportFailure {
		t.Errorf("plain error kind = %q, want transport failure", domain.OracleErrorKindOf(err))
	}

	classified := &scorerAdapter{inner: &mockScorer{fn: func(context.Context, string) (Verdict, error) {
		return Verdict{}, domain.NewOracleError(domain.OracleMalformedResponse, errors.New("bad json"))
	}}}
	_, err = classified.Invoke(context.Background(), "p")
	if domain.OracleErrorKindOf(err) != domain.OracleMalformedResponse {
		t.Errorf("classified error kind = %q, want malformed", domain.OracleErrorKindOf(err))
	}
}

func TestObserver_NilSafe(t *testing.T) {
	var o *observer
	o.observe("op", time.Now(), nil)
	o.matches(3)
}

func TestObserver_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	o, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	o.observe("compute", time.Now(), nil)
	o.observe("compute", time.Now(), errors.New("boom"))

	if got := testutil.ToFloat64(o.metrics.operations.WithLabelValues("compute", "ok")); got != 1 {
		t.Errorf("ok count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(o.metrics.operations.WithLabelValues("compute", "error")); got != 1 {
		t.Errorf("error count = %v, want 1", got)
	}

	// a second client on the same registry reuses the collectors
	o2, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("second newObserver: %v", err)
	}
	if o2.metrics.operations != o.metrics.operations {
		t.Error("expected collectors to be reused")
	}
}

func TestClient_Compute(t *testing.T) {
	c := &Client{matchingSvc: &mockMatchingUC{
		computeFn: func(_ context.Context, callerID string) (matchinguc.Outcome, error) {
			if callerID != "alice" {
				t.Errorf("caller = %q", callerID)
			}
			return matchinguc.Outcome{RunID: "r1", MatchesFound: 2}, nil
		},
	}}

	out, err := c.Compute(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != (Outcome{RunID: "r1", MatchesFound: 2}) {
		t.Errorf("outcome = %+v", out)
	}
}

func TestClient_Compute_NotFound(t *testing.T) {
	c := &Client{matchingSvc: &mockMatchingUC{
		computeFn: func(context.Context, string) (matchinguc.Outcome, error) {
			return matchinguc.Outcome{}, fmt.Errorf("load subject: %w", domain.ErrNotFound)
		},
	}}

	_, err := c.Compute(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestEntityService_Put(t *testing.T) {
	svc := &EntityService{svc: &mockEntityUC{
		seedFn: func(_ context.Context, id string, in entityuc.UpsertInput) (domentity.Entity, error) {
			return domentity.New(id, in.Username, in.Traits, in.FreeText)
		},
	}}

	got, err := svc.Put(context.Background(), Entity{ID: "alice", Username: "Alice", Traits: []string{" go ", "go"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Traits) != 1 || got.Traits[0] != "go" {
		t.Errorf("traits = %v, want [go]", got.Traits)
	}
}

func TestEntityService_Get_Error(t *testing.T) {
	svc := &EntityService{svc: &mockEntityUC{
		getFn: func(context.Context, string) (domentity.Entity, error) {
			return domentity.Entity{}, domain.ErrNotFound
		},
	}}

	if _, err := svc.Get(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// TestWireClient_EndToEnd runs the real pipeline over an in-memory store.
func TestWireClient_EndToEnd(t *testing.T) {
	scorer := &mockScorer{fn: func(_ context.Context, prompt string) (Verdict, error) {
		if strings.Contains(prompt, "oracle-fails-here") {
			return Verdict{}, errors.New("timeout")
		}
		return Verdict{Summary: "good fit", Score: 80, ConversationStarters: []string{"hi"}}, nil
	}}
	c := wireClient(newMemStore(), &clientConfig{scorer: scorer}, nil)
	ctx := context.Background()

	for _, e := range []Entity{
		{ID: "alice", Username: "Alice", Traits: []string{"a", "b"}},
		{ID: "bob", Username: "Bob", Traits: []string{"b", "c"}},
		{ID: "carol", Username: "Carol", Traits: []string{"a", "b"}, FreeText: "oracle-fails-here"},
		{ID: "dave", Username: "Dave", Traits: []string{"x", "y"}},
	} {
		if _, err := c.Entities().Put(ctx, e); err != nil {
			t.Fatalf("Put(%s): %v", e.ID, err)
		}
	}

	out, err := c.Compute(ctx, "alice")
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	// bob passes the gate (1/3), carol's oracle call fails, dave is disjoint
	if out.MatchesFound != 1 {
		t.Fatalf("MatchesFound = %d, want 1", out.MatchesFound)
	}

	matches, err := c.Matches(ctx, "alice")
	if err != nil {
		t.Fatalf("Matches: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "match_alice_bob" {
		t.Fatalf("matches = %+v", matches)
	}
	want := (1.0/3)*0.3 + 0.8*0.7
	if math.Abs(matches[0].FinalScore-want) > 1e-9 {
		t.Errorf("FinalScore = %v, want %v", matches[0].FinalScore, want)
	}

	if h := c.Health(ctx); h.Status != "ok" || !h.Healthy() {
		t.Errorf("health = %+v", h)
	}
	if u := c.Usage(ctx, PeriodDay); u.Budget.TokensRemaining != -1 {
		t.Errorf("usage = %+v", u)
	}
}
