package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/kailas-cloud/matchmaker/internal/domain"
	domentity "github.com/kailas-cloud/matchmaker/internal/domain/entity"
	"github.com/kailas-cloud/matchmaker/internal/domain/match"
	domusage "github.com/kailas-cloud/matchmaker/internal/domain/usage"
	entityuc "github.com/kailas-cloud/matchmaker/internal/usecase/entity"
	healthuc "github.com/kailas-cloud/matchmaker/internal/usecase/health"
	matchinguc "github.com/kailas-cloud/matchmaker/internal/usecase/matching"
)

type fakeMatching struct {
	computeFn func(ctx context.Context, callerID string) (matchinguc.Outcome, error)
	listFn    func(ctx context.Context, callerID string) ([]match.Result, error)
}

func (f *fakeMatching) Compute(ctx context.Context, callerID string) (matchinguc.Outcome, error) {
	return f.computeFn(ctx, callerID)
}

func (f *fakeMatching) List(ctx context.Context, callerID string) ([]match.Result, error) {
	return f.listFn(ctx, callerID)
}

type fakeEntities struct {
	upsertFn func(ctx context.Context, callerID, id string, in entityuc.UpsertInput) (domentity.Entity, error)
	getFn    func(ctx context.Context, id string) (domentity.Entity, error)
}

func (f *fakeEntities) Upsert(
	ctx context.Context, callerID, id string, in entityuc.UpsertInput,
) (domentity.Entity, error) {
	return f.upsertFn(ctx, callerID, id, in)
}

func (f *fakeEntities) Get(ctx context.Context, id string) (domentity.Entity, error) {
	return f.getFn(ctx, id)
}

type fakeUsage struct{ got domusage.Period }

func (f *fakeUsage) GetReport(_ context.Context, p domusage.Period) domusage.Report {
	f.got = p
	return domusage.NewReport(p, 1_700_000_000_000, 1_700_086_400_000, "gemini",
		domusage.Budget{Limit: 1000, Used: 400, Remaining: 600, ResetsAt: 1_700_086_400_000})
}

type fakeHealth struct{ report healthuc.Report }

func (f *fakeHealth) Check(context.Context) healthuc.Report { return f.report }

func newTestHandler(m *fakeMatching, e *fakeEntities, u *fakeUsage, h *fakeHealth) http.Handler {
	if m == nil {
		m = &fakeMatching{}
	}
	if e == nil {
		e = &fakeEntities{}
	}
	if u == nil {
		u = &fakeUsage{}
	}
	if h == nil {
		h = &fakeHealth{}
	}
	srv := NewServer(m, e, u, h, nil)
	return Handler(srv, HandlerOptions{
		Middlewares: []func(http.Handler) http.Handler{JWTAuthMiddleware(testSecret, "")},
	})
}

func do(t *testing.T, h http.Handler, method, path, caller, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, http.NoBody)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	if caller != "" {
		req.Header.Set("Authorization", "Bearer "+mustToken(t, testSecret, "", caller, time.Hour))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

func TestComputeMatches_Success(t *testing.T) {
	var gotCaller string
	m := &fakeMatching{computeFn: func(_ context.Context, callerID string) (matchinguc.Outcome, error) {
		gotCaller = callerID
		return matchinguc.Outcome{RunID: "run-1", MatchesFound: 3}, nil
	}}
	h := newTestHandler(m, nil, nil, nil)

	rr := do(t, h, http.MethodPost, "/v1/matches", "alice", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if gotCaller != "alice" {
		t.Errorf("caller = %q, want alice", gotCaller)
	}
	if rr.Header().Get("X-Run-Id") != "run-1" {
		t.Errorf("X-Run-Id = %q", rr.Header().Get("X-Run-Id"))
	}
	var resp ComputeMatchesResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(ComputeMatchesResponse{Success: true, MatchesFound: 3}, resp); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeMatches_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody ErrorCode
		wantMsg  string
	}{
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized, ErrorCodeUnauthenticated, "unauthenticated"},
		{"not found", fmt.Errorf("load subject: %w", domain.ErrNotFound), http.StatusNotFound, ErrorCodeNotFound, "not found"},
		{"persistence", fmt.Errorf("save: %w", domain.ErrPersistence), http.StatusInternalServerError, ErrorCodeInternal, "internal error"},
		{"unknown", errors.New("redis: connection refused"), http.StatusInternalServerError, ErrorCodeInternal, "internal error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := &fakeMatching{computeFn: func(context.Context, string) (matchinguc.Outcome, error) {
				return matchinguc.Outcome{}, tc.err
			}}
			rr := do(t, newTestHandler(m, nil, nil, nil), http.MethodPost, "/v1/matches", "alice", "")

			if rr.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d", rr.Code, tc.wantCode)
			}
			resp := decodeError(t, rr)
			if resp.Code != tc.wantBody || resp.Message != tc.wantMsg {
				t.Errorf("error = %+v, want code %q message %q", resp, tc.wantBody, tc.wantMsg)
			}
		})
	}
}

func TestComputeMatches_NoToken(t *testing.T) {
	m := &fakeMatching{computeFn: func(context.Context, string) (matchinguc.Outcome, error) {
		t.Error("Compute must not be called without a token")
		return matchinguc.Outcome{}, nil
	}}
	rr := do(t, newTestHandler(m, nil, nil, nil), http.MethodPost, "/v1/matches", "", "")

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestListMatches(t *testing.T) {
	subject := domentity.Reconstruct("alice", "Alice", []string{"go"}, "")
	cand := match.ScoredCandidate{Entity: domentity.Reconstruct("bob", "Bob", []string{"go"}, ""), Heuristic: 1}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := match.NewResult(subject, cand, match.OracleResult{
		Summary: "both gophers", Score: 90, ConversationStarters: []string{"generics?"},
	}, at)

	m := &fakeMatching{listFn: func(_ context.Context, callerID string) ([]match.Result, error) {
		if callerID != "alice" {
			t.Errorf("caller = %q", callerID)
		}
		return []match.Result{r}, nil
	}}
	rr := do(t, newTestHandler(m, nil, nil, nil), http.MethodGet, "/v1/matches", "alice", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var resp MatchListResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := MatchListResponse{Items: []Match{{
		ID:                   "match_alice_bob",
		SubjectID:            "alice",
		CandidateID:          "bob",
		CandidateName:        "Bob",
		HeuristicScore:       1,
		OracleScore:          0.9,
		FinalScore:           r.FinalScore(),
		Summary:              "both gophers",
		ConversationStarters: []string{"generics?"},
		ComputedAt:           at,
	}}}
	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func TestPutEntity(t *testing.T) {
	e := &fakeEntities{upsertFn: func(
		_ context.Context, callerID, id string, in entityuc.UpsertInput,
	) (domentity.Entity, error) {
		if callerID != "alice" || id != "alice" {
			t.Errorf("caller/id = %q/%q", callerID, id)
		}
		return domentity.New(id, in.Username, in.Traits, in.FreeText)
	}}
	body := `{"username":"Alice","traits":["hiking"," hiking ","go"],"freeText":"hi"}`
	rr := do(t, newTestHandler(nil, e, nil, nil), http.MethodPut, "/v1/entities/alice", "alice", body)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	var got Entity
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := Entity{ID: "alice", Username: "Alice", Traits: []string{"hiking", "go"}, FreeText: "hi"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("entity mismatch (-want +got):\n%s", diff)
	}
}

func TestPutEntity_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		err      error
		wantCode int
		wantBody ErrorCode
	}{
		{"bad json", `{`, nil, http.StatusBadRequest, ErrorCodeBadRequest},
		{"forbidden", `{}`, fmt.Errorf("write: %w", domain.ErrForbidden), http.StatusForbidden, ErrorCodeForbidden},
		{"invalid", `{}`, fmt.Errorf("%w: username required", domain.ErrInvalidEntity),
			http.StatusBadRequest, ErrorCodeInvalidArgument},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			e := &fakeEntities{upsertFn: func(
				context.Context, string, string, entityuc.UpsertInput,
			) (domentity.Entity, error) {
				return domentity.Entity{}, tc.err
			}}
			rr := do(t, newTestHandler(nil, e, nil, nil), http.MethodPut, "/v1/entities/bob", "alice", tc.body)

			if rr.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d", rr.Code, tc.wantCode)
			}
			if got := decodeError(t, rr).Code; got != tc.wantBody {
				t.Errorf("code = %q, want %q", got, tc.wantBody)
			}
		})
	}
}

func TestGetEntity_NotFound(t *testing.T) {
	e := &fakeEntities{getFn: func(_ context.Context, id string) (domentity.Entity, error) {
		if id != "ghost" {
			t.Errorf("id = %q", id)
		}
		return domentity.Entity{}, domain.ErrNotFound
	}}
	rr := do(t, newTestHandler(nil, e, nil, nil), http.MethodGet, "/v1/entities/ghost", "alice", "")

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusNotFound)
	}
	if got := decodeError(t, rr).Code; got != ErrorCodeNotFound {
		t.Errorf("code = %q", got)
	}
}

func TestGetUsage(t *testing.T) {
	u := &fakeUsage{}
	rr := do(t, newTestHandler(nil, nil, u, nil), http.MethodGet, "/v1/usage?period=day", "alice", "")

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if u.got != domusage.PeriodDay {
		t.Errorf("period = %q, want day", u.got)
	}
	var resp UsageResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Provider != "gemini" || resp.Budget.TokensRemaining != 600 || resp.Budget.ResetsAt == nil {
		t.Errorf("unexpected usage response: %+v", resp)
	}
}

func TestGetUsage_InvalidPeriod(t *testing.T) {
	rr := do(t, newTestHandler(nil, nil, nil, nil), http.MethodGet, "/v1/usage?period=week", "alice", "")

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name     string
		report   healthuc.Report
		wantCode int
	}{
		{"healthy", healthuc.Report{Status: healthuc.Healthy, Checks: map[string]healthuc.CheckResult{
			"database": healthuc.CheckOK, "oracle": healthuc.CheckOK,
		}}, http.StatusOK},
		{"degraded", healthuc.Report{Status: healthuc.Degraded, Checks: map[string]healthuc.CheckResult{
			"database": healthuc.CheckOK, "oracle": healthuc.CheckError,
		}}, http.StatusOK},
		{"unhealthy", healthuc.Report{Status: healthuc.Unhealthy, Checks: map[string]healthuc.CheckResult{
			"database": healthuc.CheckError,
		}}, http.StatusServiceUnavailable},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHandler(nil, nil, nil, &fakeHealth{report: tc.report})
			rr := do(t, h, http.MethodGet, "/health", "", "")

			if rr.Code != tc.wantCode {
				t.Fatalf("status = %d, want %d", rr.Code, tc.wantCode)
			}
			var resp HealthResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != string(tc.report.Status) {
				t.Errorf("status = %q, want %q", resp.Status, tc.report.Status)
			}
		})
	}
}

func TestMetrics_NoAuth(t *testing.T) {
	rr := do(t, newTestHandler(nil, nil, nil, nil), http.MethodGet, "/metrics", "", "")

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
}
