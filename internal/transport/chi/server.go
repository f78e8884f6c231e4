package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/matchmaker/internal/domain"
	domentity "github.com/kailas-cloud/matchmaker/internal/domain/entity"
	"github.com/kailas-cloud/matchmaker/internal/domain/match"
	domusage "github.com/kailas-cloud/matchmaker/internal/domain/usage"
	entityuc "github.com/kailas-cloud/matchmaker/internal/usecase/entity"
	healthuc "github.com/kailas-cloud/matchmaker/internal/usecase/health"
	matchinguc "github.com/kailas-cloud/matchmaker/internal/usecase/matching"
)

const maxBodyBytes = 64 << 10

// MatchingService runs and lists match computations.
type MatchingService interface {
	Compute(ctx context.Context, callerID string) (matchinguc.Outcome, error)
	List(ctx context.Context, callerID string) ([]match.Result, error)
}

// EntityService reads and writes profiles.
type EntityService interface {
	Upsert(ctx context.Context, callerID, id string, in entityuc.UpsertInput) (domentity.Entity, error)
	Get(ctx context.Context, id string) (domentity.Entity, error)
}

// UsageService builds oracle usage reports.
type UsageService interface {
	GetReport(ctx context.Context, period domusage.Period) domusage.Report
}

// HealthService aggregates component checks.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server implements ServerInterface.
type Server struct {
	matching      MatchingService
	entities      EntityService
	usage         UsageService
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(
	matching MatchingService,
	entities EntityService,
	usage UsageService,
	health HealthService,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		matching: matching,
		entities: entities,
		usage:    usage,
		health:   health,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnauthenticated, http.StatusUnauthorized, ErrorCodeUnauthenticated),
		sentinelHandler(domain.ErrForbidden, http.StatusForbidden, ErrorCodeForbidden),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeNotFound),
		invalidEntityHandler,
	}
	return s
}

// ComputeMatches handles POST /v1/matches.
func (s *Server) ComputeMatches(w http.ResponseWriter, r *http.Request) {
	out, err := s.matching.Compute(r.Context(), CallerFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("X-Run-Id", out.RunID)
	writeJSON(w, http.StatusOK, ComputeMatchesResponse{
		Success:      true,
		MatchesFound: out.MatchesFound,
	})
}

// ListMatches handles GET /v1/matches.
func (s *Server) ListMatches(w http.ResponseWriter, r *http.Request) {
	results, err := s.matching.List(r.Context(), CallerFromContext(r.Context()))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]Match, len(results))
	for i := range results {
		items[i] = matchToWire(&results[i])
	}
	writeJSON(w, http.StatusOK, MatchListResponse{Items: items})
}

// PutEntity handles PUT /v1/entities/{id}.
func (s *Server) PutEntity(w http.ResponseWriter, r *http.Request, id string) {
	var in entityuc.UpsertInput
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	e, err := s.entities.Upsert(r.Context(), CallerFromContext(r.Context()), id, in)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entityToWire(&e))
}

// GetEntity handles GET /v1/entities/{id}.
func (s *Server) GetEntity(w http.ResponseWriter, r *http.Request, id string) {
	e, err := s.entities.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entityToWire(&e))
}

// GetUsage handles GET /v1/usage.
func (s *Server) GetUsage(w http.ResponseWriter, r *http.Request) {
	period, ok := domusage.ParsePeriod(r.URL.Query().Get("period"))
	if !ok {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "period must be one of day, month, total")
		return
	}

	report := s.usage.GetReport(r.Context(), period)
	writeJSON(w, http.StatusOK, usageToWire(&report))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrUnauthenticated,
		domain.ErrForbidden,
		domain.ErrNotFound,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

// invalidEntityHandler exposes the validation detail, which carries no internals.
func invalidEntityHandler(w http.ResponseWriter, err error, _ string) bool {
	if !errors.Is(err, domain.ErrInvalidEntity) {
		return false
	}
	writeError(w, http.StatusBadRequest, ErrorCodeInvalidArgument, err.Error())
	return true
}

// handleDomainError maps a domain error to an HTTP response.
func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternal, "internal error")
}

func entityToWire(e *domentity.Entity) Entity {
	traits := e.Traits()
	if traits == nil {
		traits = []string{}
	}
	return Entity{
		ID:       e.ID(),
		Username: e.Username(),
		Traits:   traits,
		FreeText: e.FreeText(),
	}
}

func matchToWire(r *match.Result) Match {
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
		SimilarFeatures:      r.SimilarFeatures(),
		ComputedAt:           r.ComputedAt(),
	}
}

func usageToWire(r *domusage.Report) UsageResponse {
	b := r.Budget()
	return UsageResponse{
		Period:        string(r.Period()),
		Provider:      r.Provider(),
		PeriodStartAt: millisPtr(r.PeriodStart()),
		PeriodEndAt:   millisPtr(r.PeriodEnd()),
		Budget: BudgetStatus{
			TokensLimit:     b.Limit,
			TokensUsed:      b.Used,
			TokensRemaining: b.Remaining,
			IsExhausted:     b.Exhausted,
			ResetsAt:        millisPtr(b.ResetsAt),
		},
	}
}

func millisPtr(ms int64) *time.Time {
	if ms == 0 {
		return nil
	}
	t := time.UnixMilli(ms).UTC()
	return &t
}
