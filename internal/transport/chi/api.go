package chi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/matchmaker/internal/domain/match"
)

// ErrorCode is the machine-readable error code of an API error.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest      ErrorCode = "bad-request"
	ErrorCodeInvalidArgument ErrorCode = "invalid-argument"
	ErrorCodeUnauthenticated ErrorCode = "unauthenticated"
	ErrorCodeForbidden       ErrorCode = "forbidden"
	ErrorCodeNotFound        ErrorCode = "not-found"
	ErrorCodeInternal        ErrorCode = "internal"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ComputeMatchesResponse is the body of POST /v1/matches.
type ComputeMatchesResponse struct {
	Success      bool `json:"success"`
	MatchesFound int  `json:"matchesFound"`
}

// Entity is the wire form of a profile.
type Entity struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Traits   []string `json:"traits"`
	FreeText string   `json:"freeText"`
}

// Match is the wire form of a persisted match result.
type Match struct {
	ID                   string                        `json:"id"`
	SubjectID            string                        `json:"subjectId"`
	CandidateID          string                        `json:"candidateId"`
	CandidateName        string                        `json:"candidateName"`
	HeuristicScore       float64                       `json:"heuristicScore"`
	OracleScore          float64                       `json:"oracleScore"`
	FinalScore           float64                       `json:"finalScore"`
	Summary              string                        `json:"summary"`
	ConversationStarters []string                      `json:"conversationStarters,omitempty"`
	SimilarFeatures      map[string]match.FeatureScore `json:"similarFeatures,omitempty"`
	ComputedAt           time.Time                     `json:"computedAt"`
}

// MatchListResponse is the body of GET /v1/matches.
type MatchListResponse struct {
	Items []Match `json:"items"`
}

// BudgetStatus is the oracle budget part of a usage report.
type BudgetStatus struct {
	TokensLimit     int64      `json:"tokensLimit"`
	TokensUsed      int64      `json:"tokensUsed"`
	TokensRemaining int64      `json:"tokensRemaining"`
	IsExhausted     bool       `json:"isExhausted"`
	ResetsAt        *time.Time `json:"resetsAt,omitempty"`
}

// UsageResponse is the body of GET /v1/usage.
type UsageResponse struct {
	Period        string       `json:"period"`
	Provider      string       `json:"provider"`
	PeriodStartAt *time.Time   `json:"periodStartAt,omitempty"`
	PeriodEndAt   *time.Time   `json:"periodEndAt,omitempty"`
	Budget        BudgetStatus `json:"budget"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// ServerInterface lists the HTTP operations.
type ServerInterface interface {
	// (POST /v1/matches)
	ComputeMatches(w http.ResponseWriter, r *http.Request)
	// (GET /v1/matches)
	ListMatches(w http.ResponseWriter, r *http.Request)
	// (PUT /v1/entities/{id})
	PutEntity(w http.ResponseWriter, r *http.Request, id string)
	// (GET /v1/entities/{id})
	GetEntity(w http.ResponseWriter, r *http.Request, id string)
	// (GET /v1/usage)
	GetUsage(w http.ResponseWriter, r *http.Request)
	// (GET /health)
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// (GET /metrics)
	Metrics(w http.ResponseWriter, r *http.Request)
}

// HandlerOptions configures Handler.
type HandlerOptions struct {
	BaseRouter  chi.Router
	Middlewares []func(http.Handler) http.Handler
}

// Handler mounts every operation of si on a chi router.
func Handler(si ServerInterface, opts HandlerOptions) http.Handler {
	r := opts.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}

	r.Group(func(r chi.Router) {
		r.Use(opts.Middlewares...)

		r.Post("/v1/matches", si.ComputeMatches)
		r.Get("/v1/matches", si.ListMatches)
		r.Put("/v1/entities/{id}", withPathID(si.PutEntity))
		r.Get("/v1/entities/{id}", withPathID(si.GetEntity))
		r.Get("/v1/usage", si.GetUsage)
		r.Get("/health", si.HealthCheck)
		r.Get("/metrics", si.Metrics)
	})
	return r
}

// withPathID binds the {id} path parameter with simple-style decoding.
func withPathID(h func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var id string
		err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
			runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
		if err != nil {
			writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid format for parameter id: "+err.Error())
			return
		}
		h(w, r, id)
	}
}
