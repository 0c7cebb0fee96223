package api

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"

	"github.com/lodi-go/lodi/internal/compare"
	"github.com/lodi-go/lodi/internal/domain"
	"github.com/lodi-go/lodi/internal/optimize"
)

// Server exposes the comparison and optimizer over HTTP. The rule set is
// loaded once at startup and shared read-only across requests.
type Server struct {
	Rules   *domain.RuleSet
	Compare *compare.CompareEngine
	Solver  *optimize.Solver
}

// NewServer creates a server over a loaded rule set.
func NewServer(rules *domain.RuleSet, options optimize.Options) *Server {
	return &Server{
		Rules:   rules,
		Compare: compare.NewCompareEngine(rules),
		Solver:  optimize.NewSolver(rules, options),
	}
}

// CalculateRequest is the body of POST /v1/calculate.
type CalculateRequest struct {
	Owner domain.OwnerInputs `json:"owner"`
}

// OptimizeRequest is the body of POST /v1/optimize.
type OptimizeRequest struct {
	Owner     domain.OwnerInputs `json:"owner"`
	Step      int64              `json:"step,omitempty"`
	Objective optimize.Objective `json:"objective,omitempty"`
}

// Metadata is the per-request envelope every response carries.
type Metadata struct {
	RequestID   string `json:"request_id"`
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at"`
	DurationMs  int64  `json:"duration_ms"`
	Outcome     string `json:"outcome"`
}

// CalculateResponse wraps a comparison set with its metadata.
type CalculateResponse struct {
	Metadata Metadata               `json:"metadata"`
	Result   *compare.ComparisonSet `json:"result"`
}

// OptimizeResponse wraps an optimizer result with its metadata.
type OptimizeResponse struct {
	Metadata Metadata         `json:"metadata"`
	Result   *optimize.Result `json:"result"`
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

const (
	outcomeSuccess = "SUCCESS"
	outcomeFailure = "FAILURE"
)

// Handler is the fasthttp request router.
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case "/healthz":
		s.handleHealth(ctx)
	case "/v1/calculate":
		s.handleCalculate(ctx)
	case "/v1/optimize":
		s.handleOptimize(ctx)
	default:
		writeError(ctx, fasthttp.StatusNotFound, "no such route")
	}
}

// ListenAndServe blocks serving the API on the given port.
func (s *Server) ListenAndServe(port string) error {
	slog.Info("api listening", "port", port)
	return fasthttp.ListenAndServe(":"+port, s.Handler)
}

func (s *Server) handleHealth(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("application/json")
	ctx.SetBodyString(`{"status":"ok"}`)
}

func (s *Server) handleCalculate(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "POST required")
		return
	}

	var req CalculateRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	applyInputDefaults(&req.Owner)
	if err := req.Owner.Validate(); err != nil {
		writeError(ctx, fasthttp.StatusUnprocessableEntity, err.Error())
		return
	}

	timer := startTimer()
	set, err := s.Compare.Run(req.Owner)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, CalculateResponse{
		Metadata: timer.finish(),
		Result:   set,
	})
}

func (s *Server) handleOptimize(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "POST required")
		return
	}

	var req OptimizeRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	applyInputDefaults(&req.Owner)

	optReq := optimize.Request{Inputs: req.Owner, Objective: req.Objective}
	if req.Step > 0 {
		optReq.Step = decimal.NewFromInt(req.Step)
	}

	timer := startTimer()
	result, err := s.Solver.Optimize(ctx, optReq)
	if err != nil {
		writeDomainError(ctx, err)
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, OptimizeResponse{
		Metadata: timer.finish(),
		Result:   result,
	})
}

// applyInputDefaults mirrors the profile-file defaulting for API callers.
func applyInputDefaults(in *domain.OwnerInputs) {
	if in.Confession == "" {
		in.Confession = domain.ConfessionNone
	}
	if in.MaritalStatus == "" {
		in.MaritalStatus = domain.StatusSingle
	}
}

// requestTimer holds the request identity and start instant; timestamps are
// formatted only when the metadata envelope is built.
type requestTimer struct {
	id      string
	started time.Time
}

func startTimer() requestTimer {
	return requestTimer{id: uuid.NewString(), started: time.Now().UTC()}
}

func (rt requestTimer) finish() Metadata {
	now := time.Now().UTC()
	return Metadata{
		RequestID:   rt.id,
		StartedAt:   rt.started.Format(time.RFC3339Nano),
		CompletedAt: now.Format(time.RFC3339Nano),
		DurationMs:  now.Sub(rt.started).Milliseconds(),
		Outcome:     outcomeSuccess,
	}
}

// writeDomainError maps error types to HTTP statuses: bad inputs and unknown
// jurisdictions are client errors, everything else is a 500.
func writeDomainError(ctx *fasthttp.RequestCtx, err error) {
	var cfgErr *domain.ConfigError
	var optErr *optimize.OptimizeError
	switch {
	case errors.As(err, &cfgErr):
		writeError(ctx, fasthttp.StatusUnprocessableEntity, cfgErr.Error())
	case errors.As(err, &optErr):
		writeError(ctx, fasthttp.StatusUnprocessableEntity, optErr.Error())
	default:
		slog.Error("request failed", "error", err)
		writeError(ctx, fasthttp.StatusInternalServerError, "internal error")
	}
}

func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	writeJSON(ctx, status, ErrorResponse{Status: status, Message: message})
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString(fmt.Sprintf(`{"status":500,"message":%q}`, err.Error()))
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(data)
}
