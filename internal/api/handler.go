package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nidhogg/think-tank/internal/capability"
	"github.com/nidhogg/think-tank/internal/history"
	"github.com/nidhogg/think-tank/internal/reasoning"
	"github.com/nidhogg/think-tank/internal/retrieval"
	"go.uber.org/zap"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	engine   *reasoning.Engine
	registry *capability.Registry
	runner   *capability.Runner
	sources  *retrieval.Sources
	convos   *history.Store
	logger   *zap.Logger
}

// NewHandler creates a new API handler. convos may be nil when no
// conversation store is configured.
func NewHandler(
	engine *reasoning.Engine,
	registry *capability.Registry,
	runner *capability.Runner,
	sources *retrieval.Sources,
	convos *history.Store,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		engine:   engine,
		registry: registry,
		runner:   runner,
		sources:  sources,
		convos:   convos,
		logger:   logger,
	}
}

// Router builds the chi router with all routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.healthCheck)

		r.Post("/reason", h.reason)
		r.Post("/retrieve", h.retrieve)
		r.Post("/workflow", h.runWorkflow)

		r.Get("/capabilities", h.listCapabilities)
		r.Get("/capabilities/suggest", h.suggestCapabilities)
		r.Get("/executions", h.listExecutions)
		r.Get("/analytics", h.analytics)
	})

	return r
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "think-tank"})
}

type reasonRequest struct {
	Query         string            `json:"query"`
	Context       map[string]string `json:"context,omitempty"`
	MaxIterations int               `json:"max_iterations,omitempty"`
	FastMode      bool              `json:"fast_mode,omitempty"`
}

func (h *Handler) reason(w http.ResponseWriter, r *http.Request) {
	var req reasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}
	if req.MaxIterations == 0 {
		req.MaxIterations = 5
	}

	chain, err := h.engine.Run(r.Context(), req.Query, req.Context, req.MaxIterations, req.FastMode)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if h.convos != nil && chain.FinalDecision != nil {
		sessionID, sErr := h.convos.FindOrCreateSession(r.Context(), "api")
		if sErr == nil {
			sErr = h.convos.AppendExchange(r.Context(), sessionID, req.Query, chain.FinalDecision.ReasoningSummary)
		}
		if sErr != nil {
			h.logger.Warn("Failed to record exchange", zap.Error(sErr))
		}
	}

	writeJSON(w, http.StatusOK, chain)
}

type retrieveRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

type retrieveResponse struct {
	Candidates []retrieval.RankedCandidate `json:"candidates"`
	Context    string                      `json:"context"`
	Metrics    retrieval.Metrics           `json:"metrics"`
}

func (h *Handler) retrieve(w http.ResponseWriter, r *http.Request) {
	var req retrieveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "query is required"})
		return
	}
	if req.Limit == 0 {
		req.Limit = 5
	}

	ranked, context, metrics := h.sources.Retrieve(r.Context(), req.Query, req.Limit, retrieval.DefaultBudgets())
	writeJSON(w, http.StatusOK, retrieveResponse{
		Candidates: ranked,
		Context:    context,
		Metrics:    metrics,
	})
}

type workflowRequest struct {
	Steps []capability.WorkflowStep `json:"steps"`
}

func (h *Handler) runWorkflow(w http.ResponseWriter, r *http.Request) {
	var req workflowRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if len(req.Steps) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "steps are required"})
		return
	}

	records, err := h.runner.RunWorkflow(r.Context(), req.Steps)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"records": records})
}

func (h *Handler) listCapabilities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.registry.List())
}

func (h *Handler) suggestCapabilities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "q is required"})
		return
	}
	writeJSON(w, http.StatusOK, h.registry.Suggest(q))
}

func (h *Handler) listExecutions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"records":    h.runner.Ledger(),
		"statistics": h.runner.Statistics(),
	})
}

func (h *Handler) analytics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reasoning":    h.engine.Analytics(),
		"capabilities": h.runner.Statistics(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
