// Package httphandler is the HTTP driving adapter exposing the agent's
// query, health, status, and operations endpoints.
package httphandler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"github.com/maximilien/repoagent/internal/application"
	"github.com/maximilien/repoagent/internal/domain/model"
	"github.com/maximilien/repoagent/internal/domain/port/driven"
)

const agentID = "github"

// Handler serves the agent's HTTP API.
type Handler struct {
	catalog  *application.Catalog
	provider *application.ClientProvider
	opStore  driven.OperationStore
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	catalog *application.Catalog,
	provider *application.ClientProvider,
	opStore driven.OperationStore,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		catalog:  catalog,
		provider: provider,
		opStore:  opStore,
		logger:   logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and
// wrapped with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /query", h.Query)
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /status", h.Status)
	mux.HandleFunc("GET /operations", h.ListOperations)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Query routes a free-text request to one of the agent's operations. All
// failures are folded into the envelope; this endpoint never returns a
// transport-level fault for an operation error.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeQueryError(w, "invalid request body: "+err.Error())
		return
	}

	if req.Query == "" {
		writeQueryError(w, "query must not be empty")
		return
	}

	dispatch := h.catalog.HandleQuery(r.Context(), toolRequest(req))

	writeJSON(w, http.StatusOK, QueryResponse{
		Status:    "success",
		Response:  dispatch.Response,
		AgentID:   agentID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Metadata: map[string]any{
			"tool":         dispatch.Tool,
			"outcome":      string(dispatch.Outcome),
			"capabilities": []string{"Branch Management", "PR Creation", "Repository Operations"},
		},
	})
}

// Health returns a static liveness payload.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Service: "github-agent",
		Time:    time.Now().UTC().Format(time.RFC3339),
	})
}

// Status reports whether the GitHub integration is configured, which
// operations are available, and audit-log totals.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Agent:            "GitHub Agent",
		Status:           "active",
		GitHubConfigured: h.provider.Configured(),
		Tools:            h.catalog.ToolNames(),
	}

	if resp.GitHubConfigured {
		resp.Repository = h.provider.Target().FullName()
	}

	if h.opStore != nil {
		counts, err := h.opStore.CountByOutcome(r.Context())
		if err != nil {
			h.logger.Error("failed to count operations", "error", err)
		} else {
			resp.Operations = map[string]int{
				"success": counts[model.OutcomeSuccess],
				"failure": counts[model.OutcomeFailure],
			}
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListOperations returns recent audit-log records, most recent first.
func (h *Handler) ListOperations(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > 500 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	records, err := h.opStore.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list operations", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]OperationResponse, 0, len(records))
	for _, rec := range records {
		resp = append(resp, toOperationResponse(rec))
	}

	writeJSON(w, http.StatusOK, resp)
}

// writeQueryError writes a structured error envelope. The query endpoint
// reports problems inside the envelope rather than via HTTP status codes.
func writeQueryError(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, QueryResponse{
		Status:    "error",
		Response:  "Error processing query: " + message,
		AgentID:   agentID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Metadata:  map[string]any{"error": message},
	})
}

// toolRequest maps the request's context object onto structured tool
// parameters. Unknown keys are ignored.
func toolRequest(req QueryRequest) application.ToolRequest {
	tr := application.ToolRequest{Query: req.Query}

	str := func(key string) string {
		v, _ := req.Context[key].(string)
		return v
	}

	tr.BranchName = str("branch_name")
	tr.BaseBranch = str("base_branch")
	tr.CommitMessage = str("commit_message")
	tr.Title = str("title")
	tr.Body = str("body")

	if raw, ok := req.Context["files"].([]any); ok {
		for _, f := range raw {
			if s, ok := f.(string); ok && s != "" {
				tr.Files = append(tr.Files, s)
			}
		}
	}

	return tr
}
