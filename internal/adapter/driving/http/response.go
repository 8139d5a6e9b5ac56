package httphandler

import (
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/maximilien/repoagent/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the
// given status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// QueryRequest is the JSON body of the query endpoint. Context carries
// optional structured parameters for the selected operation.
type QueryRequest struct {
	Query   string         `json:"query"`
	Context map[string]any `json:"context,omitempty"`
}

// QueryResponse is the envelope returned by the query endpoint. Status is
// "success" or "error"; tool-level failures are folded into Response with
// status "success", and only transport-level faults produce "error".
type QueryResponse struct {
	Status    string         `json:"status"`
	Response  string         `json:"response"`
	AgentID   string         `json:"agent_id"`
	Timestamp string         `json:"timestamp"`
	Metadata  map[string]any `json:"metadata"`
}

// HealthResponse is the static liveness payload.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Time    string `json:"time"`
}

// StatusResponse reports agent configuration and available operations.
type StatusResponse struct {
	Agent            string         `json:"agent"`
	Status           string         `json:"status"`
	GitHubConfigured bool           `json:"github_configured"`
	Repository       string         `json:"repository,omitempty"`
	Tools            []string       `json:"tools"`
	Operations       map[string]int `json:"operations,omitempty"`
}

// OperationResponse is the JSON representation of one audit-log record.
type OperationResponse struct {
	ID        int64  `json:"id"`
	Tool      string `json:"tool"`
	Query     string `json:"query"`
	Outcome   string `json:"outcome"`
	Detail    string `json:"detail"`
	StartedAt string `json:"started_at"`
	EndedAt   string `json:"ended_at"`
}

// toOperationResponse converts an audit-log record to its JSON form.
func toOperationResponse(rec model.OperationRecord) OperationResponse {
	return OperationResponse{
		ID:        rec.ID,
		Tool:      rec.Tool,
		Query:     rec.Query,
		Outcome:   string(rec.Outcome),
		Detail:    rec.Detail,
		StartedAt: rec.StartedAt.UTC().Format(time.RFC3339),
		EndedAt:   rec.EndedAt.UTC().Format(time.RFC3339),
	}
}
