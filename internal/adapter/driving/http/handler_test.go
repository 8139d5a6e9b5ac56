package httphandler_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httphandler "github.com/maximilien/repoagent/internal/adapter/driving/http"
	"github.com/maximilien/repoagent/internal/application"
	"github.com/maximilien/repoagent/internal/domain/model"
	"github.com/maximilien/repoagent/internal/domain/port/driven"
)

// stubStore is an in-memory OperationStore for handler tests.
type stubStore struct {
	records []model.OperationRecord
	counts  map[model.OperationOutcome]int
	lastN   int
}

var _ driven.OperationStore = (*stubStore)(nil)

func (s *stubStore) Record(_ context.Context, rec model.OperationRecord) (int64, error) {
	s.records = append(s.records, rec)
	return int64(len(s.records)), nil
}

func (s *stubStore) ListRecent(_ context.Context, limit int) ([]model.OperationRecord, error) {
	s.lastN = limit
	if len(s.records) > limit {
		return s.records[:limit], nil
	}
	return s.records, nil
}

func (s *stubStore) CountByOutcome(context.Context) (map[model.OperationOutcome]int, error) {
	if s.counts == nil {
		return map[model.OperationOutcome]int{}, nil
	}
	return s.counts, nil
}

// fixedLocator pins the workspace directory for tests.
type fixedLocator struct{ dir string }

func (l fixedLocator) WorkspaceDir(context.Context) string { return l.dir }

func newTestServer(t *testing.T, store *stubStore) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	locator := fixedLocator{dir: t.TempDir()}
	provider := application.NewClientProvider(nil, model.Repository{})
	detector := application.NewDetector(locator, application.DefaultRules())
	catalog := application.NewCatalog(provider, detector, locator, store)

	h := httphandler.NewHandler(catalog, provider, store, logger)

	server := httptest.NewServer(httphandler.NewServeMux(h, logger))
	t.Cleanup(server.Close)

	return server
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	return resp.StatusCode
}

func postQuery(t *testing.T, url string, body string) (int, httphandler.QueryResponse) {
	t.Helper()

	resp, err := http.Post(url+"/query", "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out httphandler.QueryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHealth(t *testing.T) {
	server := newTestServer(t, &stubStore{})

	var out httphandler.HealthResponse
	code := getJSON(t, server.URL+"/health", &out)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", out.Status)
	assert.Equal(t, "github-agent", out.Service)

	_, err := time.Parse(time.RFC3339, out.Time)
	assert.NoError(t, err)
}

func TestStatusUnconfigured(t *testing.T) {
	store := &stubStore{counts: map[model.OperationOutcome]int{
		model.OutcomeSuccess: 4,
		model.OutcomeFailure: 1,
	}}
	server := newTestServer(t, store)

	var out httphandler.StatusResponse
	code := getJSON(t, server.URL+"/status", &out)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "GitHub Agent", out.Agent)
	assert.Equal(t, "active", out.Status)
	assert.False(t, out.GitHubConfigured)
	assert.Empty(t, out.Repository)
	assert.Equal(t, []string{
		"get_current_changes",
		"validate_files_exist",
		"create_branch",
		"commit_files",
		"create_pull_request",
		"create_complete_pr_workflow",
		"list_branches",
		"get_repository_status",
	}, out.Tools)
	assert.Equal(t, map[string]int{"success": 4, "failure": 1}, out.Operations)
}

func TestQueryInvalidBody(t *testing.T) {
	server := newTestServer(t, &stubStore{})

	code, out := postQuery(t, server.URL, "not json")

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "error", out.Status)
	assert.Contains(t, out.Response, "Error processing query")
	assert.Equal(t, "github", out.AgentID)
}

func TestQueryEmptyQuery(t *testing.T) {
	server := newTestServer(t, &stubStore{})

	code, out := postQuery(t, server.URL, `{"query":""}`)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "error", out.Status)
	assert.Contains(t, out.Response, "query must not be empty")
}

func TestQueryUnconfiguredToolStillReturnsEnvelope(t *testing.T) {
	store := &stubStore{}
	server := newTestServer(t, store)

	code, out := postQuery(t, server.URL, `{"query":"list all branches"}`)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", out.Status)
	assert.Equal(t, "github", out.AgentID)
	assert.Contains(t, out.Response, "not configured")
	assert.Equal(t, "list_branches", out.Metadata["tool"])
	assert.Equal(t, "failure", out.Metadata["outcome"])

	require.Len(t, store.records, 1)
	assert.Equal(t, "list_branches", store.records[0].Tool)
	assert.Equal(t, model.OutcomeFailure, store.records[0].Outcome)
}

func TestQueryUnroutedReturnsHelp(t *testing.T) {
	server := newTestServer(t, &stubStore{})

	code, out := postQuery(t, server.URL, `{"query":"sing me a song"}`)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "success", out.Status)
	assert.Contains(t, out.Response, "I can help with GitHub repository operations")
}

func TestQueryPassesContextFiles(t *testing.T) {
	server := newTestServer(t, &stubStore{})

	body := `{"query":"validate these files exist","context":{"files":["a.go","b.go"]}}`
	code, out := postQuery(t, server.URL, body)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "validate_files_exist", out.Metadata["tool"])
	assert.Contains(t, out.Response, "a.go")
}

func TestListOperations(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	store := &stubStore{records: []model.OperationRecord{
		{ID: 2, Tool: "commit_files", Query: "commit", Outcome: model.OutcomeSuccess, StartedAt: now, EndedAt: now},
		{ID: 1, Tool: "create_branch", Query: "branch", Outcome: model.OutcomeFailure, StartedAt: now, EndedAt: now},
	}}
	server := newTestServer(t, store)

	var out []httphandler.OperationResponse
	code := getJSON(t, server.URL+"/operations", &out)

	assert.Equal(t, http.StatusOK, code)
	require.Len(t, out, 2)
	assert.Equal(t, int64(2), out[0].ID)
	assert.Equal(t, "commit_files", out[0].Tool)
	assert.Equal(t, "success", out[0].Outcome)
	assert.Equal(t, "2026-03-14T09:26:53Z", out[0].StartedAt)
	assert.Equal(t, 20, store.lastN)
}

func TestListOperationsCustomLimit(t *testing.T) {
	store := &stubStore{}
	server := newTestServer(t, store)

	var out []httphandler.OperationResponse
	code := getJSON(t, server.URL+"/operations?limit=5", &out)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 5, store.lastN)
}

func TestListOperationsInvalidLimit(t *testing.T) {
	server := newTestServer(t, &stubStore{})

	for _, limit := range []string{"0", "-1", "501", "abc"} {
		resp, err := http.Get(server.URL + "/operations?limit=" + limit)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "limit=%s", limit)
	}
}
