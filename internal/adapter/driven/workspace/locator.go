// Package workspace resolves the active project directory from a sibling
// configuration service, falling back to the process working directory.
package workspace

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	json "github.com/goccy/go-json"

	"github.com/maximilien/repoagent/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.WorkspaceLocator = (*Locator)(nil)

// configTimeout bounds the call to the sibling service; the fallback must
// kick in quickly when the service is down.
const configTimeout = 5 * time.Second

// Locator queries the sibling configuration service for the active project
// directory.
type Locator struct {
	configURL string
	client    *http.Client
}

// NewLocator creates a Locator for the given config endpoint URL
// (e.g. "http://localhost:8121/config").
func NewLocator(configURL string) *Locator {
	return &Locator{
		configURL: configURL,
		client:    &http.Client{Timeout: configTimeout},
	}
}

// configPayload is the subset of the sibling service's config response we
// care about.
type configPayload struct {
	ProjectInfo struct {
		Directory string `json:"directory"`
	} `json:"project_info"`
}

// WorkspaceDir returns the project directory reported by the sibling
// service, or the process working directory when the service is
// unreachable or reports nothing useful.
func (l *Locator) WorkspaceDir(ctx context.Context) string {
	if dir := l.fromService(ctx); dir != "" {
		return dir
	}

	dir, err := os.Getwd()
	if err != nil {
		slog.Warn("cannot determine working directory", "error", err)
		return "."
	}

	return dir
}

func (l *Locator) fromService(ctx context.Context) string {
	ctx, cancel := context.WithTimeout(ctx, configTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.configURL, nil)
	if err != nil {
		return ""
	}

	resp, err := l.client.Do(req)
	if err != nil {
		slog.Debug("workspace config service unreachable", "url", l.configURL, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	var payload configPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		slog.Debug("workspace config response malformed", "error", err)
		return ""
	}

	return payload.ProjectInfo.Directory
}
