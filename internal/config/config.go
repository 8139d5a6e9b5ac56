// Package config loads application configuration from environment
// variables, with repository detection from the local git remote.
package config

import (
	"context"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Fallback repository used when neither environment variables nor the
// local git remote identify a target.
const (
	FallbackOwner = "maximilien"
	FallbackRepo  = "vectras-ai"
)

// remoteTimeout bounds the git remote lookup during startup.
const remoteTimeout = 5 * time.Second

// Config holds the application configuration. GitHubToken may be empty,
// in which case every repository operation short-circuits with a
// "not configured" result and no network call is made.
type Config struct {
	GitHubToken      string
	RepoOwner        string
	RepoName         string
	ListenAddr       string
	DBPath           string
	ConfigServiceURL string
	RulesPath        string
}

// HasGitHubToken reports whether a credential is present.
func (c *Config) HasGitHubToken() bool {
	return c.GitHubToken != ""
}

// Load reads configuration from environment variables. GITHUB_TOKEN is
// optional; without it the agent starts with repository operations
// disabled. GITHUB_ORG and GITHUB_REPO override the target repository;
// when absent it is detected from the local git remote, with a final
// hardcoded fallback pair. Optional variables with defaults:
// REPOAGENT_LISTEN_ADDR (127.0.0.1:8128), REPOAGENT_DB_PATH
// (repoagent.db), REPOAGENT_CONFIG_SERVICE_URL
// (http://localhost:8121/config), REPOAGENT_RULES_PATH (none).
func Load(ctx context.Context) (*Config, error) {
	token := os.Getenv("GITHUB_TOKEN")

	owner := os.Getenv("GITHUB_ORG")
	repo := os.Getenv("GITHUB_REPO")
	if owner == "" || repo == "" {
		if detectedOwner, detectedRepo, ok := detectFromGitRemote(ctx); ok {
			owner, repo = detectedOwner, detectedRepo
		} else {
			owner, repo = FallbackOwner, FallbackRepo
		}
	}

	listenAddr := "127.0.0.1:8128"
	if v, ok := os.LookupEnv("REPOAGENT_LISTEN_ADDR"); ok {
		listenAddr = v
	}

	dbPath := "repoagent.db"
	if v, ok := os.LookupEnv("REPOAGENT_DB_PATH"); ok {
		dbPath = v
	}

	configServiceURL := "http://localhost:8121/config"
	if v, ok := os.LookupEnv("REPOAGENT_CONFIG_SERVICE_URL"); ok {
		configServiceURL = v
	}

	return &Config{
		GitHubToken:      token,
		RepoOwner:        owner,
		RepoName:         repo,
		ListenAddr:       listenAddr,
		DBPath:           dbPath,
		ConfigServiceURL: configServiceURL,
		RulesPath:        os.Getenv("REPOAGENT_RULES_PATH"),
	}, nil
}

// detectFromGitRemote reads the origin remote URL of the repository the
// process runs in and extracts the owner/name pair from a github.com URL.
func detectFromGitRemote(ctx context.Context) (owner, repo string, ok bool) {
	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "git", "remote", "get-url", "origin").Output()
	if err != nil {
		return "", "", false
	}

	return ParseGitHubRemote(strings.TrimSpace(string(out)))
}

// ParseGitHubRemote extracts the owner/repo pair from an https or ssh
// github.com remote URL. Returns ok=false for anything else.
func ParseGitHubRemote(remoteURL string) (owner, repo string, ok bool) {
	if !strings.Contains(remoteURL, "github.com") {
		return "", "", false
	}

	trimmed := strings.TrimSuffix(remoteURL, ".git")

	// ssh form: git@github.com:owner/repo
	if idx := strings.Index(trimmed, "github.com:"); idx >= 0 {
		trimmed = trimmed[idx+len("github.com:"):]
	} else if idx := strings.Index(trimmed, "github.com/"); idx >= 0 {
		trimmed = trimmed[idx+len("github.com/"):]
	}

	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}

	return parts[0], parts[1], true
}
