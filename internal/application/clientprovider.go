package application

import (
	"sync"

	"github.com/maximilien/repoagent/internal/domain/model"
	"github.com/maximilien/repoagent/internal/domain/port/driven"
)

// ClientProvider holds the optionally-configured GitHub client and its
// target repository. It replaces a process-wide mutable singleton: absence
// of configuration is an explicit nil client checked at the tool boundary,
// and the reference can be swapped at runtime if credentials arrive later.
type ClientProvider struct {
	mu     sync.RWMutex
	client driven.GitClient
	target model.Repository
}

// NewClientProvider creates a provider with the given initial client and
// target. client may be nil when no credential is available at startup.
func NewClientProvider(client driven.GitClient, target model.Repository) *ClientProvider {
	return &ClientProvider{
		client: client,
		target: target,
	}
}

// Get returns the current client, which is nil when the integration is
// not configured.
func (p *ClientProvider) Get() driven.GitClient {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.client
}

// Target returns the repository the current client operates on.
func (p *ClientProvider) Target() model.Repository {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.target
}

// Replace swaps the current client and target. The next caller of Get or
// Target observes the new values.
func (p *ClientProvider) Replace(client driven.GitClient, target model.Repository) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.client = client
	p.target = target
}

// Configured reports whether a non-nil client is currently held.
func (p *ClientProvider) Configured() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.client != nil
}
