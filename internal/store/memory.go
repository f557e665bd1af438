// internal/store/memory.go
//
// In-memory cache of signing-certificate chains used to verify inbound
// platform requests, keyed by the chain's download URL.
//
// Characteristics:
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Entries whose leaf certificate has expired are dropped on lookup.
//   - State is lost when the process restarts; chains are simply re-downloaded.

package store

import (
	"context"
	"crypto/x509"
	"errors"
	"sync"
	"time"
)

// ErrNotFound is returned by Get for unknown or expired URLs.
var ErrNotFound = errors.New("not found")

// Store defines the cache interface for certificate chains.
type Store interface {
	// Save records the chain fetched from url. chain[0] is the leaf.
	Save(ctx context.Context, url string, chain []*x509.Certificate) error

	// Get returns a cached chain or ErrNotFound.
	Get(ctx context.Context, url string) ([]*x509.Certificate, error)
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu     sync.RWMutex                   // guards chains
	chains map[string][]*x509.Certificate // keyed by URL
	now    func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return newMemory(time.Now)
}

func newMemory(now func() time.Time) *memory {
	return &memory{chains: make(map[string][]*x509.Certificate), now: now}
}

// Save adds or replaces the chain for url.
func (m *memory) Save(ctx context.Context, url string, chain []*x509.Certificate) error {
	if len(chain) == 0 {
		return errors.New("empty certificate chain")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chains[url] = chain
	return nil
}

// Get looks up the chain for url, evicting it if the leaf has expired.
func (m *memory) Get(ctx context.Context, url string) ([]*x509.Certificate, error) {
	m.mu.RLock()
	chain, ok := m.chains[url]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if m.now().After(chain[0].NotAfter) {
		m.mu.Lock()
		delete(m.chains, url)
		m.mu.Unlock()
		return nil, ErrNotFound
	}
	return chain, nil
}
