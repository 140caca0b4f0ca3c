package collection

import (
	"sort"
	"sync"

	"github.com/therealutkarshpriyadarshi/simsearch/pkg/simerrors"
)

// Manager is a name-keyed registry of collections, the unit the REST
// layer and cmd/cli operate on. A single RWMutex guards the registry
// itself; each Collection guards its own internal state independently,
// so a Search against one collection never blocks a Create of another.
type Manager struct {
	mu          sync.RWMutex
	collections map[string]*Collection
}

// NewManager returns an empty collection registry.
func NewManager() *Manager {
	return &Manager{collections: make(map[string]*Collection)}
}

// Create registers a new collection under name. Returns a ConfigError if
// the name is already taken.
func (m *Manager) Create(name string, c *Collection) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.collections[name]; exists {
		return &simerrors.ConfigError{Key: "name", Reason: "collection already exists: " + name}
	}
	m.collections[name] = c
	return nil
}

// Get returns the collection registered under name, if any.
func (m *Manager) Get(name string) (*Collection, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.collections[name]
	return c, ok
}

// Delete drops a collection from the registry. This is an administrative
// operation on the registry entry, distinct from per-object deletion
// within a collection, which is out of scope per the Non-goals on
// dynamic deletions from NAPP/inverted-index structures.
func (m *Manager) Delete(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.collections[name]; !ok {
		return false
	}
	delete(m.collections, name)
	return true
}

// List returns every registered collection's stats, sorted by name.
func (m *Manager) List() []Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := make([]Stats, 0, len(m.collections))
	for _, c := range m.collections {
		stats = append(stats, c.Stats())
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats
}

// Count returns the number of registered collections.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.collections)
}
