package catalog

import (
	"sync"

	"github.com/agentregistry-dev/agentconsole/pkg/models"
)

// Favorites is a session-scoped set of favorite catalog keys.
type Favorites struct {
	mu   sync.RWMutex
	keys map[string]struct{}
}

func NewFavorites() *Favorites {
	return &Favorites{keys: make(map[string]struct{})}
}

// Toggle flips the favorite state of key and returns the new state.
func (f *Favorites) Toggle(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.keys[key]; ok {
		delete(f.keys, key)
		return false
	}
	f.keys[key] = struct{}{}
	return true
}

func (f *Favorites) Has(key string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.keys[key]
	return ok
}

// Apply returns a copy of items with Favorited set from the session set.
func (f *Favorites) Apply(items []models.CatalogItem) []models.CatalogItem {
	out := make([]models.CatalogItem, len(items))
	f.mu.RLock()
	defer f.mu.RUnlock()
	for i, item := range items {
		_, item.Favorited = f.keys[item.Key]
		out[i] = item
	}
	return out
}
