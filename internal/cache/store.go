package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ppiankov/orderparse/internal/model"
)

// Entry is one cached parse
type Entry struct {
	Layout   string            `json:"layout"`
	Order    model.ParsedOrder `json:"order"`
	StoredAt time.Time         `json:"stored_at"`
}

// Store is the typed parse-result cache. A nil *Store is a disabled cache:
// lookups miss and saves are dropped.
type Store struct {
	layers *LayeredCache
	ttl    time.Duration
}

// NewStore builds the store from config; it returns nil when caching is off
func NewStore(cfg model.CacheConfig) *Store {
	if !cfg.Enabled || cfg.Dir == "" {
		return nil
	}
	return &Store{
		layers: NewLayeredCache(cfg.MemoryTTL, cfg.Dir, cfg.DiskTTL),
		ttl:    cfg.DiskTTL,
	}
}

// Lookup returns the cached parse for key
func (s *Store) Lookup(key string) (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}
	data, ok := s.layers.Get(key)
	if !ok {
		return Entry{}, false
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		_ = s.layers.Delete(key)
		return Entry{}, false
	}
	if e.Order.Items == nil {
		e.Order.Items = []model.OrderItem{}
	}
	return e, true
}

// Save stores a parse under key
func (s *Store) Save(key string, e Entry) error {
	if s == nil {
		return nil
	}
	if e.StoredAt.IsZero() {
		e.StoredAt = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := s.layers.Set(key, data, s.ttl); err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	return nil
}

// Clear drops every entry
func (s *Store) Clear() error {
	if s == nil {
		return nil
	}
	return s.layers.Clear()
}

// Prune drops expired disk entries
func (s *Store) Prune() (int, error) {
	if s == nil {
		return 0, nil
	}
	return s.layers.Prune()
}

// Stats returns the lookup counters
func (s *Store) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return s.layers.Stats()
}
