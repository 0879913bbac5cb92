package cache

import (
	"fmt"
	"slices"
	"time"

	"github.com/NLlemain/ride-comparing/internal/domain"
	"github.com/bluele/gcache"
)

// MemorySuggestionCache keeps recent suggestion lists in an LRU with expiry.
// Typing the same prefix again is common, so lists are served from memory.
type MemorySuggestionCache struct {
	lru gcache.Cache
}

func NewMemorySuggestionCache(size int, ttl time.Duration) *MemorySuggestionCache {
	return &MemorySuggestionCache{
		lru: gcache.New(size).
			LRU().
			Expiration(ttl).
			Build(),
	}
}

func (m *MemorySuggestionCache) Get(query string, limit int) ([]domain.AddressSuggestion, bool) {
	v, err := m.lru.Get(suggestionKey(query, limit))
	if err != nil {
		return nil, false
	}

	list, ok := v.([]domain.AddressSuggestion)
	if !ok {
		return nil, false
	}
	return slices.Clone(list), true
}

func (m *MemorySuggestionCache) Put(query string, limit int, suggestions []domain.AddressSuggestion) {
	_ = m.lru.Set(suggestionKey(query, limit), slices.Clone(suggestions))
}

func suggestionKey(query string, limit int) string {
	return fmt.Sprintf("%d|%s", limit, query)
}
