package session

import (
	"context"
	"sync"

	"github.com/tmaki/subvoc/internal/dictionary"
)

// cache key: one token position within one subtitle entry
type Key struct {
	SubtitleID string
	TokenIndex int
}

// MeaningCache is a cache-first read-through of candidate meanings per token.
// Entries live from first fetch until InvalidateAll (media change) or an
// explicit Set.
//
// Two documented limitations, deliberate rather than oversights:
//
//   - When a meaning record is edited or deleted elsewhere, the change does
//     not fan out to every cached list referencing that meaning id; holders
//     patch or refetch themselves.
//   - Overlapping FetchOrGet calls for the same key are not fenced; the last
//     response to resolve wins, so a slow stale response can overwrite a
//     newer one.
type MeaningCache struct {
	mu    sync.Mutex
	lists map[Key][]dictionary.Candidate
}

func NewMeaningCache() *MeaningCache {
	return &MeaningCache{lists: make(map[Key][]dictionary.Candidate)}
}

// Get returns the cached list synchronously if present.
func (c *MeaningCache) Get(key Key) ([]dictionary.Candidate, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	list, ok := c.lists[key]
	return list, ok
}

// FetchOrGet returns the cached value immediately when present; otherwise it
// awaits the fetcher for the token's word, stores the result, and returns it.
func (c *MeaningCache) FetchOrGet(ctx context.Context, key Key, word string, fetch Fetcher) ([]dictionary.Candidate, error) {
	if list, ok := c.Get(key); ok {
		return list, nil
	}

	list, err := fetch(ctx, word)
	if err != nil {
		return nil, err
	}

	c.Set(key, list)
	return list, nil
}

// Set overwrites the cached list for a key.
func (c *MeaningCache) Set(key Key, list []dictionary.Candidate) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists[key] = list
}

// InvalidateAll clears the cache; called on media change.
func (c *MeaningCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists = make(map[Key][]dictionary.Candidate)
}

// Len returns the number of cached keys.
func (c *MeaningCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lists)
}
