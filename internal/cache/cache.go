// Package cache stores derived analysis views keyed by prediction id. An
// entry is valid only for the completion stamp it was computed from.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Entry is a cached payload and the result stamp it was derived from
type Entry struct {
	Stamp   time.Time       `json:"stamp"`
	Payload json.RawMessage `json:"payload"`
}

// FreshFor reports whether the entry was computed for stamp
func (e *Entry) FreshFor(stamp *time.Time) bool {
	return e != nil && stamp != nil && e.Stamp.Equal(*stamp)
}

// AnalysisCache is the store behind lazily computed analyses
type AnalysisCache interface {
	Get(ctx context.Context, predictionID uint) (*Entry, error)
	Set(ctx context.Context, predictionID uint, e *Entry) error
	Invalidate(ctx context.Context, predictionID uint) error
}

type memoryItem struct {
	entry   Entry
	expires time.Time
}

// Memory is an in-process AnalysisCache
type Memory struct {
	mu    sync.RWMutex
	items map[uint]memoryItem
	ttl   time.Duration
	now   func() time.Time
}

// NewMemory creates an in-process cache. A ttl <= 0 keeps entries until
// they are invalidated.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{items: make(map[uint]memoryItem), ttl: ttl, now: time.Now}
}

// Get returns nil when the id is not cached or has expired
func (m *Memory) Get(ctx context.Context, predictionID uint) (*Entry, error) {
	m.mu.RLock()
	item, ok := m.items[predictionID]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !item.expires.IsZero() && m.now().After(item.expires) {
		m.mu.Lock()
		delete(m.items, predictionID)
		m.mu.Unlock()
		return nil, nil
	}
	e := item.entry
	return &e, nil
}

func (m *Memory) Set(ctx context.Context, predictionID uint, e *Entry) error {
	item := memoryItem{entry: *e}
	if m.ttl > 0 {
		item.expires = m.now().Add(m.ttl)
	}
	m.mu.Lock()
	m.items[predictionID] = item
	m.mu.Unlock()
	return nil
}

func (m *Memory) Invalidate(ctx context.Context, predictionID uint) error {
	m.mu.Lock()
	delete(m.items, predictionID)
	m.mu.Unlock()
	return nil
}
