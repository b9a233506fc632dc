package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"bus-booking/models"
)

// MemoryStore holds snapshots and preferences in process memory. It is used
// when no Redis URL is configured; nothing survives a restart.
type MemoryStore struct {
	mu        sync.RWMutex
	snapshots map[string][]byte
	prefs     map[string]string
	ratings   map[int]models.LocalRating
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		snapshots: make(map[string][]byte),
		prefs:     make(map[string]string),
		ratings:   make(map[int]models.LocalRating),
	}
}

func (m *MemoryStore) Save(_ context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", key, err)
	}
	m.mu.Lock()
	m.snapshots[key] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Load(_ context.Context, key string, dst any) (bool, error) {
	m.mu.RLock()
	data, ok := m.snapshots[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return true, nil
}

func (m *MemoryStore) pref(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.prefs[key]
}

func (m *MemoryStore) setPref(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if value == "" {
		delete(m.prefs, key)
		return
	}
	m.prefs[key] = value
}

func (m *MemoryStore) APIURL(context.Context) (string, error) { return m.pref(prefAPIURL), nil }

func (m *MemoryStore) SetAPIURL(_ context.Context, url string) error {
	m.setPref(prefAPIURL, url)
	return nil
}

func (m *MemoryStore) AuthToken(context.Context) (string, error) { return m.pref(prefAuthToken), nil }

func (m *MemoryStore) SetAuthToken(_ context.Context, token string) error {
	m.setPref(prefAuthToken, token)
	return nil
}

func (m *MemoryStore) HasBookedOnce(context.Context) (bool, error) {
	return m.pref(prefHasBookedOnce) == "true", nil
}

func (m *MemoryStore) MarkBooked(context.Context) error {
	m.setPref(prefHasBookedOnce, "true")
	return nil
}

func (m *MemoryStore) Ratings(context.Context) (map[int]models.LocalRating, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[int]models.LocalRating, len(m.ratings))
	for id, r := range m.ratings {
		out[id] = r
	}
	return out, nil
}

func (m *MemoryStore) SaveRating(_ context.Context, bookingID int, r models.LocalRating) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratings[bookingID] = r
	return nil
}
