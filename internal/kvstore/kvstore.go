// Package kvstore provides a key/value store for persisting app data as strings.
//
// Structured values are serialized as JSON.
// Consumers are expected to tolerate absent keys by substituting defaults.
package kvstore

import (
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// Store is a key/value store for strings.
type Store interface {
	Contains(key string) bool
	Delete(key string)
	Get(key string) (string, bool)
	Set(key, value string)
}

// Memory is a Store which keeps its data in memory. The zero value is ready for use.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

var _ Store = (*Memory)(nil)

// NewMemory returns a new in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Contains(key string) bool {
	_, ok := m.Get(key)
	return ok
}

func (m *Memory) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

func (m *Memory) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *Memory) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string]string)
	}
	m.data[key] = value
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// namespaced prefixes all keys with a namespace.
type namespaced struct {
	s      Store
	prefix string
}

// Namespace returns a Store where all keys live in the namespace ns of s.
func Namespace(s Store, ns string) Store {
	return namespaced{s: s, prefix: ns + "/"}
}

func (n namespaced) Contains(key string) bool {
	return n.s.Contains(n.prefix + key)
}

func (n namespaced) Delete(key string) {
	n.s.Delete(n.prefix + key)
}

func (n namespaced) Get(key string) (string, bool) {
	return n.s.Get(n.prefix + key)
}

func (n namespaced) Set(key, value string) {
	n.s.Set(n.prefix+key, value)
}

// GetJSON returns the JSON decoded value for key and reports whether it was found.
func GetJSON[T any](s Store, key string) (T, bool, error) {
	var v T
	x, ok := s.Get(key)
	if !ok || x == "" {
		return v, false, nil
	}
	if err := json.Unmarshal([]byte(x), &v); err != nil {
		return v, false, fmt.Errorf("kvstore: decode %s: %w", key, err)
	}
	return v, true, nil
}

// SetJSON stores v JSON encoded for key.
func SetJSON(s Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("kvstore: encode %s: %w", key, err)
	}
	s.Set(key, string(b))
	return nil
}

// BoolWithFallback returns the bool value for key or fallback when absent or invalid.
func BoolWithFallback(s Store, key string, fallback bool) bool {
	x, ok := s.Get(key)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseBool(x)
	if err != nil {
		return fallback
	}
	return v
}

func SetBool(s Store, key string, v bool) {
	s.Set(key, strconv.FormatBool(v))
}

// FloatWithFallback returns the float value for key or fallback when absent or invalid.
func FloatWithFallback(s Store, key string, fallback float64) float64 {
	x, ok := s.Get(key)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseFloat(x, 64)
	if err != nil {
		return fallback
	}
	return v
}

func SetFloat(s Store, key string, v float64) {
	s.Set(key, strconv.FormatFloat(v, 'f', -1, 64))
}

// Time returns the time value for key and reports whether a valid time was found.
func Time(s Store, key string) (time.Time, bool) {
	x, ok := s.Get(key)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, x)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func SetTime(s Store, key string, t time.Time) {
	s.Set(key, t.Format(time.RFC3339))
}
