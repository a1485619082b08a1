// Package cache memoizes the most recent scrape for a short time window.
package cache

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Memo holds a single cached value with a TTL. A new key replaces the
// previous entry; there is no other eviction than expiry.
type Memo[V any] struct {
	mu       sync.Mutex
	key      string
	value    V
	cachedAt time.Time
	valid    bool
	TTL      time.Duration
	now      func() time.Time
}

// NewMemo creates a memo with the given TTL. A TTL of zero disables caching.
func NewMemo[V any](ttl time.Duration) *Memo[V] {
	return &Memo[V]{
		TTL: ttl,
		now: time.Now,
	}
}

// Get returns the cached value and the time it was stored if key matches and
// the entry has not expired
func (m *Memo[V]) Get(key string) (V, time.Time, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	if !m.valid || m.key != key || m.TTL <= 0 {
		return zero, time.Time{}, false
	}

	// Expired, drop the entry
	if m.now().Sub(m.cachedAt) >= m.TTL {
		m.value = zero
		m.valid = false
		return zero, time.Time{}, false
	}

	return m.value, m.cachedAt, true
}

// Set stores value under key, replacing any previous entry
func (m *Memo[V]) Set(key string, value V) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.key = key
	m.value = value
	m.cachedAt = m.now()
	m.valid = m.TTL > 0
	return m.cachedAt
}

// Clear drops the cached entry
func (m *Memo[V]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero V
	m.value = zero
	m.valid = false
}

// Key builds a memo key from a URL and its request headers. Header order and
// header name case do not affect the key.
func Key(url string, headers map[string]string) string {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	var b strings.Builder
	b.WriteString(url)
	for _, name := range names {
		b.WriteString("|")
		b.WriteString(strings.ToLower(name))
		b.WriteString("=")
		b.WriteString(headers[name])
	}
	return b.String()
}
