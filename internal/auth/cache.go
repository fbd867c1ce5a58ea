// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatehouse Contributors

package auth

import (
	"sync"
	"time"
)

// DefaultCacheTTL is how long a validated token's principal may be
// reused without re-checking the durable store. It is deliberately much
// shorter than the durable token lifetime: the cache may assert
// validity independently of the store for at most this window.
const DefaultCacheTTL = 60 * time.Second

type cacheEntry struct {
	principal Principal
	expiresAt time.Time
}

// TokenCache is a bounded-staleness in-memory map from token string to
// principal. Every read and write takes the same lock; entries are
// never explicitly evicted, they are overwritten or ignored once their
// TTL passes. Size is bounded by the number of distinct tokens
// validated within one TTL window.
type TokenCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

// NewTokenCache creates a cache with the given TTL. A non-positive TTL
// falls back to DefaultCacheTTL.
func NewTokenCache(ttl time.Duration) *TokenCache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &TokenCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Lookup returns the cached principal for the token if the entry is
// still within its TTL. The second return is false on a miss; the
// caller must fall back to the durable store.
func (c *TokenCache) Lookup(token string) (Principal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[token]
	if !ok || !time.Now().Before(entry.expiresAt) {
		return Principal{}, false
	}
	return entry.principal, true
}

// Store inserts or overwrites the entry for the token with a fresh TTL.
func (c *TokenCache) Store(token string, principal Principal) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[token] = cacheEntry{
		principal: principal,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Len returns the number of entries currently held, including ones past
// their TTL that have not yet been overwritten.
func (c *TokenCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
