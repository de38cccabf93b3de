// Package expirationcache provides a size-bounded LRU cache whose entries
// carry an individual time to live.
package expirationcache

import (
	"time"

	lru "github.com/hashicorp/golang-lru"
)

const (
	defaultCleanUpInterval = 10 * time.Second
	defaultSize            = 10_000
)

type element[T any] struct {
	val            *T
	expiresEpochMs int64
}

type ExpiringLRUCache[T any] struct {
	cleanUpInterval time.Duration
	done            chan struct{}
	lru             *lru.Cache
}

type CacheOption[T any] func(c *ExpiringLRUCache[T])

func WithCleanUpInterval[T any](d time.Duration) CacheOption[T] {
	return func(e *ExpiringLRUCache[T]) {
		e.cleanUpInterval = d
	}
}

func WithMaxSize[T any](size uint) CacheOption[T] {
	return func(c *ExpiringLRUCache[T]) {
		if size > 0 {
			l, _ := lru.New(int(size))
			c.lru = l
		}
	}
}

func NewCache[T any](options ...CacheOption[T]) *ExpiringLRUCache[T] {
	l, _ := lru.New(defaultSize)
	c := &ExpiringLRUCache[T]{
		cleanUpInterval: defaultCleanUpInterval,
		done:            make(chan struct{}),
		lru:             l,
	}

	for _, opt := range options {
		opt(c)
	}

	go periodicCleanup(c)

	return c
}

func periodicCleanup[T any](c *ExpiringLRUCache[T]) {
	ticker := time.NewTicker(c.cleanUpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanUp()
		case <-c.done:
			return
		}
	}
}

func (e *ExpiringLRUCache[T]) cleanUp() {
	// check for expired items and collect expired keys
	var expiredKeys []interface{}

	for _, k := range e.lru.Keys() {
		if v, ok := e.lru.Peek(k); ok {
			if isExpired(v.(*element[T])) {
				expiredKeys = append(expiredKeys, k)
			}
		}
	}

	for _, key := range expiredKeys {
		e.lru.Remove(key)
	}
}

// Put stores val under key for the given ttl. A non-positive ttl means the
// entry is already expired and is not stored at all.
func (e *ExpiringLRUCache[T]) Put(key string, val *T, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	e.lru.Add(key, &element[T]{
		val:            val,
		expiresEpochMs: time.Now().UnixMilli() + ttl.Milliseconds(),
	})
}

// Get returns the stored value and its remaining TTL, or (nil, 0).
// Entries past their TTL are treated as absent even before cleanup ran.
func (e *ExpiringLRUCache[T]) Get(key string) (val *T, ttl time.Duration) {
	el, found := e.lru.Get(key)
	if !found {
		return nil, 0
	}

	entry := el.(*element[T])
	if isExpired(entry) {
		return nil, 0
	}

	return entry.val, calculateRemainTTL(entry.expiresEpochMs)
}

func isExpired[T any](el *element[T]) bool {
	return el.expiresEpochMs > 0 && time.Now().UnixMilli() > el.expiresEpochMs
}

func calculateRemainTTL(expiresEpoch int64) time.Duration {
	if now := time.Now().UnixMilli(); now < expiresEpoch {
		return time.Duration(expiresEpoch-now) * time.Millisecond
	}

	return 0
}

// TotalCount returns the number of entries, expired ones included
func (e *ExpiringLRUCache[T]) TotalCount() (count int) {
	return e.lru.Len()
}

// Clear drops all entries
func (e *ExpiringLRUCache[T]) Clear() {
	e.lru.Purge()
}

// Close stops the cleanup goroutine
func (e *ExpiringLRUCache[T]) Close() {
	close(e.done)
}
