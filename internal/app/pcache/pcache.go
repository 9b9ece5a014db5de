// Package pcache implements a persistent cache on top of storage.
//
// It is the backend for cached HTTP responses and survives app restarts.
package pcache

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ErikKalkoken/tasbeehbuddy/internal/app/storage"
	"github.com/ErikKalkoken/tasbeehbuddy/internal/httpclient"
)

const opTimeout = 5 * time.Second

// PCache is a persistent cache. Expired items are removed in the background.
// It is safe for concurrent use.
type PCache struct {
	st *storage.Storage

	closeOnce sync.Once
	done      chan struct{}
}

var _ httpclient.Backend = (*PCache)(nil)

// New returns a new PCache.
//
// Expired items are removed every cleanUpInterval. No clean-up is done when it is 0.
// Close must be called to stop the clean-up.
func New(st *storage.Storage, cleanUpInterval time.Duration) *PCache {
	c := &PCache{st: st, done: make(chan struct{})}
	if cleanUpInterval > 0 {
		go c.runCleanUp(cleanUpInterval)
	}
	return c
}

func (c *PCache) runCleanUp(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			slog.Debug("pcache: clean-up stopped")
			return
		case <-ticker.C:
			c.CleanUp()
		}
	}
}

// Close stops the background clean-up. It can be called multiple times.
func (c *PCache) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// CleanUp removes expired items and returns how many were removed.
func (c *PCache) CleanUp() int {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	n, err := c.st.CacheCleanUp(ctx)
	if err != nil {
		slog.Error("pcache: clean-up", "error", err)
		return 0
	}
	if n > 0 {
		slog.Info("pcache: removed expired items", "count", n)
	}
	return n
}

// Clear removes all items.
func (c *PCache) Clear() {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := c.st.CacheClear(ctx); err != nil {
		slog.Error("pcache: clear", "error", err)
	}
}

func (c *PCache) Delete(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if err := c.st.CacheDelete(ctx, key); err != nil {
		slog.Error("pcache: delete", "key", key, "error", err)
	}
}

// Get returns the value of an item and reports whether it was found.
// Expired items are not returned.
func (c *PCache) Get(key string) ([]byte, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	v, err := c.st.CacheGet(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, false
	}
	if err != nil {
		slog.Error("pcache: get", "key", key, "error", err)
		return nil, false
	}
	return v, true
}

// Set stores an item which expires after timeout. Items with a timeout of 0 never expire.
func (c *PCache) Set(key string, value []byte, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	arg := storage.CacheSetParams{Key: key, Value: value}
	if timeout > 0 {
		arg.ExpiresAt = time.Now().Add(timeout)
	}
	if err := c.st.CacheSet(ctx, arg); err != nil {
		slog.Error("pcache: set", "key", key, "error", err)
	}
}
