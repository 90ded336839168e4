// Package snapshot caches whole collections loaded from the storage backend.
// A cached value is shared read-only by every request until its TTL expires;
// callers must not mutate what Get returns.
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/caredash-api/pkg/errors"
	"github.com/jwalitptl/caredash-api/pkg/metrics"
)

// LoadFunc loads a fresh copy of a collection.
type LoadFunc[T any] func(ctx context.Context) (T, error)

type Cache[T any] struct {
	store      *cache.Cache
	collection string
	ttl        time.Duration
	load       LoadFunc[T]
	metrics    *metrics.Metrics
}

// New returns a cache for one collection. Several collections may share one
// go-cache store; entries are keyed by collection name. A ttl of zero
// disables caching.
func New[T any](store *cache.Cache, collection string, ttl time.Duration, m *metrics.Metrics, load LoadFunc[T]) *Cache[T] {
	return &Cache[T]{
		store:      store,
		collection: collection,
		ttl:        ttl,
		load:       load,
		metrics:    m,
	}
}

func (c *Cache[T]) key() string {
	return "snapshot:" + c.collection
}

// Get returns the cached collection or loads it. Failed loads are not cached
// and are not retried.
func (c *Cache[T]) Get(ctx context.Context) (T, error) {
	if c.ttl > 0 {
		if v, ok := c.store.Get(c.key()); ok {
			if typed, ok := v.(T); ok {
				return typed, nil
			}
		}
	}

	timer := prometheus.NewTimer(c.metrics.SnapshotLoadLatency.WithLabelValues(c.collection))
	v, err := c.load(ctx)
	timer.ObserveDuration()

	if err != nil {
		status := "error"
		if errors.Is(err, errors.ErrNoData) {
			status = "no_data"
		}
		c.metrics.SnapshotLoads.WithLabelValues(c.collection, status).Inc()
		log.Warn().Err(err).Str("collection", c.collection).Msg("snapshot load failed")

		var zero T
		return zero, fmt.Errorf("load %s: %w", c.collection, err)
	}

	c.metrics.SnapshotLoads.WithLabelValues(c.collection, "success").Inc()
	if c.ttl > 0 {
		c.store.Set(c.key(), v, c.ttl)
	}
	return v, nil
}

// Invalidate drops the cached copy so the next Get reloads.
func (c *Cache[T]) Invalidate() {
	c.store.Delete(c.key())
}
