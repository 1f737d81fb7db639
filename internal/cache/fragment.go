package cache

import (
	"context"
	"log"
	"time"

	"github.com/anonto42/yatube/internal/metrics"
)

// Fragment returns the cached bytes under key, or calls render and caches
// its output for ttl. Store failures are logged and never fail the page.
func Fragment(ctx context.Context, store Store, key string, ttl time.Duration, render func() ([]byte, error)) ([]byte, error) {
	if cached, ok, err := store.Get(ctx, key); err != nil {
		log.Printf("cache get %s: %v", key, err)
	} else if ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	out, err := render()
	if err != nil {
		return nil, err
	}
	if err := store.Set(ctx, key, out, ttl); err != nil {
		log.Printf("cache set %s: %v", key, err)
	}
	return out, nil
}
