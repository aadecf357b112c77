package connectors

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryCache is the in-process fallback used when no redis is configured.
type MemoryCache struct {
	value             *cache.Cache
	DefaultExpiration time.Duration
	CleanupInterval   time.Duration
	init              sync.Once
}

func (m *MemoryCache) Client(ctx context.Context) *cache.Cache {
	m.init.Do(func() {
		m.value = cache.New(m.DefaultExpiration, m.CleanupInterval)

		logger(ctx).Info(
			"memory cache created",
			slog.Duration("default-expiration", m.DefaultExpiration),
		)
	})

	return m.value
}
