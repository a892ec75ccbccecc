package store

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"funnelboard/api/logger"
	"funnelboard/api/models"
)

// EventLoader is implemented by Loader.
type EventLoader interface {
	Load(ctx context.Context, source string) (*models.EventLog, error)
}

// SessionCache memoizes loads per source. Concurrent callers for the same source
// share a single load; failed loads are not cached. Cached logs are read-only and
// shared between callers.
type SessionCache struct {
	loader EventLoader
	group  singleflight.Group

	mu   sync.RWMutex
	logs map[string]*models.EventLog
	gens map[string]uint64
}

func NewSessionCache(loader EventLoader) *SessionCache {
	return &SessionCache{
		loader: loader,
		logs:   make(map[string]*models.EventLog),
		gens:   make(map[string]uint64),
	}
}

// Get returns the cached log for source, loading it on first use.
// A shared load runs with the context of the caller that started it.
func (c *SessionCache) Get(ctx context.Context, source string) (*models.EventLog, error) {
	c.mu.RLock()
	log, ok := c.logs[source]
	gen := c.gens[source]
	c.mu.RUnlock()
	if ok {
		return log, nil
	}

	v, err, shared := c.group.Do(source, func() (interface{}, error) {
		loaded, err := c.loader.Load(ctx, source)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		// An Invalidate during the load means this result is already stale.
		if c.gens[source] == gen {
			c.logs[source] = loaded
		}
		c.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		logger.Log.Debug("Shared in-flight event log load", zap.String("source", source))
	}
	return v.(*models.EventLog), nil
}

// Invalidate drops the cached log so the next Get reloads source.
func (c *SessionCache) Invalidate(source string) {
	c.mu.Lock()
	delete(c.logs, source)
	c.gens[source]++
	c.mu.Unlock()
	c.group.Forget(source)
}
