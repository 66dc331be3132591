package cache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"farm-weather-alert/datasource"
	"farm-weather-alert/models"
)

// CachedSource wraps a WeatherSource and reuses an observation for a location until it expires
type CachedSource struct {
	source         datasource.WeatherSource
	cache          map[datasource.Location]cacheEntry
	mutex          sync.Mutex
	cacheDuration  time.Duration
	cacheHitCount  int
	cacheMissCount int
	logger         *slog.Logger
	now            func() time.Time
}

// cacheEntry represents a cached observation with the time it was fetched
type cacheEntry struct {
	Data      models.Observation
	Timestamp time.Time
}

// NewCachedSource creates a new cached wrapper around a weather source
func NewCachedSource(source datasource.WeatherSource, cacheDuration time.Duration, logger *slog.Logger) *CachedSource {
	return &CachedSource{
		source:        source,
		cache:         make(map[datasource.Location]cacheEntry),
		cacheDuration: cacheDuration,
		logger:        logger,
		now:           time.Now,
	}
}

// Name returns the name of the underlying source with a [Cached] suffix
func (c *CachedSource) Name() string {
	return c.source.Name() + " [Cached]"
}

// FetchObservation returns the cached observation when it is still fresh.
// Failed fetches are not stored, so the next call retries the source.
func (c *CachedSource) FetchObservation(ctx context.Context, loc datasource.Location) (models.Observation, error) {
	if obs, age, ok := c.lookup(loc); ok {
		c.logger.Debug("cache hit",
			"source", c.source.Name(),
			"location", loc.String(),
			"age", age.Round(time.Second),
		)
		return obs, nil
	}

	c.logger.Debug("cache miss", "source", c.source.Name(), "location", loc.String())

	obs, err := c.source.FetchObservation(ctx, loc)
	if err != nil {
		return models.Observation{}, err
	}

	c.mutex.Lock()
	c.cache[loc] = cacheEntry{Data: obs, Timestamp: c.now()}
	c.mutex.Unlock()

	return obs, nil
}

// lookup counts a hit or a miss for loc. An entry is fresh while its age is
// below cacheDuration; with a zero duration nothing is ever fresh.
func (c *CachedSource) lookup(loc datasource.Location) (models.Observation, time.Duration, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, found := c.cache[loc]
	if found {
		if age := c.now().Sub(entry.Timestamp); age < c.cacheDuration {
			c.cacheHitCount++
			return entry.Data, age, true
		}
	}
	c.cacheMissCount++
	return models.Observation{}, 0, false
}

// CacheStats returns statistics about cache hits and misses
func (c *CachedSource) CacheStats() (hits, misses int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.cacheHitCount, c.cacheMissCount
}

// Ensure CachedSource implements the WeatherSource interface
var _ datasource.WeatherSource = (*CachedSource)(nil)
