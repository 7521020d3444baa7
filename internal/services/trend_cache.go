package services

import (
	"log"
	"time"

	"memebot/internal/models"

	lru "github.com/hashicorp/golang-lru/v2"
)

const latestBatchKey = "latest"

type trendBatch struct {
	records   []models.TrendRecord
	expiresAt time.Time
}

// TrendCache holds recently scraped trend batches so generation ticks can
// reuse the last scrape instead of hitting every source again. Written by
// scrape ticks, read by generation ticks and the trends API.
type TrendCache struct {
	cache *lru.Cache[string, trendBatch]
	ttl   time.Duration
}

func NewTrendCache(ttl time.Duration) *TrendCache {
	l, err := lru.New[string, trendBatch](8)
	if err != nil {
		log.Fatalf("Failed to create trend cache: %v", err)
	}
	return &TrendCache{cache: l, ttl: ttl}
}

// SetLatest stores the batch from the most recent scrape pass.
func (c *TrendCache) SetLatest(records []models.TrendRecord) {
	c.cache.Add(latestBatchKey, trendBatch{
		records:   records,
		expiresAt: time.Now().Add(c.ttl),
	})
}

// Latest returns the cached batch, or nil if none is cached or the batch has
// gone stale.
func (c *TrendCache) Latest() []models.TrendRecord {
	batch, ok := c.cache.Get(latestBatchKey)
	if !ok {
		return nil
	}
	if time.Now().After(batch.expiresAt) {
		c.cache.Remove(latestBatchKey)
		return nil
	}
	return batch.records
}
