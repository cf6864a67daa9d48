package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/engagehub/pkg/models"
)

// ReportCache keeps generated engagement reports in two tiers: an in-process
// cache for the hot path and redis so replicas share results. Redis being
// down degrades to local-only; it never fails a read.
type ReportCache struct {
	local *gocache.Cache
	redis *RedisCache
	ttl   time.Duration
}

// NewReportCache builds a report cache. redisCache may be nil for
// single-process deployments.
func NewReportCache(redisCache *RedisCache, ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ReportCache{
		local: gocache.New(ttl, 2*ttl),
		redis: redisCache,
		ttl:   ttl,
	}
}

// Key derives the cache key for a reporting window.
func Key(period models.TimeRange) string {
	return fmt.Sprintf("report:%d:%d", period.Start.Unix(), period.End.Unix())
}

func (c *ReportCache) Get(ctx context.Context, period models.TimeRange) (*models.EngagementReport, bool) {
	key := Key(period)

	if cached, ok := c.local.Get(key); ok {
		report := cached.(models.EngagementReport)
		return &report, true
	}

	if c.redis != nil {
		var report models.EngagementReport
		found, err := c.redis.Get(ctx, key, &report)
		if err != nil {
			log.Printf("Report cache read failed: %v", err)
		} else if found {
			c.local.Set(key, report, c.ttl)
			return &report, true
		}
	}

	return nil, false
}

func (c *ReportCache) Set(ctx context.Context, period models.TimeRange, report *models.EngagementReport) {
	key := Key(period)
	c.local.Set(key, *report, c.ttl)

	if c.redis != nil {
		if err := c.redis.Set(ctx, key, report, c.ttl); err != nil {
			log.Printf("Report cache write failed: %v", err)
		}
	}
}
