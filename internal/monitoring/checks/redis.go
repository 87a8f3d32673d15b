package checks

import (
	"context"
	"time"

	"github.com/charlesng35/teamcal/internal/monitoring"
)

const defaultRedisTimeout = 2 * time.Second

// RedisPinger is satisfied by cache.RedisStore.
type RedisPinger interface {
	Ping(ctx context.Context) error
}

// Redis returns a readiness probe for the Redis cache. A nil client means the database
// cache is in use and the probe reports up.
func Redis(client RedisPinger, timeout time.Duration) monitoring.Check {
	return monitoring.NewCheck("redis", func(ctx context.Context) monitoring.ProbeResult {
		if client == nil {
			return monitoring.ProbeResult{Status: monitoring.StatusUp, Details: "redis disabled"}
		}

		start := time.Now()
		probeCtx, cancel := context.WithTimeout(ctx, chooseTimeout(timeout, defaultRedisTimeout))
		defer cancel()

		return monitoring.ResultFromError("redis", client.Ping(probeCtx), time.Since(start))
	})
}
