package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const HEALTHCHECK_INTERVAL = 15 * time.Second

// HealthChecker is anything that can report whether its backend answers.
type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// MonitorNERHealth polls checker every interval and stores the result in
// healthy until ctx is done. Transitions are logged once.
func MonitorNERHealth(ctx context.Context, checker HealthChecker, healthy *atomic.Bool, interval time.Duration) {
	if interval <= 0 {
		interval = HEALTHCHECK_INTERVAL
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, interval)
			isHealthy := checker.HealthCheck(checkCtx)
			cancel()

			was := healthy.Swap(isHealthy)
			switch {
			case was && !isHealthy:
				slog.Warn("[HealthCheck] Entity service is unhealthy")
			case !was && isHealthy:
				slog.Info("[HealthCheck] Entity service recovered")
			}
		}
	}
}
