package monitoring

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type flakyChecker struct {
	healthy atomic.Bool
}

func (f *flakyChecker) HealthCheck(context.Context) bool {
	return f.healthy.Load()
}

func TestMonitorNERHealthTracksChecker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checker := &flakyChecker{}
	healthy := &atomic.Bool{}
	healthy.Store(true)

	done := make(chan struct{})
	go func() {
		MonitorNERHealth(ctx, checker, healthy, 5*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return !healthy.Load() }, time.Second, 5*time.Millisecond)

	checker.healthy.Store(true)
	assert.Eventually(t, healthy.Load, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop after cancel")
	}
}
