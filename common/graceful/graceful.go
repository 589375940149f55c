package graceful

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Laisky/zap"

	"github.com/VaDeloitte/test-project-sub002/common/logger"
)

var (
	inFlight atomic.Int64
	draining atomic.Bool
)

// BeginRequest counts a request as in flight until the returned func is called.
func BeginRequest() func() {
	inFlight.Add(1)
	var once sync.Once
	return func() {
		once.Do(func() { inFlight.Add(-1) })
	}
}

// InFlight reports the number of requests currently counted.
func InFlight() int64 { return inFlight.Load() }

// Drain blocks until no request is in flight, or ctx is done.
func Drain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if inFlight.Load() == 0 {
			logger.Logger.Info("graceful drain complete")
			return nil
		}
		select {
		case <-ctx.Done():
			logger.Logger.Error("graceful drain timeout", zap.Int64("in_flight_requests", inFlight.Load()))
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// SetDraining marks the process as shutting down.
func SetDraining() { draining.Store(true) }

// IsDraining reports whether SetDraining was called.
func IsDraining() bool { return draining.Load() }
