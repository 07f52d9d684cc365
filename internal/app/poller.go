package app

import (
	"context"
	"sync"
	"time"
)

// PollInterval is the fixed cadence of crown state reads.
const PollInterval = 10 * time.Second

// StartPoller calls onTick every interval until cancel is called or ctx is
// done. It does not tick immediately. Each tick runs in its own goroutine,
// so a slow callback never delays the next one. cancel is idempotent and
// stops future ticks; it does not wait for callbacks already running.
func StartPoller(ctx context.Context, interval time.Duration, onTick func()) (cancel func()) {
	if interval <= 0 {
		interval = PollInterval
	}
	ctx, stop := context.WithCancel(ctx)

	var once sync.Once
	cancel = func() { once.Do(stop) }

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			// Ticker and cancellation can be ready together; cancellation wins.
			if ctx.Err() != nil {
				return
			}
			go onTick()
		}
	}()
	return cancel
}
