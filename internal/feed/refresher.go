package feed

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Refresher refreshes the cache on a fixed interval, independent of any
// socket traffic.
type Refresher struct {
	cache    *Cache
	interval time.Duration
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRefresher creates a Refresher. An interval of zero disables the timer.
func NewRefresher(cache *Cache, interval time.Duration, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Refresher{
		cache:    cache,
		interval: interval,
		logger:   logger,
	}
}

// Start begins the refresh loop.
func (r *Refresher) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	if r.interval <= 0 || !r.cache.Available() {
		r.logger.Info("feed refresher disabled")
		return nil
	}

	r.wg.Add(1)
	go r.run()

	r.logger.Info("feed refresher started", "interval", r.interval)
	return nil
}

// Stop gracefully shuts down the refresher.
func (r *Refresher) Stop(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("feed refresher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Refresher) run() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	// Refresh immediately on start.
	r.cache.Refresh(r.ctx)

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			r.cache.Refresh(r.ctx)
		}
	}
}
