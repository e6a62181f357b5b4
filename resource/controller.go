// Package resource bounds the background work the engine's maintenance
// layers (reclamation scans, checkpoint uploads) are allowed to do.
package resource

import (
	"context"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds background-work limits.
type Config struct {
	// MaxBackgroundWorkers is the maximum number of concurrent background
	// jobs (scans, uploads). If 0, defaults to 1.
	MaxBackgroundWorkers int64

	// ThroughputLimit is the maximum number of work units per second a
	// background job may consume: bytes for checkpoint IO, visited versions
	// for reclamation scans. If 0, unlimited.
	ThroughputLimit int64
}

// Controller enforces Config. A nil *Controller is valid and enforces
// nothing.
type Controller struct {
	bgSem   *semaphore.Weighted
	limiter *rate.Limiter
}

// NewController creates a controller for the given limits.
func NewController(cfg Config) *Controller {
	if cfg.MaxBackgroundWorkers <= 0 {
		cfg.MaxBackgroundWorkers = 1
	}
	c := &Controller{
		bgSem: semaphore.NewWeighted(cfg.MaxBackgroundWorkers),
	}
	if cfg.ThroughputLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.ThroughputLimit), int(cfg.ThroughputLimit))
	}
	return c
}

// AcquireWorker blocks until a background worker slot is free or ctx is
// canceled.
func (c *Controller) AcquireWorker(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.bgSem.Acquire(ctx, 1)
}

// ReleaseWorker returns a worker slot.
func (c *Controller) ReleaseWorker() {
	if c == nil {
		return
	}
	c.bgSem.Release(1)
}

// Acquire waits until n work units are available under the throughput limit.
func (c *Controller) Acquire(ctx context.Context, n int) error {
	if c == nil || c.limiter == nil || n <= 0 {
		return nil
	}
	// WaitN rejects requests larger than the burst outright; chunk them.
	burst := c.limiter.Burst()
	for n > 0 {
		step := n
		if step > burst {
			step = burst
		}
		if err := c.limiter.WaitN(ctx, step); err != nil {
			return err
		}
		n -= step
	}
	return nil
}
