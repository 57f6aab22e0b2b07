package ttl

import (
	"context"
	"fmt"
	"time"

	"kvstore/internal/logs"
	"kvstore/internal/metrics"
)

// Store defines the minimal contract required by the TTL cleaner
// This keeps the cleaner decoupled from the concrete store implementation
type Store interface {
	RemoveExpired() int
}

// Cleaner periodically sweeps expired keys out of the store. It only bounds
// memory; reads already hide expired entries, so a late or missed sweep is
// invisible to clients.
type Cleaner struct {
	store    Store
	interval time.Duration
	logger   *logs.Logger
	metrics  *metrics.Metrics
}

// NewCleaner creates a new instance of the TTL cleaner
func NewCleaner(
	store Store,
	interval time.Duration,
	logger *logs.Logger,
	m *metrics.Metrics,
) *Cleaner {
	return &Cleaner{
		store:    store,
		interval: interval,
		logger:   logger,
		metrics:  m,
	}
}

// Start runs the sweep loop until the context is cancelled.
// It blocks and should typically be run in a separate goroutine.
func (c *Cleaner) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.runOnce()
		case <-ctx.Done():
			c.logger.Debug("ttl cleaner stopped")
			return
		}
	}
}

// runOnce performs a single sweep cycle
func (c *Cleaner) runOnce() {
	removed := c.store.RemoveExpired()
	c.metrics.SweepRuns.Inc()

	if removed > 0 {
		c.metrics.SweepRemoved.Add(float64(removed))
		c.logger.Info(fmt.Sprintf("sweep removed %d expired keys", removed))
	}
}
