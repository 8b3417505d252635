package workflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"log/slog"

	"dubsmart/internal/logging"
	"dubsmart/internal/queue"
)

// defaultHeartbeatInterval paces per-job liveness updates while a stage runs.
const defaultHeartbeatInterval = 10 * time.Second

// heartbeatMonitor keeps claimed jobs visibly alive and reclaims jobs whose
// worker died mid-stage.
type heartbeatMonitor struct {
	store    *queue.Store
	logger   *slog.Logger
	interval time.Duration
	timeout  time.Duration
}

func newHeartbeatMonitor(store *queue.Store, logger *slog.Logger, timeout time.Duration) *heartbeatMonitor {
	interval := defaultHeartbeatInterval
	if timeout > 0 && timeout/3 < interval {
		interval = timeout / 3
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &heartbeatMonitor{
		store:    store,
		logger:   logging.NewComponentLogger(logger, "heartbeat"),
		interval: interval,
		timeout:  timeout,
	}
}

// reclaimStale resets jobs whose heartbeat went quiet back to their last
// completed status so another worker can resume them.
func (h *heartbeatMonitor) reclaimStale(ctx context.Context, logger *slog.Logger) error {
	if h.timeout <= 0 {
		return nil
	}
	cutoff := time.Now().Add(-h.timeout)
	reclaimed, err := h.store.ReclaimStaleProcessing(ctx, cutoff)
	if err != nil {
		return err
	}
	if reclaimed > 0 {
		logger.Info("reclaimed stale jobs", logging.Int64("count", reclaimed))
	}
	return nil
}

// startLoop updates one job's heartbeat until context cancellation.
func (h *heartbeatMonitor) startLoop(ctx context.Context, wg *sync.WaitGroup, jobID int64) {
	defer wg.Done()
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := h.store.UpdateHeartbeat(ctx, jobID); err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				h.logger.Warn("heartbeat update failed", logging.Error(err))
			}
		}
	}
}
