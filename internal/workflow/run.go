package workflow

import (
	"context"
	"errors"
	"time"

	"log/slog"

	"dubsmart/internal/logging"
)

// Start begins background processing. Jobs stranded in a processing status
// by a previous run are reset to their last completed status first.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return errors.New("workflow already running")
	}

	if _, err := m.store.ResetStuckProcessing(ctx); err != nil {
		m.mu.Unlock()
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	workers := m.workerCount()
	m.wg.Add(workers)
	m.mu.Unlock()

	for i := 0; i < workers; i++ {
		go m.runWorker(runCtx)
	}
	return nil
}

// Stop terminates background processing and waits for in-flight stages.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
}

func (m *Manager) runWorker(ctx context.Context) {
	defer m.wg.Done()
	logger := m.logger

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := m.heartbeat.reclaimStale(ctx, logger); err != nil {
			logger.Warn("reclaim stale jobs failed, stuck jobs may remain", logging.Error(err))
		}

		job, err := m.store.NextForStatuses(ctx, m.startOrder...)
		if err != nil {
			m.handleFetchError(ctx, logger, err)
			continue
		}
		if job == nil {
			m.waitForJobOrShutdown(ctx)
			continue
		}

		if err := m.processJob(ctx, logger, job); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
		}
	}
}

func (m *Manager) handleFetchError(ctx context.Context, logger *slog.Logger, err error) {
	logger.Error("failed to fetch next job", logging.Error(err))
	retry := time.Duration(m.cfg.Workflow.ErrorRetryInterval) * time.Second
	if retry <= 0 {
		retry = m.pollInterval
	}
	select {
	case <-ctx.Done():
	case <-time.After(retry):
	}
}

func (m *Manager) waitForJobOrShutdown(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(m.pollInterval):
	}
}

// RunUntilIdle processes jobs until the queue holds no runnable work, then
// returns. Used by one-shot workers and end-to-end tests.
func (m *Manager) RunUntilIdle(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		job, err := m.store.NextForStatuses(ctx, m.startOrder...)
		if err != nil {
			return err
		}
		if job == nil {
			return nil
		}
		if err := m.processJob(ctx, m.logger, job); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
		}
	}
}
