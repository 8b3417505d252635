package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"log/slog"

	"dubsmart/internal/logging"
	"dubsmart/internal/queue"
	"dubsmart/internal/services"
)

func (m *Manager) processJob(ctx context.Context, logger *slog.Logger, job *queue.Job) error {
	stg, ok := m.stageByStart[job.Status]
	if !ok {
		logger.Warn("no stage configured for status", logging.String("status", string(job.Status)))
		m.waitForJobOrShutdown(ctx)
		return nil
	}

	jobCtx := logging.WithJob(ctx, job.ID)
	jobCtx = logging.WithStage(jobCtx, stg.name)
	stageLogger := logging.WithContext(jobCtx, logger)

	if err := m.transitionToProcessing(jobCtx, stg, job); err != nil {
		stageLogger.Error("failed to transition job to processing", logging.Error(err))
		return err
	}
	return m.executeStage(jobCtx, stageLogger, stg, job)
}

func (m *Manager) executeStage(ctx context.Context, stageLogger *slog.Logger, stg pipelineStage, job *queue.Job) error {
	stageStart := time.Now()
	stageLogger.Info("stage started",
		logging.String("processing_status", string(stg.processingStatus)),
		logging.String("input", job.InputPath),
	)

	if stg.handler == nil {
		job.SetFailed(fmt.Sprintf("stage %s missing handler", stg.name), services.CodeInternal)
		if err := m.store.Update(ctx, job); err != nil {
			stageLogger.Error("failed to persist missing handler failure", logging.Error(err))
		}
		return errors.New("stage handler unavailable")
	}

	if err := stg.handler.Prepare(ctx, job); err != nil {
		m.handleStageFailure(ctx, stg, job, err)
		return err
	}
	if err := m.store.Update(ctx, job); err != nil {
		wrapped := fmt.Errorf("persist stage preparation: %w", err)
		stageLogger.Error("failed to persist stage preparation", logging.Error(wrapped))
		return wrapped
	}

	execErr := m.executeWithHeartbeat(ctx, stg, job)
	if execErr != nil {
		if errors.Is(execErr, context.Canceled) {
			stageLogger.Debug("stage interrupted by shutdown")
			return execErr
		}
		m.handleStageFailure(ctx, stg, job, execErr)
		return execErr
	}

	if job.Status == stg.processingStatus {
		job.Status = stg.doneStatus
	}
	job.LastHeartbeat = nil
	if err := m.store.Update(ctx, job); err != nil {
		wrapped := fmt.Errorf("persist stage result: %w", err)
		stageLogger.Error("failed to persist stage result", logging.Error(wrapped))
		return wrapped
	}
	stageLogger.Info("stage completed",
		logging.String("next_status", string(job.Status)),
		logging.Duration("stage_duration", time.Since(stageStart)),
	)
	return nil
}

func (m *Manager) executeWithHeartbeat(ctx context.Context, stg pipelineStage, job *queue.Job) error {
	hbCtx, hbCancel := context.WithCancel(ctx)
	var hbWG sync.WaitGroup
	hbWG.Add(1)
	go m.heartbeat.startLoop(hbCtx, &hbWG, job.ID)

	execErr := stg.handler.Execute(ctx, job)
	hbCancel()
	hbWG.Wait()
	return execErr
}

func (m *Manager) transitionToProcessing(ctx context.Context, stg pipelineStage, job *queue.Job) error {
	now := time.Now().UTC()
	job.Status = stg.processingStatus
	job.ProgressPercent = 0
	job.ErrorMessage = ""
	job.LastHeartbeat = &now
	if err := m.store.Update(ctx, job); err != nil {
		return fmt.Errorf("persist processing transition: %w", err)
	}
	return nil
}

func (m *Manager) handleStageFailure(ctx context.Context, stg pipelineStage, job *queue.Job, stageErr error) {
	details := services.ErrorDetails(stageErr)
	message := details.Message
	if message == "" {
		message = fmt.Sprintf("%s failed", stg.name)
	}
	job.SetFailed(message, details.Code)

	logger := logging.WithContext(ctx, m.logger)
	logger.Error("stage failed",
		logging.String("stage", stg.name),
		logging.String("reason_code", details.Code),
		logging.Error(stageErr),
	)

	if err := m.store.Update(ctx, job); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("worker shutting down, could not persist stage failure")
		} else {
			logger.Error("failed to persist stage failure", logging.Error(err))
		}
	}
}
