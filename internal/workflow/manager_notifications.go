package workflow

import (
	"context"
	"errors"
	"fmt"

	"spool/internal/logging"
	"spool/internal/notifications"
	"spool/internal/queue"
)

func (m *Manager) notifyStageError(ctx context.Context, stageName string, item *queue.Item, stageErr error) {
	if m.notifier == nil || stageErr == nil {
		return
	}
	logger := logging.WithContext(ctx, m.runnerLogger())
	contextLabel := fmt.Sprintf("%s (job #%d)", stageName, item.ID)
	if err := m.notifier.Publish(ctx, notifications.EventError, notifications.Payload{
		"title":   item.DisplayTitle(),
		"error":   stageErr.Error(),
		"context": contextLabel,
	}); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not send error notification")
		} else {
			logger.Debug("stage error notification failed", logging.Error(err))
		}
	}
}

func (m *Manager) notifyJobReview(ctx context.Context, item *queue.Item, reason string) {
	if m.notifier == nil {
		return
	}
	logger := logging.WithContext(ctx, m.runnerLogger())
	if err := m.notifier.Publish(ctx, notifications.EventJobReview, notifications.Payload{
		"title":  item.DisplayTitle(),
		"reason": reason,
	}); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not send review notification")
		} else {
			logger.Debug("review notification failed", logging.Error(err))
		}
	}
}

func (m *Manager) notifyJobCompleted(ctx context.Context, item *queue.Item) {
	if m.notifier == nil {
		return
	}
	logger := logging.WithContext(ctx, m.runnerLogger())
	if err := m.notifier.Publish(ctx, notifications.EventJobCompleted, notifications.Payload{
		"title": item.DisplayTitle(),
	}); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Debug("daemon shutting down, could not send completion notification")
		} else {
			logger.Debug("completion notification failed", logging.Error(err))
		}
	}
}
