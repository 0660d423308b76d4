package worker

import (
	"context"
	"time"

	"seniors/pkg/logger"
	"seniors/pkg/metrics"
	"seniors/pkg/queue"
)

const cleanupTimeout = 30 * time.Second

// ObjectRemover is the part of object storage the cleanup worker needs.
type ObjectRemover interface {
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

type CleanupHandler struct {
	storage ObjectRemover
	logger  *logger.Logger
}

func NewCleanupHandler(storage ObjectRemover, logger *logger.Logger) *CleanupHandler {
	return &CleanupHandler{
		storage: storage,
		logger:  logger,
	}
}

// Handle deletes the objects named by task. An error sends the task back to the queue.
func (h *CleanupHandler) Handle(task queue.MediaCleanupTask) error {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	var err error
	if len(task.Keys) > 0 {
		err = h.storage.Delete(ctx, task.Keys...)
	}
	if err == nil && task.Prefix != "" {
		err = h.storage.DeletePrefix(ctx, task.Prefix)
	}

	if err != nil {
		metrics.MediaCleanupTasks.WithLabelValues("failed").Inc()
		h.logger.Error("[CLEANUP] post_id=%d reason=%s failed: %v", task.PostID, task.Reason, err)
		return err
	}

	metrics.MediaCleanupTasks.WithLabelValues("done").Inc()
	h.logger.Info("[CLEANUP] post_id=%d reason=%s keys=%d prefix=%q done", task.PostID, task.Reason, len(task.Keys), task.Prefix)
	return nil
}
