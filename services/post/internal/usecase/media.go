package usecase

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"seniors/pkg/metrics"
	"seniors/pkg/queue"
	"seniors/services/post/internal/entity"
	"seniors/services/post/internal/repo/persistent"

	"github.com/google/uuid"
)

const defaultContentType = "application/octet-stream"

// mediaObjectKey places a file under its post's prefix. The random name keeps a
// new upload from colliding with a key that is still queued for cleanup.
func mediaObjectKey(postID uint64, filename string) string {
	return entity.MediaPrefix(postID) + uuid.New().String() + strings.ToLower(filepath.Ext(filename))
}

// attachMedia uploads files in order and records them in one transaction.
// On any failure the objects uploaded by this call are released and no rows remain.
func (uc *postUseCase) attachMedia(ctx context.Context, postID uint64, files []entity.MediaFile) ([]entity.PostMedia, error) {
	if len(files) == 0 {
		return []entity.PostMedia{}, nil
	}

	uploaded := make([]string, 0, len(files))
	media := make([]*entity.PostMedia, 0, len(files))
	for _, file := range files {
		key := mediaObjectKey(postID, file.Filename)
		url, err := uc.uploadFile(ctx, key, file)
		if err != nil {
			return nil, uc.abandonUploads(ctx, postID, uploaded, fmt.Errorf("failed to upload %s: %w", file.Filename, err))
		}
		uploaded = append(uploaded, key)
		media = append(media, &entity.PostMedia{PostID: postID, ObjectKey: key, MediaURL: url})
	}

	err := uc.postRepo.Transaction(ctx, func(repo persistent.PostRepository) error {
		return repo.AddMedia(ctx, media)
	})
	if err != nil {
		return nil, uc.abandonUploads(ctx, postID, uploaded, fmt.Errorf("failed to save media: %w", err))
	}

	result := make([]entity.PostMedia, len(media))
	for i, m := range media {
		result[i] = *m
	}
	return result, nil
}

func (uc *postUseCase) uploadFile(ctx context.Context, key string, file entity.MediaFile) (string, error) {
	if file.Open == nil {
		return "", errors.New("file has no content")
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	contentType := file.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}

	url, err := uc.storage.Upload(ctx, key, src, contentType)
	metrics.MediaStorageOperations.WithLabelValues("upload", metrics.Result(err)).Inc()
	return url, err
}

func (uc *postUseCase) abandonUploads(ctx context.Context, postID uint64, keys []string, cause error) error {
	uc.logger.Error("[MEDIA] Attach failed for post_id=%d: %v", postID, cause)
	if len(keys) == 0 {
		return cause
	}

	err := uc.releaseObjects(ctx, queue.MediaCleanupTask{
		PostID: postID,
		Keys:   keys,
		Reason: "attach_failed",
	})
	return errors.Join(cause, err)
}

// releaseObjects deletes the task's objects now, or queues the task when storage
// refuses. Without a queue the storage error is returned.
func (uc *postUseCase) releaseObjects(ctx context.Context, task queue.MediaCleanupTask) error {
	var err error
	if task.Prefix != "" {
		err = uc.storage.DeletePrefix(ctx, task.Prefix)
		metrics.MediaStorageOperations.WithLabelValues("delete_prefix", metrics.Result(err)).Inc()
	} else {
		err = uc.storage.Delete(ctx, task.Keys...)
		metrics.MediaStorageOperations.WithLabelValues("delete", metrics.Result(err)).Inc()
	}
	if err == nil {
		return nil
	}

	uc.logger.Warn("[MEDIA] Failed to delete objects for post_id=%d (%s): %v", task.PostID, task.Reason, err)
	if uc.publisher == nil {
		return fmt.Errorf("failed to delete media: %w", err)
	}

	if pubErr := uc.publisher.PublishMediaCleanup(ctx, task); pubErr != nil {
		metrics.MediaCleanupTasks.WithLabelValues("queue_failed").Inc()
		return fmt.Errorf("failed to delete media: %w", errors.Join(err, pubErr))
	}

	metrics.MediaCleanupTasks.WithLabelValues("queued").Inc()
	uc.logger.Info("[MEDIA] Queued cleanup for post_id=%d keys=%d prefix=%q", task.PostID, len(task.Keys), task.Prefix)
	return nil
}
