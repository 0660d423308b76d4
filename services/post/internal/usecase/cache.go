package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"seniors/pkg/metrics"
	"seniors/services/post/internal/entity"

	"github.com/redis/go-redis/v9"
)

func detailCacheKey(postID uint64) string {
	return fmt.Sprintf("post:detail:%d", postID)
}

func (uc *postUseCase) cachedDetail(ctx context.Context, postID uint64) (*entity.PostDetail, bool) {
	if uc.redisClient == nil {
		return nil, false
	}

	data, err := uc.redisClient.Get(ctx, detailCacheKey(postID)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.PostCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
	if err != nil {
		metrics.PostCacheLookups.WithLabelValues("error").Inc()
		uc.logger.Warn("[CACHE] Failed to read post_id=%d: %v", postID, err)
		return nil, false
	}

	var detail entity.PostDetail
	if err := json.Unmarshal(data, &detail); err != nil {
		metrics.PostCacheLookups.WithLabelValues("error").Inc()
		uc.logger.Warn("[CACHE] Discarding corrupt entry for post_id=%d: %v", postID, err)
		return nil, false
	}

	metrics.PostCacheLookups.WithLabelValues("hit").Inc()
	return &detail, true
}

func (uc *postUseCase) cacheDetail(ctx context.Context, detail *entity.PostDetail) {
	if uc.redisClient == nil || uc.opts.CacheTTL <= 0 {
		return
	}

	data, err := json.Marshal(detail)
	if err != nil {
		uc.logger.Warn("[CACHE] Failed to encode post_id=%d: %v", detail.ID, err)
		return
	}
	if err := uc.redisClient.Set(ctx, detailCacheKey(detail.ID), data, uc.opts.CacheTTL).Err(); err != nil {
		uc.logger.Warn("[CACHE] Failed to store post_id=%d: %v", detail.ID, err)
	}
}

func (uc *postUseCase) invalidateDetail(ctx context.Context, postID uint64) {
	if uc.redisClient == nil {
		return
	}
	if err := uc.redisClient.Del(ctx, detailCacheKey(postID)).Err(); err != nil {
		uc.logger.Warn("[CACHE] Failed to invalidate post_id=%d: %v", postID, err)
	}
}
