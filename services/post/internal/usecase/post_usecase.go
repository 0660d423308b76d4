package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"seniors/pkg/logger"
	"seniors/pkg/metrics"
	"seniors/pkg/queue"
	"seniors/services/post/internal/entity"
	"seniors/services/post/internal/repo/persistent"

	"github.com/redis/go-redis/v9"
)

const maxPageSize = 100

type PostUseCase interface {
	CreatePost(ctx context.Context, userID uint64, in entity.PostInput) (*entity.Post, error)
	GetPost(ctx context.Context, postID uint64) (*entity.PostDetail, error)
	ListPosts(ctx context.Context, page, size int) (*entity.Page[*entity.PostDetail], error)
	ModifyPost(ctx context.Context, postID, userID uint64, in entity.PostInput) error
	RemovePost(ctx context.Context, postID, userID uint64) error
	LikePost(ctx context.Context, postID, userID uint64, status bool) error
	AddPostMedia(ctx context.Context, postID uint64, mediaURL string) error
}

// MediaStorage is the object store post files live in.
type MediaStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, keys ...string) error
	DeletePrefix(ctx context.Context, prefix string) error
}

// CleanupPublisher hands object deletions that failed inline to the cleanup worker.
type CleanupPublisher interface {
	PublishMediaCleanup(ctx context.Context, task queue.MediaCleanupTask) error
}

type Options struct {
	// StrictOwnership turns edits and removals by a non-author into ForbiddenError
	// instead of a silent no-op.
	StrictOwnership bool
	CacheTTL        time.Duration
}

type postUseCase struct {
	postRepo    persistent.PostRepository
	userRepo    persistent.UserRepository
	storage     MediaStorage
	redisClient *redis.Client
	publisher   CleanupPublisher
	opts        Options
	logger      *logger.Logger
}

// NewPostUseCase wires the post service. redisClient and publisher may be nil.
func NewPostUseCase(
	postRepo persistent.PostRepository,
	userRepo persistent.UserRepository,
	storage MediaStorage,
	redisClient *redis.Client,
	publisher CleanupPublisher,
	opts Options,
	logger *logger.Logger,
) PostUseCase {
	return &postUseCase{
		postRepo:    postRepo,
		userRepo:    userRepo,
		storage:     storage,
		redisClient: redisClient,
		publisher:   publisher,
		opts:        opts,
		logger:      logger,
	}
}

func (uc *postUseCase) CreatePost(ctx context.Context, userID uint64, in entity.PostInput) (post *entity.Post, err error) {
	defer observe("create", &err)

	if err := validatePostInput(in); err != nil {
		return nil, err
	}

	if _, err := uc.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	post = entity.NewPost(in.Title, in.Content, userID)
	err = uc.postRepo.Transaction(ctx, func(repo persistent.PostRepository) error {
		return repo.Create(ctx, post)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	media, err := uc.attachMedia(ctx, post.ID, in.Files)
	if err != nil {
		// Leave no half-created post behind.
		if _, delErr := uc.postRepo.SoftDelete(ctx, post.ID, userID); delErr != nil {
			uc.logger.Error("[POST] Failed to roll back post_id=%d after media failure: %v", post.ID, delErr)
		}
		return nil, err
	}
	post.Media = media

	uc.logger.Info("[POST] Created post_id=%d user_id=%d media=%d", post.ID, userID, len(media))
	return post, nil
}

func (uc *postUseCase) GetPost(ctx context.Context, postID uint64) (detail *entity.PostDetail, err error) {
	defer observe("get", &err)

	if cached, ok := uc.cachedDetail(ctx, postID); ok {
		return cached, nil
	}

	err = uc.postRepo.ReadTransaction(ctx, func(repo persistent.PostRepository) error {
		var err error
		detail, err = repo.GetDetail(ctx, postID)
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.cacheDetail(ctx, detail)
	return detail, nil
}

func (uc *postUseCase) ListPosts(ctx context.Context, page, size int) (result *entity.Page[*entity.PostDetail], err error) {
	defer observe("list", &err)

	if err := validatePageRequest(page, size); err != nil {
		return nil, err
	}

	var (
		posts []*entity.PostDetail
		total int64
	)
	err = uc.postRepo.ReadTransaction(ctx, func(repo persistent.PostRepository) error {
		var err error
		posts, total, err = repo.List(ctx, page, size)
		return err
	})
	if err != nil {
		return nil, err
	}

	return entity.NewPage(posts, total, page, size), nil
}

func (uc *postUseCase) ModifyPost(ctx context.Context, postID, userID uint64, in entity.PostInput) (err error) {
	defer observe("modify", &err)

	if err := validatePostInput(in); err != nil {
		return err
	}

	exists, err := uc.postRepo.Exists(ctx, postID)
	if err != nil {
		return err
	}
	if !exists {
		return entity.ErrInvalidPost
	}

	var (
		updated bool
		oldKeys []string
	)
	err = uc.postRepo.Transaction(ctx, func(repo persistent.PostRepository) error {
		affected, err := repo.UpdateContent(ctx, postID, userID, in.Title, in.Content)
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}
		updated = true

		media, err := repo.ListMedia(ctx, postID)
		if err != nil {
			return err
		}
		for _, m := range media {
			oldKeys = append(oldKeys, m.ObjectKey)
		}

		_, err = repo.DeleteMedia(ctx, postID)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to modify post: %w", err)
	}

	if !updated {
		uc.logger.Warn("[POST] Ignored modify of post_id=%d by non-author user_id=%d", postID, userID)
		if uc.opts.StrictOwnership {
			return entity.ErrNotPostOwner
		}
		return nil
	}

	var releaseErr error
	if len(oldKeys) > 0 {
		releaseErr = uc.releaseObjects(ctx, queue.MediaCleanupTask{
			PostID: postID,
			Keys:   oldKeys,
			Reason: "modify",
		})
	}

	_, attachErr := uc.attachMedia(ctx, postID, in.Files)
	uc.invalidateDetail(ctx, postID)

	if err := errors.Join(releaseErr, attachErr); err != nil {
		return err
	}

	uc.logger.Info("[POST] Modified post_id=%d replaced_media=%d new_media=%d", postID, len(oldKeys), len(in.Files))
	return nil
}

func (uc *postUseCase) RemovePost(ctx context.Context, postID, userID uint64) (err error) {
	defer observe("remove", &err)

	var removed bool
	err = uc.postRepo.Transaction(ctx, func(repo persistent.PostRepository) error {
		affected, err := repo.SoftDelete(ctx, postID, userID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}
		removed = true

		if _, err := repo.DeleteMedia(ctx, postID); err != nil {
			return err
		}
		_, err = repo.DeleteComments(ctx, postID)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to remove post: %w", err)
	}

	if !removed {
		return uc.checkOwnership(ctx, postID, userID)
	}

	uc.invalidateDetail(ctx, postID)
	if err := uc.releaseObjects(ctx, queue.MediaCleanupTask{
		PostID: postID,
		Prefix: entity.MediaPrefix(postID),
		Reason: "remove",
	}); err != nil {
		return err
	}

	uc.logger.Info("[POST] Removed post_id=%d user_id=%d", postID, userID)
	return nil
}

// checkOwnership explains a removal that changed nothing. Only strict mode
// reports a non-author; a missing post is always a no-op.
func (uc *postUseCase) checkOwnership(ctx context.Context, postID, userID uint64) error {
	if !uc.opts.StrictOwnership {
		return nil
	}

	owner, err := uc.postRepo.OwnerOf(ctx, postID)
	if errors.Is(err, entity.ErrInvalidPost) {
		return nil
	}
	if err != nil {
		return err
	}
	if owner != userID {
		return entity.ErrNotPostOwner
	}
	return nil
}

func (uc *postUseCase) LikePost(ctx context.Context, postID, userID uint64, status bool) (err error) {
	defer observe("like", &err)

	err = uc.postRepo.Transaction(ctx, func(repo persistent.PostRepository) error {
		exists, err := repo.Exists(ctx, postID)
		if err != nil {
			return err
		}
		if !exists {
			return entity.ErrInvalidPost
		}

		changed, err := repo.SetLikeStatus(ctx, postID, userID, status)
		if err != nil {
			return err
		}
		if changed == 0 {
			return entity.ErrLikeUnchanged
		}

		counted, err := repo.AdjustLikeCount(ctx, postID, status)
		if err != nil {
			return err
		}
		if counted == 0 {
			return entity.ErrInvalidPost
		}
		return nil
	})
	if err != nil {
		return err
	}

	uc.invalidateDetail(ctx, postID)
	return nil
}

func (uc *postUseCase) AddPostMedia(ctx context.Context, postID uint64, mediaURL string) (err error) {
	defer observe("add_media", &err)

	if mediaURL == "" {
		return entity.NewValidationError("media url must not be blank")
	}

	var added bool
	err = uc.postRepo.Transaction(ctx, func(repo persistent.PostRepository) error {
		exists, err := repo.Exists(ctx, postID)
		if err != nil || !exists {
			return err
		}
		added = true
		return repo.AddMedia(ctx, []*entity.PostMedia{{
			PostID:    postID,
			ObjectKey: mediaURL,
			MediaURL:  mediaURL,
		}})
	})
	if err != nil {
		return fmt.Errorf("failed to add media: %w", err)
	}

	if added {
		uc.invalidateDetail(ctx, postID)
	}
	return nil
}

func observe(operation string, err *error) {
	metrics.PostOperations.WithLabelValues(operation, metrics.Result(*err)).Inc()
}
